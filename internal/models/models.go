package models

import (
	"math"
	"strings"
	"time"
)

// SuperAdminUsername is the permanent staff account. It is re-seeded on load and can never be deleted.
const SuperAdminUsername = "origichidiah"

// Role - staff permission level
type Role string

const (
	RoleSuperAdmin       Role = "SUPER_ADMIN"
	RoleInventoryManager Role = "INVENTORY_MANAGER"
	RoleBillingStaff     Role = "BILLING_STAFF"
)

// AllRoles is the static role list persisted with the snapshot.
var AllRoles = []Role{RoleSuperAdmin, RoleInventoryManager, RoleBillingStaff}

func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Product - the catalog entry, keyed by trimmed barcode
type Product struct {
	Barcode     string     `json:"barcode"`
	Name        string     `json:"name"`
	Price       int64      `json:"price"` // minor currency unit
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// LedgerType - direction of a wallet movement
type LedgerType string

const (
	Credit LedgerType = "CREDIT"
	Debit  LedgerType = "DEBIT"
)

// WalletLedgerEntry - one append-only wallet movement
type WalletLedgerEntry struct {
	ID        string     `json:"id"`
	Type      LedgerType `json:"type"`
	Amount    int64      `json:"amount"` // always positive, sign comes from Type
	Purpose   string     `json:"purpose"`
	Method    string     `json:"method,omitempty"`
	Reference string     `json:"reference,omitempty"`
	Date      time.Time  `json:"date"`
}

// User - a shopper, identified by an external id (e.g. a Telegram chat id)
type User struct {
	UserID             string              `json:"userId"`
	Name               string              `json:"name"`
	Email              string              `json:"email,omitempty"`
	Phone              string              `json:"phone,omitempty"`
	WalletBalance      int64               `json:"walletBalance"`
	WalletTransactions []WalletLedgerEntry `json:"walletTransactions"`
	SessionActive      bool                `json:"sessionActive"`
	LoginCode          string              `json:"loginCode"`
	RegisteredAt       time.Time           `json:"registeredAt"`
}

// CartLine - a scanned item with the product fields copied at scan time
type CartLine struct {
	Barcode  string    `json:"barcode"`
	Name     string    `json:"name"`
	Price    int64     `json:"price"`
	Category string    `json:"category"`
	Images   []string  `json:"images,omitempty"`
	Quantity int       `json:"quantity"`
	ScanTime time.Time `json:"scanTime"`
}

// OrderLine - a purchased item, denormalized at checkout
type OrderLine struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Category string `json:"category,omitempty"`
}

const OrderStatusCompleted = "COMPLETED"

// Order - the receipt; OrderID doubles as the exit QR payload
type Order struct {
	OrderID       string      `json:"orderId"`
	UserID        string      `json:"userId"`
	OutletID      string      `json:"outletId"`
	OutletName    string      `json:"outletName"`
	Items         []OrderLine `json:"items"`
	Total         int64       `json:"total"`
	PaymentMethod string      `json:"paymentMethod"`
	PaymentRef    string      `json:"paymentRef"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

const TransactionStatusPaid = "paid"

// Transaction - analytics-facing mirror of an Order
type Transaction struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	OutletID    string    `json:"outletId"`
	TotalAmount int64     `json:"totalAmount"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// StaffMember - an admin dashboard account
type StaffMember struct {
	Username     string `json:"username"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"passwordHash,omitempty"` // stripped before leaving the API
}

// Outlet - a physical store, resolved from the entrance QR
type Outlet struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type Settings struct {
	StoreName      string `json:"storeName"`
	Location       string `json:"location"`
	OperatingHours string `json:"operatingHours"`
	WelcomeMessage string `json:"welcomeMessage"`
	ContactSupport string `json:"contactSupport"`
}

// Snapshot is the whole store as one serialisable unit.
type Snapshot struct {
	Outlets      []Outlet              `json:"outlets"`
	Products     []Product             `json:"products"`
	Users        []User                `json:"users"`
	Transactions []Transaction         `json:"transactions"`
	Staff        []StaffMember         `json:"staff"`
	Roles        []Role                `json:"roles"`
	Settings     Settings              `json:"settings"`
	Orders       []Order               `json:"orders"`
	Carts        map[string][]CartLine `json:"carts"`
}

// NormalizeBarcode is the single comparison key for barcodes.
func NormalizeBarcode(barcode string) string {
	return strings.TrimSpace(barcode)
}

// LineTotal sums price x quantity over order lines.
func LineTotal(lines []OrderLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Price * int64(l.Quantity)
	}
	return total
}

// CheckedLineTotal is LineTotal that reports int64 overflow instead of wrapping.
func CheckedLineTotal(lines []OrderLine) (int64, bool) {
	var total int64
	for _, l := range lines {
		sub, ok := MulMoney(l.Price, l.Quantity)
		if !ok {
			return 0, false
		}
		if total, ok = AddMoney(total, sub); !ok {
			return 0, false
		}
	}
	return total, true
}

// AddMoney adds two amounts, returning false if the sum does not fit in an int64.
func AddMoney(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// MulMoney multiplies a unit price by a quantity, returning false on overflow.
func MulMoney(price int64, qty int) (int64, bool) {
	if price == 0 || qty == 0 {
		return 0, true
	}
	q := int64(qty)
	if price == math.MinInt64 || q == math.MinInt64 {
		return 0, false
	}
	r := price * q
	if r/q != price {
		return 0, false
	}
	return r, true
}

// LedgerBalance replays a ledger into a balance.
func LedgerBalance(entries []WalletLedgerEntry) int64 {
	var balance int64
	for _, e := range entries {
		switch e.Type {
		case Credit:
			balance += e.Amount
		case Debit:
			balance -= e.Amount
		}
	}
	return balance
}

// IsWalletPayment reports whether a checkout should settle against the shopper's wallet.
func IsWalletPayment(method string) bool {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "priceless wallet", "wallet":
		return true
	}
	return false
}

// CheckedLedgerBalance is LedgerBalance that reports int64 overflow instead of wrapping.
func CheckedLedgerBalance(entries []WalletLedgerEntry) (int64, bool) {
	var balance int64
	ok := true
	for _, e := range entries {
		switch e.Type {
		case Credit:
			balance, ok = AddMoney(balance, e.Amount)
		case Debit:
			balance, ok = AddMoney(balance, -e.Amount)
		}
		if !ok {
			return 0, false
		}
	}
	return balance, true
}
