// Package checkout holds the per-user cart and settles it into an order, its transaction and,
// for wallet payments, a ledger debit, all in a single store mutation.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	applog "smart-shopper/internal/log"
	"smart-shopper/internal/models"
	"smart-shopper/internal/store"
	"smart-shopper/internal/utils"
)

// CartState is derived from the cart contents; settling happens inside one mutation and is
// never observable.
type CartState string

const (
	CartEmpty        CartState = "EMPTY"
	CartAccumulating CartState = "ACCUMULATING"
)

// defaultOutletName labels orders whose outlet id is missing or unknown.
const defaultOutletName = "Priceless Store"

type CartView struct {
	UserID string            `json:"userId"`
	Items  []models.CartLine `json:"items"`
	Total  int64             `json:"total"`
	State  CartState         `json:"state"`
}

// Payment is what an external verifier is asked to confirm for non-wallet checkouts.
type Payment struct {
	UserID    string
	Amount    int64
	Method    string
	Reference string
}

// PaymentVerifier confirms a payment with an outside party. It is called before the store
// lock is taken and must honour ctx cancellation.
type PaymentVerifier interface {
	Verify(ctx context.Context, p Payment) error
}

// ReferenceVerifier checks the shape of a gateway reference before it lands on a receipt.
// An absent reference is fine: checkout assigns an AUTO- reference instead.
type ReferenceVerifier struct{}

const maxPaymentRefLen = 128

func (ReferenceVerifier) Verify(ctx context.Context, p Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ref := strings.TrimSpace(p.Reference)
	if ref == "" {
		return nil
	}
	if len(ref) > maxPaymentRefLen {
		return fmt.Errorf("payment reference longer than %d characters", maxPaymentRefLen)
	}
	if strings.IndexFunc(ref, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return fmt.Errorf("payment reference %q contains whitespace", ref)
	}
	return nil
}

type Request struct {
	UserID        string             `json:"userId"`
	Items         []models.OrderLine `json:"items"`
	TotalAmount   int64              `json:"totalAmount"`
	PaymentMethod string             `json:"paymentMethod"`
	PaymentRef    string             `json:"paymentRef"`
	OutletID      string             `json:"outletId"`
	OutletName    string             `json:"outletName"`
}

type Receipt struct {
	OrderID    string       `json:"orderId"`
	Order      models.Order `json:"order"`
	NewBalance *int64       `json:"newBalance,omitempty"`
}

type Engine struct {
	store          *store.Store
	verifier       PaymentVerifier
	paymentTimeout time.Duration
}

type Option func(*Engine)

// WithPaymentVerifier enables external confirmation of non-wallet payments.
func WithPaymentVerifier(v PaymentVerifier, timeout time.Duration) Option {
	return func(e *Engine) {
		e.verifier = v
		if timeout > 0 {
			e.paymentTimeout = timeout
		}
	}
}

func NewEngine(s *store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, paymentTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddItem scans a product into the user's cart. A repeated barcode bumps the existing line.
func (e *Engine) AddItem(userID, barcode string, qty int) (CartView, error) {
	if strings.TrimSpace(userID) == "" {
		return CartView{}, fmt.Errorf("%w: userId is required", models.ErrInvalidInput)
	}
	if qty <= 0 {
		qty = 1
	}

	var view CartView
	err := e.store.Mutate(func(tx *store.Tx) error {
		p := tx.Product(barcode)
		if p == nil {
			return models.ErrProductNotFound
		}

		lines := tx.Cart(userID)
		found := false
		for i := range lines {
			if models.NormalizeBarcode(lines[i].Barcode) == models.NormalizeBarcode(p.Barcode) {
				lines[i].Quantity += qty
				found = true
				break
			}
		}
		if !found {
			lines = append(lines, models.CartLine{
				Barcode:  p.Barcode,
				Name:     p.Name,
				Price:    p.Price,
				Category: p.Category,
				Images:   append([]string(nil), p.Images...),
				Quantity: qty,
				ScanTime: tx.Now(),
			})
		}
		tx.SetCart(userID, lines)
		view = newCartView(userID, models.CloneLines(lines))
		return nil
	})
	return view, err
}

func (e *Engine) Cart(userID string) CartView {
	var view CartView
	_ = e.store.View(func(st *models.Snapshot) error {
		view = newCartView(userID, models.CloneLines(st.Carts[userID]))
		return nil
	})
	return view
}

func (e *Engine) Clear(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId is required", models.ErrInvalidInput)
	}
	return e.store.Mutate(func(tx *store.Tx) error {
		tx.ClearCart(userID)
		return nil
	})
}

// Checkout validates the request, confirms external payment if a verifier is set, and then
// records order, transaction, optional wallet debit and cart reset in one mutation.
func (e *Engine) Checkout(ctx context.Context, req Request) (Receipt, error) {
	if err := validate(req); err != nil {
		return Receipt{}, err
	}
	wallet := models.IsWalletPayment(req.PaymentMethod)

	if !wallet && e.verifier != nil {
		if err := e.verifyPayment(ctx, req); err != nil {
			applog.Error(nil, "checkout.payment", err, map[string]any{"user": req.UserID, "amount": req.TotalAmount})
			return Receipt{}, err
		}
	}

	var receipt Receipt
	err := e.store.Mutate(func(tx *store.Tx) error {
		now := tx.Now()
		ref := req.PaymentRef
		if ref == "" {
			ref = utils.PaymentRef(now)
		}

		if wallet {
			u := tx.User(req.UserID)
			if u == nil {
				return models.ErrUserNotFound
			}
			if u.WalletBalance < req.TotalAmount {
				return fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientBalance, u.WalletBalance, req.TotalAmount)
			}
			u.WalletBalance -= req.TotalAmount
			u.WalletTransactions = append(u.WalletTransactions, models.WalletLedgerEntry{
				ID:        utils.LedgerID("D", now),
				Type:      models.Debit,
				Amount:    req.TotalAmount,
				Purpose:   "Purchase",
				Method:    req.PaymentMethod,
				Reference: ref,
				Date:      now,
			})
			balance := u.WalletBalance
			receipt.NewBalance = &balance
		}

		outletName := req.OutletName
		if outletName == "" {
			outletName = defaultOutletName
			if o := tx.Outlet(req.OutletID); o != nil {
				outletName = o.Name
			}
		}

		order := models.Order{
			OrderID:       utils.OrderID(now, req.UserID),
			UserID:        req.UserID,
			OutletID:      req.OutletID,
			OutletName:    outletName,
			Items:         normalizeLines(req.Items),
			Total:         req.TotalAmount,
			PaymentMethod: req.PaymentMethod,
			PaymentRef:    ref,
			Status:        models.OrderStatusCompleted,
			CreatedAt:     now,
		}
		tx.AppendOrder(order)
		tx.AppendTransaction(models.Transaction{
			ID:          utils.TransactionID(now),
			OrderID:     order.OrderID,
			UserID:      req.UserID,
			OutletID:    req.OutletID,
			TotalAmount: req.TotalAmount,
			Status:      models.TransactionStatusPaid,
			Timestamp:   now,
		})
		tx.ClearCart(req.UserID)

		receipt.OrderID = order.OrderID
		receipt.Order = order.Clone()
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func (e *Engine) verifyPayment(ctx context.Context, req Request) error {
	ctx, cancel := context.WithTimeout(ctx, e.paymentTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- e.verifier.Verify(ctx, Payment{
			UserID:    req.UserID,
			Amount:    req.TotalAmount,
			Method:    req.PaymentMethod,
			Reference: req.PaymentRef,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrPaymentFailed, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", models.ErrPaymentFailed, ctx.Err())
	}
}

// OrdersForUser returns the user's orders, newest first.
func (e *Engine) OrdersForUser(userID string) []models.Order {
	out := []models.Order{}
	_ = e.store.View(func(st *models.Snapshot) error {
		for i := len(st.Orders) - 1; i >= 0; i-- {
			if st.Orders[i].UserID == userID {
				out = append(out, st.Orders[i].Clone())
			}
		}
		return nil
	})
	return out
}

// TransactionsForUser returns the user's transactions, newest first.
func (e *Engine) TransactionsForUser(userID string) []models.Transaction {
	out := []models.Transaction{}
	_ = e.store.View(func(st *models.Snapshot) error {
		for i := len(st.Transactions) - 1; i >= 0; i-- {
			if st.Transactions[i].UserID == userID {
				out = append(out, st.Transactions[i])
			}
		}
		return nil
	})
	return out
}

func validate(req Request) error {
	if strings.TrimSpace(req.UserID) == "" || len(req.Items) == 0 || req.TotalAmount <= 0 {
		return models.ErrInvalidCheckout
	}
	for _, l := range req.Items {
		if models.NormalizeBarcode(l.Barcode) == "" || l.Quantity < 1 || l.Price < 0 {
			return fmt.Errorf("%w: malformed line %q", models.ErrInvalidCheckout, l.Barcode)
		}
	}
	sum, ok := models.CheckedLineTotal(req.Items)
	if !ok {
		return fmt.Errorf("%w: line totals overflow", models.ErrInvalidCheckout)
	}
	if sum != req.TotalAmount {
		return fmt.Errorf("%w: total %d does not match lines %d", models.ErrInvalidCheckout, req.TotalAmount, sum)
	}
	return nil
}

func normalizeLines(lines []models.OrderLine) []models.OrderLine {
	out := make([]models.OrderLine, len(lines))
	for i, l := range lines {
		l.Barcode = models.NormalizeBarcode(l.Barcode)
		out[i] = l
	}
	return out
}

func newCartView(userID string, lines []models.CartLine) CartView {
	if lines == nil {
		lines = []models.CartLine{}
	}
	v := CartView{UserID: userID, Items: lines, State: CartEmpty}
	for _, l := range lines {
		v.Total += l.Price * int64(l.Quantity)
	}
	if len(lines) > 0 {
		v.State = CartAccumulating
	}
	return v
}
