package store

import (
	"slices"
	"time"

	"smart-shopper/internal/models"
)

// Tx is a private working copy handed to a Mutate callback. Pointers returned by its
// finders are only valid inside that callback.
type Tx struct {
	state models.Snapshot
	now   time.Time
}

// Now is the timestamp for everything written in this transaction.
func (tx *Tx) Now() time.Time { return tx.now }

func (tx *Tx) State() *models.Snapshot { return &tx.state }

// ---------- products ----------

func (tx *Tx) Product(barcode string) *models.Product {
	key := models.NormalizeBarcode(barcode)
	for i := range tx.state.Products {
		if models.NormalizeBarcode(tx.state.Products[i].Barcode) == key {
			return &tx.state.Products[i]
		}
	}
	return nil
}

func (tx *Tx) InsertProduct(p models.Product) {
	tx.state.Products = append(tx.state.Products, p)
}

// RemoveProduct deletes by trimmed barcode and returns the removed record.
func (tx *Tx) RemoveProduct(barcode string) (models.Product, bool) {
	key := models.NormalizeBarcode(barcode)
	i := slices.IndexFunc(tx.state.Products, func(p models.Product) bool {
		return models.NormalizeBarcode(p.Barcode) == key
	})
	if i < 0 {
		return models.Product{}, false
	}
	removed := tx.state.Products[i]
	tx.state.Products = slices.Delete(tx.state.Products, i, i+1)
	return removed, true
}

// ---------- users ----------

func (tx *Tx) User(userID string) *models.User {
	for i := range tx.state.Users {
		if tx.state.Users[i].UserID == userID {
			return &tx.state.Users[i]
		}
	}
	return nil
}

func (tx *Tx) InsertUser(u models.User) {
	tx.state.Users = append(tx.state.Users, u)
}

// ---------- carts ----------

func (tx *Tx) Cart(userID string) []models.CartLine {
	return tx.state.Carts[userID]
}

func (tx *Tx) SetCart(userID string, lines []models.CartLine) {
	if tx.state.Carts == nil {
		tx.state.Carts = map[string][]models.CartLine{}
	}
	tx.state.Carts[userID] = lines
}

func (tx *Tx) ClearCart(userID string) {
	tx.SetCart(userID, []models.CartLine{})
}

// ---------- orders ----------

func (tx *Tx) AppendOrder(o models.Order) {
	tx.state.Orders = append(tx.state.Orders, o)
}

func (tx *Tx) AppendTransaction(t models.Transaction) {
	tx.state.Transactions = append(tx.state.Transactions, t)
}

func (tx *Tx) Outlet(id string) *models.Outlet {
	for i := range tx.state.Outlets {
		if tx.state.Outlets[i].ID == id {
			return &tx.state.Outlets[i]
		}
	}
	return nil
}

// ---------- staff ----------

func (tx *Tx) Staff(username string) *models.StaffMember {
	for i := range tx.state.Staff {
		if tx.state.Staff[i].Username == username {
			return &tx.state.Staff[i]
		}
	}
	return nil
}

func (tx *Tx) InsertStaff(m models.StaffMember) {
	tx.state.Staff = append(tx.state.Staff, m)
}

func (tx *Tx) RemoveStaff(username string) bool {
	n := len(tx.state.Staff)
	tx.state.Staff = slices.DeleteFunc(tx.state.Staff, func(m models.StaffMember) bool {
		return m.Username == username
	})
	return len(tx.state.Staff) != n
}

func (tx *Tx) Settings() *models.Settings { return &tx.state.Settings }
