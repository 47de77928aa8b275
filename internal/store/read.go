package store

import "smart-shopper/internal/models"

// Read helpers for View callbacks. They return copies, so results may outlive the callback.

func FindProduct(st *models.Snapshot, barcode string) (models.Product, bool) {
	key := models.NormalizeBarcode(barcode)
	for _, p := range st.Products {
		if models.NormalizeBarcode(p.Barcode) == key {
			return p.Clone(), true
		}
	}
	return models.Product{}, false
}

func FindUser(st *models.Snapshot, userID string) (models.User, bool) {
	for _, u := range st.Users {
		if u.UserID == userID {
			return u.Clone(), true
		}
	}
	return models.User{}, false
}

func FindStaff(st *models.Snapshot, username string) (models.StaffMember, bool) {
	for _, m := range st.Staff {
		if m.Username == username {
			return m, true
		}
	}
	return models.StaffMember{}, false
}

func FindOrder(st *models.Snapshot, orderID string) (models.Order, bool) {
	for _, o := range st.Orders {
		if o.OrderID == orderID {
			return o.Clone(), true
		}
	}
	return models.Order{}, false
}
