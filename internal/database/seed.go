package database

import (
	"time"

	applog "smart-shopper/internal/log"
	"smart-shopper/internal/models"
)

// Seed is the dataset a fresh or unreadable store starts from.
func Seed() models.Snapshot {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.Snapshot{
		Outlets: []models.Outlet{
			{ID: "imo-central", Name: "Priceless Imo Central", Location: "Owerri"},
			{ID: "imo-north", Name: "Priceless Imo North", Location: "Okigwe"},
			{ID: "lagos-lekki", Name: "Priceless Lagos Lekki", Location: "Lagos"},
		},
		Products: []models.Product{
			{
				Barcode:     "123456",
				Name:        "Nestlé Milo 500g",
				Price:       2500,
				Category:    "Beverage",
				Description: "The energy food drink of future champions.",
				Images:      []string{"https://images.unsplash.com/photo-1550583724-b2692b85b150?auto=format&fit=crop&q=80&w=200"},
				CreatedAt:   created,
			},
			{
				Barcode:     "234567",
				Name:        "Peak Full Cream Milk",
				Price:       1800,
				Category:    "Dairy",
				Description: "Rich and creamy milk for your morning tea.",
				Images:      []string{"https://images.unsplash.com/photo-1550583724-b2692b85b150?auto=format&fit=crop&q=80&w=200"},
				CreatedAt:   created,
			},
		},
		Users:        []models.User{},
		Transactions: []models.Transaction{},
		Staff:        []models.StaffMember{superAdmin()},
		Roles:        append([]models.Role(nil), models.AllRoles...),
		Settings:     DefaultSettings(),
		Orders:       []models.Order{},
		Carts:        map[string][]models.CartLine{},
	}
}

func DefaultSettings() models.Settings {
	return models.Settings{
		StoreName:      "Smart Priceless Shopper",
		Location:       "Lagos, Nigeria",
		OperatingHours: "8:00 AM - 9:00 PM",
		WelcomeMessage: "Welcome to Smart Priceless Shopper! Ready to shop? 🛍️",
		ContactSupport: "@priceless_support",
	}
}

func superAdmin() models.StaffMember {
	return models.StaffMember{Username: models.SuperAdminUsername, Role: models.RoleSuperAdmin, Name: "Original Chidiah"}
}

// normalize repairs a loaded snapshot: the super admin is always present and collections are
// never nil, so the JSON file keeps arrays instead of nulls.
func normalize(s models.Snapshot) models.Snapshot {
	found := false
	for i := range s.Staff {
		if s.Staff[i].Username == models.SuperAdminUsername {
			s.Staff[i].Role = models.RoleSuperAdmin
			found = true
		}
	}
	if !found {
		s.Staff = append(s.Staff, superAdmin())
	}
	if s.Outlets == nil {
		s.Outlets = []models.Outlet{}
	}
	if s.Products == nil {
		s.Products = []models.Product{}
	}
	if s.Users == nil {
		s.Users = []models.User{}
	}
	if s.Transactions == nil {
		s.Transactions = []models.Transaction{}
	}
	if s.Orders == nil {
		s.Orders = []models.Order{}
	}
	if len(s.Roles) == 0 {
		s.Roles = append([]models.Role(nil), models.AllRoles...)
	}
	if s.Settings == (models.Settings{}) {
		s.Settings = DefaultSettings()
	}
	if s.Carts == nil {
		s.Carts = map[string][]models.CartLine{}
	}
	s.Products = dedupeProducts(s.Products)
	for i := range s.Users {
		u := &s.Users[i]
		if u.WalletTransactions == nil {
			u.WalletTransactions = []models.WalletLedgerEntry{}
		}
		if replayed, ok := models.CheckedLedgerBalance(u.WalletTransactions); ok && replayed != u.WalletBalance {
			applog.Warn(nil, "database.repair", map[string]any{"user": u.UserID, "cached": u.WalletBalance, "ledger": replayed})
			u.WalletBalance = replayed
		}
	}
	return s
}

// dedupeProducts trims barcodes and keeps the first product per trimmed barcode. Older files
// could hold "123456" and "123456 " side by side.
func dedupeProducts(products []models.Product) []models.Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		p.Barcode = models.NormalizeBarcode(p.Barcode)
		if p.Images == nil {
			p.Images = []string{}
		}
		if _, dup := seen[p.Barcode]; dup {
			applog.Warn(nil, "database.repair", map[string]any{"dropped": p.Barcode, "name": p.Name})
			continue
		}
		seen[p.Barcode] = struct{}{}
		out = append(out, p)
	}
	return out
}
