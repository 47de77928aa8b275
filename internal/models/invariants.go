package models

import "fmt"

// Verify checks the cross-entity invariants of a snapshot. The store runs it after every
// mutation when verification is enabled.
func (s *Snapshot) Verify() error {
	seen := make(map[string]struct{}, len(s.Products))
	for _, p := range s.Products {
		key := NormalizeBarcode(p.Barcode)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate barcode %q", ErrInvariant, key)
		}
		seen[key] = struct{}{}
	}

	for _, u := range s.Users {
		for _, e := range u.WalletTransactions {
			if e.Amount <= 0 {
				return fmt.Errorf("%w: non-positive ledger entry %s for user %s", ErrInvariant, e.ID, u.UserID)
			}
		}
		got, ok := CheckedLedgerBalance(u.WalletTransactions)
		if !ok {
			return fmt.Errorf("%w: wallet ledger of %s overflows", ErrInvariant, u.UserID)
		}
		if got != u.WalletBalance {
			return fmt.Errorf("%w: wallet of %s holds %d, ledger sums to %d", ErrInvariant, u.UserID, u.WalletBalance, got)
		}
	}

	orders := make(map[string]Order, len(s.Orders))
	for _, o := range s.Orders {
		if total, ok := CheckedLineTotal(o.Items); !ok || total != o.Total {
			return fmt.Errorf("%w: order %s total %d does not match its lines", ErrInvariant, o.OrderID, o.Total)
		}
		orders[o.OrderID] = o
	}
	paired := make(map[string]int, len(s.Transactions))
	for _, t := range s.Transactions {
		o, ok := orders[t.OrderID]
		if !ok {
			return fmt.Errorf("%w: transaction %s references missing order %s", ErrInvariant, t.ID, t.OrderID)
		}
		if o.Total != t.TotalAmount {
			return fmt.Errorf("%w: transaction %s amount differs from order %s", ErrInvariant, t.ID, t.OrderID)
		}
		paired[t.OrderID]++
	}
	for id := range orders {
		if paired[id] != 1 {
			return fmt.Errorf("%w: order %s has %d transactions", ErrInvariant, id, paired[id])
		}
	}

	superAdmin := false
	for _, m := range s.Staff {
		if m.Username == SuperAdminUsername && m.Role == RoleSuperAdmin {
			superAdmin = true
		}
	}
	if !superAdmin {
		return fmt.Errorf("%w: super admin %s missing", ErrInvariant, SuperAdminUsername)
	}

	for userID, lines := range s.Carts {
		for _, l := range lines {
			if l.Quantity < 1 {
				return fmt.Errorf("%w: cart of %s has line %s with quantity %d", ErrInvariant, userID, l.Barcode, l.Quantity)
			}
		}
	}
	return nil
}
