package models

import "slices"

// Clone returns a deep copy; nothing in the result aliases s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Outlets:      slices.Clone(s.Outlets),
		Products:     make([]Product, len(s.Products)),
		Users:        make([]User, len(s.Users)),
		Transactions: slices.Clone(s.Transactions),
		Staff:        slices.Clone(s.Staff),
		Roles:        slices.Clone(s.Roles),
		Settings:     s.Settings,
		Orders:       make([]Order, len(s.Orders)),
		Carts:        make(map[string][]CartLine, len(s.Carts)),
	}
	for i, p := range s.Products {
		out.Products[i] = p.Clone()
	}
	for i, u := range s.Users {
		out.Users[i] = u.Clone()
	}
	for i, o := range s.Orders {
		out.Orders[i] = o.Clone()
	}
	for id, lines := range s.Carts {
		out.Carts[id] = CloneLines(lines)
	}
	return out
}

func (p Product) Clone() Product {
	p.Images = slices.Clone(p.Images)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}

func (u User) Clone() User {
	u.WalletTransactions = slices.Clone(u.WalletTransactions)
	return u
}

func (o Order) Clone() Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	for i, l := range lines {
		l.Images = slices.Clone(l.Images)
		out[i] = l
	}
	return out
}
