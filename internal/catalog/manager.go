// Package catalog manages products: creation with barcode uniqueness, partial updates,
// deletion, bulk upsert from spreadsheets, and image references.
package catalog

import (
	"fmt"
	"strings"

	"smart-shopper/internal/models"
	"smart-shopper/internal/store"
)

type Manager struct {
	store *store.Store
}

func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// ProductPatch carries only the fields a caller wants to change.
type ProductPatch struct {
	Barcode     *string   `json:"barcode"`
	Name        *string   `json:"name"`
	Price       *int64    `json:"price"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
	Images      *[]string `json:"images"`
}

// BulkRecord is one row of a bulk upload. A nil Price means the column was empty.
type BulkRecord struct {
	Barcode     string   `json:"barcode"`
	Name        string   `json:"name"`
	Price       *int64   `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

type BulkResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

func (m *Manager) List() []models.Product {
	var out []models.Product
	_ = m.store.View(func(st *models.Snapshot) error {
		out = make([]models.Product, 0, len(st.Products))
		for _, p := range st.Products {
			out = append(out, p.Clone())
		}
		return nil
	})
	return out
}

func (m *Manager) Get(barcode string) (models.Product, error) {
	var p models.Product
	var ok bool
	_ = m.store.View(func(st *models.Snapshot) error {
		p, ok = store.FindProduct(st, barcode)
		return nil
	})
	if !ok {
		return models.Product{}, models.ErrProductNotFound
	}
	return p, nil
}

func (m *Manager) Create(p models.Product) (models.Product, error) {
	p.Barcode = models.NormalizeBarcode(p.Barcode)
	p.Name = strings.TrimSpace(p.Name)
	if p.Barcode == "" || p.Name == "" {
		return models.Product{}, fmt.Errorf("%w: barcode and name are required", models.ErrInvalidInput)
	}
	if p.Price < 0 {
		return models.Product{}, fmt.Errorf("%w: price must not be negative", models.ErrInvalidInput)
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	err := m.store.Mutate(func(tx *store.Tx) error {
		if tx.Product(p.Barcode) != nil {
			return fmt.Errorf("%w: %s", models.ErrDuplicateBarcode, p.Barcode)
		}
		p.CreatedAt = tx.Now()
		p.UpdatedAt = nil
		tx.InsertProduct(p.Clone())
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update merges the non-nil patch fields into the product. Renaming the barcode is allowed
// as long as the new one is free.
func (m *Manager) Update(barcode string, patch ProductPatch) (models.Product, error) {
	var updated models.Product
	err := m.store.Mutate(func(tx *store.Tx) error {
		p := tx.Product(barcode)
		if p == nil {
			return models.ErrProductNotFound
		}
		if patch.Barcode != nil {
			next := models.NormalizeBarcode(*patch.Barcode)
			if next == "" {
				return fmt.Errorf("%w: barcode must not be empty", models.ErrInvalidInput)
			}
			if next != models.NormalizeBarcode(p.Barcode) && tx.Product(next) != nil {
				return fmt.Errorf("%w: %s", models.ErrDuplicateBarcode, next)
			}
			p.Barcode = next
		}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("%w: name must not be empty", models.ErrInvalidInput)
			}
			p.Name = name
		}
		if patch.Price != nil {
			if *patch.Price < 0 {
				return fmt.Errorf("%w: price must not be negative", models.ErrInvalidInput)
			}
			p.Price = *patch.Price
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Images != nil {
			p.Images = append([]string{}, (*patch.Images)...)
		}
		now := tx.Now()
		p.UpdatedAt = &now
		updated = p.Clone()
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

func (m *Manager) Delete(barcode string) (models.Product, error) {
	var removed models.Product
	err := m.store.Mutate(func(tx *store.Tx) error {
		p, ok := tx.RemoveProduct(barcode)
		if !ok {
			return models.ErrProductNotFound
		}
		removed = p
		return nil
	})
	return removed, err
}

// BulkUpsert applies all records in one mutation. Records without barcode, name or a
// non-negative price are skipped.
func (m *Manager) BulkUpsert(records []BulkRecord) (BulkResult, error) {
	var res BulkResult
	err := m.store.Mutate(func(tx *store.Tx) error {
		res = BulkResult{}
		for _, r := range records {
			barcode := models.NormalizeBarcode(r.Barcode)
			name := strings.TrimSpace(r.Name)
			if barcode == "" || name == "" || r.Price == nil || *r.Price < 0 {
				res.Skipped++
				continue
			}

			now := tx.Now()
			if p := tx.Product(barcode); p != nil {
				p.Name = name
				p.Price = *r.Price
				if r.Category != "" {
					p.Category = r.Category
				}
				if r.Description != "" {
					p.Description = r.Description
				}
				if r.Images != nil {
					p.Images = append([]string{}, r.Images...)
				}
				p.UpdatedAt = &now
				res.Updated++
				continue
			}

			category := r.Category
			if category == "" {
				category = "Other"
			}
			images := append([]string{}, r.Images...)
			tx.InsertProduct(models.Product{
				Barcode:     barcode,
				Name:        name,
				Price:       *r.Price,
				Category:    category,
				Description: r.Description,
				Images:      images,
				CreatedAt:   now,
			})
			res.Added++
		}
		return nil
	})
	return res, err
}

// AddImage appends an image reference and returns the new image count.
func (m *Manager) AddImage(barcode, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("%w: image reference is required", models.ErrInvalidInput)
	}
	var count int
	err := m.store.Mutate(func(tx *store.Tx) error {
		p := tx.Product(barcode)
		if p == nil {
			return models.ErrProductNotFound
		}
		p.Images = append(p.Images, ref)
		now := tx.Now()
		p.UpdatedAt = &now
		count = len(p.Images)
		return nil
	})
	return count, err
}
