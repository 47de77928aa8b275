// Package admin backs the dashboard: staff accounts, store settings, outlets and the
// read-only sales views.
package admin

import (
	"fmt"
	"strings"

	"smart-shopper/internal/auth"
	"smart-shopper/internal/models"
	"smart-shopper/internal/store"

	"github.com/samber/lo"
)

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// ---------- staff ----------

type NewStaff struct {
	Username string      `json:"username" binding:"required"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role" binding:"required"`
	Password string      `json:"password"`
}

// ListStaff never exposes password hashes.
func (s *Service) ListStaff() []models.StaffMember {
	var out []models.StaffMember
	_ = s.store.View(func(st *models.Snapshot) error {
		out = lo.Map(st.Staff, func(m models.StaffMember, _ int) models.StaffMember {
			m.PasswordHash = ""
			return m
		})
		return nil
	})
	return out
}

func (s *Service) AddStaff(n NewStaff) (models.StaffMember, error) {
	n.Username = strings.TrimSpace(n.Username)
	if n.Username == "" {
		return models.StaffMember{}, fmt.Errorf("%w: username is required", models.ErrInvalidInput)
	}
	if !n.Role.Valid() {
		return models.StaffMember{}, fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, n.Role)
	}

	member := models.StaffMember{Username: n.Username, Name: n.Name, Role: n.Role}
	if n.Password != "" {
		hash, err := auth.HashPassword(n.Password)
		if err != nil {
			return models.StaffMember{}, err
		}
		member.PasswordHash = hash
	}

	err := s.store.Mutate(func(tx *store.Tx) error {
		if tx.Staff(member.Username) != nil {
			return models.ErrDuplicateUsername
		}
		tx.InsertStaff(member)
		return nil
	})
	if err != nil {
		return models.StaffMember{}, err
	}
	member.PasswordHash = ""
	return member, nil
}

// DeleteStaff refuses to remove the permanent super admin.
func (s *Service) DeleteStaff(username string) error {
	if username == models.SuperAdminUsername {
		return models.ErrProtectedAccount
	}
	return s.store.Mutate(func(tx *store.Tx) error {
		if !tx.RemoveStaff(username) {
			return models.ErrStaffNotFound
		}
		return nil
	})
}

// ---------- settings ----------

type SettingsPatch struct {
	StoreName      *string `json:"storeName"`
	Location       *string `json:"location"`
	OperatingHours *string `json:"operatingHours"`
	WelcomeMessage *string `json:"welcomeMessage"`
	ContactSupport *string `json:"contactSupport"`
}

func (s *Service) Settings() models.Settings {
	var out models.Settings
	_ = s.store.View(func(st *models.Snapshot) error {
		out = st.Settings
		return nil
	})
	return out
}

func (s *Service) UpdateSettings(p SettingsPatch) (models.Settings, error) {
	var out models.Settings
	err := s.store.Mutate(func(tx *store.Tx) error {
		cur := tx.Settings()
		for _, f := range []struct {
			dst *string
			src *string
		}{
			{&cur.StoreName, p.StoreName},
			{&cur.Location, p.Location},
			{&cur.OperatingHours, p.OperatingHours},
			{&cur.WelcomeMessage, p.WelcomeMessage},
			{&cur.ContactSupport, p.ContactSupport},
		} {
			if f.src != nil {
				*f.dst = *f.src
			}
		}
		out = *cur
		return nil
	})
	return out, err
}

// ---------- outlets ----------

func (s *Service) Outlets() []models.Outlet {
	var out []models.Outlet
	_ = s.store.View(func(st *models.Snapshot) error {
		out = append([]models.Outlet{}, st.Outlets...)
		return nil
	})
	return out
}

// Outlet resolves an entrance QR payload.
func (s *Service) Outlet(id string) (models.Outlet, error) {
	var out models.Outlet
	var ok bool
	_ = s.store.View(func(st *models.Snapshot) error {
		out, ok = lo.Find(st.Outlets, func(o models.Outlet) bool { return o.ID == strings.TrimSpace(id) })
		return nil
	})
	if !ok {
		return models.Outlet{}, models.ErrOutletNotFound
	}
	return out, nil
}
