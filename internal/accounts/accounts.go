// Package accounts registers shoppers and tracks their bot sessions.
package accounts

import (
	"fmt"
	"strings"

	"smart-shopper/internal/models"
	"smart-shopper/internal/store"
	"smart-shopper/internal/utils"
)

type Service struct {
	store *store.Store
	code  func() string
}

func NewService(s *store.Store) *Service {
	return &Service{store: s, code: utils.LoginCode}
}

type Registration struct {
	UserID string `json:"userId" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

type Status struct {
	Registered bool   `json:"registered"`
	Name       string `json:"name,omitempty"`
	LoggedIn   bool   `json:"loggedIn"`
}

// Register creates the shopper with an empty wallet and an active session. The returned
// user carries the login code; it is shown once.
func (s *Service) Register(r Registration) (models.User, error) {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Name = strings.TrimSpace(r.Name)
	if r.UserID == "" || r.Name == "" {
		return models.User{}, fmt.Errorf("%w: userId and name are required", models.ErrInvalidInput)
	}

	var user models.User
	err := s.store.Mutate(func(tx *store.Tx) error {
		if tx.User(r.UserID) != nil {
			return models.ErrDuplicateUser
		}
		user = models.User{
			UserID:             r.UserID,
			Name:               r.Name,
			Email:              r.Email,
			Phone:              r.Phone,
			WalletTransactions: []models.WalletLedgerEntry{},
			SessionActive:      true,
			LoginCode:          s.code(),
			RegisteredAt:       tx.Now(),
		}
		tx.InsertUser(user.Clone())
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Service) Login(userID, code string) (models.User, error) {
	var user models.User
	err := s.store.Mutate(func(tx *store.Tx) error {
		u := tx.User(userID)
		if u == nil || u.LoginCode == "" || u.LoginCode != strings.TrimSpace(code) {
			return models.ErrUnauthorized
		}
		u.SessionActive = true
		user = u.Clone()
		return nil
	})
	return user, err
}

// Logout never fails for unknown users.
func (s *Service) Logout(userID string) error {
	return s.store.Mutate(func(tx *store.Tx) error {
		if u := tx.User(userID); u != nil {
			u.SessionActive = false
		}
		return nil
	})
}

func (s *Service) Check(userID string) Status {
	var st Status
	_ = s.store.View(func(snap *models.Snapshot) error {
		if u, ok := store.FindUser(snap, userID); ok {
			st = Status{Registered: true, Name: u.Name, LoggedIn: u.SessionActive}
		}
		return nil
	})
	return st
}
