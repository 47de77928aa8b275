// Package wallet is the shopper stored-value account. The ledger is append-only and the
// balance is always its replay.
package wallet

import (
	"fmt"
	"math"
	"strings"

	"smart-shopper/internal/models"
	"smart-shopper/internal/store"
	"smart-shopper/internal/utils"
)

const fundingPurpose = "Wallet Funding"

type Ledger struct {
	store *store.Store
}

func NewLedger(s *store.Store) *Ledger {
	return &Ledger{store: s}
}

// Summary is the wallet as returned to the shopper.
type Summary struct {
	UserID       string                     `json:"userId"`
	Balance      int64                      `json:"balance"`
	Transactions []models.WalletLedgerEntry `json:"transactions"`
}

// Fund credits the wallet and returns the new balance.
func (l *Ledger) Fund(userID string, amount int64, method, reference string) (int64, error) {
	if amount <= 0 {
		return 0, models.ErrInvalidAmount
	}
	if strings.TrimSpace(method) == "" {
		method = "Manual"
	}
	if strings.TrimSpace(reference) == "" {
		reference = "N/A"
	}

	var balance int64
	err := l.store.Mutate(func(tx *store.Tx) error {
		u := tx.User(userID)
		if u == nil {
			return models.ErrUserNotFound
		}
		if u.WalletBalance > math.MaxInt64-amount {
			return fmt.Errorf("%w: balance %d cannot take %d more", models.ErrInvalidAmount, u.WalletBalance, amount)
		}
		now := tx.Now()
		u.WalletTransactions = append(u.WalletTransactions, models.WalletLedgerEntry{
			ID:        utils.LedgerID("F", now),
			Type:      models.Credit,
			Amount:    amount,
			Purpose:   fundingPurpose,
			Method:    method,
			Reference: reference,
			Date:      now,
		})
		u.WalletBalance += amount
		balance = u.WalletBalance
		return nil
	})
	return balance, err
}

func (l *Ledger) Wallet(userID string) (Summary, error) {
	var u models.User
	var ok bool
	_ = l.store.View(func(st *models.Snapshot) error {
		u, ok = store.FindUser(st, userID)
		return nil
	})
	if !ok {
		return Summary{}, models.ErrUserNotFound
	}
	entries := u.WalletTransactions
	if entries == nil {
		entries = []models.WalletLedgerEntry{}
	}
	return Summary{UserID: u.UserID, Balance: u.WalletBalance, Transactions: entries}, nil
}

// Replay recomputes a balance from ledger entries, oldest first.
func Replay(entries []models.WalletLedgerEntry) int64 {
	return models.LedgerBalance(entries)
}

// Verify checks that the cached balance still equals the ledger replay.
func (l *Ledger) Verify(userID string) error {
	s, err := l.Wallet(userID)
	if err != nil {
		return err
	}
	if got := Replay(s.Transactions); got != s.Balance {
		return fmt.Errorf("%w: wallet %s balance %d, ledger says %d", models.ErrInvariant, userID, s.Balance, got)
	}
	return nil
}
