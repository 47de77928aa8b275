package checkout

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"smart-shopper/internal/database"
	"smart-shopper/internal/models"
	"smart-shopper/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopper = "tg-1001"

func newStore(t *testing.T, balance int64) *store.Store {
	t.Helper()
	s := store.New(database.Seed(), nil, store.WithVerification(true))
	require.NoError(t, s.Mutate(func(tx *store.Tx) error {
		u := models.User{UserID: shopper, Name: "Ada", WalletTransactions: []models.WalletLedgerEntry{}}
		if balance > 0 {
			u.WalletBalance = balance
			u.WalletTransactions = append(u.WalletTransactions, models.WalletLedgerEntry{
				ID: "seed-credit", Type: models.Credit, Amount: balance, Purpose: "Wallet Funding", Date: tx.Now(),
			})
		}
		tx.InsertUser(u)
		return nil
	}))
	return s
}

func miloRequest(method string) Request {
	return Request{
		UserID:        shopper,
		Items:         []models.OrderLine{{Barcode: "123456", Name: "Nestlé Milo 500g", Price: 2500, Quantity: 1}},
		TotalAmount:   2500,
		PaymentMethod: method,
		OutletID:      "imo-central",
	}
}

func TestAddItem_SameBarcodeMergesLines(t *testing.T) {
	e := NewEngine(newStore(t, 0))

	_, err := e.AddItem(shopper, "123456", 1)
	require.NoError(t, err)
	view, err := e.AddItem(shopper, " 123456 ", 2)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.EqualValues(t, 7500, view.Total)
	assert.Equal(t, CartAccumulating, view.State)
}

func TestAddItem_EdgeCases(t *testing.T) {
	e := NewEngine(newStore(t, 0))

	_, err := e.AddItem("", "123456", 1)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = e.AddItem(shopper, "000", 1)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	view, err := e.AddItem(shopper, "234567", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Items[0].Quantity)
	assert.Equal(t, "Peak Full Cream Milk", view.Items[0].Name)
}

func TestCartAndClear(t *testing.T) {
	e := NewEngine(newStore(t, 0))

	assert.Equal(t, CartEmpty, e.Cart(shopper).State)
	_, err := e.AddItem(shopper, "123456", 1)
	require.NoError(t, err)
	require.NoError(t, e.Clear(shopper))

	view := e.Cart(shopper)
	assert.Equal(t, CartEmpty, view.State)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Total)
}

func TestCheckout_InsufficientBalanceChangesNothing(t *testing.T) {
	s := newStore(t, 0)
	e := NewEngine(s)
	_, err := e.AddItem(shopper, "123456", 1)
	require.NoError(t, err)

	_, err = e.Checkout(context.Background(), miloRequest("Priceless Wallet"))
	require.ErrorIs(t, err, models.ErrInsufficientBalance)

	snap := s.Snapshot()
	assert.Empty(t, snap.Orders)
	assert.Empty(t, snap.Transactions)
	assert.Len(t, snap.Carts[shopper], 1)
	u, _ := store.FindUser(&snap, shopper)
	assert.Zero(t, u.WalletBalance)
	assert.Empty(t, u.WalletTransactions)
}

func TestCheckout_WalletDebitsAndPairsOrder(t *testing.T) {
	s := newStore(t, 5000)
	e := NewEngine(s)
	_, err := e.AddItem(shopper, "123456", 1)
	require.NoError(t, err)

	receipt, err := e.Checkout(context.Background(), miloRequest("wallet"))
	require.NoError(t, err)
	require.NotNil(t, receipt.NewBalance)
	assert.EqualValues(t, 2500, *receipt.NewBalance)
	assert.Contains(t, receipt.OrderID, "ORD-")
	assert.Equal(t, "Priceless Imo Central", receipt.Order.OutletName)

	snap := s.Snapshot()
	require.NoError(t, snap.Verify())
	require.Len(t, snap.Orders, 1)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, snap.Orders[0].OrderID, snap.Transactions[0].OrderID)
	assert.Equal(t, snap.Orders[0].Total, snap.Transactions[0].TotalAmount)
	assert.Empty(t, snap.Carts[shopper])

	u, _ := store.FindUser(&snap, shopper)
	require.Len(t, u.WalletTransactions, 2)
	assert.Equal(t, models.Credit, u.WalletTransactions[0].Type)
	assert.Equal(t, models.Debit, u.WalletTransactions[1].Type)
	assert.EqualValues(t, 2500, u.WalletTransactions[1].Amount)
	assert.Equal(t, models.LedgerBalance(u.WalletTransactions), u.WalletBalance)
}

func TestCheckout_WalletUnknownUser(t *testing.T) {
	e := NewEngine(newStore(t, 0))
	req := miloRequest("Priceless Wallet")
	req.UserID = "ghost"

	_, err := e.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestCheckout_RejectsInconsistentRequests(t *testing.T) {
	e := NewEngine(newStore(t, 5000))

	bad := []Request{
		{UserID: "", Items: miloRequest("").Items, TotalAmount: 2500},
		{UserID: shopper, TotalAmount: 2500},
		{UserID: shopper, Items: miloRequest("").Items},
		{UserID: shopper, Items: miloRequest("").Items, TotalAmount: 2000},
		{UserID: shopper, Items: []models.OrderLine{{Barcode: "123456", Price: 2500}}, TotalAmount: 2500},
	}
	for _, req := range bad {
		_, err := e.Checkout(context.Background(), req)
		assert.ErrorIs(t, err, models.ErrInvalidCheckout)
	}
}

func TestCheckout_CardPaymentWithoutUser(t *testing.T) {
	s := newStore(t, 0)
	e := NewEngine(s)
	req := miloRequest("Card")
	req.UserID = "walk-in"

	receipt, err := e.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, receipt.NewBalance)
	assert.Contains(t, receipt.Order.PaymentRef, "AUTO-")
	assert.Len(t, e.OrdersForUser("walk-in"), 1)
	assert.Len(t, e.TransactionsForUser("walk-in"), 1)
}

type verifierFunc func(ctx context.Context, p Payment) error

func (f verifierFunc) Verify(ctx context.Context, p Payment) error { return f(ctx, p) }

func TestCheckout_PaymentVerifierTimeoutCommitsNothing(t *testing.T) {
	s := newStore(t, 0)
	slow := verifierFunc(func(ctx context.Context, p Payment) error {
		<-ctx.Done()
		return ctx.Err()
	})
	e := NewEngine(s, WithPaymentVerifier(slow, 20*time.Millisecond))
	_, err := e.AddItem(shopper, "123456", 1)
	require.NoError(t, err)

	_, err = e.Checkout(context.Background(), miloRequest("Card"))
	require.ErrorIs(t, err, models.ErrPaymentFailed)

	snap := s.Snapshot()
	assert.Empty(t, snap.Orders)
	assert.Empty(t, snap.Transactions)
	assert.Len(t, snap.Carts[shopper], 1)
}

func TestCheckout_PaymentVerifierRejects(t *testing.T) {
	var seen Payment
	declined := verifierFunc(func(ctx context.Context, p Payment) error {
		seen = p
		return errors.New("card declined")
	})
	e := NewEngine(newStore(t, 0), WithPaymentVerifier(declined, time.Second))

	_, err := e.Checkout(context.Background(), miloRequest("Card"))
	require.ErrorIs(t, err, models.ErrPaymentFailed)
	assert.EqualValues(t, 2500, seen.Amount)
	assert.Equal(t, shopper, seen.UserID)
}

func TestCheckout_WalletSkipsVerifier(t *testing.T) {
	called := false
	v := verifierFunc(func(ctx context.Context, p Payment) error {
		called = true
		return errors.New("should not be asked")
	})
	e := NewEngine(newStore(t, 2500), WithPaymentVerifier(v, time.Second))

	_, err := e.Checkout(context.Background(), miloRequest("Priceless Wallet"))
	require.NoError(t, err)
	assert.False(t, called)
}

func TestReferenceVerifier(t *testing.T) {
	s := newStore(t, 0)
	e := NewEngine(s, WithPaymentVerifier(ReferenceVerifier{}, time.Second))

	receipt, err := e.Checkout(context.Background(), miloRequest("card"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.Order.PaymentRef, "AUTO-"))

	req := miloRequest("Card")
	req.PaymentRef = "PSK-77812"
	receipt, err = e.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "PSK-77812", receipt.Order.PaymentRef)

	req.PaymentRef = "PSK 77812"
	_, err = e.Checkout(context.Background(), req)
	require.ErrorIs(t, err, models.ErrPaymentFailed)
	assert.Len(t, s.Snapshot().Orders, 2)
}

func TestWithPaymentVerifier_ZeroTimeoutKeepsDefault(t *testing.T) {
	ok := verifierFunc(func(ctx context.Context, p Payment) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return ctx.Err()
	})
	e := NewEngine(newStore(t, 0), WithPaymentVerifier(ok, 0))
	assert.Equal(t, 10*time.Second, e.paymentTimeout)

	_, err := e.Checkout(context.Background(), miloRequest("Card"))
	require.NoError(t, err)
}

func TestCheckout_RejectsOverflowingLineTotals(t *testing.T) {
	s := newStore(t, 0)
	e := NewEngine(s)

	// 2^62 * 4 wraps to 0 and 0 + 2500 would match the stated total.
	req := miloRequest("Card")
	req.Items = append(req.Items, models.OrderLine{Barcode: "999", Name: "Gold bar", Price: math.MaxInt64/2 + 1, Quantity: 4})

	_, err := e.Checkout(context.Background(), req)
	require.ErrorIs(t, err, models.ErrInvalidCheckout)
	assert.Empty(t, s.Snapshot().Orders)
}
