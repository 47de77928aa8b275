package admin

import (
	"context"
	"testing"
	"time"

	"smart-shopper/internal/checkout"
	"smart-shopper/internal/database"
	"smart-shopper/internal/models"
	"smart-shopper/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s := store.New(database.Seed(), nil, store.WithVerification(true))
	return NewService(s), s
}

func TestDeleteStaff_SuperAdminIsProtected(t *testing.T) {
	svc, _ := newService(t)
	before := svc.ListStaff()

	err := svc.DeleteStaff(models.SuperAdminUsername)
	require.ErrorIs(t, err, models.ErrProtectedAccount)
	assert.Equal(t, before, svc.ListStaff())
}

func TestStaffLifecycle(t *testing.T) {
	svc, s := newService(t)

	m, err := svc.AddStaff(NewStaff{Username: "bola", Name: "Bola", Role: models.RoleBillingStaff, Password: "till-123"})
	require.NoError(t, err)
	assert.Empty(t, m.PasswordHash)

	snap := s.Snapshot()
	stored, ok := store.FindStaff(&snap, "bola")
	require.True(t, ok)
	assert.NotEmpty(t, stored.PasswordHash)
	for _, listed := range svc.ListStaff() {
		assert.Empty(t, listed.PasswordHash)
	}

	_, err = svc.AddStaff(NewStaff{Username: "bola", Role: models.RoleBillingStaff})
	assert.ErrorIs(t, err, models.ErrDuplicateUsername)
	_, err = svc.AddStaff(NewStaff{Username: "tunde", Role: "JANITOR"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.AddStaff(NewStaff{Username: " ", Role: models.RoleBillingStaff})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	require.NoError(t, svc.DeleteStaff("bola"))
	assert.ErrorIs(t, svc.DeleteStaff("bola"), models.ErrNotFound)
}

func TestUpdateSettings_ShallowMerge(t *testing.T) {
	svc, _ := newService(t)
	name := "Priceless Owerri"

	got, err := svc.UpdateSettings(SettingsPatch{StoreName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.StoreName)
	assert.Equal(t, database.DefaultSettings().OperatingHours, got.OperatingHours)
	assert.Equal(t, got, svc.Settings())
}

func TestOutlets(t *testing.T) {
	svc, _ := newService(t)

	assert.Len(t, svc.Outlets(), 3)
	o, err := svc.Outlet("lagos-lekki")
	require.NoError(t, err)
	assert.Equal(t, "Lagos", o.Location)
	_, err = svc.Outlet("abuja")
	assert.ErrorIs(t, err, models.ErrOutletNotFound)
}

func seedOrders(t *testing.T, s *store.Store) []checkout.Receipt {
	t.Helper()
	engine := checkout.NewEngine(s)
	reqs := []checkout.Request{
		{
			UserID: "u-ada", PaymentMethod: "Card", TotalAmount: 5000,
			Items: []models.OrderLine{{Barcode: "123456", Name: "Nestlé Milo 500g", Price: 2500, Quantity: 2, Category: "Beverage"}},
		},
		{
			UserID: "u-obi", PaymentMethod: "Cash", TotalAmount: 4300,
			Items: []models.OrderLine{
				{Barcode: "234567", Name: "Peak Full Cream Milk", Price: 1800, Quantity: 1, Category: "Dairy"},
				{Barcode: "123456", Name: "Nestlé Milo 500g", Price: 2500, Quantity: 1, Category: "Beverage"},
			},
		},
	}
	var out []checkout.Receipt
	for _, r := range reqs {
		rec, err := engine.Checkout(context.Background(), r)
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestReports(t *testing.T) {
	svc, s := newService(t)
	receipts := seedOrders(t, s)

	stats := svc.Stats()
	assert.EqualValues(t, 9300, stats.TotalSales)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.StaffCount)

	a := svc.Analytics()
	assert.EqualValues(t, 9300, a.TotalSales)
	require.Len(t, a.RecentTransactions, 2)
	assert.Equal(t, receipts[1].OrderID, a.RecentTransactions[0].OrderID)

	top := svc.TopSelling(1)
	require.Len(t, top, 1)
	assert.Equal(t, "123456", top[0].Barcode)
	assert.Equal(t, 3, top[0].Sold)
	assert.EqualValues(t, 7500, top[0].Revenue)

	cats := svc.SalesByCategory()
	require.Len(t, cats.Categories, 2)
	assert.Equal(t, "Beverage", cats.Categories[0].CategoryName)
	assert.EqualValues(t, 7500, cats.Categories[0].Subtotal)
	assert.EqualValues(t, 9300, cats.GrandTotal)

	all := svc.SalesReport(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	assert.EqualValues(t, 9300, all.TotalRevenue)
	assert.EqualValues(t, 2, all.TotalCount)
	none := svc.SalesReport(time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	assert.Zero(t, none.TotalCount)

	overview := svc.Overview()
	assert.EqualValues(t, 2, overview.TotalOrders)
	assert.Equal(t, receipts[1].OrderID, overview.RecentSales[0].OrderID)
}

func TestSearchAndVerifyExit(t *testing.T) {
	svc, s := newService(t)
	receipts := seedOrders(t, s)
	require.NoError(t, s.Mutate(func(tx *store.Tx) error {
		tx.InsertUser(models.User{UserID: "u-ada", Name: "Ada Obi", Email: "ada@example.com", LoginCode: "123456"})
		return nil
	}))

	orders := svc.SearchOrders("")
	require.Len(t, orders, 2)
	assert.Equal(t, receipts[1].OrderID, orders[0].OrderID)
	assert.Len(t, svc.SearchOrders("U-ADA"), 1)

	users := svc.SearchUsers("EXAMPLE.COM")
	require.Len(t, users, 1)
	assert.Empty(t, users[0].LoginCode)
	assert.Empty(t, svc.SearchUsers("zzz"))

	o, err := svc.VerifyExit(" " + receipts[0].OrderID)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, o.Total)
	_, err = svc.VerifyExit("ORD-missing")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}
