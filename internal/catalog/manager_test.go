package catalog

import (
	"bytes"
	"strings"
	"testing"

	"smart-shopper/internal/database"
	"smart-shopper/internal/models"
	"smart-shopper/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	s := store.New(database.Seed(), nil, store.WithVerification(true))
	return NewManager(s), s
}

func price(v int64) *int64 { return &v }

func TestCreate_TrimsAndRejectsDuplicates(t *testing.T) {
	m, _ := newManager(t)

	p, err := m.Create(models.Product{Barcode: "  999  ", Name: "Indomie", Price: 300})
	require.NoError(t, err)
	assert.Equal(t, "999", p.Barcode)
	assert.False(t, p.CreatedAt.IsZero())
	assert.NotNil(t, p.Images)

	_, err = m.Create(models.Product{Barcode: "999", Name: "Other", Price: 1})
	assert.ErrorIs(t, err, models.ErrDuplicateBarcode)

	_, err = m.Create(models.Product{Barcode: " 123456", Name: "Fake Milo", Price: 1})
	assert.ErrorIs(t, err, models.ErrDuplicateBarcode)
	assert.Len(t, m.List(), 3)
}

func TestCreate_ValidatesInput(t *testing.T) {
	m, _ := newManager(t)

	cases := []models.Product{
		{Barcode: "", Name: "x", Price: 1},
		{Barcode: "1", Name: "   ", Price: 1},
		{Barcode: "1", Name: "x", Price: -5},
	}
	for _, p := range cases {
		_, err := m.Create(p)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
}

func TestUpdate_MergesAndRenames(t *testing.T) {
	m, _ := newManager(t)

	updated, err := m.Update("123456", ProductPatch{Price: price(2700)})
	require.NoError(t, err)
	assert.EqualValues(t, 2700, updated.Price)
	assert.Equal(t, "Beverage", updated.Category)
	require.NotNil(t, updated.UpdatedAt)

	rename := "654321"
	_, err = m.Update("123456", ProductPatch{Barcode: &rename})
	require.NoError(t, err)
	_, err = m.Get("123456")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	got, err := m.Get("654321")
	require.NoError(t, err)
	assert.EqualValues(t, 2700, got.Price)

	clash := " 234567 "
	_, err = m.Update("654321", ProductPatch{Barcode: &clash})
	assert.ErrorIs(t, err, models.ErrDuplicateBarcode)

	_, err = m.Update("nope", ProductPatch{Price: price(1)})
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestDelete(t *testing.T) {
	m, _ := newManager(t)

	removed, err := m.Delete(" 234567")
	require.NoError(t, err)
	assert.Equal(t, "234567", removed.Barcode)
	assert.Len(t, m.List(), 1)

	_, err = m.Delete("234567")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestBulkUpsert_SkipsIncompleteAndKeepsBarcodesUnique(t *testing.T) {
	m, s := newManager(t)

	res, err := m.BulkUpsert([]BulkRecord{
		{Barcode: "123456", Name: "Milo Refill", Price: price(2600)},
		{Barcode: "500", Name: "Sugar", Price: price(0)},
		{Barcode: " 500 ", Name: "Sugar 1kg", Price: price(800)},
		{Barcode: "501", Name: "No price"},
		{Barcode: "", Name: "No barcode", Price: price(10)},
		{Barcode: "502", Name: "Negative", Price: price(-1)},
	})
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Added: 1, Updated: 2, Skipped: 3}, res)

	milo, err := m.Get("123456")
	require.NoError(t, err)
	assert.Equal(t, "Milo Refill", milo.Name)
	assert.Equal(t, "Beverage", milo.Category)

	sugar, err := m.Get("500")
	require.NoError(t, err)
	assert.EqualValues(t, 800, sugar.Price)
	assert.Equal(t, "Other", sugar.Category)

	snap := s.Snapshot()
	require.NoError(t, snap.Verify())
	assert.Len(t, snap.Products, 3)
}

func TestAddImage(t *testing.T) {
	m, _ := newManager(t)

	n, err := m.AddImage("123456", "https://cdn.example/milo-2.jpg")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = m.AddImage("nope", "x")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	_, err = m.AddImage("123456", " ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	records, err := ParseSheet("template.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "123456789", records[0].Barcode)
	require.NotNil(t, records[0].Price)
	assert.EqualValues(t, 1500, *records[0].Price)
}

func TestParseSheet_CSV(t *testing.T) {
	in := "Name,BARCODE,price,Category\n" +
		"Golden Penny Semovita,111,2200.00,Grains\n" +
		"Missing price,112,,Grains\n" +
		",,,\n"

	records, err := ParseSheet("stock.CSV", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "111", records[0].Barcode)
	assert.EqualValues(t, 2200, *records[0].Price)
	assert.Nil(t, records[1].Price)

	_, err = ParseSheet("stock.pdf", strings.NewReader(in))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = ParseSheet("stock.csv", strings.NewReader("name,price\nx,1\n"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
