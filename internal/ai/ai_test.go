package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"smart-shopper/internal/admin"
	"smart-shopper/internal/catalog"
	"smart-shopper/internal/database"
	"smart-shopper/internal/models"
	"smart-shopper/internal/store"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text   string
	err    error
	format string
	wait   bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, image []byte, format string) (string, error) {
	f.format = format
	if f.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

var photo = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not really a png"))

func newCatalog() *catalog.Manager {
	return catalog.NewManager(store.New(database.Seed(), nil, store.WithVerification(true)))
}

func TestIdentify_MatchesInventoryNames(t *testing.T) {
	gen := &fakeGenerator{text: "I can see nestlé milo 500g on the shelf"}
	v := NewVision(gen, newCatalog(), time.Second)

	found, err := v.Identify(context.Background(), photo)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "123456", found[0].Barcode)
	assert.Equal(t, "png", gen.format)
}

func TestIdentify_NoneAnswer(t *testing.T) {
	v := NewVision(&fakeGenerator{text: "None"}, newCatalog(), time.Second)

	found, err := v.Identify(context.Background(), photo)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestIdentify_FallsBackOnErrorAndTimeout(t *testing.T) {
	for _, gen := range []Generator{
		nil,
		&fakeGenerator{err: errors.New("quota exceeded")},
		&fakeGenerator{wait: true},
	} {
		v := NewVision(gen, newCatalog(), 10*time.Millisecond)
		v.pick = func(n int) int { return n - 1 }

		found, err := v.Identify(context.Background(), photo)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "234567", found[0].Barcode)
	}
}

func TestIdentify_RejectsMissingImage(t *testing.T) {
	v := NewVision(nil, newCatalog(), time.Second)

	_, err := v.Identify(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = v.Identify(context.Background(), "data:image/jpeg;base64,@@@")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestExplore(t *testing.T) {
	_, err := NewVision(nil, newCatalog(), time.Second).Explore(context.Background(), photo)
	require.ErrorIs(t, err, models.ErrAINotConfigured)

	gen := &fakeGenerator{text: "```json\n{\"barcode\":\"6154000\",\"name\":\"Golden Penny Spaghetti\",\"category\":\"Grains\",\"description\":\"500g pack\"}\n```"}
	draft, err := NewVision(gen, newCatalog(), time.Second).Explore(context.Background(), photo)
	require.NoError(t, err)
	assert.Equal(t, ProductDraft{Barcode: "6154000", Name: "Golden Penny Spaghetti", Category: "Grains", Description: "500g pack"}, draft)

	_, err = NewVision(&fakeGenerator{text: "sorry"}, newCatalog(), time.Second).Explore(context.Background(), photo)
	assert.Error(t, err)
}

func newAssistant() (*Assistant, *store.Store) {
	s := store.New(database.Seed(), nil, store.WithVerification(true))
	return NewAssistant(nil, "gemini-test", time.Second, catalog.NewManager(s), admin.NewService(s)), s
}

func TestAsk_WithoutClient(t *testing.T) {
	a, _ := newAssistant()
	_, err := a.Ask(context.Background(), "How much is Milo?")
	assert.ErrorIs(t, err, models.ErrAINotConfigured)
}

func TestExecuteTool(t *testing.T) {
	a, s := newAssistant()

	inv := a.executeTool(genai.FunctionCall{Name: "check_inventory"})
	assert.Contains(t, inv["inventory"], "Peak Full Cream Milk")

	res := a.executeTool(genai.FunctionCall{Name: "update_product_price", Args: map[string]any{"barcode": "123456", "new_price": float64(2600)}})
	assert.Equal(t, "Success", res["status"])
	snap := s.Snapshot()
	milo, _ := store.FindProduct(&snap, "123456")
	assert.EqualValues(t, 2600, milo.Price)

	res = a.executeTool(genai.FunctionCall{Name: "update_product_price", Args: map[string]any{"barcode": "nope", "new_price": float64(1)}})
	assert.Contains(t, res["status"], "not found")

	res = a.executeTool(genai.FunctionCall{Name: "create_product", Args: map[string]any{
		"barcode": "777", "name": "Indomie", "price": float64(300), "category": "Food",
	}})
	assert.Equal(t, "created", res["status"])

	res = a.executeTool(genai.FunctionCall{Name: "get_sales_report", Args: map[string]any{"start_date": "2025-01-01", "end_date": "2025-01-31"}})
	assert.EqualValues(t, 0, res["revenue"])

	res = a.executeTool(genai.FunctionCall{Name: "get_sales_report", Args: map[string]any{"start_date": "yesterday", "end_date": "today"}})
	assert.Contains(t, res["status"], "YYYY-MM-DD")
}
