package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	applog "smart-shopper/internal/log"
	"smart-shopper/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator answers a prompt about one image.
type Generator interface {
	Generate(ctx context.Context, prompt string, image []byte, format string) (string, error)
}

// NewClient opens the shared Gemini client. Callers close it on shutdown.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, option.WithAPIKey(apiKey))
}

// GeminiGenerator sends single-turn multimodal prompts.
type GeminiGenerator struct {
	Client *genai.Client
	Model  string
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, image []byte, format string) (string, error) {
	model := g.Client.GenerativeModel(g.Model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt), genai.ImageData(format, image))
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}

// Inventory is the slice of the catalog vision needs.
type Inventory interface {
	List() []models.Product
}

// ProductDraft prefills the inventory form from a photo.
type ProductDraft struct {
	Barcode     string `json:"barcode"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type Vision struct {
	gen       Generator // nil when no API key is configured
	inventory Inventory
	timeout   time.Duration
	pick      func(n int) int
}

func NewVision(gen Generator, inventory Inventory, timeout time.Duration) *Vision {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Vision{gen: gen, inventory: inventory, timeout: timeout, pick: rand.IntN}
}

// Identify names catalog products seen in the image. Without a model, or when the model
// call fails, it falls back to one random product that has images.
func (v *Vision) Identify(ctx context.Context, image string) ([]models.Product, error) {
	data, format, err := decodeImage(image)
	if err != nil {
		return nil, err
	}
	products := v.inventory.List()

	if v.gen != nil {
		names := make([]string, len(products))
		for i, p := range products {
			names[i] = p.Name
		}
		prompt := fmt.Sprintf(`Identify products in this image. We have these in inventory: [%s].
Only return product names from this list that you ARE SURE you see.
Return only the names, comma separated. If none found, return "None".`, strings.Join(names, ", "))

		ctx, cancel := context.WithTimeout(ctx, v.timeout)
		text, err := v.gen.Generate(ctx, prompt, data, format)
		cancel()
		if err == nil {
			applog.Info(nil, "vision.identify", map[string]any{"answer": text})
			return matchNames(products, text), nil
		}
		applog.Error(nil, "vision.identify", err, nil)
	}

	var candidates []models.Product
	for _, p := range products {
		if len(p.Images) > 0 {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return []models.Product{}, nil
	}
	return []models.Product{candidates[v.pick(len(candidates))]}, nil
}

// Explore asks the model for a product draft. There is no fallback.
func (v *Vision) Explore(ctx context.Context, image string) (ProductDraft, error) {
	if v.gen == nil {
		return ProductDraft{}, models.ErrAINotConfigured
	}
	data, format, err := decodeImage(image)
	if err != nil {
		return ProductDraft{}, err
	}

	prompt := `Act as a retail expert. Look at this product image.
1. Extract the barcode if clearly visible.
2. Identify the full product name.
3. Categorize it (e.g., Dairy, Beverage, Household, etc.).
4. Provide a brief description.

Return the result strictly as a JSON object:
{"barcode": "string", "name": "string", "category": "string", "description": "string"}`

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	text, err := v.gen.Generate(ctx, prompt, data, format)
	if err != nil {
		return ProductDraft{}, fmt.Errorf("ai recognition failed: %w", err)
	}

	var draft ProductDraft
	if err := json.Unmarshal([]byte(stripFences(text)), &draft); err != nil {
		return ProductDraft{}, fmt.Errorf("ai recognition failed: %w", err)
	}
	return draft, nil
}

func matchNames(products []models.Product, text string) []models.Product {
	answer := strings.ToLower(text)
	out := []models.Product{}
	if strings.TrimSpace(answer) == "" || strings.Contains(answer, "none") {
		return out
	}
	for _, p := range products {
		if p.Name != "" && strings.Contains(answer, strings.ToLower(p.Name)) {
			out = append(out, p)
		}
	}
	return out
}

// decodeImage accepts a data URL ("data:image/png;base64,...") or bare base64.
func decodeImage(image string) ([]byte, string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, "", fmt.Errorf("%w: no image provided", models.ErrInvalidInput)
	}
	format := "jpeg"
	payload := image
	if header, rest, ok := strings.Cut(image, ","); ok {
		payload = rest
		if mime, _, ok := strings.Cut(strings.TrimPrefix(header, "data:"), ";"); ok {
			if f, ok := strings.CutPrefix(mime, "image/"); ok && f != "" {
				format = f
			}
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: image is not valid base64", models.ErrInvalidInput)
	}
	return data, format, nil
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt)
			}
		}
	}
	return ""
}
