package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smart-shopper/internal/admin"
	"smart-shopper/internal/catalog"
	applog "smart-shopper/internal/log"
	"smart-shopper/internal/models"

	"github.com/google/generative-ai-go/genai"
)

// maxToolRounds bounds how many function calls one question may chain.
const maxToolRounds = 4

// Assistant answers inventory and sales questions for the super admin by letting Gemini
// call into the catalog and reports.
type Assistant struct {
	client  *genai.Client // nil when no API key is configured
	model   string
	timeout time.Duration
	catalog *catalog.Manager
	reports *admin.Service
	now     func() time.Time
}

func NewAssistant(client *genai.Client, model string, timeout time.Duration, c *catalog.Manager, r *admin.Service) *Assistant {
	return &Assistant{client: client, model: model, timeout: timeout, catalog: c, reports: r, now: time.Now}
}

var assistantTools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "check_inventory",
				Description: "Get the full inventory list. Use this to find ANY product details like Barcode, Name, Price or Category.",
			},
			{
				Name:        "update_product_price",
				Description: "Update the price of a specific product using its barcode",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"barcode":   {Type: genai.TypeString, Description: "Barcode of the product"},
						"new_price": {Type: genai.TypeInteger, Description: "New price in Naira"},
					},
					Required: []string{"barcode", "new_price"},
				},
			},
			{
				Name:        "create_product",
				Description: "Add a new product to the inventory",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"barcode":  {Type: genai.TypeString, Description: "Barcode of the product"},
						"name":     {Type: genai.TypeString, Description: "Name of the product"},
						"price":    {Type: genai.TypeInteger, Description: "Price of the product"},
						"category": {Type: genai.TypeString, Description: "Category (Dairy, Beverage, etc)"},
					},
					Required: []string{"barcode", "name", "price", "category"},
				},
			},
			{
				Name:        "get_sales_report",
				Description: "Get total sales revenue for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
		},
	},
}

// Ask runs one question through the model, executing any tool calls it makes.
func (a *Assistant) Ask(ctx context.Context, message string) (string, error) {
	if a.client == nil {
		return "", models.ErrAINotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	model := a.client.GenerativeModel(a.model)
	model.Tools = assistantTools
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(a.systemPrompt())}}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}
		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: a.executeTool(call)})
		}
		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", err
		}
	}

	if text := firstText(resp); text != "" {
		return text, nil
	}
	return "I completed the action.", nil
}

func (a *Assistant) systemPrompt() string {
	return fmt.Sprintf(`Today is %s. You are the inventory assistant of a supermarket.

RULES:
1. UPDATE: If a user asks to update a product by NAME, do NOT ask them for the barcode. Instead:
   - Call 'check_inventory' to find the barcode.
   - Call 'update_product_price' using that barcode.
2. READ: If a user asks for PRICE or DETAILS of a product, call 'check_inventory' and answer from it.
3. SALES: If the user asks for sales/revenue, use 'get_sales_report'.
Prices are whole Naira.`, a.now().Format("2006-01-02"))
}

// executeTool runs one model-requested call and returns the payload sent back to the model.
func (a *Assistant) executeTool(call genai.FunctionCall) map[string]any {
	switch call.Name {
	case "check_inventory":
		type simpleProduct struct {
			Barcode  string `json:"barcode"`
			Name     string `json:"name"`
			Price    int64  `json:"price"`
			Category string `json:"category"`
		}
		var list []simpleProduct
		for _, p := range a.catalog.List() {
			list = append(list, simpleProduct{Barcode: p.Barcode, Name: p.Name, Price: p.Price, Category: p.Category})
		}
		b, _ := json.Marshal(list)
		return map[string]any{"inventory": string(b)}

	case "update_product_price":
		barcode, _ := call.Args["barcode"].(string)
		price, ok := argInt(call.Args["new_price"])
		if !ok {
			return map[string]any{"status": "new_price must be a number"}
		}
		p, err := a.catalog.Update(barcode, catalog.ProductPatch{Price: &price})
		if err != nil {
			return map[string]any{"status": err.Error()}
		}
		applog.Audit(nil, "assistant.update_price", map[string]any{"barcode": p.Barcode, "price": p.Price})
		return map[string]any{"status": "Success", "new_price": p.Price}

	case "create_product":
		name, _ := call.Args["name"].(string)
		barcode, _ := call.Args["barcode"].(string)
		category, _ := call.Args["category"].(string)
		price, ok := argInt(call.Args["price"])
		if !ok {
			return map[string]any{"status": "price must be a number"}
		}
		p, err := a.catalog.Create(models.Product{Barcode: barcode, Name: name, Price: price, Category: category})
		if err != nil {
			return map[string]any{"status": err.Error()}
		}
		applog.Audit(nil, "assistant.create_product", map[string]any{"barcode": p.Barcode})
		return map[string]any{"status": "created", "barcode": p.Barcode}

	case "get_sales_report":
		startStr, _ := call.Args["start_date"].(string)
		endStr, _ := call.Args["end_date"].(string)
		start, err1 := time.Parse("2006-01-02", startStr)
		end, err2 := time.Parse("2006-01-02", endStr)
		if err1 != nil || err2 != nil {
			return map[string]any{"status": "Error: Dates must be in YYYY-MM-DD format."}
		}
		end = end.Add(24*time.Hour - time.Nanosecond)

		report := a.reports.SalesReport(start, end)
		return map[string]any{"revenue": report.TotalRevenue, "sales_count": report.TotalCount}
	}
	return map[string]any{"status": "unknown tool " + call.Name}
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if fc, ok := part.(genai.FunctionCall); ok {
				calls = append(calls, fc)
			}
		}
	}
	return calls
}

// JSON numbers arrive as float64.
func argInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
