package admin

import (
	"sort"
	"strings"
	"time"

	"smart-shopper/internal/models"
	"smart-shopper/internal/store"

	"github.com/samber/lo"
)

// Stats is the super admin dashboard header, summed over orders.
type Stats struct {
	TotalSales  int64 `json:"totalSales"`
	TotalOrders int   `json:"totalOrders"`
	StaffCount  int   `json:"staffCount"`
	UserCount   int   `json:"userCount"`
}

// Analytics is the billing view, summed over transactions.
type Analytics struct {
	TotalSales         int64                `json:"totalSales"`
	TotalOrders        int                  `json:"totalOrders"`
	TotalProducts      int                  `json:"totalProducts"`
	TotalUsers         int                  `json:"totalUsers"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
}

// SalesReportResult holds revenue and order count for a date range
type SalesReportResult struct {
	TotalRevenue int64 `json:"total_revenue"`
	TotalCount   int64 `json:"total_count"`
}

type TopSeller struct {
	Barcode     string `json:"barcode"`
	ProductName string `json:"product_name"`
	Sold        int    `json:"sold"`
	Revenue     int64  `json:"revenue"`
}

// ReportData is the all-time overview
type ReportData struct {
	TotalRevenue int64          `json:"total_revenue"`
	TotalOrders  int64          `json:"total_orders"`
	TopSelling   []TopSeller    `json:"top_selling"`
	RecentSales  []models.Order `json:"recent_sales"`
}

// CategoryItem is one product row inside a category group
type CategoryItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Revenue  int64  `json:"revenue"`
}

// CategoryGroup represents one category with its products (e.g., "Dairy")
type CategoryGroup struct {
	CategoryName string         `json:"category_name"`
	Items        []CategoryItem `json:"items"`
	Subtotal     int64          `json:"subtotal"`
}

type CategoryReport struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal int64           `json:"grand_total"`
}

func (s *Service) Stats() Stats {
	var out Stats
	_ = s.store.View(func(st *models.Snapshot) error {
		out = Stats{
			TotalSales:  lo.SumBy(st.Orders, func(o models.Order) int64 { return o.Total }),
			TotalOrders: len(st.Orders),
			StaffCount:  len(st.Staff),
			UserCount:   len(st.Users),
		}
		return nil
	})
	return out
}

func (s *Service) Analytics() Analytics {
	var out Analytics
	_ = s.store.View(func(st *models.Snapshot) error {
		out = Analytics{
			TotalSales:         lo.SumBy(st.Transactions, func(t models.Transaction) int64 { return t.TotalAmount }),
			TotalOrders:        len(st.Transactions),
			TotalProducts:      len(st.Products),
			TotalUsers:         len(st.Users),
			RecentTransactions: newestFirst(st.Transactions, 10),
		}
		return nil
	})
	return out
}

// SalesReport calculates sales within a specific date range, both ends inclusive
func (s *Service) SalesReport(start, end time.Time) SalesReportResult {
	var out SalesReportResult
	_ = s.store.View(func(st *models.Snapshot) error {
		inRange := lo.Filter(st.Orders, func(o models.Order, _ int) bool {
			return !o.CreatedAt.Before(start) && !o.CreatedAt.After(end)
		})
		out = SalesReportResult{
			TotalRevenue: lo.SumBy(inRange, func(o models.Order) int64 { return o.Total }),
			TotalCount:   int64(len(inRange)),
		}
		return nil
	})
	return out
}

// TopSelling ranks products by units sold across all orders.
func (s *Service) TopSelling(n int) []TopSeller {
	var out []TopSeller
	_ = s.store.View(func(st *models.Snapshot) error {
		out = topSelling(st.Orders, n)
		return nil
	})
	return out
}

func (s *Service) Overview() ReportData {
	var out ReportData
	_ = s.store.View(func(st *models.Snapshot) error {
		out = ReportData{
			TotalRevenue: lo.SumBy(st.Orders, func(o models.Order) int64 { return o.Total }),
			TotalOrders:  int64(len(st.Orders)),
			TopSelling:   topSelling(st.Orders, 5),
			RecentSales:  lo.Map(newestFirst(st.Orders, 10), func(o models.Order, _ int) models.Order { return o.Clone() }),
		}
		return nil
	})
	return out
}

// SalesByCategory groups sold lines by their category at purchase time.
func (s *Service) SalesByCategory() CategoryReport {
	var lines []models.OrderLine
	_ = s.store.View(func(st *models.Snapshot) error {
		lines = lo.FlatMap(st.Orders, func(o models.Order, _ int) []models.OrderLine {
			return append([]models.OrderLine(nil), o.Items...)
		})
		return nil
	})

	report := CategoryReport{Categories: []CategoryGroup{}}
	byCategory := lo.GroupBy(lines, func(l models.OrderLine) string {
		if l.Category == "" {
			return "Uncategorized"
		}
		return l.Category
	})
	names := lo.Keys(byCategory)
	sort.Strings(names)

	for _, name := range names {
		group := CategoryGroup{CategoryName: name, Items: []CategoryItem{}}
		byName := lo.GroupBy(byCategory[name], func(l models.OrderLine) string { return l.Name })
		products := lo.Keys(byName)
		sort.Strings(products)
		for _, product := range products {
			item := CategoryItem{Name: product}
			for _, l := range byName[product] {
				item.Quantity += l.Quantity
				item.Revenue += l.Price * int64(l.Quantity)
			}
			group.Items = append(group.Items, item)
			group.Subtotal += item.Revenue
		}
		report.Categories = append(report.Categories, group)
		report.GrandTotal += group.Subtotal
	}
	return report
}

// SearchOrders matches order id (case-insensitive) or user id, newest first.
func (s *Service) SearchOrders(q string) []models.Order {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []models.Order
	_ = s.store.View(func(st *models.Snapshot) error {
		matches := lo.Filter(st.Orders, func(o models.Order, _ int) bool {
			return q == "" || strings.Contains(strings.ToLower(o.OrderID), q) || strings.Contains(strings.ToLower(o.UserID), q)
		})
		out = lo.Map(newestFirst(matches, 0), func(o models.Order, _ int) models.Order { return o.Clone() })
		return nil
	})
	return out
}

// SearchUsers matches name, user id or email. Login codes are blanked.
func (s *Service) SearchUsers(q string) []models.User {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []models.User
	_ = s.store.View(func(st *models.Snapshot) error {
		out = lo.FilterMap(st.Users, func(u models.User, _ int) (models.User, bool) {
			if q != "" &&
				!strings.Contains(strings.ToLower(u.Name), q) &&
				!strings.Contains(strings.ToLower(u.UserID), q) &&
				!strings.Contains(strings.ToLower(u.Email), q) {
				return models.User{}, false
			}
			u = u.Clone()
			u.LoginCode = ""
			return u, true
		})
		return nil
	})
	return out
}

// VerifyExit looks up the order behind an exit QR.
func (s *Service) VerifyExit(orderID string) (models.Order, error) {
	var o models.Order
	var ok bool
	_ = s.store.View(func(st *models.Snapshot) error {
		o, ok = store.FindOrder(st, strings.TrimSpace(orderID))
		return nil
	})
	if !ok {
		return models.Order{}, models.ErrOrderNotFound
	}
	return o, nil
}

func topSelling(orders []models.Order, n int) []TopSeller {
	agg := map[string]*TopSeller{}
	for _, o := range orders {
		for _, l := range o.Items {
			key := models.NormalizeBarcode(l.Barcode)
			t, ok := agg[key]
			if !ok {
				t = &TopSeller{Barcode: key, ProductName: l.Name}
				agg[key] = t
			}
			t.Sold += l.Quantity
			t.Revenue += l.Price * int64(l.Quantity)
		}
	}
	out := lo.Map(lo.Values(agg), func(t *TopSeller, _ int) TopSeller { return *t })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sold != out[j].Sold {
			return out[i].Sold > out[j].Sold
		}
		return out[i].Barcode < out[j].Barcode
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// newestFirst copies the last n items in reverse order; n <= 0 means all.
func newestFirst[T any](items []T, n int) []T {
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	out := make([]T, 0, n)
	for i := len(items) - 1; i >= len(items)-n; i-- {
		out = append(out, items[i])
	}
	return out
}
