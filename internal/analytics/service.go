package analytics

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"cine-storefront/internal/models"
)

type DBLayer interface {
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetSellers(ctx context.Context) ([]models.Seller, error)
}

// Service handles analytics operations
type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

// Dashboard is the admin summary. Cancelled orders never count toward revenue or tickets.
type Dashboard struct {
	TotalRevenue    decimal.Decimal     `json:"total_revenue"`
	TicketsIssued   int                 `json:"tickets_issued"`
	Orders          int                 `json:"orders"`
	CheckedIn       int                 `json:"checked_in"`
	Cancelled       int                 `json:"cancelled"`
	AwaitingCheckin int                 `json:"awaiting_checkin"`
	DailySales      []DailySalesMetrics `json:"daily_sales"`
}

// DailySalesMetrics contains metrics for a single day
type DailySalesMetrics struct {
	Date        string          `json:"date"`
	Revenue     decimal.Decimal `json:"revenue"`
	TicketsSold int             `json:"tickets_sold"`
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.DB.GetOrders(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{TotalRevenue: decimal.Zero, DailySales: []DailySalesMetrics{}}
	byDay := map[string]int{}

	for _, o := range orders {
		d.Orders++
		switch o.Status {
		case models.StatusCancelled:
			d.Cancelled++
			continue
		case models.StatusUsed:
			d.CheckedIn++
		case models.StatusPaid:
			d.AwaitingCheckin++
		}

		d.TotalRevenue = d.TotalRevenue.Add(o.Price)
		d.TicketsIssued += o.Tickets

		day := o.CreatedAt.UTC().Format("2006-01-02")
		idx, ok := byDay[day]
		if !ok {
			idx = len(d.DailySales)
			byDay[day] = idx
			d.DailySales = append(d.DailySales, DailySalesMetrics{Date: day, Revenue: decimal.Zero})
		}
		d.DailySales[idx].Revenue = d.DailySales[idx].Revenue.Add(o.Price)
		d.DailySales[idx].TicketsSold += o.Tickets
	}

	sort.Slice(d.DailySales, func(i, j int) bool { return d.DailySales[i].Date < d.DailySales[j].Date })
	return d, nil
}

// Leaderboard ranks every seller, active or not, by non-cancelled sales and then revenue.
// Ties fall back to the seller name so the order is stable.
func (s *Service) Leaderboard(ctx context.Context) ([]models.SellerRanking, error) {
	sellers, err := s.DB.GetSellers(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.DB.GetOrders(ctx)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*models.SellerRanking, len(sellers))
	ranking := make([]models.SellerRanking, 0, len(sellers))
	for _, seller := range sellers {
		rows[seller.ID] = &models.SellerRanking{
			SellerID: seller.ID,
			Name:     seller.Name,
			Active:   seller.Active,
			Revenue:  decimal.Zero,
		}
	}

	for _, o := range orders {
		if o.SellerID == nil || o.Status == models.StatusCancelled {
			continue
		}
		row, ok := rows[*o.SellerID]
		if !ok {
			continue
		}
		row.Sales++
		row.Revenue = row.Revenue.Add(o.Price)
	}

	for _, row := range rows {
		ranking = append(ranking, *row)
	}
	sort.Slice(ranking, func(i, j int) bool {
		a, b := ranking[i], ranking[j]
		if a.Sales != b.Sales {
			return a.Sales > b.Sales
		}
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.SellerID < b.SellerID
	})
	for i := range ranking {
		ranking[i].Position = i + 1
	}
	return ranking, nil
}
