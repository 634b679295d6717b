package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"webstore/internal/models"
	"webstore/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	dateLayout          = "2006-01-02"
	DefaultTopSellerCap = 10
)

type DailyEarnings struct {
	Date          string          `json:"date"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	TotalOrders   int64           `json:"total_orders"`
	Orders        []models.Order  `json:"orders"`
}

type DayTotals struct {
	Earnings decimal.Decimal `json:"earnings"`
	Orders   int64           `json:"orders"`
}

type MonthlyEarnings struct {
	Year           int                  `json:"year"`
	Month          int                  `json:"month"`
	TotalEarnings  decimal.Decimal      `json:"total_earnings"`
	TotalOrders    int64                `json:"total_orders"`
	DailyBreakdown map[string]DayTotals `json:"daily_breakdown"`
}

type RangeEarnings struct {
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	TotalOrders   int64           `json:"total_orders"`
}

type ReportService interface {
	DailyEarnings(ctx context.Context, date string) (*DailyEarnings, error)
	MonthlyEarnings(ctx context.Context, year, month *int) (*MonthlyEarnings, error)
	RangeEarnings(ctx context.Context, start, end string) (*RangeEarnings, error)
	TopSellingProducts(ctx context.Context, limit int) ([]models.ProductSales, error)
	SalesByCategory(ctx context.Context) ([]models.DimensionSales, error)
	SalesByBrand(ctx context.Context) ([]models.DimensionSales, error)
	OrderStatusSummary(ctx context.Context) (map[models.OrderStatus]models.StatusTotals, error)
}

type reportService struct {
	store    repository.Store
	cache    ReportCache
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func NewReportService(store repository.Store, cache ReportCache, location *time.Location, logger *zap.Logger) ReportService {
	if cache == nil {
		cache = NoopCache()
	}
	if location == nil {
		location = time.UTC
	}
	return &reportService{
		store:    store,
		cache:    cache,
		location: location,
		logger:   logger.Named("reports"),
		now:      time.Now,
	}
}

func (s *reportService) today() time.Time {
	return s.now().In(s.location)
}

// DailyEarnings totals committed orders created on date (YYYY-MM-DD, today
// when empty).
func (s *reportService) DailyEarnings(ctx context.Context, date string) (report *DailyEarnings, err error) {
	day := s.today()
	if date != "" {
		if day, err = s.parseDate(date); err != nil {
			return nil, err
		}
	}
	start, end := s.dayBounds(day)
	key := "daily:" + start.Format(dateLayout)

	return cached(ctx, s, key, func(ctx context.Context) (*DailyEarnings, error) {
		orders, err := s.store.Reports().GetOrdersBetween(ctx, start, end, models.CommittedStatuses)
		if err != nil {
			return nil, err
		}
		total := decimal.Zero
		for _, o := range orders {
			total = total.Add(o.TotalAmount)
		}
		return &DailyEarnings{
			Date:          start.Format(dateLayout),
			TotalEarnings: total.Round(2),
			TotalOrders:   int64(len(orders)),
			Orders:        orders,
		}, nil
	})
}

// MonthlyEarnings totals a calendar month with a per-day breakdown. A nil
// year or month defaults to the current one.
func (s *reportService) MonthlyEarnings(ctx context.Context, yearArg, monthArg *int) (*MonthlyEarnings, error) {
	today := s.today()
	year, month := today.Year(), int(today.Month())
	if yearArg != nil {
		year = *yearArg
	}
	if monthArg != nil {
		month = *monthArg
	}
	if month < 1 || month > 12 {
		return nil, invalidArgument("Invalid month. Use 1-12")
	}
	if year < 1 || year > 9999 {
		return nil, invalidArgument("Invalid year %d", year)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.location)
	end := start.AddDate(0, 1, 0).Add(-time.Microsecond)
	key := fmt.Sprintf("monthly:%04d-%02d", year, month)

	return cached(ctx, s, key, func(ctx context.Context) (*MonthlyEarnings, error) {
		orders, err := s.store.Reports().GetOrdersBetween(ctx, start, end, models.CommittedStatuses)
		if err != nil {
			return nil, err
		}
		report := &MonthlyEarnings{
			Year:           year,
			Month:          month,
			TotalEarnings:  decimal.Zero,
			DailyBreakdown: map[string]DayTotals{},
		}
		for _, o := range orders {
			day := o.CreatedAt.In(s.location).Format(dateLayout)
			totals := report.DailyBreakdown[day]
			totals.Earnings = totals.Earnings.Add(o.TotalAmount)
			totals.Orders++
			report.DailyBreakdown[day] = totals
			report.TotalEarnings = report.TotalEarnings.Add(o.TotalAmount)
			report.TotalOrders++
		}
		for day, totals := range report.DailyBreakdown {
			totals.Earnings = totals.Earnings.Round(2)
			report.DailyBreakdown[day] = totals
		}
		report.TotalEarnings = report.TotalEarnings.Round(2)
		return report, nil
	})
}

// RangeEarnings totals committed orders between two inclusive dates.
func (s *reportService) RangeEarnings(ctx context.Context, startDate, endDate string) (*RangeEarnings, error) {
	if startDate == "" || endDate == "" {
		return nil, invalidArgument("Missing start_date or end_date parameters")
	}
	first, err := s.parseDate(startDate)
	if err != nil {
		return nil, err
	}
	last, err := s.parseDate(endDate)
	if err != nil {
		return nil, err
	}
	start, _ := s.dayBounds(first)
	_, end := s.dayBounds(last)
	if start.After(end) {
		return nil, invalidArgument("start_date must be before end_date")
	}
	key := fmt.Sprintf("range:%s:%s", startDate, endDate)

	return cached(ctx, s, key, func(ctx context.Context) (*RangeEarnings, error) {
		totals, err := s.store.Reports().GetEarningsBetween(ctx, start, end, models.CommittedStatuses)
		if err != nil {
			return nil, err
		}
		return &RangeEarnings{
			StartDate:     start.Format(dateLayout),
			EndDate:       end.Format(dateLayout),
			TotalEarnings: totals.TotalEarnings.Round(2),
			TotalOrders:   totals.TotalOrders,
		}, nil
	})
}

// TopSellingProducts ranks products by committed units sold. A limit of
// zero or less means DefaultTopSellerCap.
func (s *reportService) TopSellingProducts(ctx context.Context, limit int) ([]models.ProductSales, error) {
	if limit <= 0 {
		limit = DefaultTopSellerCap
	}
	return cached(ctx, s, fmt.Sprintf("top:%d", limit), func(ctx context.Context) ([]models.ProductSales, error) {
		rows, err := s.store.Reports().GetTopSellingProducts(ctx, models.CommittedStatuses, limit)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].TotalRevenue = rows[i].TotalRevenue.Round(2)
		}
		return rows, nil
	})
}

func (s *reportService) SalesByCategory(ctx context.Context) ([]models.DimensionSales, error) {
	return cached(ctx, s, "sales:category", func(ctx context.Context) ([]models.DimensionSales, error) {
		rows, err := s.store.Reports().GetSalesByCategory(ctx, models.CommittedStatuses)
		return roundDimension(rows), err
	})
}

func (s *reportService) SalesByBrand(ctx context.Context) ([]models.DimensionSales, error) {
	return cached(ctx, s, "sales:brand", func(ctx context.Context) ([]models.DimensionSales, error) {
		rows, err := s.store.Reports().GetSalesByBrand(ctx, models.CommittedStatuses)
		return roundDimension(rows), err
	})
}

// OrderStatusSummary counts every order, committed or not, by status.
func (s *reportService) OrderStatusSummary(ctx context.Context) (map[models.OrderStatus]models.StatusTotals, error) {
	return cached(ctx, s, "status-summary", func(ctx context.Context) (map[models.OrderStatus]models.StatusTotals, error) {
		rows, err := s.store.Reports().GetStatusSummary(ctx)
		if err != nil {
			return nil, err
		}
		summary := make(map[models.OrderStatus]models.StatusTotals, len(rows))
		for _, row := range rows {
			row.TotalAmount = row.TotalAmount.Round(2)
			summary[row.Status] = row
		}
		return summary, nil
	})
}

func (s *reportService) parseDate(value string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, value, s.location)
	if err != nil {
		return time.Time{}, invalidArgument("Invalid date format. Use YYYY-MM-DD")
	}
	return day, nil
}

// dayBounds returns the first and last instant of the calendar day holding t
// in the report time zone.
func (s *reportService) dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(s.location)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.location)
	return start, start.AddDate(0, 0, 1).Add(-time.Microsecond)
}

func roundDimension(rows []models.DimensionSales) []models.DimensionSales {
	for i := range rows {
		rows[i].TotalRevenue = rows[i].TotalRevenue.Round(2)
	}
	return rows
}

// cached serves key from the report cache, computing and storing it on a
// miss. Cache errors degrade to computing the report.
func cached[T any](ctx context.Context, s *reportService, key string, compute func(context.Context) (T, error)) (result T, err error) {
	name, _, _ := strings.Cut(key, ":")
	ctx, span := tracer.Start(ctx, "report."+name)
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("report.key", key))

	generation, cacheErr := s.cache.Generation(ctx)
	if cacheErr == nil {
		var hit T
		found, err := s.cache.Get(ctx, generation, key, &hit)
		if err != nil {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			span.SetAttributes(attribute.Bool("report.cache_hit", true))
			return hit, nil
		}
	} else {
		s.logger.Warn("report cache unavailable", zap.Error(cacheErr))
	}

	span.SetAttributes(attribute.Bool("report.cache_hit", false))
	result, err = compute(ctx)
	if err != nil {
		return result, err
	}
	if cacheErr == nil {
		if err := s.cache.Set(ctx, generation, key, result); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}
