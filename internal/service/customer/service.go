package customer

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ignite/customer-analytics/internal/analytics"
	"github.com/ignite/customer-analytics/internal/domain"
)

// Service implements customer read operations. It is safe for concurrent use.
type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates a customer service. Week boundaries and daily trend
// buckets are cut in loc; a nil loc means UTC.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// Overview is one page of customers with store-wide aggregates. Total and
// Page describe the window and are rendered by the transport.
type Overview struct {
	Customers   []domain.Customer `json:"customers"`
	Total       int               `json:"-"`
	Page        Page              `json:"-"`
	Aggregation Aggregation       `json:"aggregation"`
	Trends      OverviewTrends    `json:"trends"`
}

// Aggregation holds the week-over-week figures of the overview.
type Aggregation struct {
	ProductUsage   map[string]int `json:"product_usage"`
	WoWChange      *float64       `json:"wow_change"`
	AverageRevenue AverageRevenue `json:"average_revenue"`
}

// AverageRevenue is the mean transaction amount of this week and the last.
type AverageRevenue struct {
	Current  decimal.Decimal `json:"current"`
	LastWeek decimal.Decimal `json:"last_week"`
}

// OverviewTrends are daily series over the whole store.
type OverviewTrends struct {
	CustomerCount []analytics.Bucket `json:"customer_count"`
	Revenue       []analytics.Bucket `json:"revenue_trend"`
}

// Overview returns one page of customers together with product usage,
// the week-over-week signup change, average revenue for this and last week
// and daily signup and revenue trends.
func (s *Service) Overview(ctx context.Context, page Page) (*Overview, error) {
	customers, total, err := s.repo.ListCustomers(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	usage, err := s.repo.ProductUsage(ctx)
	if err != nil {
		return nil, fmt.Errorf("product usage: %w", err)
	}
	all, err := s.repo.AllCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	txs, err := s.repo.AllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	thisWeek, lastWeek, err := analytics.ResolvePeriod(string(analytics.Week), now, "", "")
	if err != nil {
		return nil, err
	}

	signups := analytics.InLocation(analytics.CustomerRecords(all), s.loc)
	revenue := analytics.InLocation(analytics.TransactionRecords(txs), s.loc)

	if customers == nil {
		customers = []domain.Customer{}
	}
	return &Overview{
		Customers: customers,
		Total:     total,
		Page:      page,
		Aggregation: Aggregation{
			ProductUsage: lo.Associate(usage, func(u domain.ProductUsage) (string, int) {
				return u.ProductName, u.Count
			}),
			WoWChange: analytics.CountChange(len(within(signups, thisWeek)), len(within(signups, lastWeek))),
			AverageRevenue: AverageRevenue{
				Current:  averageAmount(within(revenue, thisWeek)),
				LastWeek: averageAmount(within(revenue, lastWeek)),
			},
		},
		Trends: OverviewTrends{
			CustomerCount: analytics.BucketRecords(signups, analytics.Day),
			Revenue:       analytics.BucketRecords(revenue, analytics.Day),
		},
	}, nil
}

func within(records []analytics.Record, p analytics.Period) []analytics.Record {
	return lo.Filter(records, func(r analytics.Record, _ int) bool {
		return p.Contains(r.Timestamp)
	})
}

func averageAmount(records []analytics.Record) decimal.Decimal {
	sum := lo.Reduce(records, func(acc decimal.Decimal, r analytics.Record, _ int) decimal.Decimal {
		return acc.Add(r.Amount)
	}, decimal.Zero)
	return analytics.Average(sum, len(records))
}

// PersonalInfo returns a single customer record.
func (s *Service) PersonalInfo(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return c, nil
}

// ServicesUsed lists the distinct products a customer used.
func (s *Service) ServicesUsed(ctx context.Context, id int64) ([]domain.ServiceUsage, error) {
	if _, err := s.PersonalInfo(ctx, id); err != nil {
		return nil, err
	}
	services, err := s.repo.ServicesUsed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("services used by %d: %w", id, err)
	}
	if services == nil {
		services = []domain.ServiceUsage{}
	}
	return services, nil
}

// TransactionPage is one page of a customer's transaction history.
type TransactionPage struct {
	CustomerID   int64                `json:"customer_id"`
	Transactions []domain.Transaction `json:"transactions"`
	Total        int                  `json:"-"`
	Page         Page                 `json:"-"`
}

// Transactions returns a customer's transactions, newest first.
func (s *Service) Transactions(ctx context.Context, id int64, page Page) (*TransactionPage, error) {
	if _, err := s.PersonalInfo(ctx, id); err != nil {
		return nil, err
	}
	txs, total, err := s.repo.ListTransactions(ctx, id, page)
	if err != nil {
		return nil, fmt.Errorf("transactions of %d: %w", id, err)
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return &TransactionPage{CustomerID: id, Transactions: txs, Total: total, Page: page}, nil
}

// Segmentation is a customer's segment together with the spending profile
// it summarizes.
type Segmentation struct {
	CustomerID         int64           `json:"customer_id"`
	Segment            domain.Segment  `json:"segment"`
	SegmentLabel       string          `json:"segment_label"`
	CustomerSince      time.Time       `json:"customer_since"`
	TransactionCount   int             `json:"transaction_count"`
	TotalSpent         decimal.Decimal `json:"total_spent"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
	AnomalyCount       int             `json:"anomaly_count"`
	AnomalyRatePercent float64         `json:"anomaly_rate_percent"`
	LastTransactionAt  *time.Time      `json:"last_transaction_at,omitempty"`
}

// Segmentation returns the segment and spend profile of a customer.
func (s *Service) Segmentation(ctx context.Context, id int64) (*Segmentation, error) {
	c, err := s.PersonalInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.SpendProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("spend profile of %d: %w", id, err)
	}
	return &Segmentation{
		CustomerID:         c.ID,
		Segment:            c.Segment,
		SegmentLabel:       c.Segment.Label(),
		CustomerSince:      c.SignupDate,
		TransactionCount:   profile.TransactionCount,
		TotalSpent:         profile.TotalSpent,
		AverageTransaction: analytics.Average(profile.TotalSpent, profile.TransactionCount),
		AnomalyCount:       profile.AnomalyCount,
		AnomalyRatePercent: analytics.Rate(profile.AnomalyCount, profile.TransactionCount),
		LastTransactionAt:  profile.LastTransactedAt,
	}, nil
}

// ProductUsage returns the number of transactions per product, most used
// first.
func (s *Service) ProductUsage(ctx context.Context) ([]domain.ProductUsage, error) {
	usage, err := s.repo.ProductUsage(ctx)
	if err != nil {
		return nil, fmt.Errorf("product usage: %w", err)
	}
	if usage == nil {
		usage = []domain.ProductUsage{}
	}
	return usage, nil
}
