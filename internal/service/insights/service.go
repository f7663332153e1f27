package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ignite/customer-analytics/internal/analytics"
	"github.com/ignite/customer-analytics/internal/cache"
	"github.com/ignite/customer-analytics/internal/pkg/logger"
	"github.com/ignite/customer-analytics/internal/storage"
)

// ReportKind is the storage kind of exported trend reports.
const ReportKind = "trends"

// Service computes insights. It is safe for concurrent use once configured.
type Service struct {
	repo    Repository
	loc     *time.Location
	now     func() time.Time
	cache   ResponseCache
	reports ReportStore
	locks   Locker
}

// NewService creates an insights service whose periods are aligned in loc.
// A nil loc means UTC.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// SetCache enables response caching.
func (s *Service) SetCache(c ResponseCache) { s.cache = c }

// SetReports enables report export.
func (s *Service) SetReports(store ReportStore, locks Locker) {
	s.reports = store
	s.locks = locks
}

func (s *Service) clock() time.Time { return s.now().In(s.loc) }

// ParseRequest validates query parameters against the current time.
func (s *Service) ParseRequest(q url.Values) (analytics.TrendRequest, error) {
	return analytics.ParseTrendRequest(q, s.clock())
}

// Trends computes the full insights response for req.
func (s *Service) Trends(ctx context.Context, req analytics.TrendRequest) (*analytics.TrendResponse, error) {
	now := s.clock()
	current, _, err := analytics.ResolvePeriod(req.Period, now, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	key := cache.Key("trends", req.CacheKey(), current.Start.Format(time.RFC3339), now.Format(analytics.DateLayout))

	if s.cache != nil {
		var cached analytics.TrendResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("insights cache lookup failed", "key", key, "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := analytics.ComputeTrends(snap, req, now)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			logger.Warn("insights cache store failed", "key", key, "error", err)
		}
	}
	return resp, nil
}

// RevenueTrends computes only the revenue and product category series.
func (s *Service) RevenueTrends(ctx context.Context, req analytics.TrendRequest) (*analytics.TrendResponse, error) {
	req.Series = []string{analytics.SeriesRevenue, analytics.SeriesProductCategory}
	return s.Trends(ctx, req)
}

func (s *Service) snapshot(ctx context.Context) (analytics.Snapshot, error) {
	customers, err := s.repo.AllCustomers(ctx)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load customers: %w", err)
	}
	transactions, err := s.repo.AllTransactions(ctx)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return analytics.Snapshot{}, err
	}
	return analytics.Snapshot{
		Customers:    analytics.CustomerRecords(customers),
		Transactions: analytics.TransactionRecords(transactions),
	}, nil
}

// Export computes req and persists the response as a report. Concurrent
// exports of the same request are rejected with ErrExportInProgress.
func (s *Service) Export(ctx context.Context, req analytics.TrendRequest) (*storage.ReportRef, error) {
	if s.reports == nil || s.locks == nil {
		return nil, ErrExportDisabled
	}

	lock := s.locks.Lock(cache.Key("export", req.CacheKey()))
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire export lock: %w", err)
	}
	if !acquired {
		return nil, ErrExportInProgress
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("export lock release failed", "error", err)
		}
	}()

	resp, err := s.Trends(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	ref, err := s.reports.SaveReport(ctx, &storage.Report{
		Kind:    ReportKind,
		Request: req.CacheKey(),
		Data:    data,
	})
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	logger.Info("trend report exported", "report_id", ref.ID, "location", ref.Location)
	return &ref, nil
}

// Report loads a previously exported trend report.
func (s *Service) Report(ctx context.Context, id string) (*storage.Report, error) {
	if s.reports == nil {
		return nil, ErrExportDisabled
	}
	r, err := s.reports.GetReport(ctx, ReportKind, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}
	return r, nil
}
