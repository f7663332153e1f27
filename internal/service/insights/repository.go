package insights

import (
	"context"

	"github.com/ignite/customer-analytics/internal/domain"
	"github.com/ignite/customer-analytics/internal/pkg/distlock"
	"github.com/ignite/customer-analytics/internal/storage"
)

// Repository loads the snapshot insights are computed over.
type Repository interface {
	AllCustomers(ctx context.Context) ([]domain.Customer, error)
	// AllTransactions must populate each transaction's customer segment
	// and product category.
	AllTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// ResponseCache stores computed responses. Implementations may be disabled
// and miss on every lookup.
type ResponseCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// ReportStore persists exported reports.
type ReportStore interface {
	SaveReport(ctx context.Context, r *storage.Report) (storage.ReportRef, error)
	GetReport(ctx context.Context, kind, id string) (*storage.Report, error)
}

// Locker hands out locks that keep identical exports from running twice.
type Locker interface {
	Lock(key string) distlock.DistLock
}
