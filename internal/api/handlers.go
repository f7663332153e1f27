package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/customer-analytics/internal/analytics"
	"github.com/ignite/customer-analytics/internal/domain"
	"github.com/ignite/customer-analytics/internal/pkg/httputil"
	"github.com/ignite/customer-analytics/internal/pkg/logger"
	"github.com/ignite/customer-analytics/internal/service/customer"
	"github.com/ignite/customer-analytics/internal/service/insights"
	"github.com/ignite/customer-analytics/internal/storage"
)

// CustomerService is the customer read API the handlers depend on.
type CustomerService interface {
	Overview(ctx context.Context, page customer.Page) (*customer.Overview, error)
	PersonalInfo(ctx context.Context, id int64) (*domain.Customer, error)
	ServicesUsed(ctx context.Context, id int64) ([]domain.ServiceUsage, error)
	Transactions(ctx context.Context, id int64, page customer.Page) (*customer.TransactionPage, error)
	Segmentation(ctx context.Context, id int64) (*customer.Segmentation, error)
	ProductUsage(ctx context.Context) ([]domain.ProductUsage, error)
}

// InsightsService is the analytics API the handlers depend on.
type InsightsService interface {
	ParseRequest(q url.Values) (analytics.TrendRequest, error)
	Trends(ctx context.Context, req analytics.TrendRequest) (*analytics.TrendResponse, error)
	RevenueTrends(ctx context.Context, req analytics.TrendRequest) (*analytics.TrendResponse, error)
	Export(ctx context.Context, req analytics.TrendRequest) (*storage.ReportRef, error)
	Report(ctx context.Context, id string) (*storage.Report, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	customers    CustomerService
	insights     InsightsService
	defaultLimit int
	maxLimit     int
}

// NewHandlers creates a new Handlers instance
func NewHandlers(customers CustomerService, insights InsightsService, defaultLimit, maxLimit int) *Handlers {
	if defaultLimit < 1 {
		defaultLimit = 50
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Handlers{
		customers:    customers,
		insights:     insights,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// writeError maps service errors onto the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidInput):
		httputil.InvalidInput(w, analytics.ParamOf(err), err.Error())
	case errors.Is(err, customer.ErrNotFound):
		httputil.NotFound(w, "customer not found")
	case errors.Is(err, insights.ErrReportNotFound):
		httputil.NotFound(w, "report not found")
	case errors.Is(err, insights.ErrExportInProgress):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, insights.ErrExportDisabled):
		httputil.Error(w, http.StatusServiceUnavailable, err.Error())
	case (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) && r.Context().Err() != nil:
		// Client went away or the request timed out; the timeout
		// middleware answers the latter.
		logger.Debug("request cancelled", "path", r.URL.Path)
	default:
		respondSafeError(w, http.StatusInternalServerError, err)
	}
}

// customerID parses the {customer_id} path parameter.
func customerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "customer_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidCustomerID(w http.ResponseWriter) {
	httputil.InvalidInput(w, "customer_id", "invalid customer_id: must be a positive integer")
}
