package customer

import (
	"context"

	"github.com/ignite/customer-analytics/internal/domain"
)

// Repository defines the data access contract for customers and their
// transactions.
type Repository interface {
	// ListCustomers returns one page of customers ordered by id and the
	// total number of customers.
	ListCustomers(ctx context.Context, page Page) ([]domain.Customer, int, error)

	// GetCustomer returns ErrNotFound if the id is unknown.
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)

	// ListTransactions returns one page of a customer's transactions,
	// newest first, and the customer's total transaction count.
	ListTransactions(ctx context.Context, customerID int64, page Page) ([]domain.Transaction, int, error)

	// ServicesUsed returns the distinct products a customer transacted
	// against, most used first.
	ServicesUsed(ctx context.Context, customerID int64) ([]domain.ServiceUsage, error)

	// SpendProfile aggregates all of a customer's transactions.
	SpendProfile(ctx context.Context, customerID int64) (domain.SpendProfile, error)

	// ProductUsage returns the transaction count per product, descending.
	ProductUsage(ctx context.Context) ([]domain.ProductUsage, error)

	// AllCustomers and AllTransactions load the full snapshot the
	// overview aggregates are computed over.
	AllCustomers(ctx context.Context) ([]domain.Customer, error)
	AllTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// Page is a limit/offset window over an ordered listing.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
