package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/customer-analytics/internal/domain"
	"github.com/ignite/customer-analytics/internal/service/customer"
)

// CustomerRepo implements customer.Repository and insights.Repository
// against PostgreSQL.
type CustomerRepo struct {
	db      *sql.DB
	timeout time.Duration
}

// NewCustomerRepo creates a Postgres-backed customer repository.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// WithStatementTimeout bounds every query issued by the repository.
func (r *CustomerRepo) WithStatementTimeout(d time.Duration) *CustomerRepo {
	r.timeout = d
	return r
}

func (r *CustomerRepo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

const customerColumns = `customer_id, name, email, phone_number, address, date_of_birth, signup_date, segment, profile_image`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var (
		c       domain.Customer
		address sql.NullString
		dob     sql.NullTime
		image   sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PhoneNumber, &address, &dob, &c.SignupDate, &c.Segment, &image); err != nil {
		return c, err
	}
	c.Address = address.String
	if dob.Valid {
		t := dob.Time
		c.DateOfBirth = &t
	}
	c.ProfileImage = domain.DefaultProfileImage
	if image.Valid && image.String != "" {
		c.ProfileImage = image.String
	}
	return c, nil
}

func (r *CustomerRepo) ListCustomers(ctx context.Context, page customer.Page) ([]domain.Customer, int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	limit := page.Limit
	if limit <= 0 {
		limit = total
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		ORDER BY customer_id
		LIMIT $1 OFFSET $2
	`, limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out, err := collectCustomers(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CustomerRepo) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepo) AllCustomers(ctx context.Context) ([]domain.Customer, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("all customers: %w", err)
	}
	defer rows.Close()
	return collectCustomers(rows)
}

func collectCustomers(rows *sql.Rows) ([]domain.Customer, error) {
	var out []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return out, nil
}
