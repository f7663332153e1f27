package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/customer-analytics/internal/domain"
	"github.com/ignite/customer-analytics/internal/service/customer"
)

func scanTransaction(row rowScanner, withSegment bool) (domain.Transaction, error) {
	var (
		t         domain.Transaction
		productID sql.NullInt64
		name      sql.NullString
		category  sql.NullString
	)
	dest := []any{&t.ID, &t.CustomerID, &productID, &name, &category, &t.Amount, &t.TransactionDate, &t.IsAnomalous}
	if withSegment {
		dest = append(dest, &t.Segment)
	}
	if err := row.Scan(dest...); err != nil {
		return t, err
	}
	if productID.Valid {
		id := productID.Int64
		t.ProductID = &id
	}
	t.ProductName = name.String
	t.ProductCategory = domain.ProductCategory(category.String)
	return t, nil
}

func (r *CustomerRepo) ListTransactions(ctx context.Context, customerID int64, page customer.Page) ([]domain.Transaction, int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE customer_id = $1`, customerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	limit := page.Limit
	if limit <= 0 {
		limit = total
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT t.transaction_id, t.customer_id, t.product_id, p.name, p.category,
		       t.amount, t.transaction_date, t.is_anomalous
		FROM transactions t
		LEFT JOIN products p ON p.product_id = t.product_id
		WHERE t.customer_id = $1
		ORDER BY t.transaction_date DESC, t.transaction_id DESC
		LIMIT $2 OFFSET $3
	`, customerID, limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows, false)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, total, nil
}

// AllTransactions loads every transaction with its customer's segment and
// its product's category, oldest first.
func (r *CustomerRepo) AllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT t.transaction_id, t.customer_id, t.product_id, p.name, p.category,
		       t.amount, t.transaction_date, t.is_anomalous, c.segment
		FROM transactions t
		JOIN customers c ON c.customer_id = t.customer_id
		LEFT JOIN products p ON p.product_id = t.product_id
		ORDER BY t.transaction_date, t.transaction_id
	`)
	if err != nil {
		return nil, fmt.Errorf("all transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *CustomerRepo) ServicesUsed(ctx context.Context, customerID int64) ([]domain.ServiceUsage, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.product_id, p.name, p.category, COUNT(*), COALESCE(SUM(t.amount), 0), MAX(t.transaction_date)
		FROM transactions t
		JOIN products p ON p.product_id = t.product_id
		WHERE t.customer_id = $1
		GROUP BY p.product_id, p.name, p.category
		ORDER BY COUNT(*) DESC, p.name
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("services used: %w", err)
	}
	defer rows.Close()

	var out []domain.ServiceUsage
	for rows.Next() {
		var u domain.ServiceUsage
		if err := rows.Scan(&u.ProductID, &u.ProductName, &u.Category, &u.TransactionCount, &u.TotalSpent, &u.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scan service usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *CustomerRepo) SpendProfile(ctx context.Context, customerID int64) (domain.SpendProfile, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var (
		p           domain.SpendProfile
		first, last sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0), COUNT(*) FILTER (WHERE is_anomalous),
		       MIN(transaction_date), MAX(transaction_date)
		FROM transactions
		WHERE customer_id = $1
	`, customerID).Scan(&p.TransactionCount, &p.TotalSpent, &p.AnomalyCount, &first, &last)
	if err != nil {
		return domain.SpendProfile{}, fmt.Errorf("spend profile: %w", err)
	}
	if first.Valid {
		p.FirstTransactedAt = &first.Time
	}
	if last.Valid {
		p.LastTransactedAt = &last.Time
	}
	return p, nil
}

func (r *CustomerRepo) ProductUsage(ctx context.Context) ([]domain.ProductUsage, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.product_id, p.name, p.category, COUNT(t.transaction_id)
		FROM products p
		JOIN transactions t ON t.product_id = p.product_id
		GROUP BY p.product_id, p.name, p.category
		ORDER BY COUNT(t.transaction_id) DESC, p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("product usage: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductUsage
	for rows.Next() {
		var u domain.ProductUsage
		if err := rows.Scan(&u.ProductID, &u.ProductName, &u.Category, &u.Count); err != nil {
			return nil, fmt.Errorf("scan product usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
