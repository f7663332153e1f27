package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/customer-analytics/internal/domain"
	"github.com/ignite/customer-analytics/internal/service/customer"
)

var transactionCols = []string{"transaction_id", "customer_id", "product_id", "name", "category", "amount", "transaction_date", "is_anomalous"}

func TestCustomerRepo_ListTransactions(t *testing.T) {
	db, mock := setupTestDB(t)
	newer := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)
	older := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions WHERE customer_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY t.transaction_date DESC`).
		WithArgs(int64(7), 10, 0).
		WillReturnRows(sqlmock.NewRows(transactionCols).
			AddRow(11, 7, 3, "Home Loan", "Loan", "250.50", newer, true).
			AddRow(10, 7, nil, nil, nil, "12.00", older, false))

	out, total, err := NewCustomerRepo(db).ListTransactions(context.Background(), 7, customer.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, out, 2)

	require.NotNil(t, out[0].ProductID)
	assert.Equal(t, int64(3), *out[0].ProductID)
	assert.Equal(t, domain.CategoryLoan, out[0].ProductCategory)
	assert.True(t, out[0].Amount.Equal(decimal.RequireFromString("250.50")))
	assert.True(t, out[0].IsAnomalous)

	assert.Nil(t, out[1].ProductID)
	assert.Empty(t, out[1].ProductName)
}

func TestCustomerRepo_AllTransactions_CarriesSegment(t *testing.T) {
	db, mock := setupTestDB(t)
	at := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`JOIN customers c ON c.customer_id = t.customer_id`).
		WillReturnRows(sqlmock.NewRows(append(transactionCols, "segment")).
			AddRow(1, 4, 2, "Savings", "Deposit", "99.99", at, false, "Low"))

	out, err := NewCustomerRepo(db).AllTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.SegmentLow, out[0].Segment)
	assert.Equal(t, domain.CategoryDeposit, out[0].ProductCategory)
}

func TestCustomerRepo_ServicesUsed(t *testing.T) {
	db, mock := setupTestDB(t)
	last := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`GROUP BY p.product_id, p.name, p.category`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "category", "count", "sum", "max"}).
			AddRow(1, "Home Loan", "Loan", 3, "1500.00", last))

	out, err := NewCustomerRepo(db).ServicesUsed(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].TransactionCount)
	assert.True(t, out[0].TotalSpent.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, last, out[0].LastUsedAt)
}

func TestCustomerRepo_SpendProfile(t *testing.T) {
	db, mock := setupTestDB(t)
	first := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FILTER \(WHERE is_anomalous\)`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum", "anomalies", "min", "max"}).
			AddRow(4, "400.00", 1, first, last))

	p, err := NewCustomerRepo(db).SpendProfile(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, p.TransactionCount)
	assert.Equal(t, 1, p.AnomalyCount)
	assert.True(t, p.TotalSpent.Equal(decimal.NewFromInt(400)))
	require.NotNil(t, p.FirstTransactedAt)
	require.NotNil(t, p.LastTransactedAt)
	assert.Equal(t, last, *p.LastTransactedAt)
}

func TestCustomerRepo_SpendProfile_NoTransactions(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`FILTER \(WHERE is_anomalous\)`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum", "anomalies", "min", "max"}).
			AddRow(0, "0", 0, nil, nil))

	p, err := NewCustomerRepo(db).SpendProfile(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TransactionCount)
	assert.True(t, p.TotalSpent.IsZero())
	assert.Nil(t, p.LastTransactedAt)
}

func TestCustomerRepo_ProductUsage(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`FROM products p\s+JOIN transactions t`).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "category", "count"}).
			AddRow(1, "Home Loan", "Loan", 9).
			AddRow(2, "Savings", "Deposit", 4))

	out, err := NewCustomerRepo(db).ProductUsage(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Home Loan", out[0].ProductName)
	assert.Equal(t, 9, out[0].Count)
}
