package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/customer-analytics/internal/domain"
	"github.com/ignite/customer-analytics/internal/service/customer"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var customerCols = []string{"customer_id", "name", "email", "phone_number", "address", "date_of_birth", "signup_date", "segment", "profile_image"}

func TestCustomerRepo_ListCustomers(t *testing.T) {
	db, mock := setupTestDB(t)
	signup := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	dob := time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`FROM customers\s+ORDER BY customer_id\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(2, "Ada", "ada@example.com", "555", "1 Main St", dob, signup, "High", "customer_images/ada.jpg").
			AddRow(3, "Bob", "bob@example.com", "556", nil, nil, signup, "Barely", nil))

	repo := NewCustomerRepo(db)
	out, total, err := repo.ListCustomers(context.Background(), customer.Page{Limit: 2, Offset: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, total)
	require.Len(t, out, 2)
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, domain.SegmentHigh, out[0].Segment)
	require.NotNil(t, out[0].DateOfBirth)
	assert.Equal(t, dob, *out[0].DateOfBirth)
	assert.Equal(t, "customer_images/ada.jpg", out[0].ProfileImage)

	assert.Empty(t, out[1].Address)
	assert.Nil(t, out[1].DateOfBirth)
	assert.Equal(t, domain.DefaultProfileImage, out[1].ProfileImage)
}

func TestCustomerRepo_ListCustomers_NoLimitUsesTotal(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM customers`).
		WithArgs(0, 0).
		WillReturnRows(sqlmock.NewRows(customerCols))

	out, total, err := NewCustomerRepo(db).ListCustomers(context.Background(), customer.Page{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, out)
}

func TestCustomerRepo_GetCustomer_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`FROM customers WHERE customer_id = \$1`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := NewCustomerRepo(db).GetCustomer(context.Background(), 99)
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestCustomerRepo_GetCustomer_WrapsErrors(t *testing.T) {
	db, mock := setupTestDB(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`FROM customers WHERE customer_id = \$1`).
		WithArgs(int64(1)).
		WillReturnError(boom)

	_, err := NewCustomerRepo(db).GetCustomer(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, customer.ErrNotFound)
}

func TestCustomerRepo_StatementTimeout(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`FROM customers ORDER BY customer_id`).
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows(customerCols))

	repo := NewCustomerRepo(db).WithStatementTimeout(20 * time.Millisecond)
	_, err := repo.AllCustomers(context.Background())
	assert.Error(t, err)
}
