package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single monetary movement by a customer against a product.
// ProductID is nil when the product has since been deleted.
type Transaction struct {
	ID              int64           `json:"transaction_id" db:"transaction_id"`
	CustomerID      int64           `json:"customer_id" db:"customer_id"`
	ProductID       *int64          `json:"product_id" db:"product_id"`
	ProductName     string          `json:"product_name,omitempty" db:"product_name"`
	ProductCategory ProductCategory `json:"product_category,omitempty" db:"product_category"`
	Segment         Segment         `json:"-" db:"segment"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	IsAnomalous     bool            `json:"is_anomalous" db:"is_anomalous"`
}

// ProductUsage is the number of transactions recorded against one product.
type ProductUsage struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    ProductCategory `json:"category"`
	Count       int             `json:"count"`
}

// ServiceUsage summarizes one customer's use of one product.
type ServiceUsage struct {
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Category         ProductCategory `json:"category"`
	TransactionCount int             `json:"transaction_count"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	LastUsedAt       time.Time       `json:"last_used_at"`
}

// SpendProfile aggregates every transaction of one customer.
type SpendProfile struct {
	TransactionCount  int             `json:"transaction_count"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	AnomalyCount      int             `json:"anomaly_count"`
	FirstTransactedAt *time.Time      `json:"first_transaction_at,omitempty"`
	LastTransactedAt  *time.Time      `json:"last_transaction_at,omitempty"`
}
