package domain

import "github.com/shopspring/decimal"

// ProductCategory groups products into the lines of business the bank reports on.
type ProductCategory string

const (
	CategoryLoan    ProductCategory = "Loan"
	CategoryDeposit ProductCategory = "Deposit"
	CategoryBanking ProductCategory = "Banking"
)

// Valid reports whether c is one of the known product categories.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryLoan, CategoryDeposit, CategoryBanking:
		return true
	}
	return false
}

// Label returns the display name ("Banking" is sold as Mobile Banking).
func (c ProductCategory) Label() string {
	if c == CategoryBanking {
		return "Mobile Banking"
	}
	return string(c)
}

// Product is a financial product a customer can transact against.
type Product struct {
	ID          int64           `json:"product_id" db:"product_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Category    ProductCategory `json:"category" db:"category"`
	RiskFactor  decimal.Decimal `json:"risk_factor" db:"risk_factor"`
}
