package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/ignite/customer-analytics/internal/domain"
)

// CustomerRecords turns customers into signup records.
func CustomerRecords(customers []domain.Customer) []Record {
	out := make([]Record, len(customers))
	for i, c := range customers {
		out[i] = Record{
			SubjectID: c.ID,
			Timestamp: c.SignupDate,
			Amount:    decimal.Zero,
			Segment:   string(c.Segment),
		}
	}
	return out
}

// TransactionRecords turns transactions into monetary records. The segment
// is the owning customer's and the category the product's.
func TransactionRecords(transactions []domain.Transaction) []Record {
	out := make([]Record, len(transactions))
	for i, t := range transactions {
		out[i] = Record{
			SubjectID: t.CustomerID,
			Timestamp: t.TransactionDate,
			Amount:    t.Amount,
			Segment:   string(t.Segment),
			Category:  string(t.ProductCategory),
			Anomalous: t.IsAnomalous,
		}
	}
	return out
}
