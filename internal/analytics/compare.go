package analytics

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComparativeMetric pairs a value with its value in the prior period.
// PercentChange is nil when the change is undefined.
type ComparativeMetric struct {
	Current       decimal.Decimal `json:"current"`
	Previous      decimal.Decimal `json:"previous"`
	PercentChange *float64        `json:"percent_change"`
}

// Compare builds a ComparativeMetric for current against previous.
func Compare(current, previous decimal.Decimal) ComparativeMetric {
	return ComparativeMetric{
		Current:       current,
		Previous:      previous,
		PercentChange: PercentChange(current, previous),
	}
}

// PercentChange returns (current-previous)/previous*100 rounded to two
// places. No change from zero is 0. Any change from zero, and any change
// against a negative base, is undefined and returned as nil.
func PercentChange(current, previous decimal.Decimal) *float64 {
	switch {
	case previous.IsPositive():
		v, _ := current.Sub(previous).Mul(hundred).DivRound(previous, 2).Float64()
		return &v
	case previous.IsZero() && current.IsZero():
		v := 0.0
		return &v
	default:
		return nil
	}
}

// CountChange is PercentChange for counts.
func CountChange(current, previous int) *float64 {
	return PercentChange(decimal.NewFromInt(int64(current)), decimal.NewFromInt(int64(previous)))
}

// Rate returns part/whole*100 rounded to two places, or 0 when whole is 0.
func Rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	v, _ := decimal.NewFromInt(int64(part)).Mul(hundred).DivRound(decimal.NewFromInt(int64(whole)), 2).Float64()
	return v
}
