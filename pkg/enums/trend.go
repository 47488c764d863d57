package enums

// TrendDirection summarizes the movement of a product's sales series.
type TrendDirection string

const (
	TrendDirectionNoData       TrendDirection = "no_data"
	TrendDirectionInsufficient TrendDirection = "insufficient_data"
	TrendDirectionIncreasing   TrendDirection = "increasing"
	TrendDirectionDecreasing   TrendDirection = "decreasing"
	TrendDirectionStable       TrendDirection = "stable"
)

// String implements fmt.Stringer.
func (t TrendDirection) String() string {
	return string(t)
}

// ConfidenceLevel grades how much history backs a demand prediction.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// String implements fmt.Stringer.
func (c ConfidenceLevel) String() string {
	return string(c)
}
