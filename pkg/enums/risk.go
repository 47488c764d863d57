package enums

import "fmt"

// RiskType identifies one independently evaluated risk factor.
type RiskType string

const (
	RiskTypeExpiration RiskType = "expiration"
	RiskTypeStock      RiskType = "stock"
	RiskTypeTrend      RiskType = "trend"
	RiskTypeFinancial  RiskType = "financial"
)

var validRiskTypes = []RiskType{
	RiskTypeExpiration,
	RiskTypeStock,
	RiskTypeTrend,
	RiskTypeFinancial,
}

// String implements fmt.Stringer.
func (r RiskType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RiskType.
func (r RiskType) IsValid() bool {
	for _, candidate := range validRiskTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRiskType converts raw input into a RiskType.
func ParseRiskType(value string) (RiskType, error) {
	for _, candidate := range validRiskTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid risk type %q", value)
}

// RiskLevel is the severity bucket attached to a risk score.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

var validRiskLevels = []RiskLevel{
	RiskLevelLow,
	RiskLevelMedium,
	RiskLevelHigh,
	RiskLevelCritical,
}

// String implements fmt.Stringer.
func (r RiskLevel) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RiskLevel.
func (r RiskLevel) IsValid() bool {
	for _, candidate := range validRiskLevels {
		if candidate == r {
			return true
		}
	}
	return false
}

// RiskLevelForScore buckets a 0-100 score into a severity level.
// critical >= 80, high >= 60, medium >= 30, else low.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskLevelCritical
	case score >= 60:
		return RiskLevelHigh
	case score >= 30:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}
