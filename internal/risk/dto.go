package risk

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/pkg/enums"
)

// Factor is one detected risk with its score and guidance.
type Factor struct {
	RiskType       enums.RiskType  `json:"risk_type"`
	RiskLevel      enums.RiskLevel `json:"risk_level"`
	RiskScore      float64         `json:"risk_score"`
	Reason         string          `json:"reason"`
	Recommendation string          `json:"recommendation"`
}

// Assessment is the full scoring result for one product.
type Assessment struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	OverallRiskLevel enums.RiskLevel `json:"overall_risk_level"`
	OverallRiskScore float64         `json:"overall_risk_score"`
	Risks            []Factor        `json:"risks"`
	AssessedAt       time.Time       `json:"assessed_at"`
}

// ReportEntry is one product inside the merchant report's top list.
type ReportEntry struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	RiskLevel   enums.RiskLevel `json:"risk_level"`
	RiskScore   float64         `json:"risk_score"`
	Risks       []Factor        `json:"risks"`
}

// Report aggregates risk posture across the merchant's catalog.
type Report struct {
	MerchantID    uuid.UUID     `json:"merchant_id"`
	GeneratedAt   time.Time     `json:"generated_at"`
	TotalProducts int           `json:"total_products"`
	RiskBreakdown Breakdown     `json:"risk_breakdown"`
	TopRisks      []ReportEntry `json:"top_risks"`
}

// Breakdown counts products per overall risk level.
type Breakdown struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}
