package trends

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/pkg/enums"
)

// DataPoint is one day of sales inside an analysis window.
type DataPoint struct {
	Date            time.Time `json:"date"`
	QuantitySold    int       `json:"quantity_sold"`
	Revenue         float64   `json:"revenue"`
	PopularityScore float64   `json:"popularity_score"`
}

// TrendAnalysis is the full result of analyzing one product's sales window.
type TrendAnalysis struct {
	ProductID           uuid.UUID            `json:"product_id"`
	ProductName         string               `json:"product_name"`
	AnalysisPeriodDays  int                  `json:"analysis_period_days"`
	AverageDailySales   float64              `json:"average_daily_sales"`
	PeakDates           []time.Time          `json:"peak_dates"`
	TrendDirection      enums.TrendDirection `json:"trend_direction"`
	SeasonalityDetected bool                 `json:"seasonality_detected"`
	DataPoints          []DataPoint          `json:"data_points"`
}

// DemandPrediction projects demand over the next week and month.
type DemandPrediction struct {
	ProductID              uuid.UUID             `json:"product_id"`
	PredictedDemand7Days   float64               `json:"predicted_demand_next_7_days"`
	PredictedDemand30Days  float64               `json:"predicted_demand_next_30_days"`
	ConfidenceLevel        enums.ConfidenceLevel `json:"confidence_level"`
	Recommendation         string                `json:"recommendation"`
}

// OrderRecommendation suggests a reorder quantity to hold two weeks of stock.
type OrderRecommendation struct {
	ProductID                uuid.UUID `json:"product_id"`
	ProductName              string    `json:"product_name"`
	CurrentStock             int       `json:"current_stock"`
	WeeklyDemand             float64   `json:"weekly_demand"`
	TargetStock              float64   `json:"target_stock"`
	RecommendedOrderQuantity float64   `json:"recommended_order_quantity"`
	Reasoning                string    `json:"reasoning"`
}

// SaleRecordDTO is the read model for one persisted sale day.
type SaleRecordDTO struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	Date            time.Time `json:"date"`
	QuantitySold    int       `json:"quantity_sold"`
	Revenue         float64   `json:"revenue"`
	PopularityScore float64   `json:"popularity_score"`
}
