package trends

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/pkg/db/models"
	"github.com/smartgement/merchant-backend/pkg/enums"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
)

const (
	defaultAnalysisDays  = 30
	predictionWindowDays = 60
	recentWindow         = 14
	increasingFactor     = 1.2
	decreasingFactor     = 0.8
	seasonalityMinDays   = 14
	seasonalityMinGroups = 5
	seasonalityVariation = 0.3
)

// Service exposes sales tracking and demand analytics.
type Service interface {
	RecordSale(ctx context.Context, merchantID uuid.UUID, input RecordSaleInput) (*SaleRecordDTO, error)
	AnalyzeTrend(ctx context.Context, merchantID, productID uuid.UUID, days int) (*TrendAnalysis, error)
	PredictDemand(ctx context.Context, merchantID, productID uuid.UUID) (*DemandPrediction, error)
	RecommendOrder(ctx context.Context, merchantID, productID uuid.UUID) (*OrderRecommendation, error)
}

// RecordSaleInput is the validated payload for one sale event.
type RecordSaleInput struct {
	ProductID uuid.UUID
	Quantity  int
	Date      *time.Time
}

type productLoader interface {
	FindByIDForMerchant(ctx context.Context, id, merchantID uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productLoader
	now      func() time.Time
}

// NewService constructs a trends service instance.
func NewService(repo *Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("trends repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products, now: time.Now}, nil
}

// RecordSale upserts the sale row for (product, day). Sales landing on an
// existing day accumulate quantity and revenue.
func (s *service) RecordSale(ctx context.Context, merchantID uuid.UUID, input RecordSaleInput) (*SaleRecordDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadProduct(ctx, merchantID, input.ProductID)
	if err != nil {
		return nil, err
	}

	saleDate := truncateToDay(s.now())
	if input.Date != nil {
		saleDate = truncateToDay(*input.Date)
	}

	existing, err := s.repo.FindByProductAndDate(ctx, input.ProductID, saleDate)
	if err != nil && !IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sale record")
	}

	if existing != nil {
		existing.QuantitySold += input.Quantity
		existing.Revenue += float64(input.Quantity) * product.Price
		updated, err := s.repo.Update(ctx, existing)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating sale record")
		}
		return toSaleDTO(updated), nil
	}

	record := &models.SaleRecord{
		ProductID:       input.ProductID,
		Date:            saleDate,
		QuantitySold:    input.Quantity,
		Revenue:         float64(input.Quantity) * product.Price,
		PopularityScore: float64(input.Quantity),
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating sale record")
	}
	return toSaleDTO(created), nil
}

// AnalyzeTrend summarizes the product's sales over the trailing window.
func (s *service) AnalyzeTrend(ctx context.Context, merchantID, productID uuid.UUID, days int) (*TrendAnalysis, error) {
	if days <= 0 {
		days = defaultAnalysisDays
	}

	product, err := s.loadProduct(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}

	start := truncateToDay(s.now()).AddDate(0, 0, -days)
	records, err := s.repo.ListSince(ctx, productID, start)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sale records")
	}

	analysis := &TrendAnalysis{
		ProductID:          productID,
		ProductName:        product.Name,
		AnalysisPeriodDays: days,
		PeakDates:          []time.Time{},
		TrendDirection:     enums.TrendDirectionNoData,
		DataPoints:         []DataPoint{},
	}
	if len(records) == 0 {
		return analysis, nil
	}

	totalSales := 0
	for _, record := range records {
		totalSales += record.QuantitySold
	}
	// Average over populated days only; silent days do not dilute it.
	analysis.AverageDailySales = float64(totalSales) / float64(len(records))

	analysis.PeakDates = peakDates(records)
	analysis.TrendDirection = trendDirection(records)
	analysis.SeasonalityDetected = detectSeasonality(records)

	points := make([]DataPoint, 0, len(records))
	for _, record := range records {
		points = append(points, DataPoint{
			Date:            record.Date,
			QuantitySold:    record.QuantitySold,
			Revenue:         record.Revenue,
			PopularityScore: record.PopularityScore,
		})
	}
	analysis.DataPoints = points

	return analysis, nil
}

// PredictDemand projects demand from the trailing sixty days of sales.
func (s *service) PredictDemand(ctx context.Context, merchantID, productID uuid.UUID) (*DemandPrediction, error) {
	product, err := s.loadProduct(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	return s.predictForProduct(ctx, product)
}

func (s *service) predictForProduct(ctx context.Context, product *models.Product) (*DemandPrediction, error) {
	start := truncateToDay(s.now()).AddDate(0, 0, -predictionWindowDays)
	records, err := s.repo.ListSince(ctx, product.ID, start)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sale records")
	}

	if len(records) < 7 {
		return &DemandPrediction{
			ProductID:       product.ID,
			ConfidenceLevel: enums.ConfidenceLow,
			Recommendation:  "Not enough historical data for accurate prediction. Continue tracking sales.",
		}, nil
	}

	recent := records
	if len(records) > recentWindow {
		recent = records[len(records)-recentWindow:]
	}
	dailyAverage := meanQuantity(recent)

	if len(records) >= recentWindow {
		older := olderWindow(records)
		if len(older) > 0 {
			olderAverage := meanQuantity(older)
			if dailyAverage > olderAverage {
				growthRate := 0.0
				if olderAverage > 0 {
					growthRate = (dailyAverage - olderAverage) / olderAverage
				}
				// Conservative growth projection.
				dailyAverage *= 1 + growthRate*0.5
			}
		}
	}

	predicted7 := dailyAverage * 7
	predicted30 := dailyAverage * 30

	confidence := enums.ConfidenceLow
	switch {
	case len(records) >= 30:
		confidence = enums.ConfidenceHigh
	case len(records) >= 14:
		confidence = enums.ConfidenceMedium
	}

	currentStock := product.Stock
	var recommendation string
	switch {
	case float64(currentStock) < predicted7:
		recommendation = fmt.Sprintf(
			"Low stock alert! Current stock (%d) may not cover next week's demand (%.0f). Consider restocking.",
			currentStock, predicted7,
		)
	case float64(currentStock) > predicted30*2:
		recommendation = fmt.Sprintf(
			"Overstock detected. Current stock (%d) is more than 2 months of predicted demand. Consider promotions.",
			currentStock,
		)
	default:
		days := 0.0
		if dailyAverage > 0 {
			days = float64(currentStock) / dailyAverage
		}
		recommendation = fmt.Sprintf(
			"Stock level is adequate. Current stock (%d) should cover %.0f days at current demand rate.",
			currentStock, days,
		)
	}

	return &DemandPrediction{
		ProductID:             product.ID,
		PredictedDemand7Days:  predicted7,
		PredictedDemand30Days: predicted30,
		ConfidenceLevel:       confidence,
		Recommendation:        recommendation,
	}, nil
}

// RecommendOrder suggests a reorder quantity targeting two weeks of stock.
func (s *service) RecommendOrder(ctx context.Context, merchantID, productID uuid.UUID) (*OrderRecommendation, error) {
	product, err := s.loadProduct(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}

	prediction, err := s.predictForProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	weeklyDemand := prediction.PredictedDemand7Days
	targetStock := weeklyDemand * 2
	recommended := math.Max(0, targetStock-float64(product.Stock))

	return &OrderRecommendation{
		ProductID:                productID,
		ProductName:              product.Name,
		CurrentStock:             product.Stock,
		WeeklyDemand:             weeklyDemand,
		TargetStock:              targetStock,
		RecommendedOrderQuantity: recommended,
		Reasoning: fmt.Sprintf(
			"To maintain 2 weeks of inventory based on predicted demand of %.0f units per week",
			weeklyDemand,
		),
	}, nil
}

func (s *service) loadProduct(ctx context.Context, merchantID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByIDForMerchant(ctx, productID, merchantID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

// peakDates returns the top 20% (at least one) of days by quantity sold.
func peakDates(records []models.SaleRecord) []time.Time {
	sorted := make([]models.SaleRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].QuantitySold > sorted[j].QuantitySold
	})

	peakCount := len(sorted) / 5
	if peakCount < 1 {
		peakCount = 1
	}

	dates := make([]time.Time, 0, peakCount)
	for _, record := range sorted[:peakCount] {
		dates = append(dates, record.Date)
	}
	return dates
}

// trendDirection compares the first and last week of the window.
func trendDirection(records []models.SaleRecord) enums.TrendDirection {
	if len(records) < 7 {
		return enums.TrendDirectionInsufficient
	}

	firstWeek := meanQuantity(records[:7])
	lastWeek := meanQuantity(records[len(records)-7:])

	switch {
	case lastWeek > firstWeek*increasingFactor:
		return enums.TrendDirectionIncreasing
	case lastWeek < firstWeek*decreasingFactor:
		return enums.TrendDirectionDecreasing
	default:
		return enums.TrendDirectionStable
	}
}

// detectSeasonality looks for a weekly pattern: enough history, enough
// distinct weekdays, and meaningful variation between weekday averages.
func detectSeasonality(records []models.SaleRecord) bool {
	if len(records) < seasonalityMinDays {
		return false
	}

	groups := map[time.Weekday][]int{}
	for _, record := range records {
		day := record.Date.Weekday()
		groups[day] = append(groups[day], record.QuantitySold)
	}
	if len(groups) < seasonalityMinGroups {
		return false
	}

	averages := make([]float64, 0, len(groups))
	for _, sales := range groups {
		if len(sales) == 0 {
			continue
		}
		total := 0
		for _, qty := range sales {
			total += qty
		}
		averages = append(averages, float64(total)/float64(len(sales)))
	}
	if len(averages) == 0 {
		return false
	}

	stdDev := sampleStdDev(averages)
	mean := meanFloat(averages)
	return mean > 0 && stdDev/mean > seasonalityVariation
}

func olderWindow(records []models.SaleRecord) []models.SaleRecord {
	end := len(records) - recentWindow
	start := end - recentWindow
	if start < 0 {
		start = 0
	}
	if end <= start {
		return nil
	}
	return records[start:end]
}

func meanQuantity(records []models.SaleRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	total := 0
	for _, record := range records {
		total += record.QuantitySold
	}
	return float64(total) / float64(len(records))
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// sampleStdDev computes the n-1 standard deviation; a single sample has none.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := meanFloat(values)
	sum := 0.0
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toSaleDTO(record *models.SaleRecord) *SaleRecordDTO {
	return &SaleRecordDTO{
		ID:              record.ID,
		ProductID:       record.ProductID,
		Date:            record.Date,
		QuantitySold:    record.QuantitySold,
		Revenue:         record.Revenue,
		PopularityScore: record.PopularityScore,
	}
}
