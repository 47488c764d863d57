package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartgement/merchant-backend/internal/trends"
	"github.com/smartgement/merchant-backend/pkg/config"
	"github.com/smartgement/merchant-backend/pkg/db/models"
	"github.com/smartgement/merchant-backend/pkg/enums"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
	"github.com/smartgement/merchant-backend/pkg/logger"
)

const (
	stockWindowDays     = 30
	trendWindowDays     = 60
	reportTopLimit      = 10
	lowTurnoverCeiling  = 1.0
	reportCacheKeyParts = "risk_report"
)

// Service exposes product risk scoring and merchant-wide reporting.
type Service interface {
	AssessProduct(ctx context.Context, merchantID, productID uuid.UUID) (*Assessment, error)
	GenerateReport(ctx context.Context, merchantID uuid.UUID) (*Report, error)
}

type productReader interface {
	FindByIDForMerchant(ctx context.Context, id, merchantID uuid.UUID) (*models.Product, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Product, error)
}

type trendAnalyzer interface {
	AnalyzeTrend(ctx context.Context, merchantID, productID uuid.UUID, days int) (*trends.TrendAnalysis, error)
}

type reportCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

type service struct {
	repo     *Repository
	products productReader
	trends   trendAnalyzer
	cache    reportCache
	cfg      config.RiskConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs a risk service instance. The cache is optional.
func NewService(repo *Repository, products productReader, analyzer trendAnalyzer, cache reportCache, cfg config.RiskConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("risk repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("trend analyzer required")
	}
	return &service{
		repo:     repo,
		products: products,
		trends:   analyzer,
		cache:    cache,
		cfg:      cfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// AssessProduct evaluates the four risk factors and replaces the stored
// assessment rows with the fresh result.
func (s *service) AssessProduct(ctx context.Context, merchantID, productID uuid.UUID) (*Assessment, error) {
	product, err := s.products.FindByIDForMerchant(ctx, productID, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	factors := []Factor{}

	if factor := s.expirationRisk(product); factor != nil {
		factors = append(factors, *factor)
	}
	// Trend lookups are best-effort; missing history never blocks scoring.
	if factor := s.stockRisk(ctx, merchantID, product); factor != nil {
		factors = append(factors, *factor)
	}
	if factor := s.trendRisk(ctx, merchantID, product); factor != nil {
		factors = append(factors, *factor)
	}
	if factor := s.financialRisk(ctx, merchantID, product); factor != nil {
		factors = append(factors, *factor)
	}

	overallScore := 0.0
	for _, factor := range factors {
		if factor.RiskScore > overallScore {
			overallScore = factor.RiskScore
		}
	}
	overallLevel := enums.RiskLevelLow
	if len(factors) > 0 {
		overallLevel = enums.RiskLevelForScore(overallScore)
	}

	rows := make([]models.RiskAssessment, 0, len(factors))
	for _, factor := range factors {
		rows = append(rows, models.RiskAssessment{
			ProductID:      productID,
			RiskType:       factor.RiskType,
			RiskLevel:      factor.RiskLevel,
			RiskScore:      factor.RiskScore,
			Reason:         factor.Reason,
			Recommendation: factor.Recommendation,
		})
	}
	if err := s.repo.ReplaceForProduct(ctx, productID, rows); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing risk assessments")
	}

	return &Assessment{
		ProductID:        productID,
		ProductName:      product.Name,
		OverallRiskLevel: overallLevel,
		OverallRiskScore: overallScore,
		Risks:            factors,
		AssessedAt:       s.now().UTC(),
	}, nil
}

// GenerateReport assesses every product and aggregates the results. Products
// that fail to assess are skipped. Reports are cached briefly.
func (s *service) GenerateReport(ctx context.Context, merchantID uuid.UUID) (*Report, error) {
	if cached := s.cachedReport(ctx, merchantID); cached != nil {
		return cached, nil
	}

	products, err := s.products.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	report := &Report{
		MerchantID:    merchantID,
		GeneratedAt:   s.now().UTC(),
		TotalProducts: len(products),
		TopRisks:      []ReportEntry{},
	}

	entries := []ReportEntry{}
	for i := range products {
		assessment, err := s.AssessProduct(ctx, merchantID, products[i].ID)
		if err != nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithProductID(ctx, products[i].ID.String()), "skipping product in risk report")
			}
			continue
		}

		switch assessment.OverallRiskLevel {
		case enums.RiskLevelCritical:
			report.RiskBreakdown.Critical++
		case enums.RiskLevelHigh:
			report.RiskBreakdown.High++
		case enums.RiskLevelMedium:
			report.RiskBreakdown.Medium++
		default:
			report.RiskBreakdown.Low++
		}

		if assessment.OverallRiskScore > 0 {
			entries = append(entries, ReportEntry{
				ProductID:   assessment.ProductID,
				ProductName: assessment.ProductName,
				RiskLevel:   assessment.OverallRiskLevel,
				RiskScore:   assessment.OverallRiskScore,
				Risks:       assessment.Risks,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RiskScore > entries[j].RiskScore
	})
	if len(entries) > reportTopLimit {
		entries = entries[:reportTopLimit]
	}
	report.TopRisks = entries

	s.storeReport(ctx, merchantID, report)
	return report, nil
}

func (s *service) expirationRisk(product *models.Product) *Factor {
	if product.ExpirationDate == nil {
		return nil
	}
	// Floor so a product expired less than a day ago still lands on a
	// negative day count.
	daysUntil := int(math.Floor(product.ExpirationDate.Sub(s.now().UTC()).Hours() / 24))

	switch {
	case daysUntil < 0:
		return &Factor{
			RiskType:       enums.RiskTypeExpiration,
			RiskLevel:      enums.RiskLevelCritical,
			RiskScore:      100,
			Reason:         fmt.Sprintf("Product expired %d days ago", -daysUntil),
			Recommendation: "Remove from inventory immediately. Do not sell.",
		}
	case daysUntil <= 3:
		return &Factor{
			RiskType:       enums.RiskTypeExpiration,
			RiskLevel:      enums.RiskLevelHigh,
			RiskScore:      80,
			Reason:         fmt.Sprintf("Product expires in %d days", daysUntil),
			Recommendation: "Urgent: Run clearance sale or donation. Use for in-house production if applicable.",
		}
	case daysUntil <= 7:
		return &Factor{
			RiskType:       enums.RiskTypeExpiration,
			RiskLevel:      enums.RiskLevelMedium,
			RiskScore:      50,
			Reason:         fmt.Sprintf("Product expires in %d days", daysUntil),
			Recommendation: "Offer discounts or promotions to move inventory quickly.",
		}
	case daysUntil <= 14:
		return &Factor{
			RiskType:       enums.RiskTypeExpiration,
			RiskLevel:      enums.RiskLevelLow,
			RiskScore:      25,
			Reason:         fmt.Sprintf("Product expires in %d days", daysUntil),
			Recommendation: "Monitor closely. Plan promotions if stock is high.",
		}
	default:
		return nil
	}
}

func (s *service) stockRisk(ctx context.Context, merchantID uuid.UUID, product *models.Product) *Factor {
	analysis, err := s.trends.AnalyzeTrend(ctx, merchantID, product.ID, stockWindowDays)
	if err != nil {
		return nil
	}

	avgDailySales := analysis.AverageDailySales
	if avgDailySales > 0 {
		daysOfStock := float64(product.Stock) / avgDailySales
		switch {
		case daysOfStock < 3:
			return &Factor{
				RiskType:       enums.RiskTypeStock,
				RiskLevel:      enums.RiskLevelHigh,
				RiskScore:      75,
				Reason:         fmt.Sprintf("Only %.1f days of stock remaining based on demand", daysOfStock),
				Recommendation: fmt.Sprintf("Reorder immediately. Stock will run out in %.0f days at current sales rate.", daysOfStock),
			}
		case daysOfStock < 7:
			return &Factor{
				RiskType:       enums.RiskTypeStock,
				RiskLevel:      enums.RiskLevelMedium,
				RiskScore:      45,
				Reason:         fmt.Sprintf("%.1f days of stock remaining", daysOfStock),
				Recommendation: "Plan reorder soon to avoid stockout.",
			}
		}
		return nil
	}

	if analysis.TrendDirection != enums.TrendDirectionNoData && product.Stock == 0 {
		return &Factor{
			RiskType:       enums.RiskTypeStock,
			RiskLevel:      enums.RiskLevelCritical,
			RiskScore:      90,
			Reason:         "Product is out of stock with historical demand",
			Recommendation: "Restock immediately. Customers are looking for this product.",
		}
	}
	return nil
}

func (s *service) trendRisk(ctx context.Context, merchantID uuid.UUID, product *models.Product) *Factor {
	analysis, err := s.trends.AnalyzeTrend(ctx, merchantID, product.ID, trendWindowDays)
	if err != nil {
		return nil
	}
	if analysis.TrendDirection != enums.TrendDirectionDecreasing {
		return nil
	}
	return &Factor{
		RiskType:       enums.RiskTypeTrend,
		RiskLevel:      enums.RiskLevelMedium,
		RiskScore:      40,
		Reason:         "Product demand is declining",
		Recommendation: "Consider refreshing product, adjusting pricing, or running promotions. May be seasonal effect.",
	}
}

func (s *service) financialRisk(ctx context.Context, merchantID uuid.UUID, product *models.Product) *Factor {
	inventoryValue := float64(product.Stock) * product.Price
	threshold := s.cfg.FinancialThreshold
	if threshold <= 0 {
		threshold = 1000000
	}
	if inventoryValue <= threshold {
		return nil
	}

	analysis, err := s.trends.AnalyzeTrend(ctx, merchantID, product.ID, stockWindowDays)
	if err != nil {
		return nil
	}
	if analysis.AverageDailySales >= lowTurnoverCeiling {
		return nil
	}

	return &Factor{
		RiskType:       enums.RiskTypeFinancial,
		RiskLevel:      enums.RiskLevelHigh,
		RiskScore:      70,
		Reason:         fmt.Sprintf("High inventory value (Rp %s) with low turnover", formatGrouped(inventoryValue)),
		Recommendation: "Significant capital locked in slow-moving inventory. Consider discounts or return to supplier if possible.",
	}
}

func (s *service) cachedReport(ctx context.Context, merchantID uuid.UUID) *Report {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(reportCacheKeyParts, merchantID.String()))
	if err != nil || raw == "" {
		return nil
	}
	var report Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil
	}
	return &report
}

func (s *service) storeReport(ctx context.Context, merchantID uuid.UUID, report *Report) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	ttl := s.cfg.ReportCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey(reportCacheKeyParts, merchantID.String()), string(raw), ttl); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "caching risk report failed")
	}
}

// formatGrouped renders a value with thousands separators, e.g. 1,250,000.
func formatGrouped(value float64) string {
	raw := strconv.FormatFloat(value, 'f', 0, 64)
	negative := false
	if len(raw) > 0 && raw[0] == '-' {
		negative = true
		raw = raw[1:]
	}
	out := ""
	for i, digit := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			out += ","
		}
		out += string(digit)
	}
	if negative {
		return "-" + out
	}
	return out
}
