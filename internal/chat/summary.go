package chat

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/pkg/db/models"
	"github.com/smartgement/merchant-backend/pkg/oracle"
)

const summaryRecordLimit = 100

// transactionSummary aggregates the sales ledger for one period.
type transactionSummary struct {
	Summary            string
	TotalTransactions  int
	TotalRevenue       float64
	AverageTransaction float64
	Period             string
	Insights           []summaryInsight
}

type summaryInsight struct {
	Title       string
	Description string
}

func (s *service) handleTransactionSummary(ctx context.Context, merchantID uuid.UUID, message string) (string, []string) {
	summary, err := s.summarizeTransactions(ctx, merchantID, message)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "transaction summary error", err)
		}
		return fmt.Sprintf("Maaf, gagal mengambil ringkasan transaksi. Error: %s", err.Error()),
			[]string{"Coba lagi", "Bantuan"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
📊 **Ringkasan Transaksi**

%s

**Statistik**:
- Total Transaksi: %d
- Total Pendapatan: Rp%s
- Rata-rata Transaksi: Rp%s
- Periode: %s
`, summary.Summary, summary.TotalTransactions,
		formatGroupedCents(summary.TotalRevenue),
		formatGroupedCents(summary.AverageTransaction),
		summary.Period)

	if len(summary.Insights) > 0 {
		b.WriteString("\n**Insights**:\n")
		for _, insight := range summary.Insights {
			fmt.Fprintf(&b, "- %s: %s\n", insight.Title, insight.Description)
		}
	}

	return b.String(), []string{"Lihat detail transaksi", "Analisis lebih lanjut", "Export laporan"}
}

// summarizeTransactions detects the asked-for period from the message, pulls
// the matching ledger rows, and has the oracle phrase the headline summary.
func (s *service) summarizeTransactions(ctx context.Context, merchantID uuid.UUID, message string) (*transactionSummary, error) {
	from, to, period := detectPeriod(message, s.now())

	records, err := s.sales.ListForMerchantBetween(ctx, merchantID, from, to, summaryRecordLimit)
	if err != nil {
		return nil, err
	}

	totalRevenue := 0.0
	for _, record := range records {
		totalRevenue += record.Revenue
	}
	average := 0.0
	if len(records) > 0 {
		average = totalRevenue / float64(len(records))
	}

	summary := &transactionSummary{
		TotalTransactions:  len(records),
		TotalRevenue:       totalRevenue,
		AverageTransaction: average,
		Period:             period,
		Insights:           buildInsights(records),
	}

	summary.Summary = s.phraseSummary(ctx, summary)
	return summary, nil
}

// buildInsights derives a simple revenue trend by comparing the two halves of
// the period. Records arrive newest first.
func buildInsights(records []models.SaleRecord) []summaryInsight {
	var insights []summaryInsight

	if len(records) > 0 {
		best := records[0]
		for _, record := range records[1:] {
			if record.QuantitySold > best.QuantitySold {
				best = record
			}
		}
		insights = append(insights, summaryInsight{
			Title:       "Peak Sales Day",
			Description: fmt.Sprintf("Most units sold on %s with %d sales", best.Date.Format("2006-01-02"), best.QuantitySold),
		})
	}

	if len(records) >= 2 {
		mid := len(records) / 2
		recentRevenue := 0.0
		for _, record := range records[:mid] {
			recentRevenue += record.Revenue
		}
		olderRevenue := 0.0
		for _, record := range records[mid:] {
			olderRevenue += record.Revenue
		}

		description := "Revenue is stable"
		switch {
		case recentRevenue > olderRevenue*1.1:
			description = "Revenue is trending upward"
		case recentRevenue < olderRevenue*0.9:
			description = "Revenue is trending downward"
		}
		insights = append(insights, summaryInsight{
			Title:       "Revenue Trend",
			Description: description,
		})
	}

	return insights
}

// phraseSummary asks the oracle for a short Indonesian headline; a canned
// sentence covers oracle failures.
func (s *service) phraseSummary(ctx context.Context, summary *transactionSummary) string {
	prompt := fmt.Sprintf(`Based on the following transaction data, generate a concise, friendly summary in Indonesian (Bahasa Indonesia)
for a merchant. Keep it brief (2-3 sentences) and highlight the most important points.

Transaction Summary (%s):
- Total Transactions: %d
- Total Revenue: Rp%s
- Average Transaction: Rp%s

Summary:`, summary.Period, summary.TotalTransactions,
		formatGroupedCents(summary.TotalRevenue),
		formatGroupedCents(summary.AverageTransaction))

	text, err := s.generator.Generate(ctx, oracle.GenerateRequest{Prompt: prompt, MaxTokens: 200})
	if err != nil {
		return fmt.Sprintf("Anda memiliki %d transaksi dengan total pendapatan Rp%s. Rata-rata nilai transaksi adalah Rp%s.",
			summary.TotalTransactions,
			formatGroupedCents(summary.TotalRevenue),
			formatGroupedCents(summary.AverageTransaction))
	}
	return strings.TrimSpace(text)
}

// detectPeriod maps Indonesian and English period phrases onto a date range.
// Unrecognized phrases fall back to all time.
func detectPeriod(message string, now time.Time) (time.Time, time.Time, string) {
	msg := strings.ToLower(message)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch {
	case strings.Contains(msg, "hari ini") || strings.Contains(msg, "today"):
		return today, today, "today"
	case strings.Contains(msg, "kemarin") || strings.Contains(msg, "yesterday"):
		yesterday := today.AddDate(0, 0, -1)
		return yesterday, yesterday, "yesterday"
	case strings.Contains(msg, "minggu ini") || strings.Contains(msg, "this week"):
		offset := (int(today.Weekday()) + 6) % 7
		weekStart := today.AddDate(0, 0, -offset)
		return weekStart, today, "this week"
	case strings.Contains(msg, "bulan ini") || strings.Contains(msg, "this month"):
		monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return monthStart, today, "this month"
	default:
		return time.Time{}, time.Time{}, "all time"
	}
}

// formatGroupedCents renders a value with thousands separators and two
// decimals, e.g. 1,250,000.00.
func formatGroupedCents(value float64) string {
	cents := int64(math.Round(value * 100))
	frac := cents % 100
	if frac < 0 {
		frac = -frac
	}
	return formatGrouped(float64(cents/100)) + fmt.Sprintf(".%02d", frac)
}
