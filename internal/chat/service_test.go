package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smartgement/merchant-backend/internal/automation"
	"github.com/smartgement/merchant-backend/internal/catalog"
	"github.com/smartgement/merchant-backend/internal/risk"
	"github.com/smartgement/merchant-backend/internal/trends"
	"github.com/smartgement/merchant-backend/pkg/db/models"
	"github.com/smartgement/merchant-backend/pkg/enums"
	"github.com/smartgement/merchant-backend/pkg/oracle"
)

var chatTestNow = time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)

// scriptedGenerator replays completions in order, one per Generate call.
type scriptedGenerator struct {
	steps []generateStep
	calls int
}

type generateStep struct {
	response string
	err      error
}

func (g *scriptedGenerator) Generate(ctx context.Context, req oracle.GenerateRequest) (string, error) {
	if g.calls >= len(g.steps) {
		return "", fmt.Errorf("unexpected generate call %d", g.calls+1)
	}
	step := g.steps[g.calls]
	g.calls++
	return step.response, step.err
}

// stubAutomationService returns fixed results for the chat handler.
type stubAutomationService struct {
	preview *automation.PreviewResult
	err     error
}

func (s *stubAutomationService) Preview(ctx context.Context, merchantID uuid.UUID, command string) (*automation.PreviewResult, error) {
	return s.preview, s.err
}

func (s *stubAutomationService) Execute(ctx context.Context, merchantID uuid.UUID, command string, confirmed bool) (*automation.ExecuteResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubAutomationService) Undo(ctx context.Context, merchantID uuid.UUID, operationID *uuid.UUID) (*automation.UndoResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubAutomationService) History(ctx context.Context, merchantID uuid.UUID) ([]automation.HistoryEntry, error) {
	return nil, fmt.Errorf("not implemented")
}

// stubRiskService returns a fixed report for the chat handler.
type stubRiskService struct {
	report *risk.Report
	err    error
}

func (s *stubRiskService) AssessProduct(ctx context.Context, merchantID, productID uuid.UUID) (*risk.Assessment, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubRiskService) GenerateReport(ctx context.Context, merchantID uuid.UUID) (*risk.Report, error) {
	return s.report, s.err
}

func setupChatTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:chat_service_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.SaleRecord{},
		&models.ChatMessage{},
	))
	return conn
}

func buildChatService(t *testing.T, conn *gorm.DB, generator oracle.Generator, auto automation.Service, riskSvc risk.Service) *service {
	t.Helper()

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)

	return &service{
		generator:  generator,
		catalog:    catalogSvc,
		products:   catalog.NewRepository(conn),
		sales:      trends.NewRepository(conn),
		automation: auto,
		risk:       riskSvc,
		repo:       NewRepository(conn),
		now:        func() time.Time { return chatTestNow },
	}
}

func seedChatMerchant(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()

	user := &models.User{
		Username:     fmt.Sprintf("merchant-%s", uuid.NewString()[:8]),
		PasswordHash: "x",
	}
	require.NoError(t, conn.Create(user).Error)
	return user.ID
}

func classifyStep(intent string) generateStep {
	return generateStep{response: fmt.Sprintf(`{"intent": %q, "confidence": 0.9}`, intent)}
}

func TestProcessMessageHelpIntent(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{classifyStep("help")}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "halo", nil)
	require.NoError(t, err)
	assert.Equal(t, enums.ChatIntentHelp, reply.Intent)
	assert.Contains(t, reply.Response, "Asisten Toko AI")
	assert.Equal(t, []string{"Lihat produk", "Tambah produk", "Cek risiko"}, reply.SuggestedActions)

	// The exchange was persisted.
	stored, err := svc.RecentMessages(context.Background(), merchantID, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "halo", stored[0].Message)
	assert.Equal(t, enums.ChatIntentHelp, stored[0].Intent)
}

func TestProcessMessageListKeywordsBypassIntent(t *testing.T) {
	conn := setupChatTestDB(t)
	// The classifier says query, but the keyword heuristic wins.
	generator := &scriptedGenerator{steps: []generateStep{classifyStep("query")}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Tampilkan semua produk saya", nil)
	require.NoError(t, err)
	assert.Equal(t, "Anda belum memiliki produk di database.", reply.Response)
	assert.Equal(t, []string{"Tambah produk baru"}, reply.SuggestedActions)
}

func TestProcessMessageListsProducts(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{classifyStep("query")}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	longDescription := "Roti tawar gandum premium dengan biji-bijian pilihan dan tanpa pengawet tambahan"
	require.NoError(t, conn.Create(&models.Product{
		MerchantID:  merchantID,
		Name:        "Roti Tawar",
		Description: longDescription,
		Stock:       12,
		Price:       15000,
	}).Error)
	require.NoError(t, conn.Create(&models.Product{
		MerchantID: merchantID,
		Name:       "Donat Gula",
		Stock:      30,
		Price:      4000,
	}).Error)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "lihat daftar produk", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "📚 **Daftar Produk (2 item)**")
	assert.Contains(t, reply.Response, "- **Roti Tawar** (Stok: 12) - Rp 15,000")
	assert.Contains(t, reply.Response, "- **Donat Gula** (Stok: 30) - Rp 4,000")
	// Long descriptions are cut off.
	assert.Contains(t, reply.Response, longDescription[:descriptionCutoff]+"...")
	assert.Equal(t, []string{"Analisis risiko", "Tambah produk", "Edit produk"}, reply.SuggestedActions)
}

func TestProcessMessageAutomationPreview(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{classifyStep("automation")}}
	auto := &stubAutomationService{preview: &automation.PreviewResult{
		Success:       true,
		OperationType: enums.AutomationActionEmptyStock,
		Description:   "Set stock to 0 for all products matching: tepung",
		AffectedProducts: []catalog.ProductDTO{
			{Name: "Roti Gandum"},
			{Name: "Donat Tepung"},
		},
		AffectedCount:        2,
		EstimatedImpact:      "This will mark 2 products as out of stock. Sales will be blocked until restocked.",
		RequiresConfirmation: false,
	}}
	svc := buildChatService(t, conn, generator, auto, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Kosongkan semua yang mengandung tepung", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "📋 **Preview Automasi**")
	assert.Contains(t, reply.Response, "Set stock to 0 for all products matching: tepung")
	assert.Contains(t, reply.Response, "Roti Gandum")
	assert.NotContains(t, reply.Response, "Konfirmasi diperlukan")
	assert.Equal(t, []string{"Eksekusi operasi ini", "Batal", "Lihat detail produk"}, reply.SuggestedActions)
}

func TestProcessMessageAutomationFailure(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{classifyStep("automation")}}
	auto := &stubAutomationService{preview: &automation.PreviewResult{
		Success: false,
		Failure: &automation.Failure{Message: "Tidak ada produk yang cocok dengan perintah tersebut."},
	}}
	svc := buildChatService(t, conn, generator, auto, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Kosongkan semua zzz", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "Maaf, saya tidak bisa memahami perintah automasi tersebut.")
	assert.Contains(t, reply.Response, "Tidak ada produk yang cocok")
	assert.Equal(t, []string{"Coba ulangi dengan lebih spesifik", "Minta bantuan"}, reply.SuggestedActions)
}

func TestProcessMessageRiskReport(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{classifyStep("risk_report")}}
	riskSvc := &stubRiskService{report: &risk.Report{
		TotalProducts: 4,
		RiskBreakdown: risk.Breakdown{Critical: 1, High: 0, Medium: 1, Low: 2},
		TopRisks: []risk.ReportEntry{
			{ProductName: "Susu UHT", RiskLevel: enums.RiskLevelCritical, RiskScore: 100},
			{ProductName: "Keju Slice", RiskLevel: enums.RiskLevelMedium, RiskScore: 50},
		},
	}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, riskSvc)
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Mana yang berisiko tinggi?", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "🚨 **Laporan Risiko Produk**")
	assert.Contains(t, reply.Response, "🔴 Critical: 1 produk")
	assert.Contains(t, reply.Response, "🟢 Low: 2 produk")
	assert.Contains(t, reply.Response, "- Susu UHT (critical, score: 100)")
	assert.Equal(t, []string{"Lihat detail produk berisiko", "Buat rencana tindakan", "Export laporan"}, reply.SuggestedActions)
}

func TestProcessMessageAddProduct(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{
		classifyStep("add_product"),
		{response: `{"name": "Roti Tawar", "price": 15000, "stock": 50}`},
	}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Tambahkan produk Roti Tawar harga 15000 stok 50", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "✅ Produk berhasil ditambahkan!")
	assert.Contains(t, reply.Response, "**Roti Tawar**")
	assert.Contains(t, reply.Response, "Harga: Rp 15,000")
	assert.Contains(t, reply.Response, "Stok: 50")
	assert.Equal(t, []string{"Lihat semua produk", "Tambah produk lain"}, reply.SuggestedActions)

	var product models.Product
	require.NoError(t, conn.First(&product, "merchant_id = ? AND name = ?", merchantID, "Roti Tawar").Error)
	assert.Equal(t, 50, product.Stock)
	assert.Equal(t, 15000.0, product.Price)
}

func TestProcessMessageAddProductMissingFields(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{
		classifyStep("add_product"),
		{response: `{"description": "sesuatu"}`},
	}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Tambahkan sesuatu", nil)
	require.NoError(t, err)
	assert.Equal(t, "Maaf, saya perlu nama dan harga produk. Contoh: 'Tambahkan produk Roti Tawar harga 15000'", reply.Response)
}

func TestProcessMessageEditProduct(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{
		classifyStep("edit_product"),
		{response: `{"search_query": "roti tawar", "updates": {"price": 12000}}`},
	}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	require.NoError(t, conn.Create(&models.Product{
		MerchantID: merchantID,
		Name:       "Roti Tawar",
		Stock:      10,
		Price:      15000,
	}).Error)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Ubah harga Roti Tawar jadi 12000", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "✅ Produk berhasil diupdate!")
	assert.Contains(t, reply.Response, "Harga: Rp 12,000")

	var product models.Product
	require.NoError(t, conn.First(&product, "merchant_id = ? AND name = ?", merchantID, "Roti Tawar").Error)
	assert.Equal(t, 12000.0, product.Price)
	assert.Equal(t, 10, product.Stock)
}

func TestProcessMessageEditProductAmbiguous(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{
		classifyStep("edit_product"),
		{response: `{"search_query": "roti", "updates": {"price": 12000}}`},
	}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	require.NoError(t, conn.Create(&models.Product{MerchantID: merchantID, Name: "Roti Tawar", Price: 15000}).Error)
	require.NoError(t, conn.Create(&models.Product{MerchantID: merchantID, Name: "Roti Manis", Price: 8000}).Error)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Ubah harga roti jadi 12000", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "Ditemukan 2 produk. Spesifikan lebih jelas:")
	assert.Contains(t, reply.Response, "Roti Manis")
	assert.Contains(t, reply.Response, "Roti Tawar")
	assert.Equal(t, []string{"Coba lagi"}, reply.SuggestedActions)
}

func TestProcessMessageDeleteProduct(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{
		classifyStep("delete_product"),
		{response: `{"search_query": "kue sus"}`},
	}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	require.NoError(t, conn.Create(&models.Product{MerchantID: merchantID, Name: "Kue Sus", Price: 7000}).Error)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Hapus produk Kue Sus", nil)
	require.NoError(t, err)
	assert.Equal(t, "✅ Produk **Kue Sus** berhasil dihapus!", reply.Response)
	assert.Equal(t, []string{"Lihat produk", "Undo"}, reply.SuggestedActions)

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Where("merchant_id = ?", merchantID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestProcessMessageDeleteProductNotFound(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{
		classifyStep("delete_product"),
		{response: `{"search_query": "tidak ada"}`},
	}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Hapus produk tidak ada", nil)
	require.NoError(t, err)
	assert.Equal(t, "Produk 'tidak ada' tidak ditemukan.", reply.Response)
	assert.Equal(t, []string{"Lihat semua produk", "Coba lagi"}, reply.SuggestedActions)
}

func TestProcessMessageQueryAnswers(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{
		classifyStep("query"),
		{response: "Penjualan roti minggu ini naik dibanding minggu lalu."},
	}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Bagaimana penjualan roti minggu ini?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Penjualan roti minggu ini naik dibanding minggu lalu.", reply.Response)
	assert.Equal(t, enums.ChatIntentQuery, reply.Intent)
	assert.Equal(t, []string{"Analisis tren produk", "Cek risiko", "Lihat rekomendasi"}, reply.SuggestedActions)
}

func TestProcessMessageQueryGeneratorFailure(t *testing.T) {
	conn := setupChatTestDB(t)
	generator := &scriptedGenerator{steps: []generateStep{
		classifyStep("query"),
		{err: fmt.Errorf("oracle unavailable")},
	}}
	svc := buildChatService(t, conn, generator, &stubAutomationService{}, &stubRiskService{})
	merchantID := seedChatMerchant(t, conn)

	reply, err := svc.ProcessMessage(context.Background(), merchantID, "Bagaimana penjualan roti?", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "Maaf, saya mengalami kesulitan menjawab pertanyaan tersebut.")
	assert.Equal(t, []string{"Coba pertanyaan lain", "Minta bantuan"}, reply.SuggestedActions)
}
