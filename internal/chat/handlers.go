package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/internal/catalog"
	"github.com/smartgement/merchant-backend/pkg/db/models"
	"github.com/smartgement/merchant-backend/pkg/oracle"
	"github.com/smartgement/merchant-backend/pkg/vector"
)

const (
	listProductsLimit   = 50
	queryCatalogLimit   = 20
	retrievedDocsLimit  = 5
	descriptionCutoff   = 50
	ambiguousMatchLimit = 5
)

func (s *service) handleAutomation(ctx context.Context, merchantID uuid.UUID, message string) (string, []string) {
	preview, err := s.automation.Preview(ctx, merchantID, message)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "automation preview error", err)
		}
		return fmt.Sprintf("Maaf, saya tidak bisa memahami perintah automasi tersebut. %s", err.Error()),
			[]string{"Coba ulangi dengan lebih spesifik", "Minta bantuan"}
	}
	if !preview.Success {
		detail := ""
		if preview.Failure != nil {
			detail = preview.Failure.Message
		}
		return fmt.Sprintf("Maaf, saya tidak bisa memahami perintah automasi tersebut. %s", detail),
			[]string{"Coba ulangi dengan lebih spesifik", "Minta bantuan"}
	}

	names := make([]string, 0, ambiguousMatchLimit)
	for i, product := range preview.AffectedProducts {
		if i == ambiguousMatchLimit {
			break
		}
		names = append(names, product.Name)
	}
	productList := strings.Join(names, "\n- ")
	if more := preview.AffectedCount - ambiguousMatchLimit; more > 0 {
		productList += fmt.Sprintf("\n... dan %d produk lainnya", more)
	}

	confirmationNote := ""
	if preview.RequiresConfirmation {
		confirmationNote = "❗ Konfirmasi diperlukan untuk operasi ini."
	}

	response := fmt.Sprintf(`
📋 **Preview Automasi**

**Operasi**: %s
**Produk yang terpengaruh**: %d produk

**Produk yang akan diubah**:
- %s

⚠️ **Dampak**: %s

%s
`, preview.Description, preview.AffectedCount, productList, preview.EstimatedImpact, confirmationNote)

	return response, []string{"Eksekusi operasi ini", "Batal", "Lihat detail produk"}
}

func (s *service) handleRiskReport(ctx context.Context, merchantID uuid.UUID) (string, []string) {
	report, err := s.risk.GenerateReport(ctx, merchantID)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "risk report error", err)
		}
		return fmt.Sprintf("Maaf, gagal membuat laporan risiko. Error: %s", err.Error()),
			[]string{"Coba lagi", "Bantuan"}
	}

	response := fmt.Sprintf(`
🚨 **Laporan Risiko Produk**

**Total Produk**: %d

**Breakdown Risiko**:
- 🔴 Critical: %d produk
- 🟠 High: %d produk
- 🟡 Medium: %d produk
- 🟢 Low: %d produk

`, report.TotalProducts,
		report.RiskBreakdown.Critical,
		report.RiskBreakdown.High,
		report.RiskBreakdown.Medium,
		report.RiskBreakdown.Low)

	if len(report.TopRisks) > 0 {
		response += "\n**Top 5 Produk Berisiko Tinggi**:\n"
		for i, entry := range report.TopRisks {
			if i == 5 {
				break
			}
			response += fmt.Sprintf("- %s (%s, score: %.0f)\n", entry.ProductName, entry.RiskLevel, entry.RiskScore)
		}
	}

	return response, []string{"Lihat detail produk berisiko", "Buat rencana tindakan", "Export laporan"}
}

func (s *service) handleQuery(ctx context.Context, merchantID uuid.UUID, message, conversationContext string) (string, []string) {
	products, err := s.catalog.ListProducts(ctx, merchantID)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "query handler error", err)
		}
		return fmt.Sprintf("Maaf, saya mengalami kesulitan menjawab pertanyaan tersebut. Error: %s", err.Error()),
			[]string{"Coba pertanyaan lain", "Minta bantuan"}
	}

	productContext := "No products in database yet.\n"
	if len(products) > 0 {
		var b strings.Builder
		b.WriteString("Available products:\n")
		for i, p := range products {
			if i == queryCatalogLimit {
				break
			}
			fmt.Fprintf(&b, "- %s: Rp %s, Stock: %d", p.Name, formatGrouped(p.Price), p.Stock)
			if p.Description != "" {
				fmt.Fprintf(&b, ", %s", p.Description)
			}
			b.WriteString("\n")
		}
		productContext = b.String()
	}

	retrievedContext := s.retrieveContext(ctx, merchantID, message)

	fullPrompt := fmt.Sprintf(`%s

%s%s

Based on the conversation and product data above, answer this question: %s

Answer in Indonesian (Bahasa Indonesia) and be concise and helpful.`, conversationContext, productContext, retrievedContext, message)

	answer, err := s.generator.Generate(ctx, oracle.GenerateRequest{
		Prompt:       fullPrompt,
		SystemPrompt: systemPrompt,
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "query handler error", err)
		}
		return fmt.Sprintf("Maaf, saya mengalami kesulitan menjawab pertanyaan tersebut. Error: %s", err.Error()),
			[]string{"Coba pertanyaan lain", "Minta bantuan"}
	}

	return answer, []string{"Analisis tren produk", "Cek risiko", "Lihat rekomendasi"}
}

// retrieveContext asks the vector store for nearby documents. Any failure
// degrades to catalog-only context.
func (s *service) retrieveContext(ctx context.Context, merchantID uuid.UUID, message string) string {
	if s.embedder == nil || s.retriever == nil {
		return ""
	}

	embedding, err := s.embedder.Embed(ctx, message)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "query embedding failed", err)
		}
		return ""
	}

	results, err := s.retriever.Search(ctx, vector.SearchRequest{
		MerchantID: merchantID.String(),
		Vector:     embedding,
		Limit:      retrievedDocsLimit,
		ObjectType: "product",
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "vector search failed", err)
		}
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nRelated information:\n")
	for _, result := range results {
		fmt.Fprintf(&b, "- %s\n", result.Text)
	}
	return b.String()
}

func (s *service) handleHelp() (string, []string) {
	helpText := `
👋 **Asisten Toko AI**

Saya dapat membantu Anda dengan:

1. **Kelola Produk**
   - "Tambahkan produk Roti Tawar harga 15000 stok 50"
   - "Ubah harga Roti Tawar jadi 12000"
   - "Hapus produk Roti Tawar"
   - "Tampilkan semua produk saya"

2. **Automasi** - Kelola produk secara massal
   - "Kosongkan semua produk yang mengandung tepung"
   - "Hapus semua roti yang expired"

3. **Analisis Risiko** - Identifikasi produk bermasalah
   - "Produk apa yang berisiko tinggi?"
   - "Mana yang hampir expired?"

4. **Informasi Produk** - Tanya tentang produk Anda
   - "Berapa penjualan roti minggu ini?"
   - "Produk apa yang paling laris?"

Silakan tanya apa saja!
`
	return helpText, []string{"Lihat produk", "Tambah produk", "Cek risiko"}
}

const addProductPromptTemplate = `
Extract product details from this message: %q

Return JSON with:
- name: product name (required)
- price: product price (required, number)
- stock: initial stock (default 0)
- description: product description
- category: product category
- ingredients: ingredients if mentioned

Example:
"Tambahkan produk Roti Tawar harga 15000 stok 50" -> {"name": "Roti Tawar", "price": 15000, "stock": 50}

Only return JSON, nothing else.
`

type addProductPayload struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Stock       *float64 `json:"stock"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Ingredients string   `json:"ingredients"`
}

func (s *service) handleAddProduct(ctx context.Context, merchantID uuid.UUID, message string) (string, []string) {
	failure := func(err error) (string, []string) {
		if s.logg != nil {
			s.logg.Error(ctx, "add product error", err)
		}
		return fmt.Sprintf("Maaf, gagal menambahkan produk. Error: %s", err.Error()),
			[]string{"Coba lagi", "Bantuan"}
	}

	raw, err := s.generator.Generate(ctx, oracle.GenerateRequest{
		Prompt: fmt.Sprintf(addProductPromptTemplate, message),
	})
	if err != nil {
		return failure(err)
	}

	var payload addProductPayload
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return failure(err)
	}

	if strings.TrimSpace(payload.Name) == "" || payload.Price == nil {
		return "Maaf, saya perlu nama dan harga produk. Contoh: 'Tambahkan produk Roti Tawar harga 15000'",
			[]string{"Coba lagi", "Bantuan"}
	}

	stock := 0
	if payload.Stock != nil {
		stock = int(*payload.Stock)
	}

	created, err := s.catalog.CreateProduct(ctx, merchantID, catalog.CreateProductInput{
		Name:        payload.Name,
		Description: payload.Description,
		Category:    payload.Category,
		Ingredients: payload.Ingredients,
		Stock:       stock,
		Price:       *payload.Price,
	})
	if err != nil {
		return failure(err)
	}

	response := fmt.Sprintf("✅ Produk berhasil ditambahkan!\n\n**%s**\nHarga: Rp %s\nStok: %d\nID: %s",
		created.Name, formatGrouped(created.Price), created.Stock, created.ID)
	return response, []string{"Lihat semua produk", "Tambah produk lain"}
}

const editProductPromptTemplate = `
Extract edit details from this message: %q

Return JSON with:
- search_query: product name to find
- updates: object with fields to update (price, stock, name, description, etc.)

Example:
"Ubah harga Roti Tawar jadi 12000" -> {"search_query": "Roti Tawar", "updates": {"price": 12000}}
"Update stok kopi menjadi 100" -> {"search_query": "kopi", "updates": {"stock": 100}}

Only return JSON, nothing else.
`

type editProductPayload struct {
	SearchQuery string `json:"search_query"`
	Updates     struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Stock       *float64 `json:"stock"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		Ingredients *string  `json:"ingredients"`
	} `json:"updates"`
}

func (p editProductPayload) hasUpdates() bool {
	u := p.Updates
	return u.Name != nil || u.Price != nil || u.Stock != nil ||
		u.Description != nil || u.Category != nil || u.Ingredients != nil
}

func (s *service) handleEditProduct(ctx context.Context, merchantID uuid.UUID, message string) (string, []string) {
	failure := func(err error) (string, []string) {
		if s.logg != nil {
			s.logg.Error(ctx, "edit product error", err)
		}
		return fmt.Sprintf("Maaf, gagal mengupdate produk. Error: %s", err.Error()),
			[]string{"Coba lagi", "Bantuan"}
	}

	raw, err := s.generator.Generate(ctx, oracle.GenerateRequest{
		Prompt: fmt.Sprintf(editProductPromptTemplate, message),
	})
	if err != nil {
		return failure(err)
	}

	var payload editProductPayload
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return failure(err)
	}

	if strings.TrimSpace(payload.SearchQuery) == "" || !payload.hasUpdates() {
		return "Maaf, saya perlu tahu produk mana yang ingin diubah dan apa yang ingin diubah.",
			[]string{"Coba lagi", "Lihat produk"}
	}

	matches, err := s.products.FindByName(ctx, merchantID, payload.SearchQuery)
	if err != nil {
		return failure(err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("Produk '%s' tidak ditemukan.", payload.SearchQuery),
			[]string{"Lihat semua produk", "Coba lagi"}
	}
	if len(matches) > 1 {
		return fmt.Sprintf("Ditemukan %d produk. Spesifikan lebih jelas:\n- %s",
				len(matches), joinNames(matches, ambiguousMatchLimit)),
			[]string{"Coba lagi"}
	}

	input := catalog.UpdateProductInput{
		Name:        payload.Updates.Name,
		Price:       payload.Updates.Price,
		Description: payload.Updates.Description,
		Category:    payload.Updates.Category,
		Ingredients: payload.Updates.Ingredients,
	}
	if payload.Updates.Stock != nil {
		stock := int(*payload.Updates.Stock)
		input.Stock = &stock
	}

	updated, err := s.catalog.UpdateProduct(ctx, merchantID, matches[0].ID, input)
	if err != nil {
		return failure(err)
	}

	response := fmt.Sprintf("✅ Produk berhasil diupdate!\n\n**%s**\nHarga: Rp %s\nStok: %d",
		updated.Name, formatGrouped(updated.Price), updated.Stock)
	return response, []string{"Lihat produk", "Edit lagi"}
}

const deleteProductPromptTemplate = `
Extract product name to delete from: %q

Return JSON with:
- search_query: product name to find and delete

Example:
"Hapus produk Roti Tawar" -> {"search_query": "Roti Tawar"}

Only return JSON, nothing else.
`

func (s *service) handleDeleteProduct(ctx context.Context, merchantID uuid.UUID, message string) (string, []string) {
	failure := func(err error) (string, []string) {
		if s.logg != nil {
			s.logg.Error(ctx, "delete product error", err)
		}
		return fmt.Sprintf("Maaf, gagal menghapus produk. Error: %s", err.Error()),
			[]string{"Coba lagi", "Bantuan"}
	}

	raw, err := s.generator.Generate(ctx, oracle.GenerateRequest{
		Prompt: fmt.Sprintf(deleteProductPromptTemplate, message),
	})
	if err != nil {
		return failure(err)
	}

	var payload struct {
		SearchQuery string `json:"search_query"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return failure(err)
	}

	if strings.TrimSpace(payload.SearchQuery) == "" {
		return "Maaf, saya perlu tahu produk mana yang ingin dihapus.",
			[]string{"Lihat produk", "Coba lagi"}
	}

	matches, err := s.products.FindByName(ctx, merchantID, payload.SearchQuery)
	if err != nil {
		return failure(err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("Produk '%s' tidak ditemukan.", payload.SearchQuery),
			[]string{"Lihat semua produk", "Coba lagi"}
	}
	if len(matches) > 1 {
		return fmt.Sprintf("Ditemukan %d produk. Spesifikan lebih jelas:\n- %s",
				len(matches), joinNames(matches, ambiguousMatchLimit)),
			[]string{"Coba lagi"}
	}

	name := matches[0].Name
	if err := s.catalog.DeleteProduct(ctx, merchantID, matches[0].ID); err != nil {
		return failure(err)
	}

	return fmt.Sprintf("✅ Produk **%s** berhasil dihapus!", name),
		[]string{"Lihat produk", "Undo"}
}

func (s *service) handleListProducts(ctx context.Context, merchantID uuid.UUID) (string, []string) {
	products, err := s.catalog.ListProducts(ctx, merchantID)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "list products error", err)
		}
		return fmt.Sprintf("Maaf, gagal mengambil daftar produk. Error: %s", err.Error()),
			[]string{"Coba lagi", "Bantuan"}
	}

	if len(products) == 0 {
		return "Anda belum memiliki produk di database.", []string{"Tambah produk baru"}
	}

	if len(products) > listProductsLimit {
		products = products[:listProductsLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 **Daftar Produk (%d item)**:\n\n", len(products))
	for _, p := range products {
		fmt.Fprintf(&b, "- **%s** (Stok: %d) - Rp %s\n", p.Name, p.Stock, formatGrouped(p.Price))
		if p.Description != "" {
			desc := p.Description
			if len(desc) > descriptionCutoff {
				desc = desc[:descriptionCutoff] + "..."
			}
			fmt.Fprintf(&b, "  _%s_\n", desc)
		}
	}
	if len(products) >= listProductsLimit {
		b.WriteString("\n...(menampilkan 50 produk pertama)")
	}

	return b.String(), []string{"Analisis risiko", "Tambah produk", "Edit produk"}
}

func joinNames(products []models.Product, limit int) string {
	names := make([]string, 0, limit)
	for i, product := range products {
		if i == limit {
			break
		}
		names = append(names, product.Name)
	}
	return strings.Join(names, "\n- ")
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
