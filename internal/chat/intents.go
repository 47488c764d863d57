package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smartgement/merchant-backend/pkg/enums"
	"github.com/smartgement/merchant-backend/pkg/oracle"
)

const systemPrompt = `You are an AI assistant for a merchant's business management system.
You help with product management, risk analysis, automation, and business insights.

Your capabilities:
1. **Product CRUD**: Add, edit, delete, and list products
2. **Automation**: Help execute bulk operations on products (delete, update stock, etc.)
3. **Risk Analysis**: Identify high-risk products, expiring items, and business health issues
4. **Transaction Analysis**: Summarize sales, analyze revenue trends, and provide transaction insights
5. **Query & Analysis**: Answer questions about products, sales, trends, and inventory
6. **Recommendations**: Provide actionable insights based on business data

Guidelines:
- Be concise and actionable
- Respond in Indonesian (Bahasa Indonesia) for a friendly tone
- Provide specific product names and data when relevant
- If you don't have enough information, ask clarifying questions
- Focus on helping merchants make better business decisions

Examples of what you can do:
- "Tambahkan produk Roti Tawar harga 15000" (Add Product)
- "Ubah harga Roti Tawar jadi 12000" (Edit Product)
- "Hapus produk Roti Tawar" (Delete Product)
- "Tampilkan semua produk" (List Products)
- "Kosongkan semua produk yang mengandung tepung" (Automation)
- "Produk apa yang berisiko tinggi?" (Risk Analysis)
- "Berapa penjualan roti minggu ini?" (Query)
- "Ringkas transaksi hari ini" (Transaction Summary)`

const classifyPromptTemplate = `
Classify the following message into one of these intents:
- "add_product": User wants to add/create a new product
- "edit_product": User wants to edit/update an existing product
- "delete_product": User wants to delete/remove a product
- "automation": User wants to perform bulk operations (delete many, update stock for many, etc.)
- "risk_report": User asks about risks, expiring products, or problems
- "transaction_summary": User asks for transaction summaries, sales analysis, or revenue insights
- "query": User asks questions about products, trends, or analytics
- "help": General help or unclear request

%s

Return JSON with:
- intent: one of the above
- confidence: 0.0 to 1.0

Examples:
"Tambahkan produk Roti Tawar harga 15000" -> {"intent": "add_product", "confidence": 0.95}
"Ubah harga Roti Tawar jadi 12000" -> {"intent": "edit_product", "confidence": 0.9}
"Hapus produk Roti Tawar" -> {"intent": "delete_product", "confidence": 0.95}
"Kosongkan semua produk yang mengandung tepung" -> {"intent": "automation", "confidence": 0.95}
"Produk apa yang berisiko tinggi?" -> {"intent": "risk_report", "confidence": 0.9}
"Ringkas transaksi hari ini" -> {"intent": "transaction_summary", "confidence": 0.95}
"Berapa total penjualan minggu ini?" -> {"intent": "transaction_summary", "confidence": 0.9}
"Berapa penjualan roti minggu ini?" -> {"intent": "query", "confidence": 0.85}

Only return JSON, nothing else.
`

// classifyIntent asks the oracle for the message intent. Any failure falls
// back to a low-confidence query classification.
func classifyIntent(ctx context.Context, generator oracle.Generator, conversationContext string) IntentResult {
	fallback := IntentResult{Intent: enums.ChatIntentQuery, Confidence: 0.5}

	raw, err := generator.Generate(ctx, oracle.GenerateRequest{
		Prompt:       fmt.Sprintf(classifyPromptTemplate, conversationContext),
		SystemPrompt: systemPrompt,
	})
	if err != nil {
		return fallback
	}

	var result IntentResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		return fallback
	}
	if !result.Intent.IsValid() {
		return fallback
	}
	return result
}

var (
	listObjectKeywords = []string{"produk", "barang", "item", "inventory", "stok", "etalase"}
	listActionKeywords = []string{"list", "daftar", "tampilkan", "lihat", "show", "cek", "apa"}
)

// isListRequest detects catalog listing asks by keyword, bypassing the oracle.
func isListRequest(message string) bool {
	msg := strings.ToLower(message)
	hasObject := false
	for _, keyword := range listObjectKeywords {
		if strings.Contains(msg, keyword) {
			hasObject = true
			break
		}
	}
	hasAction := false
	for _, keyword := range listActionKeywords {
		if strings.Contains(msg, keyword) {
			hasAction = true
			break
		}
	}
	return hasObject && hasAction
}

func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	}
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
