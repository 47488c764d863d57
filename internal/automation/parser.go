package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/smartgement/merchant-backend/pkg/enums"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
	"github.com/smartgement/merchant-backend/pkg/oracle"
)

const (
	msgParseJSON       = "Maaf, saya tidak bisa memahami perintah tersebut. Coba gunakan kalimat yang lebih sederhana."
	msgParseSchema     = "Maaf, format perintah tidak dikenali. Mohon sebutkan aksi dan produk yang dimaksud."
	msgParseUnexpected = "Maaf, terjadi kesalahan saat memproses perintah Anda. Silakan coba lagi."
	msgParseTimeout    = "Maaf, asisten tidak merespons tepat waktu. Silakan coba lagi."

	defaultFilterDescription = "produk yang cocok dengan perintah"
)

const parsePromptTemplate = `
Parse the following automation command into a structured action.

Command: %q

Return a JSON object with:
- action: one of "empty_stock", "update_stock", "delete", "add_product", "edit_product"
- filters: object describing what products to affect
  - search_query: text to search for (e.g., "tepung", "flour products")
  - ingredient: specific ingredient if mentioned
  - description: short human-readable description of the filter
- new_stock: if updating to specific value

Example:
Command: "Kosongkan semua produk yang mengandung tepung"
Response: {"action": "empty_stock", "filters": {"search_query": "tepung", "ingredient": "tepung", "description": "products containing flour (tepung)"}}

Command: "Hapus semua roti"
Response: {"action": "delete", "filters": {"search_query": "roti", "description": "bread products (roti)"}}

Only return the JSON, nothing else.
`

// Filters narrows which products a command touches.
type Filters struct {
	SearchQuery string `json:"search_query"`
	Ingredient  string `json:"ingredient"`
	Description string `json:"description" validate:"required"`
}

// ParsedCommand is the structured form of a natural-language command.
type ParsedCommand struct {
	Action   enums.AutomationAction `json:"action"`
	Filters  Filters                `json:"filters"`
	NewStock *float64               `json:"new_stock,omitempty"`
}

type parsedPayload struct {
	Action   string   `json:"action" validate:"required,oneof=empty_stock update_stock delete add_product edit_product"`
	Filters  Filters  `json:"filters"`
	NewStock *float64 `json:"new_stock"`
}

// Parser turns free-text commands into ParsedCommand values via the oracle.
type Parser struct {
	generator oracle.Generator
	validate  *validator.Validate
}

// NewParser builds a command parser backed by the provided generator.
func NewParser(generator oracle.Generator) (*Parser, error) {
	if generator == nil {
		return nil, fmt.Errorf("oracle generator required")
	}
	return &Parser{
		generator: generator,
		validate:  validator.New(),
	}, nil
}

// Parse classifies the command. Failures are returned as structured values,
// never as raised errors; the error return covers programmer mistakes only.
func (p *Parser) Parse(ctx context.Context, command string) (*ParsedCommand, *Failure) {
	raw, err := p.generator.Generate(ctx, oracle.GenerateRequest{Prompt: fmt.Sprintf(parsePromptTemplate, command)})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeOracleTimeout {
			return nil, &Failure{Code: pkgerrors.CodeOracleTimeout, Message: msgParseTimeout}
		}
		return nil, &Failure{Code: pkgerrors.CodeOracleParse, Message: msgParseUnexpected}
	}

	cleaned := stripCodeFences(raw)

	var payload parsedPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &Failure{Code: pkgerrors.CodeOracleParse, Message: msgParseJSON}
	}

	payload.Filters.Description = backfillDescription(payload.Filters)

	if err := p.validate.Struct(payload); err != nil {
		return nil, &Failure{Code: pkgerrors.CodeOracleParse, Message: msgParseSchema}
	}

	action, err := enums.ParseAutomationAction(payload.Action)
	if err != nil {
		return nil, &Failure{Code: pkgerrors.CodeOracleParse, Message: msgParseSchema}
	}

	return &ParsedCommand{
		Action:   action,
		Filters:  payload.Filters,
		NewStock: payload.NewStock,
	}, nil
}

// backfillDescription guarantees a human-readable filter description.
func backfillDescription(filters Filters) string {
	if desc := strings.TrimSpace(filters.Description); desc != "" {
		return desc
	}
	if q := strings.TrimSpace(filters.SearchQuery); q != "" {
		return q
	}
	if ing := strings.TrimSpace(filters.Ingredient); ing != "" {
		return ing
	}
	return defaultFilterDescription
}

func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	}
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
