package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartgement/merchant-backend/internal/automation"
	"github.com/smartgement/merchant-backend/internal/catalog"
	"github.com/smartgement/merchant-backend/internal/risk"
	"github.com/smartgement/merchant-backend/internal/trends"
	"github.com/smartgement/merchant-backend/pkg/db/models"
	"github.com/smartgement/merchant-backend/pkg/enums"
	"github.com/smartgement/merchant-backend/pkg/logger"
	"github.com/smartgement/merchant-backend/pkg/metrics"
	"github.com/smartgement/merchant-backend/pkg/oracle"
	"github.com/smartgement/merchant-backend/pkg/vector"
)

// Service routes assistant messages to the right handler by intent.
type Service interface {
	ProcessMessage(ctx context.Context, merchantID uuid.UUID, message string, history []HistoryTurn) (*Response, error)
	RecentMessages(ctx context.Context, merchantID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

type contextRetriever interface {
	Search(ctx context.Context, req vector.SearchRequest) ([]vector.SearchResult, error)
}

type service struct {
	generator  oracle.Generator
	embedder   oracle.Embedder
	retriever  contextRetriever
	catalog    catalog.Service
	products   *catalog.Repository
	sales      *trends.Repository
	automation automation.Service
	risk       risk.Service
	repo       *Repository
	logg       *logger.Logger
	metrics    *metrics.AssistantMetrics
	now        func() time.Time
}

// Deps bundles the collaborators the assistant needs. Embedder and Retriever
// are optional; without them the query handler uses catalog context only.
type Deps struct {
	Generator  oracle.Generator
	Embedder   oracle.Embedder
	Retriever  contextRetriever
	Catalog    catalog.Service
	Products   *catalog.Repository
	Sales      *trends.Repository
	Automation automation.Service
	Risk       risk.Service
	Repo       *Repository
	Logger     *logger.Logger
	Metrics    *metrics.AssistantMetrics
}

// NewService constructs the chat router service.
func NewService(deps Deps) (Service, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("oracle generator required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if deps.Sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if deps.Automation == nil {
		return nil, fmt.Errorf("automation service required")
	}
	if deps.Risk == nil {
		return nil, fmt.Errorf("risk service required")
	}
	if deps.Repo == nil {
		return nil, fmt.Errorf("chat repository required")
	}
	return &service{
		generator:  deps.Generator,
		embedder:   deps.Embedder,
		retriever:  deps.Retriever,
		catalog:    deps.Catalog,
		products:   deps.Products,
		sales:      deps.Sales,
		automation: deps.Automation,
		risk:       deps.Risk,
		repo:       deps.Repo,
		logg:       deps.Logger,
		metrics:    deps.Metrics,
		now:        time.Now,
	}, nil
}

// ProcessMessage classifies the message, dispatches the matching handler, and
// records the exchange. Handler failures surface as assistant replies, not as
// errors; the error return covers programmer mistakes only.
func (s *service) ProcessMessage(ctx context.Context, merchantID uuid.UUID, message string, history []HistoryTurn) (*Response, error) {
	conversationContext := buildConversationContext(message, history)

	result := classifyIntent(ctx, s.generator, conversationContext)
	if s.metrics != nil {
		s.metrics.IncChatIntent(result.Intent.String())
	}

	responseText, suggestedActions := s.dispatch(ctx, merchantID, message, result, conversationContext)

	// History persistence is best effort.
	if _, err := s.repo.Create(ctx, &models.ChatMessage{
		MerchantID: merchantID,
		Message:    message,
		Response:   responseText,
		Intent:     result.Intent,
		Confidence: result.Confidence,
	}); err != nil && s.logg != nil {
		s.logg.Error(ctx, "failed to save chat history", err)
	}

	return &Response{
		Response:         responseText,
		Intent:           result.Intent,
		Confidence:       result.Confidence,
		SuggestedActions: suggestedActions,
	}, nil
}

// dispatch mirrors the original routing order: the list-request keyword check
// sits between the CRUD intents and the report handlers.
func (s *service) dispatch(ctx context.Context, merchantID uuid.UUID, message string, result IntentResult, conversationContext string) (string, []string) {
	switch {
	case result.Intent == enums.ChatIntentAutomation:
		return s.handleAutomation(ctx, merchantID, message)
	case result.Intent == enums.ChatIntentAddProduct:
		return s.handleAddProduct(ctx, merchantID, message)
	case result.Intent == enums.ChatIntentEditProduct:
		return s.handleEditProduct(ctx, merchantID, message)
	case result.Intent == enums.ChatIntentDeleteProduct:
		return s.handleDeleteProduct(ctx, merchantID, message)
	case isListRequest(message):
		return s.handleListProducts(ctx, merchantID)
	case result.Intent == enums.ChatIntentRiskReport:
		return s.handleRiskReport(ctx, merchantID)
	case result.Intent == enums.ChatIntentTransactionSummary:
		return s.handleTransactionSummary(ctx, merchantID, message)
	case result.Intent == enums.ChatIntentQuery:
		return s.handleQuery(ctx, merchantID, message, conversationContext)
	default:
		return s.handleHelp()
	}
}

// RecentMessages returns the merchant's latest exchanges, newest first.
func (s *service) RecentMessages(ctx context.Context, merchantID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	return s.repo.ListRecent(ctx, merchantID, limit)
}

func buildConversationContext(message string, history []HistoryTurn) string {
	if len(history) == 0 {
		return fmt.Sprintf("\nUser: %s\n", message)
	}

	var b strings.Builder
	b.WriteString("\n\nPrevious conversation:\n")
	for _, turn := range history {
		role := "Assistant"
		if turn.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
	}
	fmt.Fprintf(&b, "\nCurrent message from User: %s\n", message)
	return b.String()
}
