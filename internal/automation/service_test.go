package automation

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgement/merchant-backend/internal/catalog"
	"github.com/smartgement/merchant-backend/pkg/config"
	"github.com/smartgement/merchant-backend/pkg/db"
	"github.com/smartgement/merchant-backend/pkg/db/models"
	"github.com/smartgement/merchant-backend/pkg/enums"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
)

// stubCommandParser returns a fixed parse result for any command.
type stubCommandParser struct {
	parsed  *ParsedCommand
	failure *Failure
}

func (s *stubCommandParser) Parse(ctx context.Context, command string) (*ParsedCommand, *Failure) {
	return s.parsed, s.failure
}

func emptyStockCommand(query string) *ParsedCommand {
	return &ParsedCommand{
		Action: enums.AutomationActionEmptyStock,
		Filters: Filters{
			SearchQuery: query,
			Description: fmt.Sprintf("products matching %s", query),
		},
	}
}

func setupAutomationClient(t *testing.T) *db.Client {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		DSN:    "file:automation_service_test?mode=memory&cache=shared",
		Driver: "sqlite",
	}, nil)
	require.NoError(t, err)
	require.NoError(t, client.DB().AutoMigrate(&models.User{}, &models.Product{}, &models.AutomationHistory{}))
	return client
}

func buildAutomationService(t *testing.T, client *db.Client, parser commandParser) Service {
	t.Helper()

	svc, err := NewService(
		parser,
		NewRepository(client.DB()),
		catalog.NewRepository(client.DB()),
		client,
		config.AutomationConfig{},
		nil,
		nil,
	)
	require.NoError(t, err)
	return svc
}

func seedAutomationMerchant(t *testing.T, client *db.Client) uuid.UUID {
	t.Helper()

	user := &models.User{
		Username:     fmt.Sprintf("merchant-%s", uuid.NewString()[:8]),
		PasswordHash: "x",
	}
	require.NoError(t, client.DB().Create(user).Error)
	return user.ID
}

func seedAutomationProducts(t *testing.T, client *db.Client, merchantID uuid.UUID, namePrefix string, stocks []int) []*models.Product {
	t.Helper()

	products := make([]*models.Product, 0, len(stocks))
	for i, stock := range stocks {
		product := &models.Product{
			MerchantID:  merchantID,
			Name:        fmt.Sprintf("%s %d", namePrefix, i+1),
			Ingredients: "tepung terigu, gula",
			Stock:       stock,
			Price:       5000,
		}
		require.NoError(t, client.DB().Create(product).Error)
		products = append(products, product)
	}
	return products
}

func reloadProduct(t *testing.T, client *db.Client, id uuid.UUID) *models.Product {
	t.Helper()

	var product models.Product
	require.NoError(t, client.DB().First(&product, "id = ?", id).Error)
	return &product
}

func TestPreviewParserFailurePassesThrough(t *testing.T) {
	client := setupAutomationClient(t)
	parser := &stubCommandParser{failure: &Failure{Code: pkgerrors.CodeOracleParse, Message: msgParseJSON}}
	svc := buildAutomationService(t, client, parser)
	merchantID := seedAutomationMerchant(t, client)

	preview, err := svc.Preview(context.Background(), merchantID, "blub")
	require.NoError(t, err)
	assert.False(t, preview.Success)
	require.NotNil(t, preview.Failure)
	assert.Equal(t, pkgerrors.CodeOracleParse, preview.Failure.Code)
	assert.Equal(t, msgParseJSON, preview.Failure.Message)
	assert.Empty(t, preview.AffectedProducts)
}

func TestPreviewNoMatchingProducts(t *testing.T) {
	client := setupAutomationClient(t)
	parser := &stubCommandParser{parsed: emptyStockCommand("tidak-ada-produk-ini")}
	svc := buildAutomationService(t, client, parser)
	merchantID := seedAutomationMerchant(t, client)

	preview, err := svc.Preview(context.Background(), merchantID, "Kosongkan stok produk aneh")
	require.NoError(t, err)
	assert.False(t, preview.Success)
	assert.Equal(t, enums.AutomationActionEmptyStock, preview.OperationType)
	require.NotNil(t, preview.Failure)
	assert.Equal(t, pkgerrors.CodeEmptyResult, preview.Failure.Code)
	assert.Equal(t, msgEmptyResult, preview.Failure.Message)
}

func TestPreviewConfirmationGate(t *testing.T) {
	client := setupAutomationClient(t)
	merchantID := seedAutomationMerchant(t, client)
	prefix := fmt.Sprintf("Donat %s", uuid.NewString()[:8])
	seedAutomationProducts(t, client, merchantID, prefix, []int{1, 2, 3, 4, 5, 6})

	parser := &stubCommandParser{parsed: emptyStockCommand(prefix)}
	svc := buildAutomationService(t, client, parser)

	preview, err := svc.Preview(context.Background(), merchantID, "Kosongkan stok donat")
	require.NoError(t, err)
	assert.True(t, preview.Success)
	assert.Equal(t, 6, preview.AffectedCount)
	assert.True(t, preview.RequiresConfirmation)
}

func TestPreviewSmallBatchNeedsNoConfirmation(t *testing.T) {
	client := setupAutomationClient(t)
	merchantID := seedAutomationMerchant(t, client)
	prefix := fmt.Sprintf("Bolu %s", uuid.NewString()[:8])
	seedAutomationProducts(t, client, merchantID, prefix, []int{1, 2})

	parser := &stubCommandParser{parsed: emptyStockCommand(prefix)}
	svc := buildAutomationService(t, client, parser)

	preview, err := svc.Preview(context.Background(), merchantID, "Kosongkan stok bolu")
	require.NoError(t, err)
	assert.True(t, preview.Success)
	assert.False(t, preview.RequiresConfirmation)
}

func TestPreviewDeleteAlwaysRequiresConfirmation(t *testing.T) {
	client := setupAutomationClient(t)
	merchantID := seedAutomationMerchant(t, client)
	prefix := fmt.Sprintf("Lapis %s", uuid.NewString()[:8])
	seedAutomationProducts(t, client, merchantID, prefix, []int{3})

	parser := &stubCommandParser{parsed: &ParsedCommand{
		Action:  enums.AutomationActionDelete,
		Filters: Filters{SearchQuery: prefix, Description: "lapis products"},
	}}
	svc := buildAutomationService(t, client, parser)

	preview, err := svc.Preview(context.Background(), merchantID, "Hapus semua lapis")
	require.NoError(t, err)
	assert.True(t, preview.Success)
	assert.True(t, preview.RequiresConfirmation)
}

func TestExecuteBlocksUnconfirmedBulkOperation(t *testing.T) {
	client := setupAutomationClient(t)
	merchantID := seedAutomationMerchant(t, client)
	prefix := fmt.Sprintf("Keripik %s", uuid.NewString()[:8])
	products := seedAutomationProducts(t, client, merchantID, prefix, []int{1, 2, 3, 4, 5, 6})

	parser := &stubCommandParser{parsed: emptyStockCommand(prefix)}
	svc := buildAutomationService(t, client, parser)

	result, err := svc.Execute(context.Background(), merchantID, "Kosongkan stok keripik", false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Failure)
	assert.Equal(t, pkgerrors.CodeConfirmation, result.Failure.Code)
	assert.Equal(t, msgConfirmation, result.Failure.Message)
	require.NotNil(t, result.Preview)
	assert.Equal(t, 6, result.Preview.AffectedCount)

	// Nothing was touched.
	assert.Equal(t, 1, reloadProduct(t, client, products[0].ID).Stock)
}

func TestExecuteEmptyStockAndUndo(t *testing.T) {
	client := setupAutomationClient(t)
	merchantID := seedAutomationMerchant(t, client)
	prefix := fmt.Sprintf("Serabi %s", uuid.NewString()[:8])
	products := seedAutomationProducts(t, client, merchantID, prefix, []int{10, 20})

	parser := &stubCommandParser{parsed: emptyStockCommand(prefix)}
	svc := buildAutomationService(t, client, parser)

	result, err := svc.Execute(context.Background(), merchantID, "Kosongkan stok serabi", false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, enums.AutomationActionEmptyStock, result.OperationType)
	assert.Equal(t, 2, result.AffectedCount)
	assert.True(t, result.CanUndo)
	require.NotNil(t, result.OperationID)

	assert.Equal(t, 0, reloadProduct(t, client, products[0].ID).Stock)
	assert.Equal(t, 0, reloadProduct(t, client, products[1].ID).Stock)

	undo, err := svc.Undo(context.Background(), merchantID, nil)
	require.NoError(t, err)
	assert.True(t, undo.Success)
	assert.Equal(t, 2, undo.RestoredCount)
	assert.Equal(t, 10, reloadProduct(t, client, products[0].ID).Stock)
	assert.Equal(t, 20, reloadProduct(t, client, products[1].ID).Stock)

	// The history row was consumed.
	again, err := svc.Undo(context.Background(), merchantID, nil)
	require.NoError(t, err)
	assert.False(t, again.Success)
	require.NotNil(t, again.Failure)
	assert.Equal(t, pkgerrors.CodeNotFound, again.Failure.Code)
	assert.Equal(t, msgNoOperation, again.Failure.Message)
}

func TestExecuteUpdateStockReadsValueFromCommand(t *testing.T) {
	client := setupAutomationClient(t)
	merchantID := seedAutomationMerchant(t, client)
	prefix := fmt.Sprintf("Pastel %s", uuid.NewString()[:8])
	products := seedAutomationProducts(t, client, merchantID, prefix, []int{3})

	newStock := 25.0
	parser := &stubCommandParser{parsed: &ParsedCommand{
		Action:   enums.AutomationActionUpdateStock,
		Filters:  Filters{SearchQuery: prefix, Description: "pastel products"},
		NewStock: &newStock,
	}}
	svc := buildAutomationService(t, client, parser)

	result, err := svc.Execute(context.Background(), merchantID, "Update stok semua pastel menjadi 25", false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 25, reloadProduct(t, client, products[0].ID).Stock)
}

func TestExecuteDeleteCannotBeUndone(t *testing.T) {
	client := setupAutomationClient(t)
	merchantID := seedAutomationMerchant(t, client)
	prefix := fmt.Sprintf("Onde %s", uuid.NewString()[:8])
	products := seedAutomationProducts(t, client, merchantID, prefix, []int{7})

	parser := &stubCommandParser{parsed: &ParsedCommand{
		Action:  enums.AutomationActionDelete,
		Filters: Filters{SearchQuery: prefix, Description: "onde products"},
	}}
	svc := buildAutomationService(t, client, parser)

	result, err := svc.Execute(context.Background(), merchantID, "Hapus semua onde", true)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.CanUndo)
	require.NotNil(t, result.OperationID)

	var count int64
	require.NoError(t, client.DB().Model(&models.Product{}).Where("id = ?", products[0].ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	undo, err := svc.Undo(context.Background(), merchantID, result.OperationID)
	require.NoError(t, err)
	assert.False(t, undo.Success)
	require.NotNil(t, undo.Failure)
	assert.Equal(t, pkgerrors.CodeIrreversible, undo.Failure.Code)
	assert.Equal(t, msgIrreversible, undo.Failure.Message)
}

func TestUndoScopedToMerchant(t *testing.T) {
	client := setupAutomationClient(t)
	merchantID := seedAutomationMerchant(t, client)
	intruder := seedAutomationMerchant(t, client)
	prefix := fmt.Sprintf("Gethuk %s", uuid.NewString()[:8])
	seedAutomationProducts(t, client, merchantID, prefix, []int{4})

	parser := &stubCommandParser{parsed: emptyStockCommand(prefix)}
	svc := buildAutomationService(t, client, parser)

	result, err := svc.Execute(context.Background(), merchantID, "Kosongkan stok gethuk", false)
	require.NoError(t, err)
	require.True(t, result.Success)

	undo, err := svc.Undo(context.Background(), intruder, result.OperationID)
	require.NoError(t, err)
	assert.False(t, undo.Success)
	require.NotNil(t, undo.Failure)
	assert.Equal(t, pkgerrors.CodeNotFound, undo.Failure.Code)
}

func TestHistoryListsNewestFirst(t *testing.T) {
	client := setupAutomationClient(t)
	merchantID := seedAutomationMerchant(t, client)
	prefix := fmt.Sprintf("Cenil %s", uuid.NewString()[:8])
	seedAutomationProducts(t, client, merchantID, prefix, []int{1, 2})

	parser := &stubCommandParser{parsed: emptyStockCommand(prefix)}
	svc := buildAutomationService(t, client, parser)

	first, err := svc.Execute(context.Background(), merchantID, "Kosongkan stok cenil", false)
	require.NoError(t, err)
	require.True(t, first.Success)
	second, err := svc.Execute(context.Background(), merchantID, "Kosongkan stok cenil lagi", false)
	require.NoError(t, err)
	require.True(t, second.Success)

	entries, err := svc.History(context.Background(), merchantID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, *second.OperationID, entries[0].ID)
	assert.Equal(t, "Kosongkan stok cenil lagi", entries[0].Command)
	assert.Equal(t, 2, entries[0].AffectedCount)
	assert.True(t, entries[0].CanUndo)
}

func TestExtractStockValue(t *testing.T) {
	cases := []struct {
		command string
		want    int
	}{
		{"Update stok semua tepung menjadi 25", 25},
		{"Set semua jadi 5 lalu 10", 5},
		{"Kosongkan stok", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, extractStockValue(tc.command), tc.command)
	}
}
