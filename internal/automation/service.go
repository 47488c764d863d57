package automation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartgement/merchant-backend/internal/catalog"
	"github.com/smartgement/merchant-backend/pkg/config"
	"github.com/smartgement/merchant-backend/pkg/db"
	"github.com/smartgement/merchant-backend/pkg/db/models"
	dbtypes "github.com/smartgement/merchant-backend/pkg/db/types"
	"github.com/smartgement/merchant-backend/pkg/enums"
	pkgerrors "github.com/smartgement/merchant-backend/pkg/errors"
	"github.com/smartgement/merchant-backend/pkg/logger"
	"github.com/smartgement/merchant-backend/pkg/metrics"
)

const (
	confirmationThreshold = 5

	msgEmptyResult  = "Tidak ada produk yang cocok dengan perintah tersebut."
	msgConfirmation = "Confirmation required. This operation affects multiple products."
	msgIrreversible = "Cannot undo delete operations. Products have been permanently removed."
	msgNoOperation  = "No operation found to undo"
)

var firstIntegerPattern = regexp.MustCompile(`\d+`)

// Service runs the preview/confirm/execute/undo pipeline for bulk commands.
type Service interface {
	Preview(ctx context.Context, merchantID uuid.UUID, command string) (*PreviewResult, error)
	Execute(ctx context.Context, merchantID uuid.UUID, command string, confirmed bool) (*ExecuteResult, error)
	Undo(ctx context.Context, merchantID uuid.UUID, operationID *uuid.UUID) (*UndoResult, error)
	History(ctx context.Context, merchantID uuid.UUID) ([]HistoryEntry, error)
}

type commandParser interface {
	Parse(ctx context.Context, command string) (*ParsedCommand, *Failure)
}

type service struct {
	parser  commandParser
	repo    *Repository
	catalog *catalog.Repository
	client  *db.Client
	cfg     config.AutomationConfig
	logg    *logger.Logger
	metrics *metrics.AssistantMetrics
}

// NewService constructs the automation pipeline service.
func NewService(parser commandParser, repo *Repository, catalogRepo *catalog.Repository, client *db.Client, cfg config.AutomationConfig, logg *logger.Logger, m *metrics.AssistantMetrics) (Service, error) {
	if parser == nil {
		return nil, fmt.Errorf("command parser required")
	}
	if repo == nil {
		return nil, fmt.Errorf("automation repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		parser:  parser,
		repo:    repo,
		catalog: catalogRepo,
		client:  client,
		cfg:     cfg,
		logg:    logg,
		metrics: m,
	}, nil
}

// Preview resolves the command against the live catalog without mutating it.
func (s *service) Preview(ctx context.Context, merchantID uuid.UUID, command string) (*PreviewResult, error) {
	parsed, failure := s.parser.Parse(ctx, command)
	if failure != nil {
		if s.metrics != nil {
			s.metrics.IncOracleFailure("automation_parse")
		}
		return &PreviewResult{
			Success:          false,
			AffectedProducts: []catalog.ProductDTO{},
			Failure:          failure,
		}, nil
	}

	affected, err := s.catalog.FindMatching(ctx, merchantID, parsed.Filters.SearchQuery, parsed.Filters.Ingredient)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving affected products")
	}

	if len(affected) == 0 {
		return &PreviewResult{
			Success:          false,
			OperationType:    parsed.Action,
			AffectedProducts: []catalog.ProductDTO{},
			Failure:          &Failure{Code: pkgerrors.CodeEmptyResult, Message: msgEmptyResult},
		}, nil
	}

	description, impact := describeOperation(parsed, len(affected))

	return &PreviewResult{
		Success:              true,
		OperationType:        parsed.Action,
		Description:          description,
		AffectedProducts:     catalog.ToDTOs(affected),
		AffectedCount:        len(affected),
		EstimatedImpact:      impact,
		RequiresConfirmation: len(affected) > confirmationThreshold || parsed.Action == enums.AutomationActionDelete,
	}, nil
}

// Execute re-runs Preview against current state, enforces the confirmation
// gate, then applies the mutation and history insert in one transaction.
func (s *service) Execute(ctx context.Context, merchantID uuid.UUID, command string, confirmed bool) (*ExecuteResult, error) {
	preview, err := s.Preview(ctx, merchantID, command)
	if err != nil {
		return nil, err
	}
	if !preview.Success {
		return &ExecuteResult{
			Success:            false,
			AffectedProductIDs: []uuid.UUID{},
			Failure:            preview.Failure,
		}, nil
	}

	if preview.RequiresConfirmation && !confirmed {
		return &ExecuteResult{
			Success:            false,
			AffectedProductIDs: []uuid.UUID{},
			Preview:            preview,
			Failure:            &Failure{Code: pkgerrors.CodeConfirmation, Message: msgConfirmation},
		}, nil
	}

	action := preview.OperationType
	affectedIDs := make([]uuid.UUID, 0, len(preview.AffectedProducts))
	previousState := dbtypes.JSONMap{}
	for _, product := range preview.AffectedProducts {
		affectedIDs = append(affectedIDs, product.ID)
		if err := previousState.SetJSON(product.ID.String(), models.ProductSnapshot{
			Stock:       product.Stock,
			Name:        product.Name,
			Price:       product.Price,
			Description: product.Description,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "snapshotting products")
		}
	}

	history := &models.AutomationHistory{
		MerchantID:         merchantID,
		ActionType:         action,
		Command:            command,
		AffectedProductIDs: dbtypes.UUIDList(affectedIDs),
		PreviousState:      previousState,
	}

	txErr := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		catalogTx := s.catalog.WithTx(tx)
		repoTx := s.repo.WithTx(tx)

		switch action {
		case enums.AutomationActionEmptyStock:
			if err := tx.WithContext(ctx).Model(&models.Product{}).
				Where("merchant_id = ? AND id IN ?", merchantID, affectedIDs).
				Update("stock", 0).Error; err != nil {
				return err
			}
		case enums.AutomationActionUpdateStock:
			// The target value comes from the raw command text, not the
			// parsed new_stock field; first integer literal wins.
			newStock := extractStockValue(command)
			if err := tx.WithContext(ctx).Model(&models.Product{}).
				Where("merchant_id = ? AND id IN ?", merchantID, affectedIDs).
				Update("stock", newStock).Error; err != nil {
				return err
			}
		case enums.AutomationActionDelete:
			if err := catalogTx.DeleteByIDs(ctx, merchantID, affectedIDs); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported action %q", action)
		}

		_, err := repoTx.Create(ctx, history)
		return err
	})
	if txErr != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "automation execution failed", txErr)
		}
		return &ExecuteResult{
			Success:            false,
			OperationType:      action,
			AffectedProductIDs: []uuid.UUID{},
			Failure: &Failure{
				Code:    pkgerrors.CodeInternal,
				Message: fmt.Sprintf("Failed to execute automation: %s", txErr.Error()),
			},
		}, nil
	}

	if s.metrics != nil {
		s.metrics.IncAutomationExecuted(action.String())
	}

	operationID := history.ID
	return &ExecuteResult{
		Success:            true,
		OperationType:      action,
		AffectedCount:      len(affectedIDs),
		AffectedProductIDs: affectedIDs,
		Message:            fmt.Sprintf("Successfully executed: %s", preview.Description),
		CanUndo:            history.CanUndo(),
		OperationID:        &operationID,
	}, nil
}

// Undo restores the stock snapshot of a prior operation and consumes its
// history row. Delete operations are permanently irreversible.
func (s *service) Undo(ctx context.Context, merchantID uuid.UUID, operationID *uuid.UUID) (*UndoResult, error) {
	var history *models.AutomationHistory
	var err error
	if operationID != nil {
		history, err = s.repo.FindByIDForMerchant(ctx, *operationID, merchantID)
	} else {
		history, err = s.repo.FindLatestForMerchant(ctx, merchantID)
	}
	if err != nil {
		if IsNotFound(err) {
			return &UndoResult{
				Success: false,
				Failure: &Failure{Code: pkgerrors.CodeNotFound, Message: msgNoOperation},
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading automation history")
	}

	if history.ActionType == enums.AutomationActionDelete {
		return &UndoResult{
			Success: false,
			Failure: &Failure{Code: pkgerrors.CodeIrreversible, Message: msgIrreversible},
		}, nil
	}

	restored := 0
	txErr := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		catalogTx := s.catalog.WithTx(tx)
		repoTx := s.repo.WithTx(tx)

		for _, productID := range history.AffectedProductIDs {
			var snapshot models.ProductSnapshot
			found, err := history.PreviousState.GetJSON(productID.String(), &snapshot)
			if err != nil || !found {
				continue
			}

			product, err := catalogTx.FindByIDForMerchant(ctx, productID, merchantID)
			if err != nil {
				// Products deleted since the operation are skipped.
				if IsNotFound(err) {
					continue
				}
				return err
			}

			product.Stock = snapshot.Stock
			if _, err := catalogTx.Update(ctx, product); err != nil {
				return err
			}
			restored++
		}

		return repoTx.Delete(ctx, history.ID)
	})
	if txErr != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "automation undo failed", txErr)
		}
		return &UndoResult{
			Success: false,
			Failure: &Failure{
				Code:    pkgerrors.CodeInternal,
				Message: fmt.Sprintf("Failed to undo operation: %s", txErr.Error()),
			},
		}, nil
	}

	if s.metrics != nil {
		s.metrics.IncAutomationUndone()
	}

	return &UndoResult{
		Success:       true,
		Message:       fmt.Sprintf("Successfully undone operation '%s'. Restored %d products.", history.ActionType, restored),
		RestoredCount: restored,
	}, nil
}

// History lists the merchant's recent operations, newest first.
func (s *service) History(ctx context.Context, merchantID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := s.repo.ListForMerchant(ctx, merchantID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing automation history")
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, HistoryEntry{
			ID:            row.ID,
			OperationType: row.ActionType,
			Command:       row.Command,
			AffectedCount: len(row.AffectedProductIDs),
			ExecutedAt:    row.ExecutedAt,
			CanUndo:       row.CanUndo(),
		})
	}
	return entries, nil
}

func describeOperation(parsed *ParsedCommand, affectedCount int) (string, string) {
	criteria := parsed.Filters.Description
	switch parsed.Action {
	case enums.AutomationActionEmptyStock:
		return fmt.Sprintf("Set stock to 0 for all products matching: %s", criteria),
			fmt.Sprintf("This will mark %d products as out of stock. Sales will be blocked until restocked.", affectedCount)
	case enums.AutomationActionDelete:
		return fmt.Sprintf("Delete all products matching: %s", criteria),
			fmt.Sprintf("This will permanently delete %d products from your inventory. This cannot be easily undone.", affectedCount)
	case enums.AutomationActionUpdateStock:
		newStock := 0.0
		if parsed.NewStock != nil {
			newStock = *parsed.NewStock
		}
		return fmt.Sprintf("Update stock to %.0f for products matching: %s", newStock, criteria),
			fmt.Sprintf("This will update stock levels for %d products.", affectedCount)
	default:
		return fmt.Sprintf("Unknown action: %s", parsed.Action),
			"Cannot determine impact"
	}
}

// extractStockValue pulls the first integer literal from the command text.
func extractStockValue(command string) int {
	match := firstIntegerPattern.FindString(command)
	if match == "" {
		return 0
	}
	value, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return value
}
