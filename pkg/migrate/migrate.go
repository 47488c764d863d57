package migrate

import (
	"context"
	"fmt"

	"github.com/smartgement/merchant-backend/pkg/db"
	"github.com/smartgement/merchant-backend/pkg/db/models"
	"github.com/smartgement/merchant-backend/pkg/logger"
)

// AutoMigrate syncs the schema for every registered model. Intended for
// development and test databases; production schemas are managed externally.
func AutoMigrate(ctx context.Context, client *db.Client, logg *logger.Logger) error {
	err := client.DB().WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.SaleRecord{},
		&models.RiskAssessment{},
		&models.AutomationHistory{},
		&models.ChatMessage{},
	)
	if err != nil {
		return fmt.Errorf("running auto migration: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "schema migration complete")
	}
	return nil
}
