package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartgement/merchant-backend/api/routes"
	authsvc "github.com/smartgement/merchant-backend/internal/auth"
	"github.com/smartgement/merchant-backend/internal/automation"
	"github.com/smartgement/merchant-backend/internal/catalog"
	"github.com/smartgement/merchant-backend/internal/chat"
	"github.com/smartgement/merchant-backend/internal/risk"
	"github.com/smartgement/merchant-backend/internal/trends"
	"github.com/smartgement/merchant-backend/pkg/config"
	"github.com/smartgement/merchant-backend/pkg/db"
	"github.com/smartgement/merchant-backend/pkg/logger"
	"github.com/smartgement/merchant-backend/pkg/metrics"
	"github.com/smartgement/merchant-backend/pkg/migrate"
	"github.com/smartgement/merchant-backend/pkg/oracle"
	"github.com/smartgement/merchant-backend/pkg/redis"
	"github.com/smartgement/merchant-backend/pkg/vector"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if cfg.FeatureFlags.AutoMigrate {
		if err := migrate.AutoMigrate(context.Background(), dbClient, logg); err != nil {
			logg.Error(context.Background(), "failed to run migrations", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	oracleClient, err := oracle.NewClient(cfg.Oracle)
	if err != nil {
		logg.Error(context.Background(), "failed to create oracle client", err)
		os.Exit(1)
	}

	vectorClient, err := vector.NewClient(cfg.Vector)
	if err != nil {
		logg.Error(context.Background(), "failed to create vector client", err)
		os.Exit(1)
	}

	assistantMetrics := metrics.NewAssistantMetrics(prometheus.DefaultRegisterer)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	trendsRepo := trends.NewRepository(dbClient.DB())
	riskRepo := risk.NewRepository(dbClient.DB())
	automationRepo := automation.NewRepository(dbClient.DB())
	chatRepo := chat.NewRepository(dbClient.DB())
	userRepo := authsvc.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	trendsService, err := trends.NewService(trendsRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create trends service", err)
		os.Exit(1)
	}

	riskService, err := risk.NewService(riskRepo, catalogRepo, trendsService, redisClient, cfg.Risk, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create risk service", err)
		os.Exit(1)
	}

	parser, err := automation.NewParser(oracleClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create command parser", err)
		os.Exit(1)
	}

	automationService, err := automation.NewService(parser, automationRepo, catalogRepo, dbClient, cfg.Automation, logg, assistantMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create automation service", err)
		os.Exit(1)
	}

	chatService, err := chat.NewService(chat.Deps{
		Generator:  oracleClient,
		Embedder:   oracleClient,
		Retriever:  vectorClient,
		Catalog:    catalogService,
		Products:   catalogRepo,
		Sales:      trendsRepo,
		Automation: automationService,
		Risk:       riskService,
		Repo:       chatRepo,
		Logger:     logg,
		Metrics:    assistantMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Repo:           userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Auth:       authService,
			Catalog:    catalogService,
			Trends:     trendsService,
			Risk:       riskService,
			Automation: automationService,
			Chat:       chatService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
