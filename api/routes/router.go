package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartgement/merchant-backend/api/controllers"
	"github.com/smartgement/merchant-backend/api/middleware"
	authsvc "github.com/smartgement/merchant-backend/internal/auth"
	"github.com/smartgement/merchant-backend/internal/automation"
	"github.com/smartgement/merchant-backend/internal/catalog"
	"github.com/smartgement/merchant-backend/internal/chat"
	"github.com/smartgement/merchant-backend/internal/risk"
	"github.com/smartgement/merchant-backend/internal/trends"
	"github.com/smartgement/merchant-backend/pkg/config"
	"github.com/smartgement/merchant-backend/pkg/db"
	"github.com/smartgement/merchant-backend/pkg/logger"
	"github.com/smartgement/merchant-backend/pkg/redis"
)

// Services bundles the wired service layer the router exposes.
type Services struct {
	Auth       authsvc.Service
	Catalog    catalog.Service
	Trends     trends.Service
	Risk       risk.Service
	Automation automation.Service
	Chat       chat.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var cachePinger redis.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(svcs.Auth, logg))
		r.Post("/login", controllers.Login(svcs.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(svcs.Catalog, logg))
			r.Get("/", controllers.ListProducts(svcs.Catalog, logg))
			r.Get("/{productID}", controllers.GetProduct(svcs.Catalog, logg))
			r.Put("/{productID}", controllers.UpdateProduct(svcs.Catalog, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(svcs.Catalog, logg))
		})

		r.Route("/trends", func(r chi.Router) {
			r.Post("/sales", controllers.RecordSale(svcs.Trends, logg))
			r.Get("/products/{productID}", controllers.AnalyzeTrend(svcs.Trends, logg))
			r.Get("/products/{productID}/demand", controllers.PredictDemand(svcs.Trends, logg))
			r.Get("/products/{productID}/reorder", controllers.RecommendOrder(svcs.Trends, logg))
		})

		r.Route("/risk", func(r chi.Router) {
			r.Post("/products/{productID}/assess", controllers.AssessProduct(svcs.Risk, logg))
			r.Get("/report", controllers.RiskReport(svcs.Risk, logg))
		})

		r.Route("/automation", func(r chi.Router) {
			r.Post("/preview", controllers.PreviewAutomation(svcs.Automation, logg))
			r.Post("/execute", controllers.ExecuteAutomation(svcs.Automation, logg))
			r.Post("/undo", controllers.UndoAutomation(svcs.Automation, logg))
			r.Get("/history", controllers.AutomationHistory(svcs.Automation, logg))
		})

		r.With(middleware.ChatRateLimit(cfg.ChatRateLimit, chatLimiter(redisClient), logg)).
			Post("/chat", controllers.Chat(svcs.Chat, logg))
	})

	return r
}

// chatLimiter avoids handing the middleware a typed nil when redis is absent.
func chatLimiter(client *redis.Client) middleware.RateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}
