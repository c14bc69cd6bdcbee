package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Simplici0/mpsdeal/internal/config"
	"github.com/Simplici0/mpsdeal/internal/db"
	"github.com/Simplici0/mpsdeal/internal/inventory"
	"github.com/Simplici0/mpsdeal/internal/logger"
	"github.com/Simplici0/mpsdeal/internal/migrations"
	"github.com/Simplici0/mpsdeal/internal/projects"
	"github.com/Simplici0/mpsdeal/internal/quotes"
	"github.com/Simplici0/mpsdeal/internal/seed"
)

type server struct {
	auth      *authService
	log       *zap.Logger
	inventory *inventory.Store
	projects  *projects.Store
	quotes    *quotes.Store
	pricing   config.PricingConfig
}

func newServer(database *sqlx.DB, cfg config.Config, logger *zap.Logger) *server {
	return &server{
		auth:      newAuthService(database, cfg.SessionSecret),
		log:       logger,
		inventory: inventory.NewStore(database),
		projects:  projects.NewStore(database),
		quotes:    quotes.NewStore(database),
		pricing:   cfg.Pricing,
	}
}

func main() {
	cfg := config.Load()

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		appLogger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database.DB, cfg.MigrationsDir); err != nil {
			appLogger.Fatal("failed to run database migrations", zap.Error(err))
		}
	}

	stats, err := seed.Run(database.DB, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Demo:          cfg.SeedDemo,
	})
	if err != nil {
		appLogger.Fatal("failed to seed database", zap.Error(err))
	}
	appLogger.Info("seed finished", zap.Int("inserts", stats.Inserts))

	srv := newServer(database, cfg, appLogger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	appLogger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLogger.Fatal("server stopped", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/equipment", s.handleEquipmentList)
		r.Post("/equipment", s.handleEquipmentCreate)
		r.Get("/equipment/{id}", s.handleEquipmentGet)
		r.Put("/equipment/{id}", s.handleEquipmentUpdate)
		r.Delete("/equipment/{id}", s.handleEquipmentDelete)
		r.Get("/equipment/{id}/consumables", s.handleConsumablesList)
		r.Post("/equipment/{id}/consumables", s.handleConsumableCreate)
		r.Put("/consumables/{id}", s.handleConsumableUpdate)
		r.Delete("/consumables/{id}", s.handleConsumableDelete)

		r.Get("/projects", s.handleProjectsList)
		r.Post("/projects", s.handleProjectCreate)
		r.Get("/projects/{id}", s.handleProjectGet)
		r.Delete("/projects/{id}", s.handleProjectDelete)
		r.Put("/projects/{id}/settings", s.handleProjectSettings)
		r.Put("/projects/{id}/financing", s.handleProjectFinancing)
		r.Post("/projects/{id}/lines", s.handleLineAdd)
		r.Delete("/projects/{id}/lines/last", s.handleLineUndo)
		r.Delete("/projects/{id}/lines", s.handleLinesClear)
		r.Get("/projects/{id}/evaluation", s.handleEvaluation)
		r.Get("/projects/{id}/cashflow.csv", s.handleCashFlowCSV)
		r.Get("/projects/{id}/schedule.csv", s.handleScheduleCSV)
		r.Post("/projects/{id}/quotes", s.handleQuoteCreate)

		r.Get("/quotes", s.handleQuotesList)
		r.Get("/quotes/{ref}", s.handleQuoteDetail)
		r.Get("/quotes/{ref}/text", s.handleQuoteText)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r, s.auth) {
			writeError(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request, auth *authService) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}

	_, ok := auth.verifySessionValue(cookie.Value, time.Now())
	return ok
}
