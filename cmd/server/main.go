package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/audit"
	"mobilenest_back_end/internal/cache"
	"mobilenest_back_end/internal/config"
	"mobilenest_back_end/internal/database"
	"mobilenest_back_end/internal/handlers"
	"mobilenest_back_end/internal/middleware"
	"mobilenest_back_end/internal/routes"
	"mobilenest_back_end/internal/services"
	"mobilenest_back_end/internal/utils"
)

func main() {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	cfg := config.Load(logger)
	if cfg.JWTSecret == "" {
		logger.Fatal("❌ JWT_SECRET manquant dans .env")
	}
	if cfg.SessionSecret == "" {
		logger.Fatal("❌ SESSION_SECRET manquant dans .env")
	}

	conns, err := database.ConnectDatabases(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Connexion aux bases impossible", zap.Error(err))
	}
	defer conns.Close()

	if err := database.Migrate(conns.SQL); err != nil {
		logger.Fatal("❌ Migration du schéma échouée", zap.Error(err))
	}

	h := handlers.New(buildDeps(cfg, conns, logger), buildOptions(cfg, conns, logger))

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.MaxMultipartMemory = services.MaxProofSize

	routes.RegisterRoutes(r, h, routes.Options{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Redis:       conns.Redis,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("🚀 Serveur MobileNest lancé", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ Serveur arrêté", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Arrêt en cours...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Arrêt forcé", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if config.FromEnv().IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func buildDeps(cfg config.Config, conns *database.Connections, logger *zap.Logger) services.Deps {
	deps := services.Deps{DB: conns.SQL, Logger: logger}

	if conns.Redis != nil {
		deps.Events = cache.NewRedisPublisher(conns.Redis)
	}
	if conns.Elastic != nil {
		deps.Index = services.NewElasticOrderIndex(conns.Elastic)
	}
	if cfg.SMTPHost != "" {
		deps.Mailer = utils.NewMailer(cfg, logger)
	} else {
		logger.Warn("⚠️ SMTP_HOST absent, e-mails désactivés")
	}

	if conns.MinIO != nil {
		deps.Proofs = services.NewMinioProofStore(conns.MinIO, cfg.MinioBucket)
	} else {
		deps.Proofs = services.NewLocalProofStore(cfg.UploadDir)
	}
	return deps
}

func buildOptions(cfg config.Config, conns *database.Connections, logger *zap.Logger) handlers.Options {
	opts := handlers.Options{
		Sessions:       config.NewSessionStore(cfg),
		Conns:          conns,
		AllowedOrigins: cfg.CORSOrigins,
	}

	if conns.Redis != nil {
		opts.ProductCache = cache.NewProductCache(conns.Redis)
		opts.Stream = cache.NewRedisPublisher(conns.Redis)
	}

	if conns.Scylla != nil {
		if err := database.EnsureAuditSchema(conns.Scylla); err != nil {
			logger.Fatal("❌ Schéma d'audit ScyllaDB", zap.Error(err))
		}
		opts.Audit = audit.NewScyllaLogger(conns.Scylla)
	} else {
		logger.Warn("⚠️ ScyllaDB non configuré, audit conservé en mémoire")
		opts.Audit = audit.NewMemoryLogger()
	}
	return opts
}
