package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"libraryapi/internal/config"
	"libraryapi/internal/handlers"
	"libraryapi/internal/models"
	"libraryapi/internal/ratelimit"
	"libraryapi/internal/repositories"
	"libraryapi/internal/services"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	db, err := openDatabase(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get generic DB")
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.Book{}, &models.Borrower{}, &models.BorrowingProcess{}); err != nil {
		log.WithError(err).Fatal("failed to migrate schema")
	}

	bookRepo := repositories.NewBookRepository(db)
	borrowerRepo := repositories.NewBorrowerRepository(db)
	borrowingRepo := repositories.NewBorrowingRepository(db)

	catalog := services.NewCatalogService(bookRepo, log)
	borrowers := services.NewBorrowerService(borrowerRepo, log)
	borrowing := services.NewBorrowingService(db, bookRepo, borrowerRepo, borrowingRepo, log)
	reports := services.NewReportService(borrowingRepo, log)

	limiter := buildLimiter(cfg, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handlers.RequestLogger(log))
	router.Use(cors.Default())

	api := handlers.NewAPI(catalog, borrowers, borrowing, reports, log)
	api.RegisterRoutes(router, limiter, gin.Accounts{cfg.AdminUser: cfg.AdminPass})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", cfg.ServerAddr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	}
	return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
}

func buildLimiter(cfg config.Config, log *logrus.Logger) ratelimit.Limiter {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		log.WithField("addr", cfg.RedisAddr).Info("using redis-backed rate limiter")
		return ratelimit.NewRedis(client, cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	return ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow)
}
