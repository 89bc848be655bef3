package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"bankcards/internal/config"
	"bankcards/internal/crypto"
	"bankcards/internal/handler"
	"bankcards/internal/repository"
	"bankcards/internal/seed"
	"bankcards/internal/service"
	"bankcards/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	cipher := crypto.NewCipher(cfg.EncryptionKey)
	userRepo := repository.NewUserRepository(db, logger)
	cardRepo := repository.NewCardRepository(db, logger)
	emailSender := email.NewSender(cfg, logger)
	authService := service.NewAuthService(userRepo, cfg, logger)
	cardService := service.NewCardService(cardRepo, userRepo, cipher, emailSender, logger)
	authHandler := handler.NewAuthHandler(authService, logger)
	cardHandler := handler.NewCardHandler(cardService, logger)

	// Optional demo data
	if cfg.SeedDemoData {
		if err := seed.Run(context.Background(), logger, userRepo, authService, cardService, cipher); err != nil {
			logger.WithError(err).Warn("Failed to seed demo data")
		}
	}

	// Setup router
	r := mux.NewRouter()
	// Public routes
	authRouter := r.PathPrefix("/auth").Subrouter()
	authHandler.RegisterRoutes(authRouter)
	// Protected routes
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(handler.AuthMiddleware(authService, logger))
	cardRouter := apiRouter.PathPrefix("/cards").Subrouter()
	cardHandler.RegisterRoutes(cardRouter)
	// Privileged routes
	adminRouter := apiRouter.PathPrefix("/cards").Subrouter()
	adminRouter.Use(handler.RequireAdmin(logger))
	cardHandler.RegisterAdminRoutes(adminRouter)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
