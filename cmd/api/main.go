package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/andresmejia/loantrack/internal/config"
	"github.com/andresmejia/loantrack/internal/handler"
	"github.com/andresmejia/loantrack/internal/middleware"
	"github.com/andresmejia/loantrack/internal/repository"
	"github.com/andresmejia/loantrack/internal/scheduler"
	"github.com/andresmejia/loantrack/internal/service"
	"github.com/andresmejia/loantrack/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
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
	if err := repository.InitSchema(db); err != nil {
		logger.Fatalf("Failed to initialize schema: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, mailer, logger, cfg)
	h := handler.NewHandler(svc)

	// Start the daily delinquency sweep
	sweep := scheduler.NewScheduler(repo, mailer, logger)
	if err := sweep.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sweep.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/clients", h.CreateClient).Methods("POST")
	authRouter.HandleFunc("/clients", h.ListClients).Methods("GET")
	authRouter.HandleFunc("/clients/{id}", h.GetClient).Methods("GET")
	authRouter.HandleFunc("/clients/{id}", h.UpdateClient).Methods("PUT")
	authRouter.HandleFunc("/clients/{id}", h.DeactivateClient).Methods("DELETE")
	authRouter.HandleFunc("/loans", h.CreateLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id}", h.GetLoan).Methods("GET")
	authRouter.HandleFunc("/loans/{id}/schedule", h.GetSchedule).Methods("GET")
	authRouter.HandleFunc("/loans/{id}/statement", h.GetStatement).Methods("GET")
	authRouter.HandleFunc("/loans/{id}/close", h.CloseLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id}/payments", h.CreatePayment).Methods("POST")
	authRouter.HandleFunc("/summary", h.GetSummary).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
