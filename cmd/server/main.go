package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studytime-backend/internal/config"
	"studytime-backend/internal/database"
	"studytime-backend/internal/handlers"
	"studytime-backend/internal/notify"
	"studytime-backend/internal/repository"
	"studytime-backend/internal/router"
	"studytime-backend/internal/scheduler"
	"studytime-backend/internal/service"
	"studytime-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Studytime Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Store & Services ────
	sessionRepo := repository.NewSessionRepo(pool)
	sessionService := service.NewSessionService(sessionRepo)
	statsService := service.NewStatsService(sessionRepo)

	// ──── Initialize Handlers ────
	sessionHandler := handlers.NewSessionHandler(sessionService)
	statsHandler := handlers.NewStatsHandler(statsService)
	reportHandler := handlers.NewReportHandler(statsService)

	// ──── Step 5: Start Daily Report Scheduler ────
	publisher := notify.NewReportPublisher(redisClients.Queue)
	reportScheduler := scheduler.NewDailyReportScheduler(sessionRepo, publisher, cfg.ReportHour)
	reportScheduler.Start()

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(sessionHandler, statsHandler, reportHandler, wsHub)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		reportScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Studytime Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
