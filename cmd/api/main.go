package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"finpulse/internal/database"
	"finpulse/internal/insight"
	"finpulse/internal/model"
	"finpulse/internal/scheduler"
	"finpulse/internal/server"
)

func main() {
	config, err := model.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Startup sequence: wait for the database, apply migrations, serve.
	waitCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := database.WaitReady(waitCtx, config.Database); err != nil {
		log.Fatalf("Database never became ready: %v", err)
	}
	cancel()

	if err := database.Migrate(config.Database); err != nil {
		log.Fatalf("Could not migrate database: %v", err)
	}

	db := database.New(config.Database)
	httpServer := server.NewServer(config, db)

	if config.SchedulerEnabled {
		sched, err := scheduler.New(config.InsightCron, insight.NewGenerator(db, config.GeminiAPIKey))
		if err != nil {
			log.Fatalf("Invalid INSIGHT_CRON spec %q: %v", config.InsightCron, err)
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		log.Printf("Listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
