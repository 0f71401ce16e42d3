package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/strafezone/portal/gameserver-service/internal/config"
	"github.com/strafezone/portal/gameserver-service/internal/db"
	"github.com/strafezone/portal/gameserver-service/internal/http"
	"github.com/strafezone/portal/gameserver-service/internal/query"
	"github.com/strafezone/portal/gameserver-service/internal/remote"
	"github.com/strafezone/portal/gameserver-service/internal/repository"
	"github.com/strafezone/portal/gameserver-service/internal/service"
)

const reapInterval = 5 * time.Minute

func main() {
	log.Println("Starting Gameserver Service...")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	database, err := db.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	pool := database.Pool

	// Initialize repositories
	hostRepo := repository.NewHostRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)
	instanceRepo := repository.NewInstanceRepository(pool)
	lobbyRepo := repository.NewLobbyRepository(pool)
	logRepo := repository.NewLogRepository(pool)

	// Initialize external collaborators
	orchestrator := remote.NewSSHOrchestrator(cfg.Provision)
	querier := query.NewA2SQuerier()

	// Initialize services
	allocator := service.NewAllocator(hostRepo, credentialRepo, instanceRepo)
	prober := service.NewStatusProber(querier, instanceRepo)

	instanceService := service.NewInstanceService(
		cfg,
		allocator,
		hostRepo,
		instanceRepo,
		lobbyRepo,
		logRepo,
		orchestrator,
		prober,
	)

	adminService := service.NewAdminService(hostRepo, credentialRepo, instanceRepo, logRepo, orchestrator)
	reaper := service.NewReaper(hostRepo, instanceRepo, logRepo, orchestrator)

	// Periodic reaper sweep: expired leases are invisible to queries but
	// their containers keep running until a sweep reclaims them
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(reapInterval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), reapInterval)
		defer cancel()
		if _, err := reaper.SweepExpired(ctx); err != nil {
			log.Printf("[Reaper] Sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule reaper sweep: %v", err)
	}
	scheduler.StartAsync()

	// Initialize HTTP server
	server := http.NewServer(cfg, instanceService, adminService, reaper)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("Server starting on %s", addr)
		if err := server.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	log.Println("Server exited")
}
