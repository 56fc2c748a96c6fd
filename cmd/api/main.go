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

	"campaign-review-engine/internal/client"
	"campaign-review-engine/internal/config"
	"campaign-review-engine/internal/repository"
	"campaign-review-engine/internal/server"
	"campaign-review-engine/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitDBClient(&cfg.Database)

	storage, err := client.NewLocalStorageClient(cfg.Storage.Dir)
	if err != nil {
		log.Fatal(err)
	}

	campaignRepo := repository.NewCampaignRepository(db)
	itemRepo := repository.NewItemRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	buyerRepo := repository.NewBuyerRepository(db)
	imageRepo := repository.NewImageRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	itemService := service.NewItemService(db, campaignRepo, itemRepo, slotRepo)
	splitService := service.NewSplitService(db, itemRepo, slotRepo)
	assignmentService := service.NewAssignmentService(db, itemRepo, assignmentRepo)
	reconcileService := service.NewReconcileService(db, storage, itemRepo, slotRepo, buyerRepo, imageRepo)
	approvalService := service.NewApprovalService(db, storage, itemRepo, buyerRepo, imageRepo)
	trashService := service.NewTrashService(db, cfg.Trash.RetentionDays)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(
		cfg.Environment.Name,
		cfg.Auth.JWTSecret,
		itemService,
		splitService,
		assignmentService,
		reconcileService,
		approvalService,
		trashService,
	)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	// Periodic trash purge; daily is plenty for a 30-day window.
	purgeCtx, purgeCancel := context.WithCancel(context.Background())
	defer purgeCancel()
	go runPurgeLoop(purgeCtx, trashService, cfg.Trash.PurgeInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")
	purgeCancel()

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}

func runPurgeLoop(ctx context.Context, trashService service.TrashService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := trashService.PurgeExpired(ctx)
			if err != nil {
				log.Println("trash purge failed:", err)
				continue
			}
			if purged > 0 {
				log.Println("trash purge removed", purged, "entities")
			}
		}
	}
}
