package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dandeat/barkir-core/internal/archive"
	"github.com/dandeat/barkir-core/internal/audit"
	"github.com/dandeat/barkir-core/internal/auth"
	"github.com/dandeat/barkir-core/internal/beacukai"
	"github.com/dandeat/barkir-core/internal/config"
	"github.com/dandeat/barkir-core/internal/database"
	exmodel "github.com/dandeat/barkir-core/internal/exchange/model"
	exrouter "github.com/dandeat/barkir-core/internal/exchange/router"
	exservice "github.com/dandeat/barkir-core/internal/exchange/service"
	"github.com/dandeat/barkir-core/internal/middleware"
	"github.com/dandeat/barkir-core/internal/pjt"
	"github.com/dandeat/barkir-core/internal/reference"
	"github.com/dandeat/barkir-core/internal/scheduler"
	"github.com/dandeat/barkir-core/internal/sequence"
	shipmodel "github.com/dandeat/barkir-core/internal/shipment/model"
	shiprouter "github.com/dandeat/barkir-core/internal/shipment/router"
	shipservice "github.com/dandeat/barkir-core/internal/shipment/service"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"db_sslmode", cfg.Database.SSLMode,
	)

	slog.Info("server configuration",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"beacukai_url", cfg.Beacukai.ServiceURL,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	if err := db.AutoMigrate(
		&reference.Code{},
		&pjt.Provider{},
		&shipmodel.Shipment{},
		&shipmodel.Container{},
		&shipmodel.Kemasan{},
		&exmodel.CocoExchange{},
		&exmodel.ContainerDetail{},
		&exmodel.PlpRequest{},
		&sequence.Sequence{},
		&audit.Note{},
	); err != nil {
		log.Fatalf("failed to migrate database schema: %v", err)
	}

	ctx := context.Background()

	// Sequences back the exchange reference numbers
	seq := sequence.NewService(db)
	if err := seq.Seed(ctx); err != nil {
		log.Fatalf("failed to seed sequences: %v", err)
	}

	// Storage backend for raw exchange payloads
	storage, err := archive.NewStorageFromConfig(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize archive storage: %v", err)
	}
	archiver := archive.NewService(storage)

	recorder := audit.NewRecorder(db)
	beacukaiClient := beacukai.NewClient(&cfg.Beacukai)

	refService := reference.NewService(db)
	pjtService := pjt.NewService(db)

	cocoService := exservice.NewCocoService(db, &cfg.Beacukai, beacukaiClient, seq, recorder, archiver, refService)
	plpService := exservice.NewPLPService(db, &cfg.Beacukai, beacukaiClient, seq, recorder, archiver)

	shipmentService := shipservice.NewShipmentService(db, cocoService)
	containerService := shipservice.NewContainerService(db)
	kemasanService := shipservice.NewKemasanService(db)

	refRouter := reference.NewRouter(refService)
	pjtRouter := pjt.NewRouter(pjtService)
	shipmentRouter := shiprouter.NewShipmentRouter(shipmentService)
	containerRouter := shiprouter.NewContainerRouter(containerService)
	kemasanRouter := shiprouter.NewKemasanRouter(kemasanService)
	cocoRouter := exrouter.NewCocoRouter(cocoService)
	plpRouter := exrouter.NewPLPRouter(plpService)

	// Set up HTTP routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/references", refRouter.HandleCreate)
	mux.HandleFunc("GET /api/references", refRouter.HandleList)
	mux.HandleFunc("GET /api/references/{category}/{code}", refRouter.HandleGet)
	mux.HandleFunc("POST /api/references/{category}/{code}/toggle", refRouter.HandleToggle)

	mux.HandleFunc("POST /api/pjt-providers", pjtRouter.HandleCreate)
	mux.HandleFunc("GET /api/pjt-providers", pjtRouter.HandleList)
	mux.HandleFunc("GET /api/pjt-providers/{code}", pjtRouter.HandleGet)
	mux.HandleFunc("PATCH /api/pjt-providers/{id}", pjtRouter.HandleUpdate)

	mux.HandleFunc("POST /api/shipments", shipmentRouter.HandleCreateShipment)
	mux.HandleFunc("GET /api/shipments", shipmentRouter.HandleListShipments)
	mux.HandleFunc("GET /api/shipments/{id}", shipmentRouter.HandleGetShipment)
	mux.HandleFunc("POST /api/shipments/{id}/confirm", shipmentRouter.HandleConfirmShipment)
	mux.HandleFunc("POST /api/shipments/{id}/reset", shipmentRouter.HandleResetShipment)
	mux.HandleFunc("POST /api/shipments/{id}/gate-in", shipmentRouter.HandleGateIn)
	mux.HandleFunc("POST /api/shipments/{id}/gate-out", shipmentRouter.HandleGateOut)
	mux.HandleFunc("POST /api/shipments/{id}/start-clearance", shipmentRouter.HandleStartClearance)
	mux.HandleFunc("POST /api/shipments/{id}/complete-clearance", shipmentRouter.HandleCompleteClearance)
	mux.HandleFunc("GET /api/shipments/{id}/containers", containerRouter.HandleListByShipment)

	authService := auth.NewService(db)
	mux.Handle("POST /api/sync/containers",
		auth.RequireProvider(authService)(http.HandlerFunc(containerRouter.HandleSyncContainers)))

	mux.HandleFunc("POST /api/containers", containerRouter.HandleCreateContainer)
	mux.HandleFunc("GET /api/containers/{id}", containerRouter.HandleGetContainer)
	mux.HandleFunc("POST /api/containers/{id}/arrived", containerRouter.HandleSetArrived)
	mux.HandleFunc("POST /api/containers/{id}/gate-in", containerRouter.HandleGateIn)
	mux.HandleFunc("POST /api/containers/{id}/gate-out", containerRouter.HandleGateOut)
	mux.HandleFunc("POST /api/containers/{id}/complete", containerRouter.HandleComplete)
	mux.HandleFunc("POST /api/containers/{id}/reset", containerRouter.HandleResetToDraft)
	mux.HandleFunc("GET /api/containers/{id}/kemasan", kemasanRouter.HandleListByContainer)

	mux.HandleFunc("POST /api/kemasan", kemasanRouter.HandleCreateKemasan)
	mux.HandleFunc("GET /api/kemasan/{id}", kemasanRouter.HandleGetKemasan)
	mux.HandleFunc("POST /api/kemasan/{id}/transition", kemasanRouter.HandleTransitionKemasan)

	mux.HandleFunc("POST /api/coco-exchanges", cocoRouter.HandleCreateCoco)
	mux.HandleFunc("GET /api/coco-exchanges", cocoRouter.HandleListCoco)
	mux.HandleFunc("GET /api/coco-exchanges/{id}", cocoRouter.HandleGetCoco)
	mux.HandleFunc("POST /api/coco-exchanges/{id}/ready", cocoRouter.HandleSetCocoReady)
	mux.HandleFunc("POST /api/coco-exchanges/{id}/draft", cocoRouter.HandleSetCocoDraft)
	mux.HandleFunc("POST /api/coco-exchanges/{id}/derive-out", cocoRouter.HandleDeriveCocoOut)
	mux.HandleFunc("POST /api/coco-exchanges/{id}/send", cocoRouter.HandleSendCoco)

	mux.HandleFunc("POST /api/plp-requests", plpRouter.HandleCreatePLP)
	mux.HandleFunc("GET /api/plp-requests", plpRouter.HandleListPLP)
	mux.HandleFunc("GET /api/plp-requests/{id}", plpRouter.HandleGetPLP)
	mux.HandleFunc("POST /api/plp-requests/{id}/duplicate", plpRouter.HandleDuplicatePLP)
	mux.HandleFunc("POST /api/plp-requests/{id}/ready", plpRouter.HandleSetPLPReady)
	mux.HandleFunc("POST /api/plp-requests/{id}/draft", plpRouter.HandleSetPLPDraft)
	mux.HandleFunc("POST /api/plp-requests/{id}/send", plpRouter.HandleSendPLP)
	mux.HandleFunc("POST /api/plp-requests/{id}/poll", plpRouter.HandlePollPLP)

	// Background pollers drive the exchange flows when credentials are set
	cocoPoller := scheduler.NewPoller("coco-send", cfg.Scheduler.CocoSendInterval, func(ctx context.Context) {
		cocoService.SendReady(ctx)
	})
	plpPoller := scheduler.NewPoller("plp-response", cfg.Scheduler.PLPResponseInterval, func(ctx context.Context) {
		plpService.PollSent(ctx, cfg.Scheduler.PLPResponseBatch)
	})
	if cfg.Beacukai.HasCredentials() {
		cocoPoller.Start(ctx)
		plpPoller.Start(ctx)
	} else {
		slog.Warn("beacukai credentials not configured, exchange pollers disabled")
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Wrap handler with CORS middleware
	handler := middleware.CORS(&cfg.CORS)(mux)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("shutting down server...")

	// Create a context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	if err := cocoPoller.Stop(shutdownCtx); err != nil {
		slog.Error("failed to stop coco poller", "error", err)
	}
	if err := plpPoller.Stop(shutdownCtx); err != nil {
		slog.Error("failed to stop plp poller", "error", err)
	}

	slog.Info("server stopped")
}
