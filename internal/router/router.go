package router

import (
	"time"

	"marketrunner/internal/config"
	"marketrunner/internal/handler"
	"marketrunner/internal/infra"
	"marketrunner/internal/middleware"
	"marketrunner/internal/repository"
	"marketrunner/internal/service"
	"marketrunner/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// worker handlers the caller starts alongside the HTTP server.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, marketplaceCB *infra.CircuitBreaker) (*gin.Engine, worker.Handlers) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	marketplaceClient := infra.NewMarketplaceClient(cfg.MarketplaceAPIURL, cfg.MarketplaceToken)
	mailer := infra.NewMailer(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	runRepo := repository.NewRunRepository(db)
	confirmationRepo := repository.NewConfirmationRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	orderSvc := service.NewOrderService(orderRepo, productRepo)
	returnSvc := service.NewReturnService(returnRepo, storeRepo, productRepo)
	consolidationSvc := service.NewConsolidationService(orderRepo, returnRepo, productRepo, storeRepo, runRepo)
	runSvc := service.NewRunService(runRepo, orderRepo, returnRepo)
	pickingSvc := service.NewPickingService(
		runRepo, orderRepo, returnRepo, productRepo, storeRepo,
		confirmationRepo, ledgerRepo, shipmentRepo, dispatcher, cfg.OverpickSlack,
	)
	ledgerSvc := service.NewLedgerService(ledgerRepo, confirmationRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	returnsH := handler.NewReturnsHandler(returnSvc)
	runsH := handler.NewRunsHandler(consolidationSvc, runSvc)
	pickingH := handler.NewPickingHandler(pickingSvc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc, storeRepo, cfg.PDFStoragePath)
	storesH := handler.NewStoresHandler(storeRepo)
	catalogH := handler.NewCatalogHandler(productRepo, storeRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, marketplaceCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		anyRole := middleware.RequireRole("operator", "courier", "admin")
		operator := middleware.RequireRole("operator", "admin")
		courier := middleware.RequireRole("courier", "operator", "admin")
		admin := middleware.RequireRole("admin")

		// Demand ingestion and listing — operator
		v1.POST("/orders", operator, ordersH.IngestOrder)
		v1.GET("/orders", operator, ordersH.ListOrders)
		v1.GET("/orders/:id", operator, ordersH.GetOrder)
		v1.POST("/returns", operator, returnsH.CreateReturn)
		v1.GET("/returns", operator, returnsH.ListReturns)
		v1.GET("/returns/:id", operator, returnsH.GetReturn)

		// Consolidation and lifecycle
		v1.POST("/runs/consolidate", operator, runsH.Consolidate)
		v1.GET("/runs", anyRole, runsH.ListRuns)
		v1.GET("/runs/:runId", anyRole, runsH.GetRun)
		v1.POST("/runs/:runId/activate", operator, runsH.ActivateRun)
		// Cancellation mutates order/return rows a normal caller does not
		// own, so it is the one admin-only core operation.
		v1.POST("/runs/cancel", admin, runsH.CancelRuns)

		// Picking session — the courier surface
		v1.POST("/runs/:runId/items/:itemId/adjust", courier, pickingH.AdjustItem)
		v1.POST("/runs/:runId/items/:itemId/unavailable", courier, pickingH.ConfirmUnavailable)
		v1.POST("/runs/:runId/stores/:storeId/complete", courier, pickingH.CompleteStoreVisit)

		// Catalog quick check
		v1.GET("/catalog/:barcode", anyRole, catalogH.LookupBarcode)

		// Stores and reconciliation
		v1.POST("/stores", operator, storesH.CreateStore)
		v1.GET("/stores", anyRole, storesH.ListStores)
		v1.GET("/stores/:id/balance", operator, ledgerH.StoreBalance)
		v1.GET("/stores/:id/statement", operator, ledgerH.StatementPDF)
		v1.GET("/ledger", operator, ledgerH.ListEntries)
		v1.PUT("/confirmations/:id/amount", operator, ledgerH.AmendConfirmation)

		// User administration
		users := v1.Group("/users", admin)
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.DELETE("/:id", authH.DeactivateUser)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	workers := worker.Handlers{
		Shipment: worker.NewShipmentWorker(marketplaceClient, marketplaceCB, shipmentRepo, orderRepo),
		Email:    worker.NewEmailWorker(mailer),
	}
	return r, workers
}
