package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"millops-backend/config"
	"millops-backend/internal/mw"
	"millops-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	maxUploadMB := cfg.Uploads.MaxSizeMB
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	handler := NewHandler(s, webpushOptions, cfg.Uploads.Dir, maxUploadMB)

	limit := cfg.Server.RateLimitPerSec
	if limit <= 0 {
		limit = 10
	}
	rateLimiter := mw.RateLimiter(rate.Limit(limit), int(limit))

	// Cache: report endpoints only; lifecycle and status endpoints must
	// always be evaluated fresh.
	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.Branch())
	{
		// Transfer session lifecycle
		api.POST("/transfer-sessions/start", handler.StartSession)
		api.POST("/transfer-sessions/:id/divert", handler.DivertSession)
		api.POST("/transfer-sessions/:id/stop", handler.StopSession)
		api.POST("/transfer-sessions/:id/cancel", handler.CancelSession)
		api.GET("/transfer-sessions/:id", handler.GetSession)
		api.GET("/transfer-sessions/:id/magnet-status", handler.SessionMagnetStatus)
		api.GET("/transfer-sessions", handler.ListSessions)

		// Cleaning compliance
		api.POST("/magnet-cleaning-records", handler.CreateCleaningRecord)
		api.GET("/magnet-cleaning-records", handler.ListCleaningRecords)
		api.PUT("/magnet-cleaning-records/:id", handler.UpdateCleaningRecord)
		api.DELETE("/magnet-cleaning-records/:id", handler.DeleteCleaningRecord)

		// Inventory
		api.POST("/godowns", handler.CreateGodown)
		api.GET("/godowns", handler.ListGodowns)
		api.GET("/godowns/:id", handler.GetGodown)
		api.POST("/bins", handler.CreateBin)
		api.GET("/bins", handler.ListBins)
		api.PUT("/bins/:id", handler.UpdateBin)
		api.POST("/waste-entries", handler.CreateWasteEntry)
		api.GET("/waste-entries", handler.ListWasteEntries)

		// Magnet registry and routes
		api.POST("/magnets", handler.CreateMagnet)
		api.GET("/magnets", handler.ListMagnets)
		api.PUT("/magnets/:id", handler.UpdateMagnet)
		api.POST("/route-configurations", handler.CreateRoute)
		api.GET("/route-configurations", handler.ListRoutes)
		api.DELETE("/route-configurations/:id", handler.DeleteRoute)

		// Gate, lab, claims
		api.POST("/suppliers", handler.CreateSupplier)
		api.GET("/suppliers", handler.ListSuppliers)
		api.POST("/gate-entries", handler.CreateGateEntry)
		api.GET("/gate-entries", handler.ListGateEntries)
		api.POST("/gate-entries/:id/unload", handler.UnloadGateEntry)
		api.POST("/lab-tests", handler.CreateLabTest)
		api.GET("/lab-tests", handler.ListLabTests)
		api.POST("/claims", handler.CreateClaim)
		api.GET("/claims", handler.ListClaims)
		api.POST("/claims/:id/settle", handler.SettleClaim)

		// Production planning
		api.POST("/production-orders", handler.CreateProductionOrder)
		api.GET("/production-orders", handler.ListProductionOrders)
		api.POST("/production-orders/:id/status", handler.UpdateProductionOrderStatus)

		// Orders and dispatch
		api.POST("/customers", handler.CreateCustomer)
		api.GET("/customers", handler.ListCustomers)
		api.POST("/bag-sizes", handler.CreateBagSize)
		api.GET("/bag-sizes", handler.ListBagSizes)
		api.POST("/orders", handler.CreateOrder)
		api.GET("/orders", handler.ListOrders)
		api.GET("/orders/:id/summary", handler.GetOrderSummary)
		api.POST("/orders/:id/status", handler.UpdateOrderStatus)
		api.POST("/dispatches", handler.CreateDispatch)
		api.GET("/dispatches", handler.ListDispatches)

		// Admin
		api.POST("/branches", handler.CreateBranch)
		api.GET("/branches", handler.ListBranches)
		api.POST("/users", handler.CreateUser)
		api.GET("/users", handler.ListUsers)
		api.POST("/machines", handler.CreateMachine)
		api.GET("/machines", handler.ListMachines)

		// Reports
		api.GET("/reports/cleaning-history", caching, handler.CleaningHistoryReport)
		api.GET("/reports/transfer-details", caching, handler.TransferDetailsReport)
		api.GET("/reports/overdue-magnets", handler.OverdueMagnetsReport)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
