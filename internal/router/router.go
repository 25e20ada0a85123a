package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/config"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/handler"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/infra"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/middleware"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/service"
)

// New builds the configured Gin engine around an already-wired POS service.
// Dependency graph: Handler ← Service ← Scheduler/Store ← RemoteStore.
func New(cfg *config.Config, svc service.PosService, db *gorm.DB, rdb *redis.Client, breaker *infra.Breaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute))

	posH := handler.NewPosHandler(svc)
	billsH := handler.NewBillsHandler(svc)

	r.GET("/health", handler.Health(db, rdb, breaker))
	if cfg.Env != "production" {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		pos := api.Group("/pos")

		pos.GET("/state", middleware.RequireCapability("pos", "state", "read"), posH.State)
		pos.PUT("/scope", middleware.RequireCapability("pos", "scope", "write"), posH.SetScope)
		pos.POST("/refresh", middleware.RequireCapability("pos", "state", "read"), posH.RefreshAll)
		pos.POST("/refresh/:kind", middleware.RequireCapability("pos", "state", "read"), posH.RefreshKind)

		records := pos.Group("/records")
		records.GET("/:kind", middleware.RequireCapability("pos", "records", "read"), posH.ListRecords)
		records.POST("/:kind", middleware.RequireCapability("pos", "records", "write"), posH.CreateRecord)
		records.PUT("/:kind/:id", middleware.RequireCapability("pos", "records", "write"), posH.UpdateRecord)
		records.DELETE("/:kind/:id", middleware.RequireCapability("pos", "records", "write"), posH.DeleteRecord)

		bills := pos.Group("/bills", middleware.RequireCapability("pos", "bills", "write"))
		bills.POST("", billsH.Open)
		bills.POST("/:id/items", billsH.AddItem)
		bills.PATCH("/:id/items/:itemID", billsH.AdjustItem)
		bills.DELETE("/:id/items/:itemID", billsH.RemoveItem)
		bills.POST("/:id/corrections", billsH.ApplyCorrection)
		bills.POST("/:id/terminate", billsH.Terminate)
	}

	return r
}
