package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/apikey"
	apikeydomain "github.com/insightpulse/scout/internal/apikey/domain"
	"github.com/insightpulse/scout/internal/audit"
	auditdomain "github.com/insightpulse/scout/internal/audit/domain"
	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/brand"
	branddomain "github.com/insightpulse/scout/internal/brand/domain"
	"github.com/insightpulse/scout/internal/bronze"
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	"github.com/insightpulse/scout/internal/cloudmetrics"
	"github.com/insightpulse/scout/internal/config"
	"github.com/insightpulse/scout/internal/device"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	"github.com/insightpulse/scout/internal/gold"
	golddomain "github.com/insightpulse/scout/internal/gold/domain"
	"github.com/insightpulse/scout/internal/landing"
	landingdomain "github.com/insightpulse/scout/internal/landing/domain"
	"github.com/insightpulse/scout/internal/observability"
	obsmiddleware "github.com/insightpulse/scout/internal/observability/logger"
	obsmetrics "github.com/insightpulse/scout/internal/observability/metrics"
	obstracing "github.com/insightpulse/scout/internal/observability/tracing"
	"github.com/insightpulse/scout/internal/product"
	productdomain "github.com/insightpulse/scout/internal/product/domain"
	"github.com/insightpulse/scout/internal/ratelimit"
	"github.com/insightpulse/scout/internal/recommendation"
	recodomain "github.com/insightpulse/scout/internal/recommendation/domain"
	"github.com/insightpulse/scout/internal/report"
	"github.com/insightpulse/scout/internal/silver"
	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
)

var Module = fx.Module("http.server",
	cloudmetrics.Module,
	authz.Module,
	audit.Module,
	apikey.Module,
	brand.Module,
	product.Module,
	device.Module,
	landing.Module,
	bronze.Module,
	silver.Module,
	gold.Module,
	recommendation.Module,
	report.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	landingSvc landingdomain.Service
	bronzeSvc  bronzedomain.Service
	silverSvc  silverdomain.Service
	goldSvc    golddomain.Service
	recoSvc    recodomain.Service
	reportSvc  report.Service
	brandSvc   branddomain.Service
	productSvc productdomain.Service
	deviceSvc  devicedomain.Service
	apiKeySvc  apikeydomain.Service
	auditSvc   auditdomain.Service
	authzSvc   authz.Service
	limiter    *ratelimit.IngestLimiter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	LandingSvc landingdomain.Service
	BronzeSvc  bronzedomain.Service
	SilverSvc  silverdomain.Service
	GoldSvc    golddomain.Service
	RecoSvc    recodomain.Service
	ReportSvc  report.Service
	BrandSvc   branddomain.Service
	ProductSvc productdomain.Service
	DeviceSvc  devicedomain.Service
	APIKeySvc  apikeydomain.Service
	AuditSvc   auditdomain.Service
	AuthzSvc   authz.Service
	Limiter    *ratelimit.IngestLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		genID:      p.GenID,
		landingSvc: p.LandingSvc,
		bronzeSvc:  p.BronzeSvc,
		silverSvc:  p.SilverSvc,
		goldSvc:    p.GoldSvc,
		recoSvc:    p.RecoSvc,
		reportSvc:  p.ReportSvc,
		brandSvc:   p.BrandSvc,
		productSvc: p.ProductSvc,
		deviceSvc:  p.DeviceSvc,
		apiKeySvc:  p.APIKeySvc,
		auditSvc:   p.AuditSvc,
		authzSvc:   p.AuthzSvc,
		limiter:    p.Limiter,
	}

	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.APIKeyRequired())

	api.POST("/ingest", s.RequireScope(apikeydomain.ScopeIngestWrite), s.RateLimitIngest(), s.Ingest)

	etl := api.Group("/etl", s.RequireScope(apikeydomain.ScopeETLRun))
	etl.POST("/load-pending", s.LoadPending)
	etl.POST("/promote-new", s.PromoteNew)
	etl.POST("/recommendations", s.GenerateRecommendations)

	reads := api.Group("", s.RequireScope(apikeydomain.ScopeGoldRead))
	reads.GET("/gold/daily-revenue", s.DailyRevenue)
	reads.GET("/gold/brand-performance", s.BrandPerformance)
	reads.GET("/gold/category-mix", s.CategoryMix)
	reads.GET("/gold/store-activity", s.StoreActivity)
	reads.GET("/bronze/records", s.ListBronzeRecords)
	reads.GET("/silver/transactions", s.ListSilverTransactions)
	reads.GET("/recommendations", s.ListRecommendations)
	reads.GET("/reports/daily", s.DailyReport)

	manage := api.Group("", s.RequireScope(apikeydomain.ScopeETLRun))
	manage.POST("/brands", s.CreateBrand)
	manage.GET("/brands", s.ListBrands)
	manage.GET("/brands/:id", s.GetBrandByID)
	manage.PATCH("/brands/:id", s.UpdateBrand)
	manage.DELETE("/brands/:id", s.DeleteBrand)

	manage.POST("/products", s.CreateProduct)
	manage.GET("/products", s.ListProducts)
	manage.GET("/products/:id", s.GetProductByID)
	manage.PATCH("/products/:id", s.UpdateProduct)
	manage.DELETE("/products/:id", s.DeleteProduct)
	manage.POST("/product-categories", s.CreateProductCategory)
	manage.GET("/product-categories", s.ListProductCategories)

	manage.POST("/devices", s.CreateDevice)
	manage.GET("/devices", s.ListDevices)
	manage.GET("/devices/:id", s.GetDeviceByID)
	manage.PATCH("/devices/:id", s.UpdateDevice)
	manage.DELETE("/devices/:id", s.DeleteDevice)

	manage.POST("/api-keys", s.CreateAPIKey)
	manage.GET("/api-keys", s.ListAPIKeys)
	manage.POST("/api-keys/:key_id/rotate", s.RotateAPIKey)
	manage.DELETE("/api-keys/:key_id", s.RevokeAPIKey)

	manage.GET("/audit-logs", s.ListAuditLogs)
	manage.GET("/landing/pending", s.LandingPending)
}
