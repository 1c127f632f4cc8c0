package http

import (
	"net/http"
	"time"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/config"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/infra/db"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/infra/narrative"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/infra/ratelimit"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/infra/trackermem"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/usecase"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	tracker *usecase.TrackerService
	rollup  *usecase.RollupService
	ingest  *usecase.IngestService
	insight *usecase.InsightService

	suppliers usecase.SupplierRepository
	orders    usecase.OrderRepository

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Tracker     *usecase.TrackerService
	Rollup      *usecase.RollupService
	Ingest      *usecase.IngestService
	Insight     *usecase.InsightService
	Suppliers   usecase.SupplierRepository
	Orders      usecase.OrderRepository
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:       cfg,
		r:         r,
		tracker:   deps.Tracker,
		rollup:    deps.Rollup,
		ingest:    deps.Ingest,
		insight:   deps.Insight,
		suppliers: deps.Suppliers,
		orders:    deps.Orders,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	var gormDB *gorm.DB
	if s.store != nil {
		gormDB = s.store.DB
	}
	// Repos tolerate a nil DB and report the store as unavailable, so no-db
	// mode still serves health checks and pure in-memory tracking paths.
	orderRepo := db.NewOrderRepository(gormDB)
	supplierRepo := db.NewSupplierRepository(gormDB)
	metricRepo := db.NewMetricRepository(gormDB)
	nodeRepo := db.NewNodeRepository(gormDB)
	factRepo := db.NewFactRepository(gormDB)

	cache := trackermem.New()
	s.tracker = usecase.NewTrackerService(orderRepo, supplierRepo, factRepo, cache)
	s.tracker.FrictionThreshold = s.cfg.FrictionThreshold
	s.rollup = usecase.NewRollupService(metricRepo, factRepo, s.cfg.FrictionThreshold)
	s.ingest = usecase.NewIngestService(factRepo, nodeRepo, s.cfg.ExpectedStandard, s.cfg.FrictionThreshold)
	s.insight = usecase.NewInsightService(narrative.NewClient(s.cfg), s.rollup, metricRepo)
	s.suppliers = supplierRepo
	s.orders = orderRepo

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = s.cfg.RateLimitWindow()
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode})
	})

	api := s.r.Group("/api")
	{
		api.GET("/kpis", s.handleKPIs)
		api.GET("/node-performance", s.handleNodePerformance)
		api.GET("/bottlenecks", s.handleBottlenecks)
		api.POST("/generate-insight", s.handleGenerateInsight)
	}

	v2 := s.r.Group("/api/v2")
	{
		v2.POST("/suppliers", s.handleCreateSupplier)
		v2.GET("/suppliers", s.handleListSuppliers)
		v2.POST("/orders/place", s.handlePlaceOrder)
		v2.PUT("/orders/:order_id/accept", s.handleAcceptOrder)
		v2.GET("/orders", s.handleListOrders)
		v2.GET("/track/:batch_id", s.handleTrack)
		v2.GET("/supplier/:supplier_id/kpis", s.handleSupplierKPIs)
		v2.GET("/supplier/:supplier_id/bottlenecks", s.handleSupplierBottlenecks)
		v2.GET("/tree", s.handleMetricTree)
		v2.GET("/rollup", s.handleRollup)
		v2.POST("/simulate", s.handleSimulate)
		v2.POST("/generate-processes", s.handleGenerateProcesses)

		limited := v2.Group("")
		limited.Use(s.rateLimitMiddleware())
		limited.POST("/webhook/erp", s.handleWebhookERP)
		limited.POST("/webhook/ocr", s.handleWebhookOCR)
		limited.POST("/ingest", s.handleIngest)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
			c.Next()
			return
		}
		key := "rl:" + c.ClientIP()
		decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
		if err != nil {
			// fail open: a broken limiter must not take the tracker down
			c.Next()
			return
		}
		if !decision.Allowed {
			writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}
