package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/am-muhwezi/ptf-sub000/internal/attendance"
	"github.com/am-muhwezi/ptf-sub000/internal/auth"
	"github.com/am-muhwezi/ptf-sub000/internal/cache"
	"github.com/am-muhwezi/ptf-sub000/internal/catalog"
	"github.com/am-muhwezi/ptf-sub000/internal/clock"
	"github.com/am-muhwezi/ptf-sub000/internal/config"
	"github.com/am-muhwezi/ptf-sub000/internal/member"
	"github.com/am-muhwezi/ptf-sub000/internal/stats"
	"github.com/am-muhwezi/ptf-sub000/internal/subscription"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, store cache.Cache) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(50, 100))

	clk := clock.Real{}
	loc := cfg.Location

	memberRepo := member.NewRepository(db)
	planRepo := catalog.NewRepository(db)
	subRepo := subscription.NewRepository(db, loc)
	logRepo := attendance.NewRepository(db)
	statsRepo := stats.NewRepository(db, loc)

	subService := subscription.NewService(db, subRepo, planRepo, memberRepo, clk, loc)
	accountant := subscription.NewAccountant(db, subRepo, clk, loc)
	admission := attendance.NewService(db, logRepo, memberRepo, subRepo, clk, loc, cfg.ActivityUpdateThreshold)
	statsService := stats.NewService(statsRepo, subRepo, store, clk, cfg.CacheTTLs)

	memberHandler := member.NewHandler(memberRepo, store, subscription.NewEnroller(subService), cfg.CacheTTLs.Search, cfg.MaxPageSize)
	planHandler := catalog.NewHandler(db)
	subHandler := subscription.NewHandler(subRepo, subService, accountant, store, clk, loc, cfg.MaxPageSize)
	attendanceHandler := attendance.NewHandler(admission, logRepo, store, clk, loc, cfg.MaxPageSize)
	statsHandler := stats.NewHandler(statsService)
	cacheHandler := cache.NewHandler(store)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	authMiddleware := auth.Middleware(cfg.JWTSecret)

	staff := router.Group("/")
	staff.Use(authMiddleware, auth.RequireRole(auth.RoleStaff))
	{
		staff.POST("/members", memberHandler.Create)
		staff.GET("/members", memberHandler.List)
		staff.GET("/members/search", memberHandler.Search)
		staff.GET("/members/status-summary", memberHandler.StatusSummary)
		staff.GET("/members/:id", memberHandler.Get)
		staff.PUT("/members/:id", memberHandler.Update)
		staff.DELETE("/members/:id", memberHandler.Deactivate)
		staff.PUT("/members/:id/physical-profile", memberHandler.UpsertProfile)
		staff.GET("/members/:id/physical-profile", memberHandler.GetProfile)

		staff.POST("/members/:id/check-in", attendanceHandler.CheckIn)
		staff.POST("/members/:id/check-out", attendanceHandler.CheckOut)
		staff.GET("/attendance", attendanceHandler.List)

		staff.POST("/subscriptions", subHandler.Create)
		staff.GET("/subscriptions/payments-due", subHandler.PaymentsDue)
		staff.GET("/subscriptions/renewals-due", subHandler.RenewalsDue)
		staff.GET("/subscriptions/expiring-soon", subHandler.ExpiringSoon)
		staff.GET("/subscriptions/:id", subHandler.Get)
		staff.POST("/subscriptions/:id/renew", subHandler.Renew)
		staff.POST("/subscriptions/:id/suspend", subHandler.Suspend)
		staff.POST("/subscriptions/:id/reactivate", subHandler.Reactivate)
		staff.POST("/subscriptions/:id/cancel", subHandler.Cancel)
		staff.POST("/subscriptions/:id/payment", subHandler.RecordPayment)
		staff.POST("/subscriptions/:id/use-session", subHandler.UseSession)
		staff.GET("/subscriptions/:id/session-logs", subHandler.SessionLogs)

		staff.GET("/plans", planHandler.ListPlans)
		staff.GET("/locations", planHandler.ListLocations)

		staff.GET("/analytics", statsHandler.Dashboard)
		staff.GET("/analytics/counts", statsHandler.Counts)
	}

	super := router.Group("/")
	super.Use(authMiddleware, auth.RequireRole(auth.RoleSuperuser))
	{
		super.POST("/plans", planHandler.CreatePlan)
		super.POST("/subscriptions/:id/credit-session", subHandler.CreditSession)
		super.POST("/cache/invalidate", cacheHandler.Invalidate)
	}

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
