package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Bu1gur/challenger-crm/internal/auth"
	"github.com/Bu1gur/challenger-crm/internal/cache"
	"github.com/Bu1gur/challenger-crm/internal/client"
	"github.com/Bu1gur/challenger-crm/internal/config"
	"github.com/Bu1gur/challenger-crm/internal/logger"
	"github.com/Bu1gur/challenger-crm/internal/reference"
	"github.com/Bu1gur/challenger-crm/internal/trainer"
	"github.com/Bu1gur/challenger-crm/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
}

func New(db *sqlx.DB, store cache.Cache, cfg *config.Config) *Server {
	router := gin.New()
	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)

	router.Use(
		RecoveryMiddleware(logger.L()),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(cfg.CORSOrigins),
		limiter.Middleware(),
	)

	referenceService := reference.NewService(reference.NewRepository(db), store)
	clientService := client.NewService(client.NewRepository(db), referenceService)
	trainerService := trainer.NewService(trainer.NewRepository(db), referenceService, clientService)

	userHandler := user.NewHandler(user.NewService(user.NewRepository(db), cfg.JWTSecret))
	referenceHandler := reference.NewHandler(referenceService)
	clientHandler := client.NewHandler(clientService)
	trainerHandler := trainer.NewHandler(trainerService)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	adminMiddleware := auth.RequireRole(auth.RoleAdmin)

	public := router.Group("/auth")
	{
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}
	router.POST("/auth/register", authMiddleware, adminMiddleware, userHandler.Register)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/clients", clientHandler.List)
		protected.POST("/clients", clientHandler.Create)
		protected.POST("/clients/quote", clientHandler.Quote)
		protected.GET("/clients/:id", clientHandler.Get)
		protected.PUT("/clients/:id", clientHandler.Update)
		protected.DELETE("/clients/:id", clientHandler.Delete)
		protected.POST("/clients/:id/restore", clientHandler.Restore)
		protected.POST("/clients/:id/extend", clientHandler.Extend)
		protected.POST("/clients/:id/extend/quote", clientHandler.QuoteRenewal)
		protected.POST("/clients/:id/visits", clientHandler.AddVisit)
		protected.DELETE("/clients/:id/visits/:date", clientHandler.RemoveVisit)
		protected.GET("/clients/:id/summary", clientHandler.Summary)

		protected.GET("/periods", referenceHandler.ListPeriods)
		protected.GET("/payments", referenceHandler.ListPaymentMethods)
		protected.GET("/groups", referenceHandler.ListGroups)
		protected.GET("/freezeSettings", referenceHandler.GetFreezeSettings)

		protected.GET("/trainers", trainerHandler.List)
		protected.POST("/trainers", trainerHandler.Create)
		protected.GET("/trainers/:id", trainerHandler.Get)
		protected.PUT("/trainers/:id", trainerHandler.Update)
		protected.DELETE("/trainers/:id", trainerHandler.Delete)
		protected.GET("/trainers/:id/clients", trainerHandler.Clients)
		protected.GET("/trainers/:id/schedule", trainerHandler.Schedule)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/periods", referenceHandler.CreatePeriod)
		admin.PUT("/periods/:id", referenceHandler.UpdatePeriod)
		admin.DELETE("/periods/:id", referenceHandler.DeletePeriod)
		admin.POST("/payments", referenceHandler.CreatePaymentMethod)
		admin.PUT("/payments/:id", referenceHandler.UpdatePaymentMethod)
		admin.DELETE("/payments/:id", referenceHandler.DeletePaymentMethod)
		admin.POST("/groups", referenceHandler.CreateGroup)
		admin.PUT("/groups/:id", referenceHandler.UpdateGroup)
		admin.DELETE("/groups/:id", referenceHandler.DeleteGroup)
		admin.PUT("/freezeSettings", referenceHandler.UpdateFreezeSettings)
	}

	router.GET("/health", Health(db, store))
	router.GET("/metrics", Metrics())

	return &Server{
		router:  router,
		limiter: limiter,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.http.Shutdown(ctx)
}
