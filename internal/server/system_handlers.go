package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Bu1gur/challenger-crm/internal/api"
	"github.com/Bu1gur/challenger-crm/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type DBPinger interface {
	PingContext(ctx context.Context) error
}

type CachePinger interface {
	Ping(ctx context.Context) error
}

// @Summary      Health check
// @Description  Database failure makes the service unhealthy; cache failure only degrades it.
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.HealthResponse
// @Router       /health [get]
func Health(db DBPinger, store CachePinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := api.HealthResponse{Status: "ok", Database: "ok", Cache: "ok"}
		code := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			logger.WithError(err).Warn("health: database unreachable")
			resp.Status, resp.Database = "unavailable", "down"
			code = http.StatusServiceUnavailable
		}
		if err := store.Ping(ctx); err != nil {
			logger.WithError(err).Warn("health: cache unreachable")
			resp.Cache = "down"
			if code == http.StatusOK {
				resp.Status = "degraded"
			}
		}

		c.JSON(code, resp)
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
