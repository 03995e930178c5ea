package handlers

import (
	"context"
	"net/http"
	"time"

	"memberhub_backend/internal/cache"
	"memberhub_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// HealthRuntime feeds process counters into the health body. Nil fields are
// left out.
type HealthRuntime struct {
	DetailSchemas    func() []string
	WebsocketClients func() int
}

type HealthHandler struct {
	*BaseHandler
	cache   cache.Cache
	runtime HealthRuntime
}

func NewHealthHandler(base *BaseHandler, c cache.Cache, runtime HealthRuntime) *HealthHandler {
	if c == nil {
		c = cache.Noop{}
	}
	return &HealthHandler{BaseHandler: base, cache: c, runtime: runtime}
}

// Health godoc
// @Summary      Liveness and dependency check
// @Description  Pings the database and the cache. Answers 503 when the database is unreachable; a cache failure only degrades the status. Also reports the registered details schemas and open websocket connections.
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{"status": "ok", "database": "ok", "cache": "ok"}
	code := http.StatusOK

	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.CtxWithError(ctx, "Health check: database unreachable", err)
		body["status"], body["database"] = "unavailable", "down"
		code = http.StatusServiceUnavailable
	}

	if err := h.cache.Ping(ctx); err != nil {
		logger.CtxWarn(ctx, "Health check: cache unreachable", "error", err.Error())
		body["cache"] = "down"
		if code == http.StatusOK {
			body["status"] = "degraded"
		}
	}

	if h.runtime.DetailSchemas != nil {
		body["detail_schemas"] = h.runtime.DetailSchemas()
	}
	if h.runtime.WebsocketClients != nil {
		body["websocket_clients"] = h.runtime.WebsocketClients()
	}

	c.JSON(code, body)
}
