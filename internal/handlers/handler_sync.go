package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

type syncHandler struct {
	syncService portssvc.SyncSvcFacade
}

// registerSyncRoutes registers the cloud sync endpoints. They are rate
// limited because each call fans out into remote store traffic.
func registerSyncRoutes(rg *gin.RouterGroup, syncService portssvc.SyncSvcFacade, syncLimiter *limiter.Limiter) {
	h := &syncHandler{syncService: syncService}

	sync := rg.Group("/sync", middleware.RateLimit(syncLimiter))
	{
		sync.POST("/full", h.performFullSync)
		sync.POST("/all", h.syncAll)
	}
}

// performFullSync uploads every local entity kind, fail-fast.
func (h *syncHandler) performFullSync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.syncService.PerformFullSync(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotSignedIn) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No user is signed in"})
			return
		}
		logger.Error("Full sync failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sync failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// syncAll runs upload, download and merge for every kind and returns the
// per-kind report, including failures.
func (h *syncHandler) syncAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.syncService.SyncAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotSignedIn) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No user is signed in"})
			return
		}
		logger.Error("Sync run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed"})
		return
	}

	status := http.StatusOK
	if report.Failed() {
		// Partial failure: the report explains which kinds did not land.
		status = http.StatusMultiStatus
	}
	c.JSON(status, report)
}
