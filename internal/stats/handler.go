package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/am-muhwezi/ptf-sub000/internal/api"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Dashboard godoc
// @Summary      Dashboard statistics snapshot
// @Description  Cached aggregate for the requested timeframe; staleness bounded by the dashboard TTL.
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        timeframe  query     string  false  "week|month|quarter|year (default month)"
// @Success      200        {object}  Snapshot
// @Failure      400        {object}  api.ErrorResponse
// @Router       /analytics [get]
func (h *Handler) Dashboard(c *gin.Context) {
	timeframe := Timeframe(c.DefaultQuery("timeframe", string(TimeframeMonth)))
	if !timeframe.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "timeframe must be week, month, quarter or year"})
		return
	}

	snap, err := h.service.Dashboard(c.Request.Context(), timeframe)
	if err != nil {
		logger.Errorf("Failed to build %s snapshot: %v", timeframe, err)
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to build statistics"))
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Counts godoc
// @Summary      Subscription counts by type and status
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  subscription.TypeStatusCount
// @Router       /analytics/counts [get]
func (h *Handler) Counts(c *gin.Context) {
	counts, err := h.service.Counts(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to load type/status counts: %v", err)
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load counts"))
		return
	}

	c.JSON(http.StatusOK, counts)
}
