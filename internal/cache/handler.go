package cache

import (
	"net/http"

	"github.com/am-muhwezi/ptf-sub000/internal/api"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	cache Cache
}

func NewHandler(cache Cache) *Handler {
	return &Handler{cache: cache}
}

type InvalidateRequest struct {
	Prefix string `json:"prefix"`
}

type InvalidateResponse struct {
	Deleted int64 `json:"deleted"`
}

// Invalidate godoc
// @Summary      Drop cached snapshots
// @Description  Deletes every cached key matching the given prefix. Empty prefix drops everything.
// @Tags         cache
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      InvalidateRequest  true  "Prefix to drop"
// @Success      200   {object}  InvalidateResponse
// @Failure      500   {object}  api.ErrorResponse
// @Router       /cache/invalidate [post]
func (h *Handler) Invalidate(c *gin.Context) {
	var req InvalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return
	}

	deleted, err := h.cache.DeletePrefix(c.Request.Context(), req.Prefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to invalidate cache"))
		return
	}

	logger.Info("cache invalidated", "prefix", req.Prefix, "deleted", deleted)
	c.JSON(http.StatusOK, InvalidateResponse{Deleted: deleted})
}
