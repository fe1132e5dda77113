package attendance

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/am-muhwezi/ptf-sub000/internal/api"
	"github.com/am-muhwezi/ptf-sub000/internal/cache"
	"github.com/am-muhwezi/ptf-sub000/internal/clock"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"
	"github.com/am-muhwezi/ptf-sub000/internal/member"
)

type Handler struct {
	service    Service
	repo       Repository
	cache      cache.Cache
	clk        clock.Clock
	loc        *time.Location
	maxPerPage int
}

func NewHandler(service Service, repo Repository, c cache.Cache, clk clock.Clock, loc *time.Location, maxPerPage int) *Handler {
	return &Handler{
		service:    service,
		repo:       repo,
		cache:      c,
		clk:        clk,
		loc:        loc,
		maxPerPage: maxPerPage,
	}
}

// CheckIn godoc
// @Summary      Check a member in
// @Description  Runs the admission gates and debits one session on success.
// @Tags         attendance
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Member ID"
// @Success      200  {object}  Result
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.RejectionResponse
// @Router       /members/{id}/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	memberID, ok := h.pathID(c)
	if !ok {
		return
	}

	result, err := h.service.CheckIn(c.Request.Context(), memberID)
	if err != nil {
		h.writeError(c, memberID, err, "check-in")
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, result)
}

// CheckOut godoc
// @Summary      Check a member out
// @Tags         attendance
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Member ID"
// @Success      200  {object}  Log
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.RejectionResponse
// @Router       /members/{id}/check-out [post]
func (h *Handler) CheckOut(c *gin.Context) {
	memberID, ok := h.pathID(c)
	if !ok {
		return
	}

	log, err := h.service.CheckOut(c.Request.Context(), memberID)
	if err != nil {
		h.writeError(c, memberID, err, "check-out")
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, log)
}

// List godoc
// @Summary      List attendance for a day
// @Tags         attendance
// @Security     BearerAuth
// @Produce      json
// @Param        date      query     string  false  "Day (YYYY-MM-DD, default today)"
// @Param        page      query     int     false  "Page"
// @Param        per_page  query     int     false  "Page size"
// @Success      200       {object}  api.ListResponse[WithMember]
// @Router       /attendance [get]
func (h *Handler) List(c *gin.Context) {
	day := clock.DayOf(h.clk.Now(), h.loc)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	page, perPage := api.ParsePaging(c, h.maxPerPage)
	logs, total, err := h.repo.ListByDay(c.Request.Context(), ListFilter{
		Day:     day,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load attendance"))
		return
	}

	c.JSON(http.StatusOK, api.NewListResponse(logs, api.NewPagination(page, perPage, total)))
}

func (h *Handler) writeError(c *gin.Context, memberID int64, err error, op string) {
	var deniedErr *DeniedError
	switch {
	case errors.As(err, &deniedErr):
		c.JSON(http.StatusConflict, api.RejectionResponse{
			Error:  string(deniedErr.Reason),
			Detail: deniedErr.Detail,
		})
	case errors.Is(err, member.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "member not found"})
	default:
		logger.Errorf("Failed %s for member %d: %v", op, memberID, err)
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to process " + op))
	}
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid member id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) invalidateStats(c *gin.Context) {
	if h.cache == nil {
		return
	}
	if _, err := h.cache.DeletePrefix(c.Request.Context(), "stats:"); err != nil {
		logger.Errorf("Failed to invalidate stats cache: %v", err)
	}
}
