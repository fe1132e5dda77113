package catalog

import (
	"errors"
	"net/http"

	"github.com/am-muhwezi/ptf-sub000/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

type CreatePlanRequest struct {
	Code string `json:"code" binding:"required"`
}

// ListPlans godoc
// @Summary      List plans
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        type    query     string  false  "Membership type (indoor|outdoor)"
// @Param        active  query     bool    false  "Active plans only"
// @Success      200     {array}   Plan
// @Failure      400     {object}  api.ErrorResponse
// @Failure      500     {object}  api.ErrorResponse
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	membershipType := MembershipType(c.Query("type"))
	if membershipType != "" && !membershipType.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "type must be indoor or outdoor"})
		return
	}

	activeOnly := c.Query("active") == "true"

	plans, err := h.repo.List(c.Request.Context(), membershipType, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load plans"))
		return
	}

	c.JSON(http.StatusOK, plans)
}

// CreatePlan godoc
// @Summary      Create or fetch a plan
// @Description  Idempotent on plan code; unknown codes are refused.
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      CreatePlanRequest  true  "Plan code"
// @Success      200   {object}  Plan
// @Failure      400   {object}  api.RejectionResponse
// @Failure      500   {object}  api.ErrorResponse
// @Router       /plans [post]
func (h *Handler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "code is required"})
		return
	}

	plan, err := h.repo.CreateOrGet(c.Request.Context(), req.Code)
	if err != nil {
		if errors.Is(err, ErrPlanUnknown) {
			c.JSON(http.StatusBadRequest, api.RejectionResponse{Error: "plan_unknown", Detail: req.Code})
			return
		}
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to create plan"))
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ListLocations godoc
// @Summary      List outdoor locations
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Location
// @Failure      500  {object}  api.ErrorResponse
// @Router       /locations [get]
func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.repo.ListLocations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load locations"))
		return
	}

	c.JSON(http.StatusOK, locations)
}
