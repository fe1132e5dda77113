package subscription

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/am-muhwezi/ptf-sub000/internal/api"
	"github.com/am-muhwezi/ptf-sub000/internal/cache"
	"github.com/am-muhwezi/ptf-sub000/internal/catalog"
	"github.com/am-muhwezi/ptf-sub000/internal/clock"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"
	"github.com/am-muhwezi/ptf-sub000/internal/member"
)

type Handler struct {
	repo       Repository
	service    Service
	accountant Accountant
	cache      cache.Cache
	clk        clock.Clock
	loc        *time.Location
	maxPerPage int
}

func NewHandler(repo Repository, service Service, accountant Accountant, c cache.Cache, clk clock.Clock, loc *time.Location, maxPerPage int) *Handler {
	return &Handler{
		repo:       repo,
		service:    service,
		accountant: accountant,
		cache:      c,
		clk:        clk,
		loc:        loc,
		maxPerPage: maxPerPage,
	}
}

// View is the read shape for a single subscription, with the derived
// session-accounting fields clients poll for.
type View struct {
	WithPlan
	SessionsRemaining int     `json:"sessions_remaining"`
	UsagePercentage   float64 `json:"usage_percentage"`
	ExpiringSoon      bool    `json:"expiring_soon"`
}

func (h *Handler) view(sub *WithPlan) View {
	return View{
		WithPlan:          *sub,
		SessionsRemaining: sub.SessionsRemaining(),
		UsagePercentage:   sub.UsagePercentage(),
		ExpiringSoon:      sub.IsExpiringSoon(h.clk.Now(), h.loc),
	}
}

type CreateRequest struct {
	MemberID      int64           `json:"member_id" binding:"required"`
	PlanCode      string          `json:"plan_code" binding:"required"`
	LocationID    *int64          `json:"location_id,omitempty"`
	StartDate     *string         `json:"start_date,omitempty"`
	PaymentStatus PaymentStatus   `json:"payment_status,omitempty"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

// Create godoc
// @Summary      Issue a subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      CreateRequest  true  "Subscription details"
// @Success      201   {object}  Subscription
// @Failure      400   {object}  api.RejectionResponse
// @Failure      404   {object}  api.ErrorResponse
// @Failure      409   {object}  api.RejectionResponse
// @Router       /subscriptions [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if req.PaymentStatus != "" && !req.PaymentStatus.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid payment_status"})
		return
	}

	params := IssueParams{
		MemberID:      req.MemberID,
		PlanCode:      req.PlanCode,
		LocationID:    req.LocationID,
		PaymentStatus: req.PaymentStatus,
		AmountPaid:    req.AmountPaid,
	}
	if req.StartDate != nil {
		start, err := time.ParseInLocation("2006-01-02", *req.StartDate, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "start_date must be YYYY-MM-DD"})
			return
		}
		params.StartDate = &start
	}

	sub, err := h.service.Issue(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, member.ErrNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "member not found"})
		case errors.Is(err, ErrMemberSuspended):
			c.JSON(http.StatusConflict, api.RejectionResponse{Error: "member_inactive", Detail: "member is suspended"})
		case errors.Is(err, catalog.ErrPlanUnknown):
			c.JSON(http.StatusBadRequest, api.RejectionResponse{Error: "plan_unknown", Detail: req.PlanCode})
		case errors.Is(err, catalog.ErrLocationNotFound):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "location not found"})
		case errors.Is(err, ErrLocationRequired), errors.Is(err, ErrLocationNotAllowed):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrActiveExists):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "member already has an active subscription of this type"})
		default:
			logger.Errorf("Failed to create subscription for member %d: %v", req.MemberID, err)
			c.JSON(http.StatusInternalServerError, api.InternalError("failed to create subscription"))
		}
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusCreated, sub)
}

// Get godoc
// @Summary      Get a subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Subscription ID"
// @Success      200  {object}  View
// @Failure      404  {object}  api.ErrorResponse
// @Router       /subscriptions/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	sub, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load subscription"))
		return
	}

	if _, err := h.service.Refresh(c.Request.Context(), &sub.Subscription); err != nil {
		logger.Errorf("Failed to refresh subscription %d: %v", id, err)
	}

	c.JSON(http.StatusOK, h.view(sub))
}

type RenewHTTPRequest struct {
	PlanCode      string          `json:"plan_code,omitempty"`
	PaymentStatus PaymentStatus   `json:"payment_status,omitempty"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

// Renew godoc
// @Summary      Renew a subscription
// @Description  Resets the session budget and extends the end date in place.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Subscription ID"
// @Param        body  body      RenewHTTPRequest  true  "Renewal details"
// @Success      200   {object}  Subscription
// @Failure      400   {object}  api.RejectionResponse
// @Failure      404   {object}  api.ErrorResponse
// @Failure      409   {object}  api.RejectionResponse
// @Router       /subscriptions/{id}/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req RenewHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if req.PaymentStatus != "" && !req.PaymentStatus.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid payment_status"})
		return
	}

	sub, err := h.service.Renew(c.Request.Context(), id, RenewRequest{
		PlanCode:      req.PlanCode,
		PaymentStatus: req.PaymentStatus,
		AmountPaid:    req.AmountPaid,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "subscription not found"})
		case errors.Is(err, ErrInvalidStateTransition):
			c.JSON(http.StatusConflict, api.RejectionResponse{Error: "invalid_state_transition", Detail: "cancelled subscriptions cannot be renewed"})
		case errors.Is(err, catalog.ErrPlanUnknown):
			c.JSON(http.StatusBadRequest, api.RejectionResponse{Error: "plan_unknown", Detail: req.PlanCode})
		case errors.Is(err, ErrPlanTypeMismatch):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			logger.Errorf("Failed to renew subscription %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, api.InternalError("failed to renew subscription"))
		}
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, sub)
}

// Suspend godoc
// @Summary      Suspend a subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Subscription ID"
// @Success      200  {object}  Subscription
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.RejectionResponse
// @Router       /subscriptions/{id}/suspend [post]
func (h *Handler) Suspend(c *gin.Context) {
	h.transition(c, h.service.Suspend)
}

// Reactivate godoc
// @Summary      Reactivate a suspended subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Subscription ID"
// @Success      200  {object}  Subscription
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.RejectionResponse
// @Router       /subscriptions/{id}/reactivate [post]
func (h *Handler) Reactivate(c *gin.Context) {
	h.transition(c, h.service.Reactivate)
}

// Cancel godoc
// @Summary      Cancel a subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Subscription ID"
// @Success      200  {object}  Subscription
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.RejectionResponse
// @Router       /subscriptions/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id int64) (*Subscription, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	sub, err := fn(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "subscription not found"})
		case errors.Is(err, ErrInvalidStateTransition):
			c.JSON(http.StatusConflict, api.RejectionResponse{Error: "invalid_state_transition", Detail: "transition not allowed from current status"})
		default:
			logger.Errorf("Failed to change subscription %d status: %v", id, err)
			c.JSON(http.StatusInternalServerError, api.InternalError("failed to update subscription"))
		}
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, sub)
}

type PaymentRequest struct {
	Status PaymentStatus   `json:"status" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// RecordPayment godoc
// @Summary      Record a payment against a subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Subscription ID"
// @Param        body  body      PaymentRequest  true  "Payment"
// @Success      200   {object}  api.MessageResponse
// @Failure      400   {object}  api.ErrorResponse
// @Failure      404   {object}  api.ErrorResponse
// @Router       /subscriptions/{id}/payment [post]
func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.service.RecordPayment(c.Request.Context(), id, req.Status, req.Amount); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "subscription not found"})
			return
		}
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "payment recorded"})
}

type UseSessionRequest struct {
	Type  LogType `json:"type,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

type UseSessionResponse struct {
	Log               *SessionLog `json:"log"`
	SessionsRemaining int         `json:"sessions_remaining"`
}

// UseSession godoc
// @Summary      Debit one session manually
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Subscription ID"
// @Param        body  body      UseSessionRequest  false  "Session log details"
// @Success      200   {object}  UseSessionResponse
// @Failure      404   {object}  api.ErrorResponse
// @Failure      409   {object}  api.RejectionResponse
// @Router       /subscriptions/{id}/use-session [post]
func (h *Handler) UseSession(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	log, remaining, err := h.accountant.UseSession(c.Request.Context(), id, req.Type, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "subscription not found"})
		case errors.Is(err, ErrNoActiveSubscription):
			c.JSON(http.StatusConflict, api.RejectionResponse{Error: "no_active_subscription", Detail: "subscription is not active"})
		case errors.Is(err, ErrNoSessionsRemaining):
			c.JSON(http.StatusConflict, api.RejectionResponse{Error: "no_sessions_remaining", Detail: "session budget exhausted or membership expired"})
		default:
			logger.Errorf("Failed to debit session on subscription %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, api.InternalError("failed to use session"))
		}
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, UseSessionResponse{Log: log, SessionsRemaining: remaining})
}

type CreditSessionRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// CreditSession godoc
// @Summary      Credit one session back
// @Description  Superuser correction for a session debited in error.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int                   true   "Subscription ID"
// @Param        body  body      CreditSessionRequest  false  "Correction notes"
// @Success      200   {object}  UseSessionResponse
// @Failure      404   {object}  api.ErrorResponse
// @Failure      409   {object}  api.ErrorResponse
// @Router       /subscriptions/{id}/credit-session [post]
func (h *Handler) CreditSession(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req CreditSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	remaining, err := h.accountant.CreditSession(c.Request.Context(), id, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "subscription not found"})
		case errors.Is(err, ErrNoSessionsUsed):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "no sessions used to credit"})
		default:
			logger.Errorf("Failed to credit session on subscription %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, api.InternalError("failed to credit session"))
		}
		return
	}

	h.invalidateStats(c)
	c.JSON(http.StatusOK, UseSessionResponse{SessionsRemaining: remaining})
}

// SessionLogs godoc
// @Summary      List session logs for a subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      int  true   "Subscription ID"
// @Param        limit  query     int  false  "Max entries (default 50)"
// @Success      200    {array}   SessionLog
// @Router       /subscriptions/{id}/session-logs [get]
func (h *Handler) SessionLogs(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.repo.ListSessionLogs(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load session logs"))
		return
	}

	c.JSON(http.StatusOK, logs)
}

// PaymentsDue godoc
// @Summary      List subscriptions with payments due
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        status    query     string  false  "Payment status (pending|overdue|partial)"
// @Param        page      query     int     false  "Page"
// @Param        per_page  query     int     false  "Page size"
// @Success      200       {object}  api.ListResponse[PaymentDue]
// @Router       /subscriptions/payments-due [get]
func (h *Handler) PaymentsDue(c *gin.Context) {
	// Only the due statuses make sense here; paid rows are never due.
	status := PaymentStatus(c.Query("status"))
	switch status {
	case "", PaymentPending, PaymentOverdue, PaymentPartial:
	default:
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid status"})
		return
	}

	page, perPage := api.ParsePaging(c, h.maxPerPage)
	due, total, err := h.repo.PaymentsDue(c.Request.Context(), PaymentsDueFilter{
		Status:  status,
		Page:    page,
		PerPage: perPage,
	}, h.clk.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load payments due"))
		return
	}

	c.JSON(http.StatusOK, api.NewListResponse(due, api.NewPagination(page, perPage, total)))
}

// RenewalsDue godoc
// @Summary      List subscriptions approaching their end date
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        horizon_days  query     int     false  "Lookahead in days (default 30)"
// @Param        urgency       query     string  false  "critical|high|medium|low"
// @Param        page          query     int     false  "Page"
// @Param        per_page      query     int     false  "Page size"
// @Success      200           {object}  api.ListResponse[RenewalDue]
// @Router       /subscriptions/renewals-due [get]
func (h *Handler) RenewalsDue(c *gin.Context) {
	urgency := Urgency(c.Query("urgency"))
	if urgency != "" && !urgency.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid urgency"})
		return
	}

	horizon, _ := strconv.Atoi(c.DefaultQuery("horizon_days", "30"))
	if horizon < 1 {
		horizon = 30
	}

	page, perPage := api.ParsePaging(c, h.maxPerPage)
	due, total, err := h.repo.RenewalsDue(c.Request.Context(), RenewalsDueFilter{
		HorizonDays: horizon,
		Urgency:     urgency,
		Page:        page,
		PerPage:     perPage,
	}, h.clk.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load renewals due"))
		return
	}

	c.JSON(http.StatusOK, api.NewListResponse(due, api.NewPagination(page, perPage, total)))
}

// ExpiringSoon godoc
// @Summary      List subscriptions expiring within a week or nearly out of sessions
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  WithPlan
// @Router       /subscriptions/expiring-soon [get]
func (h *Handler) ExpiringSoon(c *gin.Context) {
	subs, err := h.repo.ExpiringSoon(c.Request.Context(), h.clk.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load expiring subscriptions"))
		return
	}

	c.JSON(http.StatusOK, subs)
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid subscription id"})
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
