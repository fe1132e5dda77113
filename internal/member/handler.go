package member

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/am-muhwezi/ptf-sub000/internal/api"
	"github.com/am-muhwezi/ptf-sub000/internal/cache"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"
	"github.com/am-muhwezi/ptf-sub000/internal/metrics"
)

// Enroller issues the opening subscription during combined registration.
// Implemented by the subscription service; the narrow interface keeps the
// member and subscription packages from importing each other.
type Enroller interface {
	Enroll(ctx context.Context, memberID int64, planCode string, locationID *int64) (json.RawMessage, error)
}

// EnrollError reports why the opening subscription could not be issued.
// The reason is one of the stable rejection codes.
type EnrollError struct {
	Reason string
	Detail string
}

func (e *EnrollError) Error() string { return e.Reason }

type Handler struct {
	repo       Repository
	cache      cache.Cache
	enroller   Enroller
	searchTTL  time.Duration
	maxPerPage int
}

func NewHandler(repo Repository, c cache.Cache, enroller Enroller, searchTTL time.Duration, maxPerPage int) *Handler {
	return &Handler{
		repo:       repo,
		cache:      c,
		enroller:   enroller,
		searchTTL:  searchTTL,
		maxPerPage: maxPerPage,
	}
}

type MemberRequest struct {
	FirstName             string  `json:"first_name" validate:"required,max=100"`
	LastName              string  `json:"last_name" validate:"required,max=100"`
	OtherNames            *string `json:"other_names,omitempty"`
	Email                 *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone                 string  `json:"phone" validate:"required,min=7,max=20"`
	IDPassport            *string `json:"id_passport,omitempty"`
	DOB                   *string `json:"dob,omitempty"`
	BloodGroup            string  `json:"blood_group,omitempty"`
	EmergencyContactName  string  `json:"emergency_contact_name" validate:"required"`
	EmergencyContactPhone string  `json:"emergency_contact_phone" validate:"required"`
	MedicalConditions     *string `json:"medical_conditions,omitempty"`
}

func (req *MemberRequest) params() (CreateParams, *time.Time, error) {
	var dob *time.Time
	if req.DOB != nil && *req.DOB != "" {
		parsed, err := time.Parse("2006-01-02", *req.DOB)
		if err != nil {
			return CreateParams{}, nil, errors.New("dob must be YYYY-MM-DD")
		}
		dob = &parsed
	}

	group := BloodGroup(req.BloodGroup)
	if req.BloodGroup != "" && !group.Valid() {
		return CreateParams{}, nil, errors.New("invalid blood_group")
	}

	return CreateParams{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		OtherNames:            req.OtherNames,
		Email:                 req.Email,
		Phone:                 req.Phone,
		IDPassport:            req.IDPassport,
		DOB:                   dob,
		BloodGroup:            group,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		MedicalConditions:     req.MedicalConditions,
	}, dob, nil
}

// RegisterRequest is the combined registration payload: member details,
// an optional opening plan and an optional physical profile.
type RegisterRequest struct {
	MemberRequest
	PlanCode        string          `json:"plan_code,omitempty"`
	LocationID      *int64          `json:"location_id,omitempty"`
	PhysicalProfile *ProfileRequest `json:"physical_profile,omitempty"`
}

type RegisteredResponse struct {
	Member       *Member          `json:"member"`
	Profile      *PhysicalProfile `json:"profile,omitempty"`
	Subscription json.RawMessage  `json:"subscription,omitempty"`
}

// Create godoc
// @Summary      Register a member
// @Description  Optionally issues the opening subscription (payment pending)
// @Description  and records the intake physical profile in the same call.
// @Tags         members
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Member details"
// @Success      201   {object}  RegisteredResponse
// @Failure      400   {object}  api.ValidationErrorResponse
// @Failure      409   {object}  api.RejectionResponse
// @Router       /members [post]
func (h *Handler) Create(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if fields := api.ValidateStruct(&req); fields != nil {
		api.RespondValidationErrors(c, fields)
		return
	}

	params, _, err := req.params()
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	var level FitnessLevel
	if req.PhysicalProfile != nil {
		level = FitnessLevel(req.PhysicalProfile.FitnessLevel)
		if req.PhysicalProfile.FitnessLevel != "" && !level.Valid() {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid fitness_level"})
			return
		}
	}
	if req.PlanCode == "" && req.LocationID != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "location_id requires a plan_code"})
		return
	}

	m, err := h.repo.Create(c.Request.Context(), params)
	if err != nil {
		h.writeError(c, err, "create member")
		return
	}

	resp := RegisteredResponse{Member: m}

	if req.PhysicalProfile != nil {
		p := req.PhysicalProfile
		profile, err := h.repo.UpsertPhysicalProfile(c.Request.Context(), m.ID, ProfileParams{
			HeightCM:     p.HeightCM,
			WeightKG:     p.WeightKG,
			BodyFatPct:   p.BodyFatPct,
			FitnessLevel: level,
			Goals:        p.Goals,
			TestResults:  p.TestResults,
		})
		if err != nil {
			logger.Errorf("Failed to save intake profile for member %d: %v", m.ID, err)
		} else {
			resp.Profile = profile
		}
	}

	if req.PlanCode != "" && h.enroller != nil {
		sub, err := h.enroller.Enroll(c.Request.Context(), m.ID, req.PlanCode, req.LocationID)
		if err != nil {
			// The member record stands; the desk re-submits the plan through
			// the subscription endpoint once the input is corrected.
			var enroll *EnrollError
			if errors.As(err, &enroll) {
				c.JSON(http.StatusBadRequest, api.RejectionResponse{Error: enroll.Reason, Detail: enroll.Detail})
				return
			}
			h.writeError(c, err, "issue opening subscription")
			return
		}
		resp.Subscription = sub
	}

	logger.Infof("Member registered: id=%d code=%s", m.ID, m.MemberCode)
	h.invalidate(c)
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get a member
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Member ID"
// @Success      200  {object}  Member
// @Failure      404  {object}  api.ErrorResponse
// @Router       /members/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	m, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "load member")
		return
	}

	c.JSON(http.StatusOK, m)
}

type UpdateMemberRequest struct {
	MemberRequest
	Status Status `json:"status,omitempty"`
}

// Update godoc
// @Summary      Update a member
// @Description  The id and registration date are immutable.
// @Tags         members
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Member ID"
// @Param        body  body      UpdateMemberRequest  true  "Member details"
// @Success      200   {object}  Member
// @Failure      400   {object}  api.ValidationErrorResponse
// @Failure      404   {object}  api.ErrorResponse
// @Failure      409   {object}  api.RejectionResponse
// @Router       /members/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if fields := api.ValidateStruct(&req.MemberRequest); fields != nil {
		api.RespondValidationErrors(c, fields)
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid status"})
		return
	}

	params, dob, err := req.params()
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	// An omitted status keeps the member's current one; a routine edit must
	// never quietly reinstate a suspended member.
	status := req.Status
	if status == "" {
		current, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err, "update member")
			return
		}
		status = current.Status
	}

	m, err := h.repo.Update(c.Request.Context(), id, UpdateParams{
		FirstName:             params.FirstName,
		LastName:              params.LastName,
		OtherNames:            params.OtherNames,
		Email:                 params.Email,
		Phone:                 params.Phone,
		IDPassport:            params.IDPassport,
		DOB:                   dob,
		BloodGroup:            params.BloodGroup,
		EmergencyContactName:  params.EmergencyContactName,
		EmergencyContactPhone: params.EmergencyContactPhone,
		MedicalConditions:     params.MedicalConditions,
		Status:                status,
	})
	if err != nil {
		h.writeError(c, err, "update member")
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusOK, m)
}

// Deactivate godoc
// @Summary      Deactivate a member
// @Description  Soft delete; the member record and their history remain.
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Member ID"
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /members/{id} [delete]
func (h *Handler) Deactivate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		h.writeError(c, err, "deactivate member")
		return
	}

	logger.Infof("Member deactivated: id=%d", id)
	h.invalidate(c)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "member deactivated"})
}

// List godoc
// @Summary      List members
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        status           query     string  false  "active|inactive|suspended"
// @Param        membership_type  query     string  false  "indoor|outdoor (members with an active subscription of the type)"
// @Param        page             query     int     false  "Page"
// @Param        per_page         query     int     false  "Page size"
// @Success      200              {object}  api.ListResponse[Member]
// @Router       /members [get]
func (h *Handler) List(c *gin.Context) {
	status := Status(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid status"})
		return
	}

	page, perPage := api.ParsePaging(c, h.maxPerPage)
	members, total, err := h.repo.List(c.Request.Context(), ListFilter{
		Status:         status,
		MembershipType: c.Query("membership_type"),
		Page:           page,
		PerPage:        perPage,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load members"))
		return
	}

	c.JSON(http.StatusOK, api.NewListResponse(members, api.NewPagination(page, perPage, total)))
}

// Search godoc
// @Summary      Search members
// @Description  Ranked lookup by id, email, name prefix or phone substring.
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        q      query    string  true   "Query (min 2 characters)"
// @Param        limit  query    int     false  "Max results (default 20)"
// @Success      200    {array}  Member
// @Router       /members/search [get]
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	cacheKey := "members:search:" + query + ":" + strconv.Itoa(limit)
	if h.cache != nil {
		if raw, ok, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil && ok {
			metrics.RecordCacheLookup(true)
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
		metrics.RecordCacheLookup(false)
	}

	members, err := h.repo.Search(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to search members"))
		return
	}

	if h.cache != nil {
		if raw, err := json.Marshal(members); err == nil {
			if err := h.cache.Set(c.Request.Context(), cacheKey, raw, h.searchTTL); err != nil {
				logger.Errorf("Failed to cache member search: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, members)
}

// StatusSummary godoc
// @Summary      Member counts by status
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  StatusSummary
// @Router       /members/status-summary [get]
func (h *Handler) StatusSummary(c *gin.Context) {
	summary, err := h.repo.StatusCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load member counts"))
		return
	}

	c.JSON(http.StatusOK, summary)
}

type ProfileRequest struct {
	HeightCM     float64  `json:"height_cm" validate:"required,gte=50,lte=280"`
	WeightKG     float64  `json:"weight_kg" validate:"required,gte=20,lte=400"`
	BodyFatPct   *float64 `json:"body_fat_pct,omitempty" validate:"omitempty,gte=1,lte=75"`
	FitnessLevel string   `json:"fitness_level,omitempty"`
	Goals        *string  `json:"goals,omitempty"`
	TestResults  *string  `json:"test_results,omitempty"`
}

// UpsertProfile godoc
// @Summary      Create or replace a member's physical profile
// @Description  BMI is derived from height and weight, never accepted as input.
// @Tags         members
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Member ID"
// @Param        body  body      ProfileRequest  true  "Measurements"
// @Success      200   {object}  PhysicalProfile
// @Failure      400   {object}  api.ValidationErrorResponse
// @Failure      404   {object}  api.ErrorResponse
// @Router       /members/{id}/physical-profile [put]
func (h *Handler) UpsertProfile(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if fields := api.ValidateStruct(&req); fields != nil {
		api.RespondValidationErrors(c, fields)
		return
	}

	level := FitnessLevel(req.FitnessLevel)
	if req.FitnessLevel != "" && !level.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid fitness_level"})
		return
	}

	// Profile upsert requires the member to exist.
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		h.writeError(c, err, "load member")
		return
	}

	profile, err := h.repo.UpsertPhysicalProfile(c.Request.Context(), id, ProfileParams{
		HeightCM:     req.HeightCM,
		WeightKG:     req.WeightKG,
		BodyFatPct:   req.BodyFatPct,
		FitnessLevel: level,
		Goals:        req.Goals,
		TestResults:  req.TestResults,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to save profile"))
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetProfile godoc
// @Summary      Get a member's physical profile
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Member ID"
// @Success      200  {object}  PhysicalProfile
// @Failure      404  {object}  api.ErrorResponse
// @Router       /members/{id}/physical-profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	profile, err := h.repo.GetPhysicalProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "physical profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to load profile"))
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *Handler) writeError(c *gin.Context, err error, op string) {
	var dup *DuplicateFieldError
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "member not found"})
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, api.RejectionResponse{Error: "duplicate_field", Detail: dup.Field})
	default:
		logger.Errorf("Failed to %s: %v", op, err)
		c.JSON(http.StatusInternalServerError, api.InternalError("failed to " + op))
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

func (h *Handler) invalidate(c *gin.Context) {
	if h.cache == nil {
		return
	}
	for _, prefix := range []string{"members:", "stats:"} {
		if _, err := h.cache.DeletePrefix(c.Request.Context(), prefix); err != nil {
			logger.Errorf("Failed to invalidate %s cache: %v", prefix, err)
		}
	}
}
