package member

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jmoiron/sqlx"

	"github.com/am-muhwezi/ptf-sub000/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, params CreateParams) (*Member, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *mockRepo) GetForUpdate(ctx context.Context, ext sqlx.ExtContext, id int64) (*Member, error) {
	args := m.Called(ctx, ext, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, id int64, params UpdateParams) (*Member, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *mockRepo) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]Member, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Member), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) Search(ctx context.Context, query string, limit int) ([]Member, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Member), args.Error(1)
}

func (m *mockRepo) StatusCounts(ctx context.Context) (*StatusSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StatusSummary), args.Error(1)
}

func (m *mockRepo) TrackVisit(ctx context.Context, ext sqlx.ExtContext, id int64, now time.Time, threshold time.Duration) error {
	return m.Called(ctx, ext, id, now, threshold).Error(0)
}

func (m *mockRepo) UpsertPhysicalProfile(ctx context.Context, memberID int64, params ProfileParams) (*PhysicalProfile, error) {
	args := m.Called(ctx, memberID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PhysicalProfile), args.Error(1)
}

func (m *mockRepo) GetPhysicalProfile(ctx context.Context, memberID int64) (*PhysicalProfile, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PhysicalProfile), args.Error(1)
}

type mockEnroller struct {
	mock.Mock
}

func (m *mockEnroller) Enroll(ctx context.Context, memberID int64, planCode string, locationID *int64) (json.RawMessage, error) {
	args := m.Called(ctx, memberID, planCode, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func setupMemberHandler(t *testing.T) (*Handler, *mockRepo, *mockEnroller, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	repo := new(mockRepo)
	enroller := new(mockEnroller)
	h := NewHandler(repo, nil, enroller, time.Minute, 100)

	router := gin.New()
	router.POST("/members", h.Create)
	router.PUT("/members/:id", h.Update)
	return h, repo, enroller, router
}

func sendJSON(t *testing.T, router *gin.Engine, method, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postJSON(t *testing.T, router *gin.Engine, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	return sendJSON(t, router, "POST", path, body)
}

func registeredMember() *Member {
	return &Member{
		ID:         7,
		MemberCode: "PTF000007",
		FirstName:  "Wanjiru",
		LastName:   "Kamau",
		Phone:      "+254700000001",
		Status:     StatusActive,
	}
}

func memberBody() map[string]interface{} {
	return map[string]interface{}{
		"first_name":              "Wanjiru",
		"last_name":               "Kamau",
		"phone":                   "+254700000001",
		"emergency_contact_name":  "James Kamau",
		"emergency_contact_phone": "+254700000099",
	}
}

func TestCreate(t *testing.T) {
	_, repo, _, router := setupMemberHandler(t)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p CreateParams) bool {
		return p.FirstName == "Wanjiru" && p.Phone == "+254700000001"
	})).Return(registeredMember(), nil)

	w := postJSON(t, router, "/members", memberBody())

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp RegisteredResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PTF000007", resp.Member.MemberCode)
	assert.Nil(t, resp.Subscription)
}

func TestCreate_WithOpeningSubscription(t *testing.T) {
	_, repo, enroller, router := setupMemberHandler(t)

	repo.On("Create", mock.Anything, mock.Anything).Return(registeredMember(), nil)
	enroller.On("Enroll", mock.Anything, int64(7), "indoor_monthly", (*int64)(nil)).
		Return(json.RawMessage(`{"id":31,"payment_status":"pending"}`), nil)

	body := memberBody()
	body["plan_code"] = "indoor_monthly"
	w := postJSON(t, router, "/members", body)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Subscription struct {
			ID            int64  `json:"id"`
			PaymentStatus string `json:"payment_status"`
		} `json:"subscription"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(31), resp.Subscription.ID)
	assert.Equal(t, "pending", resp.Subscription.PaymentStatus)
	enroller.AssertExpectations(t)
}

func TestCreate_WithIntakeProfile(t *testing.T) {
	_, repo, _, router := setupMemberHandler(t)

	repo.On("Create", mock.Anything, mock.Anything).Return(registeredMember(), nil)
	repo.On("UpsertPhysicalProfile", mock.Anything, int64(7), mock.MatchedBy(func(p ProfileParams) bool {
		return p.HeightCM == 170 && p.WeightKG == 68
	})).Return(&PhysicalProfile{MemberID: 7, HeightCM: 170, WeightKG: 68, BMI: 23.5}, nil)

	body := memberBody()
	body["physical_profile"] = map[string]interface{}{
		"height_cm": 170,
		"weight_kg": 68,
	}
	w := postJSON(t, router, "/members", body)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp RegisteredResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Profile)
	assert.InDelta(t, 23.5, resp.Profile.BMI, 0.001)
}

func TestCreate_UnknownPlan(t *testing.T) {
	_, repo, enroller, router := setupMemberHandler(t)

	repo.On("Create", mock.Anything, mock.Anything).Return(registeredMember(), nil)
	enroller.On("Enroll", mock.Anything, int64(7), "platinum", (*int64)(nil)).
		Return(nil, &EnrollError{Reason: "plan_unknown", Detail: "platinum"})

	body := memberBody()
	body["plan_code"] = "platinum"
	w := postJSON(t, router, "/members", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "plan_unknown")
}

func TestCreate_RepositoryDown(t *testing.T) {
	_, repo, _, router := setupMemberHandler(t)

	repo.On("Create", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	w := postJSON(t, router, "/members", memberBody())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "transport_error")
}

func TestUpdate_OmittedStatusKeepsCurrent(t *testing.T) {
	_, repo, _, router := setupMemberHandler(t)

	suspended := registeredMember()
	suspended.Status = StatusSuspended
	repo.On("GetByID", mock.Anything, int64(7)).Return(suspended, nil)
	repo.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(p UpdateParams) bool {
		return p.Status == StatusSuspended
	})).Return(suspended, nil)

	w := sendJSON(t, router, "PUT", "/members/7", memberBody())

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestUpdate_ExplicitStatusApplied(t *testing.T) {
	_, repo, _, router := setupMemberHandler(t)

	m := registeredMember()
	repo.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(p UpdateParams) bool {
		return p.Status == StatusActive
	})).Return(m, nil)

	body := memberBody()
	body["status"] = "active"
	w := sendJSON(t, router, "PUT", "/members/7", body)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertNotCalled(t, "GetByID")
}

func TestCreate_DuplicatePhone(t *testing.T) {
	_, repo, _, router := setupMemberHandler(t)

	repo.On("Create", mock.Anything, mock.Anything).
		Return(nil, &DuplicateFieldError{Field: "phone"})

	w := postJSON(t, router, "/members", memberBody())

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate_field")
}

func TestCreate_MissingFields(t *testing.T) {
	_, repo, _, router := setupMemberHandler(t)

	w := postJSON(t, router, "/members", map[string]interface{}{
		"first_name": "Wanjiru",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
	repo.AssertNotCalled(t, "Create")
}

func TestCreate_LocationWithoutPlan(t *testing.T) {
	_, repo, _, router := setupMemberHandler(t)

	body := memberBody()
	body["location_id"] = 3
	w := postJSON(t, router, "/members", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "Create")
}
