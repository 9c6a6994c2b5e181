package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/SscSPs/budget_approval_app/internal/handlers"
	"github.com/SscSPs/budget_approval_app/internal/platform/config"
	"github.com/SscSPs/budget_approval_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/posthog/posthog-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) ListUsers(ctx context.Context, unitID *string) ([]domain.User, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock TokenService ---
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// --- Mock WorkflowService ---
type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) submission(args mock.Arguments) (*domain.BudgetSubmission, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetSubmission), args.Error(1)
}
func (m *MockWorkflowService) items(args mock.Arguments) ([]domain.BudgetItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetItem), args.Error(1)
}
func (m *MockWorkflowService) item(args mock.Arguments) (*domain.BudgetItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetItem), args.Error(1)
}
func (m *MockWorkflowService) SubmitUnitBudget(ctx context.Context, actor *domain.User, unitID string) (*domain.BudgetSubmission, error) {
	return m.submission(m.Called(ctx, actor, unitID))
}
func (m *MockWorkflowService) ForwardToParent(ctx context.Context, actor *domain.User, unitID string) (*domain.BudgetSubmission, error) {
	return m.submission(m.Called(ctx, actor, unitID))
}
func (m *MockWorkflowService) ListSubmissions(ctx context.Context, actor *domain.User, unitID string) ([]domain.BudgetSubmission, error) {
	args := m.Called(ctx, actor, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetSubmission), args.Error(1)
}
func (m *MockWorkflowService) ApproveItem(ctx context.Context, actor *domain.User, itemID string, comment *string) (*domain.BudgetItem, error) {
	return m.item(m.Called(ctx, actor, itemID, comment))
}
func (m *MockWorkflowService) RejectItem(ctx context.Context, actor *domain.User, itemID string, comment string) (*domain.BudgetItem, error) {
	return m.item(m.Called(ctx, actor, itemID, comment))
}
func (m *MockWorkflowService) ReturnItem(ctx context.Context, actor *domain.User, itemID string, comment string) (*domain.BudgetItem, error) {
	return m.item(m.Called(ctx, actor, itemID, comment))
}
func (m *MockWorkflowService) ApproveGroup(ctx context.Context, actor *domain.User, unitID string, year int, comment *string, limit *decimal.Decimal) ([]domain.BudgetItem, error) {
	return m.items(m.Called(ctx, actor, unitID, year, comment, limit))
}
func (m *MockWorkflowService) RejectGroup(ctx context.Context, actor *domain.User, unitID string, year int, comment string) ([]domain.BudgetItem, error) {
	return m.items(m.Called(ctx, actor, unitID, year, comment))
}
func (m *MockWorkflowService) ReturnGroup(ctx context.Context, actor *domain.User, unitID string, year int, comment string) ([]domain.BudgetItem, error) {
	return m.items(m.Called(ctx, actor, unitID, year, comment))
}

var _ portssvc.WorkflowSvcFacade = (*MockWorkflowService)(nil)

// --- Mock BudgetItemService ---
type MockBudgetItemService struct {
	mock.Mock
}

func (m *MockBudgetItemService) GetItem(ctx context.Context, actor *domain.User, itemID string) (*domain.BudgetItem, error) {
	args := m.Called(ctx, actor, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetItem), args.Error(1)
}
func (m *MockBudgetItemService) ListItems(ctx context.Context, actor *domain.User, filter domain.BudgetItemFilter) ([]domain.BudgetItem, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetItem), args.Error(1)
}
func (m *MockBudgetItemService) ListReviewQueue(ctx context.Context, actor *domain.User) ([]domain.ReviewGroup, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewGroup), args.Error(1)
}
func (m *MockBudgetItemService) CreateItem(ctx context.Context, actor *domain.User, fields domain.BudgetItemFields) (*domain.BudgetItem, error) {
	args := m.Called(ctx, actor, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetItem), args.Error(1)
}
func (m *MockBudgetItemService) UpdateItem(ctx context.Context, actor *domain.User, itemID string, fields domain.BudgetItemFields) (*domain.BudgetItem, error) {
	args := m.Called(ctx, actor, itemID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetItem), args.Error(1)
}

var _ portssvc.BudgetItemSvcFacade = (*MockBudgetItemService)(nil)

// --- Mock ExportService ---
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) BuildSummary(ctx context.Context, actor *domain.User, unitID string, year *int) (*domain.BudgetSummary, error) {
	args := m.Called(ctx, actor, unitID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetSummary), args.Error(1)
}
func (m *MockExportService) Export(ctx context.Context, actor *domain.User, unitID string, year *int, format portssvc.ExportFormat) (*portssvc.ExportFile, error) {
	args := m.Called(ctx, actor, unitID, year, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.ExportFile), args.Error(1)
}

var _ portssvc.ExportSvcFacade = (*MockExportService)(nil)

// --- Recording analytics sink ---
type recordingSink struct {
	captures []posthog.Capture
}

func (r *recordingSink) Enqueue(msg posthog.Message) error {
	if c, ok := msg.(posthog.Capture); ok {
		r.captures = append(r.captures, c)
	}
	return nil
}

func (r *recordingSink) Close() error { return nil }

func (r *recordingSink) find(event string) (posthog.Capture, bool) {
	for _, c := range r.captures {
		if c.Event == event {
			return c, true
		}
	}
	return posthog.Capture{}, false
}

// --- Suite ---

type HandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	cfg      *config.Config
	users    *MockUserService
	tokens   *MockTokenService
	workflow *MockWorkflowService
	items    *MockBudgetItemService
	exports  *MockExportService
	events   *recordingSink

	approver *domain.User
	basic    *domain.User
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cfg = &config.Config{
		JWTSecret:      "test-secret-key-that-is-long-enough",
		LoginRateLimit: "100-M",
		IsProduction:   true,
	}
	s.users = new(MockUserService)
	s.tokens = new(MockTokenService)
	s.workflow = new(MockWorkflowService)
	s.items = new(MockBudgetItemService)
	s.exports = new(MockExportService)
	s.events = &recordingSink{}

	s.approver = &domain.User{UserID: "u-cty", Name: "Anna", Role: domain.RoleApprover, UnitID: "cty"}
	s.basic = &domain.User{UserID: "u-sch", Name: "Jan", Role: domain.RoleBasic, UnitID: "sch"}
	s.users.On("GetUserByID", mock.Anything, s.approver.UserID).Return(s.approver, nil).Maybe()
	s.users.On("GetUserByID", mock.Anything, s.basic.UserID).Return(s.basic, nil).Maybe()

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, s.cfg, &portssvc.ServiceContainer{
		User:         s.users,
		TokenService: s.tokens,
		Workflow:     s.workflow,
		BudgetItem:   s.items,
		Export:       s.exports,
	}, utils.NewPosthogClientWrapper(s.events, nil))
}

func (s *HandlerTestSuite) do(method, path string, user *domain.User, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, _, err := utils.GenerateJWT(user, s.cfg.JWTSecret, time.Hour, "test")
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestRequiresToken() {
	w := s.do(http.MethodGet, "/api/v1/items", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestLogin() {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	s.users.On("Authenticate", mock.Anything, "anna@example.pl", "secret-pass").Return(s.approver, nil).Once()
	s.tokens.On("GenerateAccessToken", mock.Anything, s.approver).Return("signed-token", expires, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login", nil, `{"email":"anna@example.pl","password":"secret-pass"}`)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp dto.AuthResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("signed-token", resp.AccessToken)
	s.Equal("Bearer", resp.TokenType)
	s.True(expires.Equal(resp.ExpiresAt))
}

func (s *HandlerTestSuite) TestLogin_WrongPassword() {
	s.users.On("Authenticate", mock.Anything, "anna@example.pl", "nope").
		Return(nil, apperrors.NewUnauthorizedError("invalid credentials")).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login", nil, `{"email":"anna@example.pl","password":"nope"}`)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.tokens.AssertNotCalled(s.T(), "GenerateAccessToken", mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestApproveGroup_WithLimit() {
	approved := []domain.BudgetItem{{ItemID: "i-1", UnitID: "mun", Year: 2026, Status: domain.ItemStatusApproved}}
	s.workflow.On("ApproveGroup", mock.Anything, s.approver, "mun", 2026, (*string)(nil),
		mock.MatchedBy(func(l *decimal.Decimal) bool { return l != nil && l.Equal(decimal.NewFromInt(1000)) }),
	).Return(approved, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/units/mun/years/2026/approve", s.approver, `{"limit": 1000}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.GroupDecisionResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("mun", resp.UnitID)
	s.Equal(2026, resp.Year)
	s.Len(resp.Items, 1)
	s.workflow.AssertExpectations(s.T())

	event, ok := s.events.find("group_approved")
	s.Require().True(ok)
	s.Equal(s.approver.UserID, event.DistinctId)
	s.Equal("mun", event.Properties["unit_id"])
	s.Equal(1, event.Properties["item_count"])
}

func (s *HandlerTestSuite) TestApproveGroup_EmptyBody() {
	s.workflow.On("ApproveGroup", mock.Anything, s.approver, "mun", 2026, (*string)(nil), (*decimal.Decimal)(nil)).
		Return([]domain.BudgetItem{}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/units/mun/years/2026/approve", s.approver, "")
	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *HandlerTestSuite) TestApproveGroup_UnresolvedClarifications() {
	s.workflow.On("ApproveGroup", mock.Anything, s.approver, "mun", 2026, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("group mun/2026: %w", apperrors.ErrUnresolvedClarifications)).Once()

	w := s.do(http.MethodPost, "/api/v1/units/mun/years/2026/approve", s.approver, `{}`)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestApproveGroup_BasicUserForbidden() {
	w := s.do(http.MethodPost, "/api/v1/units/mun/years/2026/approve", s.basic, `{}`)
	s.Equal(http.StatusForbidden, w.Code)
	s.workflow.AssertNotCalled(s.T(), "ApproveGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestGroupDecision_InvalidYear() {
	w := s.do(http.MethodPost, "/api/v1/units/mun/years/abc/reject", s.approver, `{"comment":"Brak uzasadnienia"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestRejectGroup_RequiresComment() {
	for _, body := range []string{`{}`, `{"comment":"   "}`} {
		w := s.do(http.MethodPost, "/api/v1/units/mun/years/2026/reject", s.approver, body)
		s.Equal(http.StatusBadRequest, w.Code, body)
	}
	s.workflow.AssertNotCalled(s.T(), "RejectGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestReturnItem() {
	returned := &domain.BudgetItem{ItemID: "i-1", Status: domain.ItemStatusDraft}
	s.workflow.On("ReturnItem", mock.Anything, s.approver, "i-1", "Popraw kwotę").Return(returned, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/items/i-1/return", s.approver, `{"comment":"Popraw kwotę"}`)
	s.Equal(http.StatusOK, w.Code)
	s.workflow.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) TestSubmit_NothingToSend() {
	s.workflow.On("SubmitUnitBudget", mock.Anything, s.basic, "sch").Return(nil, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/units/sch/submit", s.basic, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"submission":null}`, w.Body.String())
	_, ok := s.events.find("budget_submitted")
	s.False(ok)
}

func (s *HandlerTestSuite) TestSubmit_TracksEvents() {
	submission := &domain.BudgetSubmission{
		SubmissionID:  "sub-1",
		FromUnitID:    "sch",
		ToUnitID:      "mun",
		BudgetItemIDs: []string{"i-1", "i-2"},
	}
	s.workflow.On("SubmitUnitBudget", mock.Anything, s.basic, "sch").Return(submission, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/units/sch/submit", s.basic, "")
	s.Require().Equal(http.StatusOK, w.Code)

	event, ok := s.events.find("budget_submitted")
	s.Require().True(ok)
	s.Equal(s.basic.UserID, event.DistinctId)
	s.Equal("mun", event.Properties["to_unit_id"])
	s.Equal(2, event.Properties["item_count"])

	route, ok := s.events.find("api_v1_units_id_submit")
	s.Require().True(ok)
	s.Equal(map[string]string{"id": "sch"}, route.Properties["params"])
}

func (s *HandlerTestSuite) TestSubmit_NoParent() {
	s.workflow.On("SubmitUnitBudget", mock.Anything, s.approver, "voi").
		Return(nil, fmt.Errorf("unit voi: %w", apperrors.ErrNoParentUnit)).Once()

	w := s.do(http.MethodPost, "/api/v1/units/voi/submit", s.approver, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Empty(s.events.captures)
}

func (s *HandlerTestSuite) TestCreateItem_AggregatorUnit() {
	s.items.On("CreateItem", mock.Anything, s.approver, mock.AnythingOfType("domain.BudgetItemFields")).
		Return(nil, apperrors.ErrAggregatorUnit).Once()

	body := `{"budgetSection":"30","budgetDivision":"801","budgetChapter":"80101","category":"Wydatki",` +
		`"description":"Remont","year":2026,"amount":"1500.00"}`
	w := s.do(http.MethodPost, "/api/v1/items", s.approver, body)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestCreateItem_InvalidYear() {
	body := `{"budgetSection":"30","budgetDivision":"801","budgetChapter":"80101","category":"Wydatki",` +
		`"description":"Remont","year":1999,"amount":"1500.00"}`
	w := s.do(http.MethodPost, "/api/v1/items", s.basic, body)
	s.Equal(http.StatusBadRequest, w.Code)
	s.items.AssertNotCalled(s.T(), "CreateItem", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestListItems_Filter() {
	s.items.On("ListItems", mock.Anything, s.basic, mock.MatchedBy(func(f domain.BudgetItemFilter) bool {
		return f.Year != nil && *f.Year == 2026 &&
			len(f.Statuses) == 1 && f.Statuses[0] == domain.ItemStatusDraft
	})).Return([]domain.BudgetItem{
		{ItemID: "a", Amount: decimal.NewFromInt(100)},
		{ItemID: "b", Amount: decimal.NewFromInt(50)},
	}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/items?year=2026&status=draft", s.basic, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var resp dto.ListItemsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Items, 2)
	s.True(decimal.NewFromInt(150).Equal(resp.Total))
}

func (s *HandlerTestSuite) TestExportDownload() {
	file := &portssvc.ExportFile{
		FileName:    "zestawienie-20260301-120000.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte("PK"),
		ArchiveKey:  "exports/cty/zestawienie-20260301-120000.xlsx",
	}
	s.exports.On("Export", mock.Anything, s.approver, "cty", (*int)(nil), portssvc.ExportFormatXlsx).Return(file, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/exports?format=xlsx", s.approver, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(`attachment; filename="zestawienie-20260301-120000.xlsx"`, w.Header().Get("Content-Disposition"))
	s.Equal(file.ArchiveKey, w.Header().Get("X-Archive-Key"))
	s.Equal("PK", w.Body.String())
}

func (s *HandlerTestSuite) TestExportDownload_UnknownFormat() {
	w := s.do(http.MethodGet, "/api/v1/exports?format=pdf", s.approver, "")
	s.Equal(http.StatusBadRequest, w.Code)
}
