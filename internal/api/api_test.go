package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/middleware"
	"planner-backend-go/internal/models"
	"planner-backend-go/internal/ratelimit"
	"planner-backend-go/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubTokens accepts "token-<uid>" as an access token for uid.
type stubTokens struct{}

func (stubTokens) VerifyAccess(token string) (*session.Claims, error) {
	uid, ok := strings.CutPrefix(token, "token-")
	if !ok || uid == "" {
		return nil, session.ErrInvalidToken
	}
	claims := &session.Claims{Email: uid + "@example.com"}
	claims.Subject = uid
	return claims, nil
}

// Stub services embed the interface; calling a method without a func set panics.
type stubAuth struct {
	core.AuthService
	register func(models.RegisterRequest) (*core.AuthResult, error)
	refresh  func(string) (*session.TokenPair, error)
}

func (s stubAuth) Register(_ context.Context, req models.RegisterRequest) (*core.AuthResult, error) {
	return s.register(req)
}

func (s stubAuth) Login(_ context.Context, req models.LoginRequest) (*core.AuthResult, error) {
	return nil, core.ErrInvalidCredentials
}

func (s stubAuth) Refresh(_ context.Context, token string) (*session.TokenPair, error) {
	return s.refresh(token)
}

type stubPlanners struct {
	core.PlannerService
	create func(ownerID string, req models.CreatePlannerRequest) (*models.Planner, error)
	get    func(plannerID, actorID string) (*models.Planner, error)
	del    func(plannerID, actorID string) error
	list   func(ownerID string, includeArchived bool) ([]*models.Planner, error)
}

func (s stubPlanners) List(_ context.Context, ownerID string, includeArchived bool) ([]*models.Planner, error) {
	return s.list(ownerID, includeArchived)
}

func (s stubPlanners) Create(_ context.Context, ownerID string, req models.CreatePlannerRequest) (*models.Planner, error) {
	return s.create(ownerID, req)
}

func (s stubPlanners) Get(_ context.Context, plannerID, actorID string) (*models.Planner, error) {
	return s.get(plannerID, actorID)
}

func (s stubPlanners) Delete(_ context.Context, plannerID, actorID string) error {
	return s.del(plannerID, actorID)
}

type stubSections struct {
	core.SectionService
	listInRange func(plannerID, actorID, start, end string) ([]*models.Section, error)
}

func (s stubSections) ListInRange(_ context.Context, plannerID, actorID, start, end string) ([]*models.Section, error) {
	return s.listInRange(plannerID, actorID, start, end)
}

type stubActivity struct {
	core.ActivityService
	listForUser func(userID string, page models.Page) ([]*models.ActivityLog, error)
}

func (s stubActivity) ListForUser(_ context.Context, userID string, page models.Page) ([]*models.ActivityLog, error) {
	return s.listForUser(userID, page)
}

type stubAI struct {
	core.AIService
	suggestMeals func(actorID string, req models.MealSuggestionRequest) (interface{}, error)
}

func (s stubAI) SuggestMeals(_ context.Context, actorID string, req models.MealSuggestionRequest) (interface{}, error) {
	return s.suggestMeals(actorID, req)
}

type stubExport struct {
	core.ExportService
	download func(exportID, actorID string) (*core.ExportDownload, error)
}

func (s stubExport) Download(_ context.Context, exportID, actorID string) (*core.ExportDownload, error) {
	return s.download(exportID, actorID)
}

func newTestRouter(svc Services, authLimit gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryMiddleware(zap.NewNop()))
	SetupRoutes(r, svc, RouteMiddleware{
		Auth:      middleware.NewAuthMiddleware(stubTokens{}, nil, zap.NewNop()),
		AuthLimit: authLimit,
	}, zap.NewNop())
	return r
}

func do(r http.Handler, method, path, uid string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("Authorization", "Bearer token-"+uid)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"planner not found", fmt.Errorf("%w: 'p1'", core.ErrPlannerNotFound), http.StatusNotFound, "Planner not found"},
		{"export not found", core.ErrExportNotFound, http.StatusNotFound, "Export not found"},
		{"forbidden", fmt.Errorf("%w: 'p1'", core.ErrForbiddenAccess), http.StatusForbidden, "Access denied"},
		{"credentials", core.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{"refresh", core.ErrInvalidToken, http.StatusUnauthorized, "Invalid refresh token"},
		{"already shared", core.ErrAlreadyShared, http.StatusBadRequest, "Planner already shared with this user"},
		{"self share", core.ErrCannotShareWithSelf, http.StatusBadRequest, "Cannot share planner with yourself"},
		{"email in use", core.ErrEmailInUse, http.StatusBadRequest, "Email already in use"},
		{"not ready", core.ErrExportNotReady, http.StatusBadRequest, "Export not ready yet"},
		{"validation", &core.ValidationError{Message: "Validation failed", Details: []core.FieldError{{Field: "date", Message: "bad"}}}, http.StatusBadRequest, "Validation failed"},
		{"unavailable", &core.UnavailableError{Service: "Meal planning", Err: errors.New("timeout")}, http.StatusInternalServerError, "Meal planning service temporarily unavailable"},
		{"unknown", errors.New("firestore exploded"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			resp := decodeError(t, w)
			if resp.Status != "error" || resp.Message != tt.wantMsg {
				t.Errorf("response = %+v, want message %q", resp, tt.wantMsg)
			}
		})
	}
}

func TestBindingErrorsReportJSONFields(t *testing.T) {
	r := newTestRouter(Services{Planners: stubPlanners{}}, nil)
	w := do(r, http.MethodPost, "/api/v1/planners", "u1", map[string]interface{}{"color": "pink"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeError(t, w)
	fields := map[string]bool{}
	for _, d := range resp.Details {
		fields[d.Field] = true
	}
	if !fields["title"] || !fields["color"] {
		t.Errorf("details = %+v, want title and color", resp.Details)
	}
}

func TestMalformedBody(t *testing.T) {
	r := newTestRouter(Services{Planners: stubPlanners{}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/planners", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer token-u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestPlannerRoutes(t *testing.T) {
	var gotOwner string
	planners := stubPlanners{
		create: func(ownerID string, req models.CreatePlannerRequest) (*models.Planner, error) {
			gotOwner = ownerID
			return &models.Planner{ID: "p1", UserID: ownerID, Title: req.Title}, nil
		},
		get: func(plannerID, actorID string) (*models.Planner, error) {
			return nil, fmt.Errorf("%w: '%s'", core.ErrPlannerNotFound, plannerID)
		},
		del: func(plannerID, actorID string) error {
			return fmt.Errorf("%w: '%s'", core.ErrForbiddenAccess, plannerID)
		},
	}
	r := newTestRouter(Services{Planners: planners}, nil)

	w := do(r, http.MethodPost, "/api/v1/planners", "u1", models.CreatePlannerRequest{Title: "Work"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Success bool `json:"success"`
		Data    struct {
			Planner models.Planner `json:"planner"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if !created.Success || created.Data.Planner.ID != "p1" || gotOwner != "u1" {
		t.Errorf("created = %+v, owner = %s", created, gotOwner)
	}

	if w := do(r, http.MethodGet, "/api/v1/planners/p9", "u1", nil); w.Code != http.StatusNotFound {
		t.Errorf("get status = %d, want 404", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/v1/planners/p1", "u2", nil); w.Code != http.StatusForbidden {
		t.Errorf("delete status = %d, want 403", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/planners/p1", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
}

func TestSectionRangeQuery(t *testing.T) {
	var gotStart, gotEnd string
	sections := stubSections{
		listInRange: func(plannerID, actorID, start, end string) ([]*models.Section, error) {
			gotStart, gotEnd = start, end
			return []*models.Section{}, nil
		},
	}
	r := newTestRouter(Services{Sections: sections}, nil)

	w := do(r, http.MethodGet, "/api/v1/sections/planner/p1/range?startDate=2024-03-01&endDate=2024-03-07", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if gotStart != "2024-03-01" || gotEnd != "2024-03-07" {
		t.Errorf("range = %s..%s", gotStart, gotEnd)
	}
}

func TestActivityPagination(t *testing.T) {
	var got models.Page
	activity := stubActivity{
		listForUser: func(userID string, page models.Page) ([]*models.ActivityLog, error) {
			got = page
			return nil, nil
		},
	}
	r := newTestRouter(Services{Activity: activity}, nil)

	tests := []struct {
		query string
		want  models.Page
	}{
		{"", models.Page{Limit: 50}},
		{"?limit=500", models.Page{Limit: 100}},
		{"?limit=abc&startAfter=a9", models.Page{Limit: 50, StartAfter: "a9"}},
		{"?limit=10", models.Page{Limit: 10}},
	}
	for _, tt := range tests {
		if w := do(r, http.MethodGet, "/api/v1/activity/user"+tt.query, "u1", nil); w.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", tt.query, w.Code)
		}
		if got != tt.want {
			t.Errorf("%q: page = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestAIUnavailableIsInternalError(t *testing.T) {
	ai := stubAI{
		suggestMeals: func(actorID string, req models.MealSuggestionRequest) (interface{}, error) {
			return nil, &core.UnavailableError{Service: "Meal planning", Err: errors.New("502 from n8n")}
		},
	}
	r := newTestRouter(Services{AI: ai}, nil)

	w := do(r, http.MethodPost, "/api/v1/ai/suggest-meals", "u1", models.MealSuggestionRequest{PlannerID: "p1", Date: "2024-03-15"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp := decodeError(t, w); resp.Message != "Meal planning service temporarily unavailable" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestExportDownload(t *testing.T) {
	exports := stubExport{
		download: func(exportID, actorID string) (*core.ExportDownload, error) {
			if exportID == "pending" {
				return nil, core.ErrExportNotReady
			}
			return &core.ExportDownload{DownloadURL: "https://storage.test/x", Filename: "Work.pdf"}, nil
		},
	}
	r := newTestRouter(Services{Export: exports}, nil)

	if w := do(r, http.MethodGet, "/api/v1/export/download/pending", "u1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("pending status = %d, want 400", w.Code)
	}
	w := do(r, http.MethodGet, "/api/v1/export/download/e1", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Data core.ExportDownload `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.DownloadURL == "" || resp.Data.Filename != "Work.pdf" {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestRegisterAndRefresh(t *testing.T) {
	auth := stubAuth{
		register: func(req models.RegisterRequest) (*core.AuthResult, error) {
			if req.Email == "taken@example.com" {
				return nil, core.ErrEmailInUse
			}
			return &core.AuthResult{
				User:   &models.User{ID: "u1", Email: req.Email},
				Tokens: &session.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresIn: 60},
			}, nil
		},
		refresh: func(string) (*session.TokenPair, error) { return nil, core.ErrInvalidToken },
	}
	r := newTestRouter(Services{Auth: auth}, nil)

	body := models.RegisterRequest{Email: "ana@example.com", Password: "secret1", DisplayName: "Ana"}
	w := do(r, http.MethodPost, "/api/v1/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Token        string `json:"token"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Token != "a" || resp.Data.RefreshToken != "r" {
		t.Errorf("tokens = %+v", resp.Data)
	}

	body.Email = "taken@example.com"
	if w := do(r, http.MethodPost, "/api/v1/auth/register", "", body); w.Code != http.StatusBadRequest {
		t.Errorf("taken email status = %d, want 400", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/v1/auth/refresh", "", models.RefreshRequest{RefreshToken: "old"}); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh status = %d, want 401", w.Code)
	}
}

func TestAuthRateLimit(t *testing.T) {
	limit := middleware.RateLimit(ratelimit.NewMemoryLimiter(2, time.Minute), middleware.AuthLimitMessage, zap.NewNop())
	r := newTestRouter(Services{Auth: stubAuth{}}, limit)

	login := models.LoginRequest{Email: "ana@example.com", Password: "x"}
	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodPost, "/api/v1/auth/login", "", login); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, w.Code)
		}
	}
	w := do(r, http.MethodPost, "/api/v1/auth/login", "", login)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if resp := decodeError(t, w); resp.Message != middleware.AuthLimitMessage {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	r := newTestRouter(Services{}, nil)

	if w := do(r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
	w := do(r, http.MethodGet, "/api/v1/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if resp := decodeError(t, w); resp.Message != "Resource not found" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestEmptyListsRenderAsArrays(t *testing.T) {
	planners := stubPlanners{
		list: func(ownerID string, includeArchived bool) ([]*models.Planner, error) {
			return nil, nil
		},
	}
	activity := stubActivity{
		listForUser: func(userID string, page models.Page) ([]*models.ActivityLog, error) {
			return nil, nil
		},
	}
	r := newTestRouter(Services{Planners: planners, Activity: activity}, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/planners", `{"success":true,"data":{"planners":[]}}`},
		{"/api/v1/activity/user", `{"success":true,"data":{"activities":[]}}`},
	}
	for _, tt := range tests {
		w := do(r, http.MethodGet, tt.path, "u1", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.path, w.Code)
		}
		if got := strings.TrimSpace(w.Body.String()); got != tt.want {
			t.Errorf("%s: body = %s, want %s", tt.path, got, tt.want)
		}
	}
}
