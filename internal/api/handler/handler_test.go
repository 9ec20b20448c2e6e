package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/filter"
	"github.com/tomwright01/dashboard/internal/service"
	pkgerrors "github.com/tomwright01/dashboard/pkg/errors"
	"github.com/tomwright01/dashboard/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock SearchService ──

type mockSearchService struct {
	lastReq *dto.SearchRequest
	result  *dto.SearchResponse
	err     error
}

func (m *mockSearchService) ResolveSessions(_ context.Context, _ string) ([]dto.SessionResult, error) {
	return nil, m.err
}

func (m *mockSearchService) ResolveScans(_ context.Context, _ string) ([]dto.ScanResult, error) {
	return nil, m.err
}

func (m *mockSearchService) FindSubjects(_ context.Context, _ string) ([]dto.SubjectResult, error) {
	return nil, m.err
}

func (m *mockSearchService) Search(_ context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	m.lastReq = req
	return m.result, m.err
}

// ── Mock MetricService ──

type mockMetricService struct {
	lastValues filter.Values
	lastByName bool
	values     []dto.MetricValueResponse
	err        error
}

func (m *mockMetricService) QueryTypes(_ context.Context, values filter.Values) ([]dto.MetricTypeResponse, error) {
	m.lastValues = values
	return nil, m.err
}

func (m *mockMetricService) Options(_ context.Context, values filter.Values) (*dto.MetricOptionsResponse, error) {
	m.lastValues = values
	return &dto.MetricOptionsResponse{}, m.err
}

func (m *mockMetricService) QueryValues(_ context.Context, values filter.Values, byName bool) ([]dto.MetricValueResponse, error) {
	m.lastValues, m.lastByName = values, byName
	return m.values, m.err
}

// ── Mock QCService ──

type mockQCService struct {
	lastReq *dto.QCQueryRequest
	records []dto.QCRecordResponse
	err     error
}

func (m *mockQCService) GetScanQC(_ context.Context, req *dto.QCQueryRequest) ([]dto.QCRecordResponse, error) {
	m.lastReq = req
	return m.records, m.err
}

func (m *mockQCService) OutstandingReviews(_ context.Context, _ *dto.OutstandingRequest) ([]dto.QCRecordResponse, error) {
	return m.records, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportMetricValues(_ context.Context, _ filter.Values, _ bool) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

func (m *mockExportService) ExportQC(_ context.Context, _ *dto.QCQueryRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ── Mock StudyService ──

type mockStudyService struct {
	lastCreate bool
	study      *dto.StudyResponse
	err        error
}

func (m *mockStudyService) GetStudies(_ context.Context, req *dto.StudyListRequest, create bool) ([]dto.StudyResponse, error) {
	m.lastCreate = create
	if m.err != nil {
		return nil, m.err
	}
	return []dto.StudyResponse{{Code: strings.ToUpper(req.Name)}}, nil
}

func (m *mockStudyService) GetStudy(_ context.Context, _ string) (*dto.StudyResponse, error) {
	return m.study, m.err
}

func (m *mockStudyService) GetScantypes(_ context.Context, _ string, _ bool) ([]dto.ScantypeResponse, error) {
	return nil, m.err
}

func (m *mockStudyService) GetRedcapConfig(_ context.Context, _, _, _ string, create bool) (*dto.RedcapConfigResponse, error) {
	m.lastCreate = create
	return &dto.RedcapConfigResponse{}, m.err
}

// ── Mock UserService ──

type mockUserService struct {
	lastID uint
	err    error
}

func (m *mockUserService) FindUsers(_ context.Context, _ string) ([]dto.UserResponse, error) {
	return nil, m.err
}

func (m *mockUserService) GetUser(_ context.Context, id uint) (*dto.UserResponse, error) {
	m.lastID = id
	return &dto.UserResponse{ID: id}, m.err
}

func (m *mockUserService) UserStudies(_ context.Context, id uint) ([]dto.StudyResponse, error) {
	m.lastID = id
	return nil, m.err
}

func (m *mockUserService) UserSites(_ context.Context, id uint) ([]dto.SiteResponse, error) {
	m.lastID = id
	return nil, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func flatten(values filter.Values, key string) []string {
	out := filter.SplitValues(values[key])
	sort.Strings(out)
	return out
}

// ═══════════════════════════════════════════════════════════
// SearchHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSearchHandler_MissingQuery(t *testing.T) {
	mock := &mockSearchService{}
	r := gin.New()
	r.GET("/search", NewSearchHandler(mock).Search)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/search", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.lastReq != nil {
		t.Error("service should not be called without q")
	}
}

func TestSearchHandler_Success(t *testing.T) {
	mock := &mockSearchService{result: &dto.SearchResponse{Query: "S1_CMH_0001_01"}}
	r := gin.New()
	r.GET("/search", NewSearchHandler(mock).Search)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/search?q=s1_cmh_0001_01&type=sessions", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastReq.GetType() != dto.SearchSessions {
		t.Errorf("expected type sessions, got %s", mock.lastReq.GetType())
	}
}

func TestSearchHandler_BadType(t *testing.T) {
	r := gin.New()
	r.GET("/search", NewSearchHandler(&mockSearchService{}).Search)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/search?q=x&type=everything", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// MetricHandler Tests
// ═══════════════════════════════════════════════════════════

func TestMetricHandler_ListValues_CollectsFilters(t *testing.T) {
	mock := &mockMetricService{}
	r := gin.New()
	r.GET("/metrics/values", NewMetricHandler(mock, &mockExportService{}).ListValues)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET",
		"/metrics/values?study_id=1,2&studies=3&Sites[]=4&byname=false&bogus=x", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := flatten(mock.lastValues, "studies"); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("expected studies [1 2 3], got %v", got)
	}
	if got := flatten(mock.lastValues, "sites"); !reflect.DeepEqual(got, []string{"4"}) {
		t.Errorf("expected sites [4], got %v", got)
	}
	if _, ok := mock.lastValues["byname"]; ok {
		t.Error("byname is a control parameter, not a filter")
	}
	if _, ok := mock.lastValues["bogus"]; !ok {
		t.Error("unknown keys are passed through for the composer to drop")
	}
}

func TestMetricHandler_ListValues_FormEqualsQuery(t *testing.T) {
	mock := &mockMetricService{}
	r := gin.New()
	h := NewMetricHandler(mock, &mockExportService{})
	r.GET("/metrics/values", h.ListValues)
	r.POST("/metrics/values", h.ListValues)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics/values?scantypes=T1,DTI&byname=true", nil))
	fromQuery := flatten(mock.lastValues, "scantypes")

	form := url.Values{"scantypes": {"T1", "DTI"}, "byname": {"true"}}
	req := httptest.NewRequest("POST", "/metrics/values", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !mock.lastByName {
		t.Error("byname should be bound from the form")
	}
	if got := flatten(mock.lastValues, "scantypes"); !reflect.DeepEqual(got, fromQuery) {
		t.Errorf("form %v should equal query %v", got, fromQuery)
	}
}

func TestMetricHandler_ListValues_ValidationError(t *testing.T) {
	mock := &mockMetricService{err: pkgerrors.NewValidationError("scantypes", "abc", "必须为整数")}
	r := gin.New()
	r.GET("/metrics/values", NewMetricHandler(mock, &mockExportService{}).ListValues)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics/values?scantypes=abc", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != response.CodeValidation || !strings.Contains(resp.Details, "scantypes") {
		t.Errorf("expected validation envelope, got %+v", resp)
	}
}

func TestMetricHandler_ListValues_InternalError(t *testing.T) {
	mock := &mockMetricService{err: errors.New("connection refused")}
	r := gin.New()
	r.GET("/metrics/values", NewMetricHandler(mock, &mockExportService{}).ListValues)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics/values", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Error("internal error details must not leak to the client")
	}
}

func TestMetricHandler_ExportValues(t *testing.T) {
	export := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "metric_values.xlsx"}
	r := gin.New()
	r.GET("/metrics/values/export", NewMetricHandler(&mockMetricService{}, export).ExportValues)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics/values/export", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "metric_values.xlsx") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected Content-Type: %s", ct)
	}
}

func TestMetricHandler_ExportValues_NoRows(t *testing.T) {
	export := &mockExportService{err: service.ErrExportNoRows}
	r := gin.New()
	r.GET("/metrics/values/export", NewMetricHandler(&mockMetricService{}, export).ExportValues)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics/values/export", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// QCHandler Tests
// ═══════════════════════════════════════════════════════════

func TestQCHandler_ListScans_Binding(t *testing.T) {
	mock := &mockQCService{}
	r := gin.New()
	r.GET("/qc/scans", NewQCHandler(mock, &mockExportService{}).ListScans)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET",
		"/qc/scans?blacklisted=false&include_new=true&study=S1&study=S2&user_id=3&comment=motion%3B+ghosting", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	req := mock.lastReq
	if req.Approved != nil || req.Blacklisted == nil || *req.Blacklisted {
		t.Errorf("unset toggles stay nil, blacklisted=false is explicit: %+v", req)
	}
	if !req.IncludeNew || len(req.Study) != 2 || req.UserID == nil || *req.UserID != 3 {
		t.Errorf("unexpected binding: %+v", req)
	}
}

func TestQCHandler_ListScans_NothingRequested(t *testing.T) {
	mock := &mockQCService{err: pkgerrors.NewValidationError("approved/flagged/blacklisted", "", "至少需要包含一种 QC 状态")}
	r := gin.New()
	r.GET("/qc/scans", NewQCHandler(mock, &mockExportService{}).ListScans)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/qc/scans?approved=false&flagged=false&blacklisted=false", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestQCHandler_ListScans_BadBool(t *testing.T) {
	mock := &mockQCService{}
	r := gin.New()
	r.GET("/qc/scans", NewQCHandler(mock, &mockExportService{}).ListScans)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/qc/scans?approved=maybe", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.lastReq != nil {
		t.Error("service should not be called on binding failure")
	}
}

// ═══════════════════════════════════════════════════════════
// StudyHandler / UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestStudyHandler_GetStudy_NotFound(t *testing.T) {
	mock := &mockStudyService{err: service.ErrStudyNotFound}
	r := gin.New()
	r.GET("/studies/:code", NewStudyHandler(mock, nil).GetStudy)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/studies/NOPE", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "研究不存在" {
		t.Errorf("expected message 研究不存在, got %q", resp.Message)
	}
}

func TestStudyHandler_CreateStudy(t *testing.T) {
	mock := &mockStudyService{}
	r := gin.New()
	r.POST("/studies", NewStudyHandler(mock, nil).CreateStudy)

	req := httptest.NewRequest("POST", "/studies", strings.NewReader(`{"name":"spn01"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !mock.lastCreate {
		t.Error("POST should create missing studies")
	}
}

func TestStudyHandler_GetRedcapConfig_ReadOnly(t *testing.T) {
	mock := &mockStudyService{}
	r := gin.New()
	r.GET("/redcap", NewStudyHandler(mock, nil).GetRedcapConfig)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/redcap?project=42&instrument=scan&url=https://redcap.example.org", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastCreate {
		t.Error("GET must not create configs")
	}
}

func TestUserHandler_InvalidID(t *testing.T) {
	mock := &mockUserService{}
	r := gin.New()
	r.GET("/users/:id", NewUserHandler(mock).GetUser)

	for _, id := range []string{"abc", "0", "-1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/users/"+id, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("id=%s: expected 400, got %d", id, w.Code)
		}
	}
	if mock.lastID != 0 {
		t.Error("service should not be called with an invalid id")
	}
}

func TestUserHandler_ListSites_NotFound(t *testing.T) {
	mock := &mockUserService{err: service.ErrUserNotFound}
	r := gin.New()
	r.GET("/users/:id/sites", NewUserHandler(mock).ListSites)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/9/sites", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if mock.lastID != 9 {
		t.Errorf("expected id 9, got %d", mock.lastID)
	}
}

// ═══════════════════════════════════════════════════════════
// HealthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name string
		ping PingFunc
		want int
	}{
		{"healthy", func(context.Context) error { return nil }, http.StatusOK},
		{"database down", func(context.Context) error { return errors.New("down") }, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.ping, "memory").Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
