package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xuri/excelize/v2"

	"github.com/hitoshi/contactsman/internal/country"
	"github.com/hitoshi/contactsman/internal/metrics"
	"github.com/hitoshi/contactsman/internal/middleware"
	"github.com/hitoshi/contactsman/internal/model"
	"github.com/hitoshi/contactsman/internal/person"
	"github.com/hitoshi/contactsman/internal/repository"
)

// --- ルーターテスト用のインメモリリポジトリ ---

type memoryPersonRepo struct {
	persons []*model.Person
}

func (m *memoryPersonRepo) ListAll(_ context.Context) ([]*model.Person, error) {
	return m.persons, nil
}

func (m *memoryPersonRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Person, error) {
	for _, p := range m.persons {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memoryPersonRepo) FindMatching(_ context.Context, pred repository.PersonPredicate) ([]*model.Person, error) {
	matched := []*model.Person{}
	for _, p := range m.persons {
		if pred(p) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

type memoryCountryRepo struct {
	countries []*model.Country
}

func (m *memoryCountryRepo) ListAll(_ context.Context) ([]*model.Country, error) {
	return m.countries, nil
}

func (m *memoryCountryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Country, error) {
	for _, c := range m.countries {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(_ context.Context) error {
	return m.err
}

// --- ルーター構築ヘルパー ---

var (
	japanID = uuid.MustParse("00000000-0000-0000-0000-000000000006")
	aliceID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	bobID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func routerFixture() ([]*model.Person, []*model.Country) {
	japan := &model.Country{ID: japanID, CountryName: "Japan"}
	dob := time.Date(1995, time.June, 23, 0, 0, 0, 0, time.UTC)

	persons := []*model.Person{
		{ID: bobID, PersonName: "Bob", Email: "bob@example.org", Gender: model.GenderMale},
		{
			ID:                 aliceID,
			PersonName:         "alice",
			Email:              "alice@example.com",
			DateOfBirth:        &dob,
			Gender:             model.GenderFemale,
			CountryID:          &japanID,
			Country:            japan,
			ReceiveNewsLetters: true,
		},
	}
	countries := []*model.Country{
		japan,
		{ID: uuid.New(), CountryName: "Canada"},
	}
	return persons, countries
}

type testRouter struct {
	handler  http.Handler
	registry *prometheus.Registry
	limiter  *middleware.RateLimiter
}

func newTestRouter(t *testing.T, health error, rl middleware.RateLimiterConfig) *testRouter {
	t.Helper()

	persons, countries := routerFixture()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	limiter := middleware.NewRateLimiter(rl)
	t.Cleanup(limiter.Stop)

	personSvc := person.NewService(&memoryPersonRepo{persons: persons}, collector, nil, nil)
	countrySvc := country.NewService(&memoryCountryRepo{countries: countries})

	h := NewRouter(&RouterDeps{
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       limiter,
		StatusRecorder:    collector,
		RequestTimeout:    5 * time.Second,
		HealthChecker:     &mockHealthChecker{err: health},
		MetricsGatherer:   reg,
		PersonService:     NewPersonServiceAdapter(personSvc),
		CountryService:    NewCountryServiceAdapter(countrySvc),
	})

	return &testRouter{handler: h, registry: reg, limiter: limiter}
}

func (tr *testRouter) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	tr.handler.ServeHTTP(w, req)
	return w
}

func decodePersons(t *testing.T, w *httptest.ResponseRecorder) []personResponse {
	t.Helper()
	var persons []personResponse
	if err := json.NewDecoder(w.Body).Decode(&persons); err != nil {
		t.Fatalf("failed to decode persons: %v", err)
	}
	return persons
}

// --- テスト ---

func TestRouter_ListPersons_DefaultSortByName(t *testing.T) {
	tr := newTestRouter(t, nil, middleware.DefaultRateLimiterConfig())

	w := tr.get("/api/persons")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	persons := decodePersons(t, w)
	if len(persons) != 2 || persons[0].PersonName != "alice" || persons[1].PersonName != "Bob" {
		t.Errorf("persons = %+v, want [alice Bob]", persons)
	}
	if persons[0].Country != "Japan" || persons[0].DateOfBirth == nil || *persons[0].DateOfBirth != "1995-06-23" {
		t.Errorf("unexpected projection: %+v", persons[0])
	}
}

func TestRouter_ListPersons_FilterAndSort(t *testing.T) {
	tr := newTestRouter(t, nil, middleware.DefaultRateLimiterConfig())

	w := tr.get("/api/persons?searchBy=DateOfBirth&searchString=June")
	persons := decodePersons(t, w)
	if len(persons) != 1 || persons[0].ID != aliceID.String() {
		t.Errorf("filtered = %+v, want only alice", persons)
	}

	w = tr.get("/api/persons?sortBy=ReceiveNewsLetters&sortOrder=DESC")
	persons = decodePersons(t, w)
	if len(persons) != 2 || persons[0].PersonName != "alice" {
		t.Errorf("sorted = %+v, want alice first", persons)
	}

	// 未知のフィールドは絞り込み・並び替えを行わない
	w = tr.get("/api/persons?searchBy=Phone&searchString=zzz&sortBy=Phone")
	persons = decodePersons(t, w)
	if len(persons) != 2 || persons[0].PersonName != "Bob" {
		t.Errorf("unknown fields = %+v, want storage order", persons)
	}
}

func TestRouter_GetPerson(t *testing.T) {
	tr := newTestRouter(t, nil, middleware.DefaultRateLimiterConfig())

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/persons/" + aliceID.String(), http.StatusOK},
		{"/api/persons/" + uuid.NewString(), http.StatusNotFound},
		{"/api/persons/" + uuid.Nil.String(), http.StatusBadRequest},
		{"/api/persons/bad-id", http.StatusBadRequest},
	}

	for _, tt := range tests {
		if w := tr.get(tt.path); w.Code != tt.wantStatus {
			t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.wantStatus)
		}
	}
}

func TestRouter_ExportPersons(t *testing.T) {
	tr := newTestRouter(t, nil, middleware.DefaultRateLimiterConfig())

	w := tr.get("/api/persons/export")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != person.ExportContentType {
		t.Errorf("Content-Type = %q", ct)
	}

	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(person.ExportSheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("rows = %d, want 3", len(rows))
	}
}

func TestRouter_ExportRateLimit(t *testing.T) {
	cfg := middleware.NewRateLimiterConfig(120, 1)
	tr := newTestRouter(t, nil, cfg)

	if w := tr.get("/api/persons/export"); w.Code != http.StatusOK {
		t.Fatalf("first export status = %d, want 200", w.Code)
	}
	if w := tr.get("/api/persons/export"); w.Code != http.StatusTooManyRequests {
		t.Errorf("second export status = %d, want 429", w.Code)
	}
	if w := tr.get("/api/persons"); w.Code != http.StatusOK {
		t.Errorf("list after export limit status = %d, want 200", w.Code)
	}
}

func TestRouter_Countries(t *testing.T) {
	tr := newTestRouter(t, nil, middleware.DefaultRateLimiterConfig())

	w := tr.get("/api/countries")
	var countries []countryResponse
	if err := json.NewDecoder(w.Body).Decode(&countries); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(countries) != 2 || countries[0].CountryName != "Canada" {
		t.Errorf("countries = %+v, want Canada first", countries)
	}

	if w := tr.get("/api/countries/" + japanID.String()); w.Code != http.StatusOK {
		t.Errorf("GET country status = %d, want 200", w.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	if w := newTestRouter(t, nil, middleware.DefaultRateLimiterConfig()).get("/health"); w.Code != http.StatusOK {
		t.Errorf("healthy status = %d, want 200", w.Code)
	}

	w := newTestRouter(t, errors.New("connection refused"), middleware.DefaultRateLimiterConfig()).get("/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", w.Code)
	}
}

func TestRouter_MetricsExposeRequests(t *testing.T) {
	tr := newTestRouter(t, nil, middleware.DefaultRateLimiterConfig())

	tr.get("/api/persons?searchBy=Email&searchString=example")
	tr.get("/api/persons/bad-id")

	w := tr.get("/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`contactsman_http_status_total{status_code="200"}`,
		`contactsman_http_status_total{status_code="400"}`,
		`contactsman_filter_requests_total{field="Email"} 1`,
		`contactsman_storage_query_duration_seconds_count{operation="find_matching"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRouter_SecurityAndCORSHeaders(t *testing.T) {
	tr := newTestRouter(t, nil, middleware.DefaultRateLimiterConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/persons", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	tr.handler.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}
