package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/reviewpulse/internal/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeService struct {
	scrapeCount   int
	scrapeSort    models.SortOrder
	scrapeDest    string
	gotAspects    []string
	generalCalled bool
	err           error
}

func (f *fakeService) ScrapeToCSV(_ context.Context, _ string, count int, sort models.SortOrder, destination string) ([]string, error) {
	f.scrapeCount, f.scrapeSort, f.scrapeDest = count, sort, destination
	if f.err != nil {
		return nil, f.err
	}
	return []string{"first", "second"}, nil
}

func (f *fakeService) AnalyzeGeneral(_ context.Context, reviews []string) (*models.GeneralAnalysis, error) {
	f.generalCalled = true
	if f.err != nil {
		return nil, f.err
	}
	best := "b good"
	return &models.GeneralAnalysis{
		RunID:  "run-g",
		Report: models.GeneralReport{PositiveCount: 1, MostPositiveReview: &best},
		Details: []models.DetailRow{
			{Review: "b good", Label: models.LabelPositive, Score: 0.9},
		},
		Analyzed: len(reviews),
	}, nil
}

func (f *fakeService) AnalyzeAspects(_ context.Context, _ []string, aspects []string) (*models.AspectAnalysis, error) {
	f.gotAspects = aspects
	if f.err != nil {
		return nil, f.err
	}
	return &models.AspectAnalysis{
		RunID:   "run-a",
		Aspects: aspects,
		Reports: []models.AspectReport{{Aspect: "battery", NegativeCount: 1}, {Aspect: "camera", PositiveCount: 2}},
		Details: []models.DetailRow{
			{Review: "z review", Aspect: "battery", Label: models.LabelNegative, Score: 0.8},
			{Review: "a review", Aspect: "camera", Label: models.LabelPositive, Score: 0.99},
			{Review: "z review", Aspect: "camera", Label: models.LabelPositive, Score: 0.7},
		},
	}, nil
}

func (f *fakeService) Summarize(_ context.Context, reviews []string) (string, error) {
	if len(reviews) == 0 {
		return "", models.ErrEmptyCorpus
	}
	return "short summary", nil
}

func do(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %s", w.Body.String())
		}
	}
	return w, decoded
}

func TestScrape(t *testing.T) {
	svc := &fakeService{}
	router := NewServer(svc, WithWorkDir("/tmp/work")).Router()

	w, body := do(t, router, http.MethodPost, "/scrape?count=25&sort=helpful", `{"url":"https://www.walmart.com/ip/5074872077"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	if svc.scrapeCount != 25 || svc.scrapeSort != models.SortHelpful || svc.scrapeDest != filepath.Join("/tmp/work", "reviews.csv") {
		t.Errorf("service got count=%d sort=%q dest=%q", svc.scrapeCount, svc.scrapeSort, svc.scrapeDest)
	}
	if reviews, _ := body["reviews"].([]any); len(reviews) != 2 {
		t.Errorf("reviews = %v", body["reviews"])
	}
}

func TestScrape_Defaults(t *testing.T) {
	svc := &fakeService{}
	router := NewServer(svc).Router()

	if w, body := do(t, router, http.MethodPost, "/scrape", `{"url":"https://www.walmart.com/ip/5074872077"}`); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	if svc.scrapeCount != 100 || svc.scrapeSort != models.SortRelevancy {
		t.Errorf("defaults = %d/%q, want 100/relevancy", svc.scrapeCount, svc.scrapeSort)
	}
}

func TestScrape_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{name: "missing url", target: "/scrape", body: `{}`},
		{name: "relative url", target: "/scrape", body: `{"url":"walmart.com/ip/1"}`},
		{name: "unknown sort", target: "/scrape?sort=cheapest", body: `{"url":"https://www.walmart.com/ip/5074872077"}`},
		{name: "non numeric count", target: "/scrape?count=lots", body: `{"url":"https://www.walmart.com/ip/5074872077"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewServer(&fakeService{}).Router()
			w, body := do(t, router, http.MethodPost, tt.target, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if _, ok := body["detail"]; !ok {
				t.Errorf("body = %v, want a detail message", body)
			}
		})
	}
}

func TestAnalyze_General(t *testing.T) {
	svc := &fakeService{}
	router := NewServer(svc).Router()

	w, body := do(t, router, http.MethodPost, "/analyze", `{"reviews":["b good"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	if !svc.generalCalled || body["analysis_type"] != "general" {
		t.Errorf("body = %v", body)
	}
	report, _ := body["report"].(map[string]any)
	if report["most_positive_review"] != "b good" || report["most_negative_review"] != nil {
		t.Errorf("report = %v", report)
	}
	results, _ := body["results"].([]any)
	if len(results) != 1 || results[0].(map[string]any)["label"] != "POSITIVE" {
		t.Errorf("results = %v", results)
	}
}

func TestAnalyze_Aspects(t *testing.T) {
	svc := &fakeService{}
	router := NewServer(svc).Router()

	w, body := do(t, router, http.MethodPost, "/analyze?aspects=camera&aspects=battery", `{"reviews":["a review","z review"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	if strings.Join(svc.gotAspects, ",") != "camera,battery" {
		t.Errorf("aspects = %v", svc.gotAspects)
	}
	if body["analysis_type"] != "aspect-based" {
		t.Errorf("analysis_type = %v", body["analysis_type"])
	}

	results, _ := body["results"].([]any)
	if len(results) != 2 {
		t.Fatalf("results = %v", results)
	}
	first := results[0].(map[string]any)
	second := results[1].(map[string]any)
	if first["review"] != "a review" || second["review"] != "z review" {
		t.Errorf("results not grouped by review: %v", results)
	}
	if details, _ := second["details"].([]any); len(details) != 2 {
		t.Errorf("z review details = %v", second["details"])
	}

	report, _ := body["report"].(map[string]any)
	if _, ok := report["battery"]; !ok {
		t.Errorf("report = %v", report)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	svc := &fakeService{err: models.NewInputError("empty aspect")}
	router := NewServer(svc).Router()

	w, body := do(t, router, http.MethodPost, "/analyze?aspects=", `{"reviews":["x"]}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(body["detail"].(string), "empty aspect") {
		t.Errorf("status = %d, body = %v", w.Code, body)
	}

	w, _ = do(t, router, http.MethodPost, "/analyze", `{"reviews":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
}

func TestSummarize(t *testing.T) {
	router := NewServer(&fakeService{}).Router()

	w, body := do(t, router, http.MethodPost, "/summarize", `{"reviews":["a","b"]}`)
	if w.Code != http.StatusOK || body["summary"] != "short summary" {
		t.Errorf("status = %d, body = %v", w.Code, body)
	}

	w, body = do(t, router, http.MethodPost, "/summarize", `{"reviews":[]}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(body["detail"].(string), models.ErrEmptyCorpus.Error()) {
		t.Errorf("empty corpus status = %d, body = %v", w.Code, body)
	}
}

func TestHealthz(t *testing.T) {
	var hf atomic.Bool
	hf.Store(true)
	router := NewServer(&fakeService{}, WithHealth("huggingface", &hf)).Router()

	if w, _ := do(t, router, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("healthy status = %d", w.Code)
	}

	hf.Store(false)
	w, body := do(t, router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", w.Code)
	}
	if backends, _ := body["backends"].(map[string]any); backends["huggingface"] != false {
		t.Errorf("backends = %v", body["backends"])
	}
}

func TestCORS(t *testing.T) {
	router := NewServer(&fakeService{}, WithAllowedOrigin("http://localhost:5173")).Router()

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin got Allow-Origin %q", got)
	}
}

func TestFail_RecordsError(t *testing.T) {
	svc := &fakeService{err: errors.New("upstream exploded")}
	router := NewServer(svc).Router()

	w, body := do(t, router, http.MethodPost, "/analyze", `{"reviews":["x"]}`)
	if w.Code != http.StatusBadRequest || body["detail"] != "upstream exploded" {
		t.Errorf("status = %d, body = %v", w.Code, body)
	}
}
