package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jacobarthurs/a11yscan/internal/analyzer"
	"github.com/jacobarthurs/a11yscan/internal/cache"
	"github.com/jacobarthurs/a11yscan/internal/dom"
)

const testMaxUpload = 2048 * 1024

func newTestServer(t *testing.T, a *analyzer.Analyzer) *Server {
	t.Helper()
	if a == nil {
		var err error
		a, err = analyzer.New(analyzer.DefaultPenaltyPerIssue, nil)
		if err != nil {
			t.Fatalf("analyzer.New failed: %v", err)
		}
	}
	mem := cache.NewMemory(0, time.Hour)
	t.Cleanup(func() { _ = mem.Close() })

	s, err := New(Options{Analyzer: a, MaxUploadBytes: testMaxUpload, Cache: mem})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

// countingAnalyzer reports how many times its single rule ran.
func countingAnalyzer(calls *atomic.Int32) *analyzer.Analyzer {
	return &analyzer.Analyzer{
		PenaltyPerIssue: analyzer.DefaultPenaltyPerIssue,
		Rules: []analyzer.Rule{{
			ID:       "counting",
			Category: analyzer.MissingAlt,
			Check: func(doc *dom.Document) []analyzer.Issue {
				calls.Add(1)
				return nil
			},
		}},
	}
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	} else if err := mw.WriteField("note", "no file"); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func requireValidationFailure(t *testing.T, rec *httptest.ResponseRecorder, wantMessage string) {
	t.Helper()
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body %s", rec.Code, rec.Body.String())
	}
	var body validationBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Message != "The given data was invalid." {
		t.Errorf("message = %q", body.Message)
	}
	msgs := body.Errors["file"]
	if len(msgs) != 1 || msgs[0] != wantMessage {
		t.Errorf("errors.file = %v, want [%q]", msgs, wantMessage)
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	a, _ := analyzer.New(2, nil)
	mem := cache.NewMemory(0, time.Hour)
	t.Cleanup(func() { _ = mem.Close() })

	if _, err := New(Options{MaxUploadBytes: 1, Cache: mem}); err == nil {
		t.Error("expected error without analyzer")
	}
	if _, err := New(Options{Analyzer: a, Cache: mem}); err == nil {
		t.Error("expected error without upload limit")
	}
	if _, err := New(Options{Analyzer: a, MaxUploadBytes: 1}); err == nil {
		t.Error("expected error without cache")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing frame options header")
	}
}

func TestAnalyze_Success(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, uploadRequest(t, "file", "page.html", `<html><body><img src="a.png"></body></html>`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var report analyzer.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(report.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", report.Issues)
	}
	if report.Issues[0].Category != analyzer.MissingAlt || report.Issues[1].Category != analyzer.MissingLang {
		t.Errorf("issues = %+v", report.Issues)
	}
	if report.ComplianceScore != 96 {
		t.Errorf("score = %d, want 96", report.ComplianceScore)
	}
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestAnalyze_MissingFile(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, uploadRequest(t, "", "", ""))
	requireValidationFailure(t, rec, "The file field is required.")
}

func TestAnalyze_NotMultipart(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("<p>hi</p>"))
	req.Header.Set("Content-Type", "text/html")

	requireValidationFailure(t, serve(s, req), "The file field is required.")
}

func TestAnalyze_WrongExtension(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, uploadRequest(t, "file", "page.txt", "<p>hi</p>"))
	requireValidationFailure(t, rec, "The file must be a file of type: html, htm.")
}

func TestAnalyze_TooLarge(t *testing.T) {
	s := newTestServer(t, nil)
	big := "<p>" + strings.Repeat("a", testMaxUpload) + "</p>"
	rec := serve(s, uploadRequest(t, "file", "big.html", big))
	requireValidationFailure(t, rec, "The file may not be greater than 2048 kilobytes.")
}

func TestAnalyze_BodyBeyondLimit(t *testing.T) {
	s := newTestServer(t, nil)
	huge := strings.Repeat("a", testMaxUpload+2*multipartOverhead)
	rec := serve(s, uploadRequest(t, "file", "huge.html", huge))
	requireValidationFailure(t, rec, "The file may not be greater than 2048 kilobytes.")
}

func TestAnalyze_CachesRepeatUploads(t *testing.T) {
	var calls atomic.Int32
	s := newTestServer(t, countingAnalyzer(&calls))

	for range 3 {
		rec := serve(s, uploadRequest(t, "file", "page.html", "<p>same</p>"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("analyzer ran %d times, want 1", calls.Load())
	}

	serve(s, uploadRequest(t, "file", "page.html", "<p>different</p>"))
	if calls.Load() != 2 {
		t.Errorf("analyzer ran %d times, want 2", calls.Load())
	}
}

func TestCacheKey_DependsOnConfiguration(t *testing.T) {
	a, _ := analyzer.New(2, nil)
	b, _ := analyzer.New(2, []string{"low-contrast"})

	sa := newTestServer(t, a)
	sb := newTestServer(t, b)
	if sa.cacheKey("abc") == sb.cacheKey("abc") {
		t.Error("servers with different rule sets should not share cache keys")
	}
}

func TestAnalyze_RecordsHistory(t *testing.T) {
	s := newTestServer(t, nil)
	s.connStr = "postgres://example/history"

	var saved []string
	s.saveReport = func(ctx context.Context, connStr, source, digest string, report analyzer.Report) (int64, error) {
		if connStr != "postgres://example/history" {
			t.Errorf("connStr = %q", connStr)
		}
		saved = append(saved, source)
		return int64(len(saved)), nil
	}

	serve(s, uploadRequest(t, "file", "page.html", "<p>one</p>"))
	serve(s, uploadRequest(t, "file", "page.html", "<p>one</p>"))

	if len(saved) != 1 || saved[0] != "page.html" {
		t.Errorf("saved = %v, want one save for page.html", saved)
	}
}

func TestAnalyze_HistoryFailureIsNotFatal(t *testing.T) {
	s := newTestServer(t, nil)
	s.connStr = "postgres://example/history"
	s.saveReport = func(context.Context, string, string, string, analyzer.Report) (int64, error) {
		return 0, errors.New("database down")
	}

	rec := serve(s, uploadRequest(t, "file", "page.htm", "<p>x</p>"))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestSentence(t *testing.T) {
	cases := map[string]string{
		"the file field is required": "The file field is required.",
		"already done.":              "Already done.",
		"":                           "",
	}
	for in, want := range cases {
		if got := sentence(in); got != want {
			t.Errorf("sentence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAnalyze_LogsOneLinePerRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	a, _ := analyzer.New(analyzer.DefaultPenaltyPerIssue, nil)
	mem := cache.NewMemory(0, time.Hour)
	t.Cleanup(func() { _ = mem.Close() })

	s, err := New(Options{Analyzer: a, MaxUploadBytes: testMaxUpload, Cache: mem, Logger: zap.New(core).Sugar()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	page := `<html><body><img src="a.png"></body></html>`
	serve(s, uploadRequest(t, "file", "page.html", page))
	serve(s, uploadRequest(t, "file", "page.html", page))
	serve(s, uploadRequest(t, "file", "page.txt", page))

	entries := logs.FilterMessage("analyze request").All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 request lines, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first["status"] != int64(http.StatusOK) || first["issues"] != int64(2) || first["cache_hit"] != false {
		t.Errorf("first request = %v", first)
	}
	second := entries[1].ContextMap()
	if second["issues"] != int64(2) || second["cache_hit"] != true {
		t.Errorf("cached request = %v", second)
	}
	if _, ok := second["duration"]; !ok {
		t.Error("missing duration")
	}
	rejected := entries[2].ContextMap()
	if rejected["status"] != int64(http.StatusUnprocessableEntity) {
		t.Errorf("rejected request = %v", rejected)
	}
}
