package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jacobarthurs/a11yscan/internal/analyzer"
	"github.com/jacobarthurs/a11yscan/internal/input"
	"github.com/jacobarthurs/a11yscan/internal/store"
)

const uploadField = "file"

// validationBody mirrors the upload validator's 422 response.
type validationBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// analysis is one encoded report and how it was produced.
type analysis struct {
	body   []byte
	issues int
	hit    bool
	shared bool
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	var (
		filename string
		result   analysis
	)
	defer func() {
		s.log.Infow("analyze request",
			"status", rec.status,
			"file", filename,
			"issues", result.issues,
			"cache_hit", result.hit,
			"shared", result.shared,
			"duration", time.Since(start),
		)
	}()

	if err := r.ParseMultipartForm(s.maxUpload + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.rejectUpload(rec, input.Validate("", s.maxUpload+1, s.maxUpload))
			return
		}
		s.rejectUpload(rec, &input.ValidationError{Field: uploadField, Message: "the file field is required"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		s.rejectUpload(rec, &input.ValidationError{Field: uploadField, Message: "the file field is required"})
		return
	}
	defer file.Close()
	filename = header.Filename

	if err := input.Validate(filename, header.Size, s.maxUpload); err != nil {
		s.rejectUpload(rec, err)
		return
	}

	markup, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		s.log.Errorw("reading upload", "file", filename, "error", err)
		http.Error(rec, "could not read upload", http.StatusBadRequest)
		return
	}
	if err := input.Validate(filename, int64(len(markup)), s.maxUpload); err != nil {
		s.rejectUpload(rec, err)
		return
	}

	result, err = s.analyze(r.Context(), filename, markup)
	if err != nil {
		s.log.Errorw("analyzing upload", "file", filename, "error", err)
		http.Error(rec, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(rec, http.StatusOK, result.body)
}

// analyze returns the encoded report for markup, serving repeats from the
// cache and collapsing identical concurrent uploads into one run.
func (s *Server) analyze(ctx context.Context, source string, markup []byte) (analysis, error) {
	digest := store.Digest(markup)
	key := s.cacheKey(digest)

	if body, found, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warnw("cache get failed", "key", key, "error", err)
	} else if found {
		var report analyzer.Report
		if err := json.Unmarshal(body, &report); err == nil {
			return analysis{body: body, issues: len(report.Issues), hit: true}, nil
		}
		s.log.Warnw("discarding unreadable cache entry", "key", key)
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		report := s.analyzer.Analyze(string(markup))
		body, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("encoding report: %w", err)
		}

		// The result is shared by every waiter, not just this request.
		bg := context.WithoutCancel(ctx)
		if err := s.cache.Set(bg, key, body, s.cacheTTL); err != nil {
			s.log.Warnw("cache set failed", "key", key, "error", err)
		}
		s.recordHistory(bg, source, digest, report)

		return analysis{body: body, issues: len(report.Issues)}, nil
	})
	if err != nil {
		return analysis{shared: shared}, err
	}
	result := v.(analysis)
	result.shared = shared
	return result, nil
}

func (s *Server) recordHistory(ctx context.Context, source, digest string, report analyzer.Report) {
	if s.connStr == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	id, err := s.saveReport(ctx, s.connStr, source, digest, report)
	if err != nil {
		s.log.Warnw("saving report failed", "source", source, "error", err)
		return
	}
	s.log.Debugw("saved report", "id", id, "source", source)
}

func (s *Server) cacheKey(digest string) string {
	return "report:" + s.analyzer.Fingerprint() + ":" + digest
}

func (s *Server) rejectUpload(w http.ResponseWriter, err error) {
	var ve *input.ValidationError
	if !errors.As(err, &ve) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSONValue(w, http.StatusUnprocessableEntity, validationBody{
		Message: "The given data was invalid.",
		Errors:  map[string][]string{ve.Field: {sentence(ve.Message)}},
	})
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
