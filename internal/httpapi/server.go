package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"earningscall/internal/config"
	"earningscall/internal/model"
	"earningscall/internal/summarizer"
	"earningscall/internal/transcript"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Summarizer interface {
	Summarize(ctx context.Context, text, companyName string) (summarizer.Result, error)
}

type MetricsObserver interface {
	ObserveHTTP(route, method string, status int, duration time.Duration)
}

type ReadinessChecker interface {
	Check(ctx context.Context) error
}

type Dependencies struct {
	Summarizer     Summarizer
	Readiness      ReadinessChecker
	Metrics        MetricsObserver
	MetricsHandler http.Handler
}

type server struct {
	cfg          config.Config
	logger       *slog.Logger
	summarizer   Summarizer
	readiness    ReadinessChecker
	metrics      MetricsObserver
	metricsRoute http.Handler
}

type ctxKey string

const (
	requestIDHeader  = "X-Request-Id"
	requestIDContext = ctxKey("request_id")
	livenessMessage  = "API is working!"
	readinessTimeout = 5 * time.Second
)

func NewServer(cfg config.Config, logger *slog.Logger, deps Dependencies) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Summarizer == nil {
		panic("httpapi: summarizer dependency is required")
	}

	s := &server{
		cfg:          cfg,
		logger:       logger,
		summarizer:   deps.Summarizer,
		readiness:    deps.Readiness,
		metrics:      deps.Metrics,
		metricsRoute: deps.MetricsHandler,
	}

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "route not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", "")
	})

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/test", s.handleTest)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if s.metricsRoute != nil {
		r.Handle("/metrics", s.metricsRoute)
	}

	r.Post("/earnings_transcript_summary", s.handleEarningsTranscriptSummary)

	return r
}

func (s *server) handleTest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, livenessMessage)
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{OK: true})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ready := model.ReadyResponse{OK: true, Provider: s.cfg.Provider, Model: s.cfg.Model}
	if s.readiness == nil {
		writeJSON(w, http.StatusOK, ready)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	if err := s.readiness.Check(ctx); err != nil {
		s.logger.Warn("readiness_check_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		s.writeError(w, r, http.StatusServiceUnavailable, "upstream check failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ready)
}

func (s *server) handleEarningsTranscriptSummary(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("transcript_summary_requested", "request_id", requestIDFromContext(r.Context()))

	if !isJSONContentType(r.Header.Get("Content-Type")) {
		s.writeError(w, r, http.StatusBadRequest, msgNotJSON, "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	var body json.RawMessage
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&body); err != nil {
		s.handleJSONDecodeError(w, r, err)
		return
	}
	if err := ensureBodyFullyConsumed(decoder); err != nil {
		s.handleJSONDecodeError(w, r, err)
		return
	}

	req, err := parseSummaryRequest(body, s.cfg.MaxTranscriptWords)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := s.summarizer.Summarize(r.Context(), req.TranscriptText, req.CompanyName)
	if err != nil {
		s.logger.Error("transcript_summary_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		s.writeError(w, r, http.StatusInternalServerError, msgSummaryFailure, err.Error())
		return
	}

	s.logger.Info("transcript_summarized",
		"request_id", requestIDFromContext(r.Context()),
		"company_name", result.CompanyName,
		"words", transcript.CountWords(req.TranscriptText),
		"failed_categories", len(result.Failures()),
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleJSONDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.writeError(w, r, http.StatusBadRequest, transcriptLimitError(s.cfg.MaxTranscriptWords).Error(), "")
		return
	}
	s.writeError(w, r, http.StatusBadRequest, msgNotJSON, "")
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, message, details string) {
	if rid := requestIDFromContext(r.Context()); rid != "" {
		w.Header().Set(requestIDHeader, rid)
	}
	writeJSON(w, status, model.ErrorResponse{Error: message, Details: details})
}

func (s *server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = newRequestID()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDContext, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		duration := time.Since(started)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, r.Method, status, duration)
		}

		s.logger.Info("http_request",
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", duration.Milliseconds(),
		)
	})
}

func (s *server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "request_id", requestIDFromContext(r.Context()), "panic", rec)
				s.writeError(w, r, http.StatusInternalServerError, msgSummaryFailure, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func ensureBodyFullyConsumed(decoder *json.Decoder) error {
	var extra any
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("multiple JSON values")
		}
		return err
	}
	return nil
}

func requestIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(requestIDContext).(string)
	return value
}

func newRequestID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
