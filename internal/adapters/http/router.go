package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hazemfarouk/meddir-assistant/internal/core/domain"
	"github.com/hazemfarouk/meddir-assistant/internal/core/ports"
	"github.com/hazemfarouk/meddir-assistant/internal/observability/metrics"
)

type Options struct {
	Service        string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
	Logger         *slog.Logger
	Metrics        *metrics.HTTPServerMetrics
}

type Router struct {
	answerer  ports.QuestionAnswerer
	submitter ports.QuestionSubmitter
	reader    ports.QuestionReader
	opts      Options
	logger    *slog.Logger
}

func NewRouter(
	answerer ports.QuestionAnswerer,
	submitter ports.QuestionSubmitter,
	reader ports.QuestionReader,
	opts Options,
) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Service == "" {
		opts.Service = "api"
	}
	return &Router{
		answerer:  answerer,
		submitter: submitter,
		reader:    reader,
		opts:      opts,
		logger:    logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ask", rt.ask)
	mux.HandleFunc("/v1/questions", rt.submitQuestion)
	mux.HandleFunc("/v1/questions/", rt.getQuestionByID)
	if rt.opts.Metrics != nil {
		mux.Handle("/metrics", rt.opts.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(rt.opts.MaxConcurrent, handler)
	handler = rateLimitMiddleware(rt.opts.RateLimitRPS, rt.opts.RateLimitBurst, handler)
	if rt.opts.Metrics != nil {
		handler = rt.opts.Metrics.Middleware(rt.opts.Service, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const maxRequestBody = 1 << 20

type questionRequest struct {
	Question string `json:"question"`
	Language string `json:"language"`
}

func decodeQuestionRequest(w http.ResponseWriter, r *http.Request) (questionRequest, bool) {
	var req questionRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return req, false
	}
	// json.Unmarshal silently replaces invalid UTF-8, so check the raw bytes.
	if !utf8.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body is not valid utf-8"})
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return req, false
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return req, false
	}
	return req, true
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, ok := decodeQuestionRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Question, req.Language)
	if err != nil {
		rt.logger.Error("answer_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordPipelineObservation(
			rt.opts.Service,
			"/v1/ask",
			string(answer.Route.Operation),
			string(answer.Route.Entity),
			string(answer.ContextSource),
			len(answer.Records),
			time.Since(start),
		)
		if answer.ContextSource == domain.SourceEnrichment {
			rt.opts.Metrics.RecordEnrichmentApplied(rt.opts.Service)
		}
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) submitQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req, ok := decodeQuestionRequest(w, r)
	if !ok {
		return
	}

	question, err := rt.submitter.Submit(r.Context(), req.Question, req.Language)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, question)
}

func (rt *Router) getQuestionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/questions/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question id is required"})
		return
	}

	question, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		if domain.IsKind(err, domain.ErrQuestionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "question not found"})
			return
		}
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
