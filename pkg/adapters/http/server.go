// Package http exposes the engine over a small JSON API: authenticated
// event intake, plus read-only views of workflows and run records.
package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/observability"
	"github.com/aretw0/gantry/pkg/ports"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of "<timestamp>.<body>",
	// prefixed with the scheme ("sha256=").
	SignatureHeader = "X-Gantry-Signature"

	// TimestampHeader carries the sender's unix timestamp in seconds.
	TimestampHeader = "X-Gantry-Timestamp"

	maxBodyBytes = 1 << 20
)

// Dispatcher is the engine surface the server needs: hand it an event, get
// back the runs it produced.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) ([]*domain.Run, error)
}

// Server routes intake and inspection requests to the engine and run store.
type Server struct {
	dispatcher Dispatcher
	loader     ports.WorkflowLoader
	store      ports.RunStore

	secret   []byte
	maxSkew  time.Duration
	limiter  *rate.Limiter
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithSecret enables HMAC verification of incoming events. Without a
// secret the /events endpoint accepts unsigned deliveries.
func WithSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.secret = []byte(secret)
		}
	}
}

// WithStore enables the /runs endpoints.
func WithStore(store ports.RunStore) Option {
	return func(s *Server) { s.store = store }
}

// WithMetrics wires intake counters and, when a gatherer is given, the
// /metrics endpoint.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRateLimit caps event intake at r deliveries per second with the given
// burst.
func WithRateLimit(r float64, burst int) Option {
	return func(s *Server) { s.limiter = rate.NewLimiter(rate.Limit(r), burst) }
}

// WithMaxSkew sets the tolerated clock skew for signed deliveries.
func WithMaxSkew(d time.Duration) Option {
	return func(s *Server) { s.maxSkew = d }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a Server around a dispatcher and workflow loader.
func NewServer(dispatcher Dispatcher, loader ports.WorkflowLoader, opts ...Option) *Server {
	s := &Server{
		dispatcher: dispatcher,
		loader:     loader,
		maxSkew:    5 * time.Minute,
		limiter:    rate.NewLimiter(rate.Limit(20), 40),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/events", s.handleEvent)
	r.Get("/workflows", s.handleWorkflows)
	r.Get("/health", s.handleHealth)

	if s.store != nil {
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// eventRequest is the intake payload.
type eventRequest struct {
	Kind     string `json:"kind"`
	Ref      string `json:"ref,omitempty"`
	Branch   string `json:"branch,omitempty"`
	HeadSHA  string `json:"head_sha,omitempty"`
	Workflow string `json:"workflow,omitempty"`
}

// runSummary is the per-run element of the intake response.
type runSummary struct {
	ID       string           `json:"id"`
	Workflow string           `json:"workflow"`
	Status   domain.RunStatus `json:"status"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		s.reject(w, http.StatusTooManyRequests, "rate_limited", "delivery rate exceeded")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.reject(w, http.StatusBadRequest, "unreadable_body", "failed to read request body")
		return
	}

	if len(s.secret) > 0 {
		if reason, msg := s.verifySignature(r, body); reason != "" {
			s.reject(w, http.StatusUnauthorized, reason, msg)
			return
		}
	}

	var req eventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.reject(w, http.StatusBadRequest, "invalid_payload", "request body is not valid JSON")
		return
	}

	kind := domain.EventKind(req.Kind)
	switch kind {
	case domain.EventPush, domain.EventPullRequest, domain.EventMergeGroup,
		domain.EventSchedule, domain.EventDispatch:
	default:
		s.reject(w, http.StatusBadRequest, "unknown_kind", fmt.Sprintf("unknown event kind %q", req.Kind))
		return
	}

	ev := domain.Event{
		Kind:     kind,
		Ref:      req.Ref,
		Branch:   req.Branch,
		HeadSHA:  req.HeadSHA,
		Workflow: req.Workflow,
	}

	runs, err := s.dispatcher.Dispatch(r.Context(), ev)
	if err != nil {
		s.logger.Error("event dispatch failed", "err", err, "kind", kind)
		http.Error(w, "dispatch failed", http.StatusInternalServerError)
		return
	}

	summaries := make([]runSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, runSummary{ID: run.ID, Workflow: run.WorkflowName, Status: run.Status})
	}

	s.logger.Info("event accepted", "kind", kind, "ref", ev.Ref, "runs", len(summaries))
	writeJSON(w, http.StatusAccepted, map[string]any{"runs": summaries})
}

// verifySignature checks the timestamp window and HMAC of a delivery.
// It returns a rejection reason and message, or "" when the delivery is
// authentic.
func (s *Server) verifySignature(r *http.Request, body []byte) (string, string) {
	ts := r.Header.Get(TimestampHeader)
	sig := r.Header.Get(SignatureHeader)
	if ts == "" || sig == "" {
		return "missing_signature", "signed delivery headers are required"
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "invalid_timestamp", "timestamp header is not a unix time"
	}
	drift := s.now().Sub(time.Unix(unix, 0))
	if drift < -s.maxSkew || drift > s.maxSkew {
		return "stale_timestamp", "timestamp outside the accepted window"
	}

	want := Sign(s.secret, ts, body)
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "bad_signature", "signature mismatch"
	}
	return "", ""
}

// Sign computes the delivery signature for a timestamp and body. Exposed so
// senders and tests produce identical values.
func Sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (s *Server) handleWorkflows(w http.ResponseWriter, r *http.Request) {
	wfs, err := s.loader.Workflows()
	if err != nil {
		s.logger.Error("workflow listing failed", "err", err)
		http.Error(w, "failed to list workflows", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workflows": wfs})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("run listing failed", "err", err)
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": ids})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		s.logger.Error("run load failed", "err", err, "run_id", id)
		http.Error(w, "failed to load run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) reject(w http.ResponseWriter, status int, reason, msg string) {
	if s.metrics != nil {
		s.metrics.WebhookRejected.WithLabelValues(reason).Inc()
	}
	s.logger.Warn("event delivery rejected", "reason", reason)
	writeJSON(w, status, map[string]string{"error": msg, "reason": reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "err", err)
	}
}
