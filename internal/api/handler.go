package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eugenenazirov/fitness-tracker/internal/report"
	"github.com/eugenenazirov/fitness-tracker/internal/workout"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxBatchSize = 100

// errNonFiniteReport is returned when a workout computes to NaN or Inf, e.g. a zero duration.
var errNonFiniteReport = errors.New("computed workout quantities are not finite")

// Handler turns workout packages posted over HTTP into reports.
type Handler struct {
	metrics *metrics
	clock   func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithRegistry registers the handler's counters on registry instead of a private one.
func WithRegistry(registry *prometheus.Registry) HandlerOption {
	return func(h *Handler) {
		h.metrics = newMetrics(registry)
	}
}

// NewHandler constructs a Handler.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = newMetrics(prometheus.NewRegistry())
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	var req packageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.metrics.reportFailed(reasonInvalidRequest)
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	resp, err := h.buildReport(req.toPackage())
	if err != nil {
		switch {
		case errors.Is(err, workout.ErrUnknownCode):
			writeError(w, http.StatusBadRequest, "Unknown workout type", err.Error(), "Use one of RUN, WLK, SWM")
		case errors.Is(err, workout.ErrMalformedValues):
			writeError(w, http.StatusBadRequest, "Malformed workout values", err.Error(), fieldsHint(req.Code)...)
		case errors.Is(err, errNonFiniteReport):
			writeError(w, http.StatusUnprocessableEntity, "Cannot compute workout", err.Error(), "Check that duration is greater than zero")
		default:
			writeInternalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.metrics.reportFailed(reasonInvalidRequest)
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Packages) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "packages must contain at least one workout")
		return
	}
	if len(req.Packages) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "Invalid request", fmt.Sprintf("at most %d packages per batch", maxBatchSize))
		return
	}

	resp := batchResponse{Results: make([]batchResult, 0, len(req.Packages))}
	for i, pkg := range req.Packages {
		result := batchResult{Index: i, Code: string(pkg.Code)}
		rep, err := h.buildReport(pkg.toPackage())
		if err != nil {
			result.Error = err.Error()
			resp.Failed++
		} else {
			result.Report = &rep
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, result)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) buildReport(pkg workout.Package) (reportResponse, error) {
	wk, err := workout.Read(pkg)
	if err != nil {
		if errors.Is(err, workout.ErrUnknownCode) {
			h.metrics.reportFailed(reasonUnknownCode)
		} else {
			h.metrics.reportFailed(reasonMalformedValues)
		}
		return reportResponse{}, err
	}

	msg := report.Summarize(wk)
	if !finite(msg.Duration, msg.Distance, msg.Speed, msg.Calories) {
		h.metrics.reportFailed(reasonNonFinite)
		return reportResponse{}, fmt.Errorf("%w: %s with duration %v", errNonFiniteReport, msg.TrainingType, msg.Duration)
	}
	h.metrics.reportComputed(msg.TrainingType)

	return reportResponse{
		TrainingType: msg.TrainingType,
		Duration:     msg.Duration,
		Distance:     msg.Distance,
		Speed:        msg.Speed,
		Calories:     msg.Calories,
		Message:      msg.String(),
	}, nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// fieldsHint names the positional values expected for code, if it is known.
func fieldsHint(code workout.Code) []string {
	names, err := workout.Fields(code)
	if err != nil {
		return nil
	}
	return []string{fmt.Sprintf("%s expects values in order: %s", code, strings.Join(names, ", "))}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(dst)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type packageRequest struct {
	Code   workout.Code `json:"code"`
	Values []any        `json:"values"`
}

func (p packageRequest) toPackage() workout.Package {
	return workout.Package{Code: p.Code, Values: p.Values}
}

type batchRequest struct {
	Packages []packageRequest `json:"packages"`
}

type reportResponse struct {
	TrainingType string  `json:"trainingType"`
	Duration     float64 `json:"duration"`
	Distance     float64 `json:"distance"`
	Speed        float64 `json:"speed"`
	Calories     float64 `json:"calories"`
	Message      string  `json:"message"`
}

type batchResult struct {
	Index  int             `json:"index"`
	Code   string          `json:"code"`
	Report *reportResponse `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type batchResponse struct {
	Results   []batchResult `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// writeJSON encodes payload before committing the status, so an encoding
// failure still yields a 500 with a body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: "Internal error", Details: "unable to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
