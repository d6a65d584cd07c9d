package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/stackorder/pkg/buildinfo"
	"github.com/matzehuels/stackorder/pkg/dag"
	"github.com/matzehuels/stackorder/pkg/errors"
	"github.com/matzehuels/stackorder/pkg/pipeline"
	"github.com/matzehuels/stackorder/pkg/plan"
	"github.com/matzehuels/stackorder/pkg/render"
)

// ScheduleRequest is the body of POST /v1/schedule.
type ScheduleRequest struct {
	Plan    *plan.Plan       `json:"plan"`
	Options pipeline.Options `json:"options"`
}

// ScheduleResponse is the body of a successful POST /v1/schedule.
// Binary artifacts (png) are base64-encoded; text formats are returned as is.
type ScheduleResponse struct {
	RequestID string            `json:"request_id"`
	Schedule  *plan.Schedule    `json:"schedule"`
	PlanHash  string            `json:"plan_hash"`
	Cached    bool              `json:"cached"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`

	// Cycle and Description are set for CIRCULAR_DEPENDENCY.
	Cycle       []string `json:"cycle,omitempty"`
	Description string   `json:"description,omitempty"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req ScheduleRequest
	if err := dec.Decode(&req); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Plan == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "request has no plan"))
		return
	}

	req.Options.TTL = s.cfg.CacheTTL
	res, err := s.runner.Run(r.Context(), req.Plan, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	artifacts := make(map[string]string, len(res.Artifacts))
	for format, data := range res.Artifacts {
		if format == render.FormatPNG {
			artifacts[format] = base64.StdEncoding.EncodeToString(data)
		} else {
			artifacts[format] = string(data)
		}
	}
	writeJSON(w, http.StatusOK, ScheduleResponse{
		RequestID: RequestID(r.Context()),
		Schedule:  res.Schedule,
		PlanHash:  res.PlanHash,
		Cached:    res.CacheHit,
		Artifacts: artifacts,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.runner.Cache.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.log.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "cache": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
	}
	writeJSON(w, status, errorBody(r, err))
}

// StatusCode maps an error to its HTTP status by error code.
func StatusCode(err error) int {
	var maxBytes *http.MaxBytesError
	if stderrors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPlan,
		errors.ErrCodeInvalidStep, errors.ErrCodeInvalidPath, errors.ErrCodeUnknownStep:
		return http.StatusBadRequest
	case errors.ErrCodeCircularDependency:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(r *http.Request, err error) ErrorResponse {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	detail := ErrorDetail{Code: code, Message: msg}

	var cerr *dag.CycleError[string]
	if stderrors.As(err, &cerr) {
		detail.Cycle = cerr.Cycle
		detail.Description = cerr.Description
	}
	return ErrorResponse{Error: detail, RequestID: RequestID(r.Context())}
}

func notFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

func methodNotAllowed(r *http.Request) error {
	return errors.New(errors.ErrCodeUnsupported, "method %s not allowed on %s", r.Method, r.URL.Path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"encode response"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
