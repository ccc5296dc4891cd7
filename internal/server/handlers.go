package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/matzehuels/fishbone/pkg/buildinfo"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/pipeline"
	"github.com/matzehuels/fishbone/pkg/tree"
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

// Request is the body accepted by the /v1 endpoints.
type Request struct {
	Tree    *tree.Tree       `json:"tree"`
	Options pipeline.Options `json:"options"`
}

// RenderResponse is returned by /v1/render when several formats are
// requested. Artifacts are base64 encoded.
type RenderResponse struct {
	TreeHash  string            `json:"tree_hash"`
	Artifacts map[string][]byte `json:"artifacts"`
	Stats     ResponseStats     `json:"stats"`
}

// ResponseStats summarises a pipeline run.
type ResponseStats struct {
	Nodes     int     `json:"nodes"`
	Ticks     int     `json:"ticks"`
	LayoutMS  float64 `json:"layout_ms"`
	RenderMS  float64 `json:"render_ms"`
	LayoutHit bool    `json:"layout_cached"`
	RenderHit bool    `json:"render_cached"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	opts := req.Options
	opts.Logger = s.logger
	result, err := s.runner.Execute(r.Context(), req.Tree, opts)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	formats := opts.Formats
	if len(formats) == 0 {
		formats = []string{pipeline.FormatSVG}
	}
	if len(formats) == 1 {
		f := formats[0]
		w.Header().Set("Content-Type", contentTypes[f])
		w.Header().Set("X-Fishbone-Tree-Hash", result.TreeHash)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[f])
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{
		TreeHash:  result.TreeHash,
		Artifacts: result.Artifacts,
		Stats: ResponseStats{
			Nodes:     result.Stats.NodeCount,
			Ticks:     result.Stats.Ticks,
			LayoutMS:  millis(result.Stats.LayoutTime),
			RenderMS:  millis(result.Stats.RenderTime),
			LayoutHit: result.CacheInfo.LayoutHit,
			RenderHit: result.CacheInfo.RenderHit,
		},
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	opts := req.Options
	opts.Logger = s.logger
	g, frame, _, err := s.runner.GenerateLayoutWithCacheInfo(r.Context(), req.Tree, opts)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	data, err := pipeline.NewDocument(req.Tree, g, frame, opts).Marshal()
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decode reads and validates a Request, writing the error response itself
// when it fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*Request, bool) {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req Request
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput), "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "malformed request: "+err.Error())
		return nil, false
	}
	if req.Tree == nil {
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeValidation), "tree is required")
		return nil, false
	}
	return &req, true
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeError(w, status, string(code), errors.UserMessage(err))
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeValidation,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidViz,
		errors.ErrCodeInvalidPath,
		errors.ErrCodeConfiguration:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDiverged:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
