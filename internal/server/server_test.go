package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fishbone/pkg/cache"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/observability"
	"github.com/matzehuels/fishbone/pkg/pipeline"
)

const smallTree = `{"name":"Late delivery","children":[
	{"name":"People","children":[{"name":"Training"}]},
	{"name":"Process"}
]}`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	opts = append([]Option{WithLogger(logger)}, opts...)
	ts := httptest.NewServer(New(runner, opts...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var info map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info["version"] == "" {
		t.Errorf("missing version in %v", info)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestRenderSingleFormat(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/render", `{"tree":`+smallTree+`,"options":{"formats":["svg"]}}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Fishbone-Tree-Hash") == "" {
		t.Error("missing tree hash header")
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, []byte("<svg")) {
		t.Errorf("body does not start with <svg: %.40q", body)
	}
}

func TestRenderDefaultsToSVG(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/render", `{"tree":`+smallTree+`}`)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRenderMultipleFormats(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/render", `{"tree":`+smallTree+`,"options":{"formats":["svg","dot"]}}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out RenderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(out.Artifacts))
	}
	if !bytes.HasPrefix(out.Artifacts["dot"], []byte("graph fishbone")) {
		t.Errorf("dot = %.40q", out.Artifacts["dot"])
	}
	if out.Stats.Nodes != 4 {
		t.Errorf("nodes = %d, want 4", out.Stats.Nodes)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/layout", `{"tree":`+smallTree+`}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	doc, err := pipeline.UnmarshalDocument(data)
	if err != nil {
		t.Fatalf("UnmarshalDocument: %v", err)
	}
	if doc.VizType != pipeline.VizTypeFishbone {
		t.Errorf("VizType = %q", doc.VizType)
	}
	if doc.Tree.Name != "Late delivery" {
		t.Errorf("root = %q", doc.Tree.Name)
	}
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"tree":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"tree":` + smallTree + `,"extra":1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing tree", `{"options":{}}`, http.StatusBadRequest, errors.ErrCodeValidation},
		{"unnamed node", `{"tree":{"name":"root","children":[{"name":""}]}}`, http.StatusBadRequest, errors.ErrCodeValidation},
		{"bad format", `{"tree":` + smallTree + `,"options":{"formats":["gif"]}}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad viz", `{"tree":` + smallTree + `,"options":{"viz_type":"tower"}}`, http.StatusBadRequest, errors.ErrCodeInvalidViz},
	}

	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/v1/render", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeError(t, resp); e.Code != string(tt.code) {
				t.Errorf("code = %q, want %q (message %q)", e.Code, tt.code, e.Message)
			}
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	ts := newTestServer(t, WithMaxBodyBytes(16))
	resp := post(t, ts, "/v1/render", `{"tree":`+smallTree+`}`)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.Validation("x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeDiverged, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRecoverer(t *testing.T) {
	s := New(nil, WithLogger(log.New(io.Discard)))
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

type recordingHTTPHooks struct {
	mu        sync.Mutex
	requests  int
	responses []string
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests++
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, method+" "+route+" "+http.StatusText(status))
}

func TestInstrumentReportsRoutePattern(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	resp, err = http.Get(ts.URL + "/nowhere")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.requests != 2 {
		t.Errorf("requests = %d, want 2", hooks.requests)
	}
	want := []string{"GET /healthz OK", "GET unmatched Not Found"}
	if len(hooks.responses) != len(want) {
		t.Fatalf("responses = %v", hooks.responses)
	}
	for i := range want {
		if hooks.responses[i] != want[i] {
			t.Errorf("response[%d] = %q, want %q", i, hooks.responses[i], want[i])
		}
	}
}

func TestListenAndServeShutsDownOnCancel(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, log.New(io.Discard))
	s := New(runner, WithLogger(log.New(io.Discard)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
