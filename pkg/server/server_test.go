package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackorder/pkg/buildinfo"
	"github.com/matzehuels/stackorder/pkg/cache"
	"github.com/matzehuels/stackorder/pkg/errors"
	"github.com/matzehuels/stackorder/pkg/pipeline"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestServer(t *testing.T, c cache.Cache, cfg Config) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(c, nil, quietLogger())
	ts := httptest.NewServer(New(cfg, runner, quietLogger()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

const releaseRequest = `{
  "plan": {
    "name": "release",
    "steps": [
      {"id": "schema", "priority": 10},
      {"id": "backfill", "after": ["schema"]},
      {"id": "reindex", "needs": [{"step": "backfill", "boundary": true}]},
      {"id": "notify", "after": ["schema"]}
    ]
  },
  "options": {"batching": true, "formats": ["text", "json"]}
}`

func TestSchedule(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp, body := post(t, ts.URL+"/v1/schedule", releaseRequest)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}

	var got ScheduleResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Schedule.Batches) != 2 || got.Schedule.Batches[1][0] != "reindex" {
		t.Errorf("Batches = %v", got.Schedule.Batches)
	}
	if !strings.HasPrefix(got.Artifacts["text"], "Batch 1\n") {
		t.Errorf("text artifact = %q", got.Artifacts["text"])
	}
	if got.RequestID == "" || got.RequestID != resp.Header.Get(RequestIDHeader) {
		t.Errorf("RequestID = %q, header %q", got.RequestID, resp.Header.Get(RequestIDHeader))
	}
	if got.PlanHash == "" {
		t.Error("plan_hash should be set")
	}
}

func TestSchedule_SVG(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	body := `{"plan": {"steps": [{"id": "a"}, {"id": "b", "after": ["a"]}]}, "options": {"formats": ["svg"]}}`

	resp, data := post(t, ts.URL+"/v1/schedule", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var got ScheduleResponse
	_ = json.Unmarshal(data, &got)
	if !strings.Contains(got.Artifacts["svg"], "<svg") {
		t.Errorf("svg artifact = %.100q", got.Artifacts["svg"])
	}
}

func TestSchedule_Errors(t *testing.T) {
	ts := newTestServer(t, nil, Config{MaxBodyBytes: 512})

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"plan":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"plan": {"steps": []}, "extra": 1}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing plan", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"duplicate", `{"plan": {"steps": [{"id": "a"}, {"id": "a"}]}}`, http.StatusBadRequest, errors.ErrCodeInvalidPlan},
		{"unknown step", `{"plan": {"steps": [{"id": "a", "after": ["b"]}]}}`, http.StatusBadRequest, errors.ErrCodeUnknownStep},
		{"bad format", `{"plan": {"steps": []}, "options": {"formats": ["pdf"]}}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"too large", `{"plan": {"name": "` + strings.Repeat("x", 600) + `"}}`, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := post(t, ts.URL+"/v1/schedule", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tt.status, data)
			}
			var got ErrorResponse
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("error body is not JSON: %s", data)
			}
			if got.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Error.Code, tt.code)
			}
		})
	}
}

func TestSchedule_Cycle(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	body := `{"plan": {"steps": [
		{"id": "migrate", "needs": [{"step": "seed", "weak": true, "reason": "optional"}]},
		{"id": "seed", "after": ["migrate"]}
	]}}`

	resp, data := post(t, ts.URL+"/v1/schedule", body)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", resp.StatusCode, data)
	}
	var got ErrorResponse
	_ = json.Unmarshal(data, &got)
	if got.Error.Code != errors.ErrCodeCircularDependency {
		t.Errorf("code = %s", got.Error.Code)
	}
	if strings.Join(got.Error.Cycle, ",") != "migrate,seed,migrate" {
		t.Errorf("cycle = %v", got.Error.Cycle)
	}
	if got.Error.Description != "migrate -> seed -> migrate (optional)" {
		t.Errorf("description = %q", got.Error.Description)
	}

	resolved := strings.Replace(body, `]}}`, `]}, "options": {"break_weak": true}}`, 1)
	resp, data = post(t, ts.URL+"/v1/schedule", resolved)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("break_weak status = %d: %s", resp.StatusCode, data)
	}
}

func TestSchedule_Cached(t *testing.T) {
	m := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), "redis://"+m.Addr())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, rc, Config{})

	var first, second ScheduleResponse
	_, data := post(t, ts.URL+"/v1/schedule", releaseRequest)
	_ = json.Unmarshal(data, &first)
	_, data = post(t, ts.URL+"/v1/schedule", releaseRequest)
	_ = json.Unmarshal(data, &second)

	if first.Cached || !second.Cached {
		t.Errorf("cached = %v, %v, want false, true", first.Cached, second.Cached)
	}
	if first.Schedule.ID != second.Schedule.ID {
		t.Error("cached response should return the stored schedule")
	}
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "client-id" {
		t.Errorf("echoed request id = %q, want client-id", got)
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); len(got) != 36 {
		t.Errorf("generated request id = %q, want a UUID", got)
	}
}

func TestHealth(t *testing.T) {
	m := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), "redis://"+m.Addr())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, rc, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	m.Close()
	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status with redis down = %d, want 503", resp.StatusCode)
	}
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp, err := http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got buildinfo.Info
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got != buildinfo.Get() {
		t.Errorf("version = %+v, want %+v", got, buildinfo.Get())
	}
}

func TestRoutingErrors(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/schedule")
	if err != nil {
		t.Fatal(err)
	}
	var body ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed || body.Error.Code != errors.ErrCodeUnsupported {
		t.Errorf("GET /v1/schedule = %d %s, want 405 %s", resp.StatusCode, body.Error.Code, errors.ErrCodeUnsupported)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidStep, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeCircularDependency, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{}, pipeline.NewRunner(nil, nil, quietLogger()), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
