package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agentd/internal/errs"
	"agentd/internal/llm"
	"agentd/pkg/types"
)

type mockBackend struct {
	spec  llm.InvocationSpec
	reply string
	err   error
	block bool
}

func (b *mockBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if b.block {
		<-ctx.Done()
		return "", errs.ProcessExecution(-1, "", ctx.Err())
	}
	if b.err != nil {
		return "", b.err
	}
	return b.reply, nil
}

func (b *mockBackend) Config() llm.InvocationSpec { return b.spec.Clone() }

func (b *mockBackend) WithArgs(args []string) llm.Backend {
	nb := *b
	nb.spec = b.spec.WithArgs(args)
	return &nb
}

type mockService struct {
	models  []types.Model
	backend *mockBackend
	openErr error
}

func (m *mockService) Catalog() ([]types.Model, error) {
	return append([]types.Model(nil), m.models...), nil
}

func (m *mockService) Describe(name string) (types.Model, error) {
	for _, mm := range m.models {
		if mm.Name == name {
			return mm, nil
		}
	}
	return types.Model{}, errs.InvalidModelPath("unknown model %q", name)
}

func (m *mockService) FirstModel() (string, error) {
	for _, mm := range m.models {
		if mm.Available {
			return mm.Name, nil
		}
	}
	return "", errs.InvalidModelPath("no models available")
}

func (m *mockService) Open(name string) (llm.Backend, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	mm, err := m.Describe(name)
	if err != nil {
		return nil, err
	}
	b := *m.backend
	b.spec = llm.InvocationSpec{ExecutablePath: "llama-cli", ModelPath: mm.Path, ExtraArgs: []string{"--temp", "0.7"}}
	return &b, nil
}

func newMockService() *mockService {
	return &mockService{
		models: []types.Model{
			{Name: "m1", File: "m1.gguf", Path: "/models/m1.gguf", Source: "config", Available: true},
			{Name: "m2", File: "m2.gguf", Path: "/models/m2.gguf", Source: "discovered", Available: true},
		},
		backend: &mockBackend{reply: "Paris is the capital."},
	}
}

func newTestServer(t *testing.T, svc Service, opts Options) *Server {
	t.Helper()
	s := NewServer(svc, opts)
	t.Cleanup(s.Close)
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	return v
}

func TestModelsHandler(t *testing.T) {
	s := newTestServer(t, newMockService(), Options{})
	w := doJSON(t, s, http.MethodGet, "/models", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	body := decodeBody[types.ModelsResponse](t, w)
	if len(body.Models) != 2 || body.Models[0].Name != "m1" {
		t.Fatalf("models=%+v", body.Models)
	}
}

func TestDescribeModel(t *testing.T) {
	s := newTestServer(t, newMockService(), Options{})
	w := doJSON(t, s, http.MethodGet, "/models/m2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if m := decodeBody[types.Model](t, w); m.Source != "discovered" {
		t.Fatalf("model=%+v", m)
	}

	w = doJSON(t, s, http.MethodGet, "/models/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if e := decodeBody[types.ErrorResponse](t, w); e.Kind != "invalid_model_path" || e.Code != 404 {
		t.Fatalf("error=%+v", e)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, newMockService(), Options{})

	w := doJSON(t, s, http.MethodPost, "/sessions", types.OpenRequest{Model: "m1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("open status=%d body=%s", w.Code, w.Body.String())
	}
	sess := decodeBody[types.SessionResponse](t, w)
	if sess.ID == "" || sess.Model != "m1" || sess.Config.ModelPath != "/models/m1.gguf" {
		t.Fatalf("session=%+v", sess)
	}
	if sess.ExpiresAt <= time.Now().Unix() {
		t.Fatalf("expiry not in the future: %d", sess.ExpiresAt)
	}

	w = doJSON(t, s, http.MethodGet, "/sessions/"+sess.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d", w.Code)
	}
	if got := decodeBody[types.SessionResponse](t, w); strings.Join(got.Config.AdditionalArgs, " ") != "--temp 0.7" {
		t.Fatalf("args=%v", got.Config.AdditionalArgs)
	}

	w = doJSON(t, s, http.MethodPost, "/sessions/"+sess.ID+"/generate", types.PromptRequest{Prompt: "What is the capital of France?"})
	if w.Code != http.StatusOK {
		t.Fatalf("generate status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decodeBody[types.GenerateResponse](t, w); got.Text != "Paris is the capital." {
		t.Fatalf("text=%q", got.Text)
	}

	w = doJSON(t, s, http.MethodDelete, "/sessions/"+sess.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", w.Code)
	}
	if w := doJSON(t, s, http.MethodGet, "/sessions/"+sess.ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status=%d", w.Code)
	}
	if w := doJSON(t, s, http.MethodDelete, "/sessions/"+sess.ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/sessions/"+sess.ID+"/generate", types.PromptRequest{Prompt: "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("generate after delete status=%d", w.Code)
	}
}

func TestOpenSessionDefaultsAndArgs(t *testing.T) {
	s := newTestServer(t, newMockService(), Options{})
	w := doJSON(t, s, http.MethodPost, "/sessions", types.OpenRequest{Args: []string{"--n-gpu-layers", "4", "--temp", "0.8"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	sess := decodeBody[types.SessionResponse](t, w)
	if sess.Model != "m1" {
		t.Fatalf("expected first available model, got %q", sess.Model)
	}
	if got := strings.Join(sess.Config.AdditionalArgs, " "); got != "--n-gpu-layers 4 --temp 0.8" {
		t.Fatalf("args should be replaced, got %q", got)
	}

	empty := &mockService{backend: &mockBackend{}}
	s2 := newTestServer(t, empty, Options{})
	if w := doJSON(t, s2, http.MethodPost, "/sessions", types.OpenRequest{}); w.Code != http.StatusNotFound {
		t.Fatalf("no models: status=%d", w.Code)
	}
}

func TestOneShotGenerate(t *testing.T) {
	s := newTestServer(t, newMockService(), Options{})
	w := doJSON(t, s, http.MethodPost, "/generate", types.GenerateRequest{Model: "m2", Prompt: "hi"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decodeBody[types.GenerateResponse](t, w); got.Text != "Paris is the capital." || got.DurationMS < 0 {
		t.Fatalf("resp=%+v", got)
	}
	w = doJSON(t, s, http.MethodPost, "/generate", types.GenerateRequest{Model: "missing", Prompt: "hi"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing model status=%d", w.Code)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"empty", errs.EmptyResponse(), http.StatusBadGateway, "empty_response"},
		{"encoding", errs.Encoding(errors.New("bad")), http.StatusBadGateway, "encoding"},
		{"exit", errs.ProcessExecution(3, "error: failed to load model", nil), http.StatusBadGateway, "process_execution"},
		{"spawn", errs.ProcessSpawn("llama-cli", errors.New("not found")), http.StatusServiceUnavailable, "process_spawn"},
		{"io", errs.IO(errors.New("broken"), "read"), http.StatusInternalServerError, "io"},
		{"http", mockHTTPError{msg: "busy", code: http.StatusTooManyRequests}, http.StatusTooManyRequests, ""},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newMockService()
			svc.backend.err = tc.err
			s := newTestServer(t, svc, Options{})
			w := doJSON(t, s, http.MethodPost, "/generate", types.GenerateRequest{Model: "m1", Prompt: "p"})
			if w.Code != tc.status {
				t.Fatalf("status=%d want %d", w.Code, tc.status)
			}
			e := decodeBody[types.ErrorResponse](t, w)
			if e.Kind != tc.kind || e.Code != tc.status {
				t.Fatalf("error=%+v", e)
			}
		})
	}
}

func TestProcessExecutionErrorCarriesStderr(t *testing.T) {
	svc := newMockService()
	svc.backend.err = errs.ProcessExecution(3, "error: failed to load model\n", nil)
	s := newTestServer(t, svc, Options{})
	w := doJSON(t, s, http.MethodPost, "/generate", types.GenerateRequest{Model: "m1", Prompt: "p"})
	if e := decodeBody[types.ErrorResponse](t, w); !strings.Contains(e.Error, "failed to load model") || !strings.Contains(e.Error, "status 3") {
		t.Fatalf("error=%q", e.Error)
	}
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t, newMockService(), Options{MaxBodyBytes: 64})

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"model":"m1"}`))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("missing content-type status=%d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"model":`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json status=%d", w.Code)
	}

	big := `{"model":"m1","prompt":"` + strings.Repeat("x", 256) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body status=%d", w.Code)
	}
}

func TestShutdownCancelsGeneration(t *testing.T) {
	svc := newMockService()
	svc.backend.block = true
	s := newTestServer(t, svc, Options{})

	base, cancel := context.WithCancel(context.Background())
	SetBaseContext(base)
	t.Cleanup(func() { SetBaseContext(context.Background()) })

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"model":"m1","prompt":"p"}`))
	req.Header.Set("Content-Type", "application/json")
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, req)
		done <- w
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case w := <-done:
		if w.Code != http.StatusBadGateway {
			t.Fatalf("status=%d", w.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("generation was not canceled by base context")
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer(t, newMockService(), Options{})
	if w := doJSON(t, s, http.MethodGet, "/healthz", nil); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz status=%d body=%q", w.Code, w.Body.String())
	}
	if w := doJSON(t, s, http.MethodGet, "/metrics", nil); w.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w.Code)
	}
	if w := doJSON(t, s, http.MethodGet, "/readyz", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route status=%d", w.Code)
	}
}

func TestSwaggerMountedWhenEnabled(t *testing.T) {
	on := newTestServer(t, newMockService(), Options{Swagger: true})
	w := doJSON(t, on, http.MethodGet, "/swagger/doc.json", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "agentd API") || !strings.Contains(w.Body.String(), "/sessions/{id}/generate") {
		t.Fatalf("unexpected doc: %.200s", w.Body.String())
	}

	off := newTestServer(t, newMockService(), Options{})
	if w := doJSON(t, off, http.MethodGet, "/swagger/doc.json", nil); w.Code != http.StatusNotFound {
		t.Fatalf("swagger disabled: status=%d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, newMockService(), Options{CORSOrigins: []string{"http://localhost:3000"}})
	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin=%q status=%d", got, w.Code)
	}
}

func TestAdmissionRejectsWhenSlotsBusy(t *testing.T) {
	svc := newMockService()
	svc.backend.block = true
	s := newTestServer(t, svc, Options{MaxConcurrent: 1, QueueWait: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"model":"m1","prompt":"p"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.ServeHTTP(httptest.NewRecorder(), req)
	}()
	time.Sleep(50 * time.Millisecond)

	w := doJSON(t, s, http.MethodPost, "/generate", types.GenerateRequest{Model: "m1", Prompt: "p"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "too busy") {
		t.Fatalf("body=%s", w.Body.String())
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("retry-after=%q", got)
	}

	cancel()
	<-done
	svc.backend.block = false
	if w := doJSON(t, s, http.MethodPost, "/generate", types.GenerateRequest{Model: "m1", Prompt: "p"}); w.Code != http.StatusOK {
		t.Fatalf("slot not released: status=%d", w.Code)
	}
}
