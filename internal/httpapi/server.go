// Package httpapi exposes open / generate / list over HTTP and JSON.
// Handles returned by POST /sessions are opaque ids for a backend held in
// memory until they are deleted or sit idle past the session TTL.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agentd/internal/llm"
	"agentd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Catalog() ([]types.Model, error)
	Describe(name string) (types.Model, error)
	FirstModel() (string, error)
	Open(name string) (llm.Backend, error)
}

// Options tunes the HTTP layer. Zero values pick defaults.
type Options struct {
	SessionTTL   time.Duration
	CORSOrigins  []string
	Swagger      bool
	MaxBodyBytes int64
	// MaxConcurrent caps simultaneous generations; 0 means no cap.
	MaxConcurrent int
	QueueWait     time.Duration
}

const defaultMaxBodyBytes int64 = 1 << 20

// Server is the HTTP handler plus the session store behind it.
type Server struct {
	svc       Service
	sessions  *sessionStore
	admission *admission
	maxBody   int64
	router    chi.Router
}

// NewServer builds the router. Close releases the session store.
func NewServer(svc Service, opts Options) *Server {
	s := &Server{
		svc:       svc,
		sessions:  newSessionStore(opts.SessionTTL),
		admission: newAdmission(opts.MaxConcurrent, opts.QueueWait),
		maxBody:   opts.MaxBodyBytes,
	}
	if s.maxBody <= 0 {
		s.maxBody = defaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", s.handleListModels)
	r.Get("/models/{name}", s.handleDescribeModel)
	r.Post("/sessions", s.handleOpenSession)
	r.Get("/sessions/{id}", s.handleGetSession)
	r.Delete("/sessions/{id}", s.handleDeleteSession)
	r.Post("/sessions/{id}/generate", s.handleSessionGenerate)
	r.Post("/generate", s.handleGenerate)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	if opts.Swagger {
		MountSwagger(r)
	}

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Close stops session expiry. Open handles are dropped.
func (s *Server) Close() { s.sessions.Close() }

// handleListModels godoc
// @Summary      List models
// @Description  Configured models first, then models discovered in the models directory.
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /models [get]
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.svc.Catalog()
	if err != nil {
		writeError(w, err)
		return
	}
	if models == nil {
		models = []types.Model{}
	}
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
}

// handleDescribeModel godoc
// @Summary      Describe a model
// @Tags         models
// @Produce      json
// @Param        name  path      string  true  "Model name"
// @Success      200   {object}  types.Model
// @Failure      404   {object}  types.ErrorResponse
// @Router       /models/{name} [get]
func (s *Server) handleDescribeModel(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Describe(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleOpenSession godoc
// @Summary      Open a model handle
// @Description  Resolves the model (or the first available one) and returns an opaque handle id. When args is non-empty it replaces the default flag list.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request  body      types.OpenRequest  true  "Model and optional flags"
// @Success      201      {object}  types.SessionResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      404      {object}  types.ErrorResponse
// @Router       /sessions [post]
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req types.OpenRequest
	if !s.decode(w, r, &req) {
		return
	}
	name, b, err := s.open(req.Model, req.Args)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, exp, err := s.sessions.put(name, b)
	if err != nil {
		writeError(w, err)
		return
	}
	l := reqLogger(r)
	l.Debug().Str("session", sess.id).Str("model", b.Config().ModelPath).Msg("session opened")
	writeJSON(w, http.StatusCreated, sessionResponse(sess, exp))
}

// handleGetSession godoc
// @Summary      Inspect a handle
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Handle id"
// @Success      200  {object}  types.SessionResponse
// @Failure      404  {object}  types.ErrorResponse
// @Router       /sessions/{id} [get]
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, exp := s.sessions.get(chi.URLParam(r, "id"))
	if sess == nil {
		writeJSONError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess, exp))
}

// handleDeleteSession godoc
// @Summary      Close a handle
// @Tags         sessions
// @Param        id   path  string  true  "Handle id"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /sessions/{id} [delete]
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(chi.URLParam(r, "id")) {
		writeJSONError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionGenerate godoc
// @Summary      Generate with a handle
// @Description  Runs one child process for the prompt and returns the cleaned text.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Handle id"
// @Param        request  body      types.PromptRequest  true  "Prompt"
// @Success      200      {object}  types.GenerateResponse
// @Failure      404      {object}  types.ErrorResponse
// @Failure      429      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /sessions/{id}/generate [post]
func (s *Server) handleSessionGenerate(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.get(chi.URLParam(r, "id"))
	if sess == nil {
		writeJSONError(w, http.StatusNotFound, "session not found")
		return
	}
	var req types.PromptRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.generate(w, r, sess.backend, req.Prompt)
}

// handleGenerate godoc
// @Summary      One-shot generate
// @Description  Opens the model, generates once and discards the handle.
// @Tags         generate
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Model, prompt and optional flags"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      404      {object}  types.ErrorResponse
// @Failure      429      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /generate [post]
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	_, b, err := s.open(req.Model, req.Args)
	if err != nil {
		writeError(w, err)
		return
	}
	s.generate(w, r, b, req.Prompt)
}

// open resolves model, or the first available one when empty, and applies args.
func (s *Server) open(model string, args []string) (string, llm.Backend, error) {
	if strings.TrimSpace(model) == "" {
		first, err := s.svc.FirstModel()
		if err != nil {
			return "", nil, err
		}
		model = first
	}
	b, err := s.svc.Open(model)
	if err != nil {
		return "", nil, err
	}
	if len(args) > 0 {
		b = b.WithArgs(args)
	}
	return model, b, nil
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, b llm.Backend, prompt string) {
	// Shutdown cancels work too, not only a client disconnect.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	release, err := s.admission.acquire(ctx)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		if IsTooBusy(err) {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(s.admission.maxWait)))
			l := reqLogger(r)
			l.Warn().Err(err).Msg("generation rejected")
		}
		writeError(w, err)
		return
	}
	defer release()
	start := time.Now()
	text, err := b.Generate(ctx, prompt)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		l := reqLogger(r)
		l.Warn().Err(err).Str("model", b.Config().ModelPath).Dur("dur", time.Since(start)).Msg("generate failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.GenerateResponse{Text: text, DurationMS: time.Since(start).Milliseconds()})
}

// decode reads a JSON body into v, writing the error response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func sessionResponse(sess *session, exp time.Time) types.SessionResponse {
	spec := sess.backend.Config()
	return types.SessionResponse{
		ID:    sess.id,
		Model: sess.model,
		Config: types.Invocation{
			ExecutablePath: spec.ExecutablePath,
			ModelPath:      spec.ModelPath,
			AdditionalArgs: spec.ExtraArgs,
		},
		ExpiresAt: exp.Unix(),
	}
}
