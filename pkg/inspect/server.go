package inspect

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/recalc/internal/errors"
	"github.com/vango-dev/recalc/pkg/exprjson"
	"github.com/vango-dev/recalc/pkg/function"
	"github.com/vango-dev/recalc/pkg/recalc"
)

// DefaultShutdownTimeout bounds Shutdown when Config leaves it unset.
const DefaultShutdownTimeout = 5 * time.Second

// maxBodySize caps PUT documents.
const maxBodySize = 1 << 20

// Config configures a Server.
type Config struct {
	// Functions resolves calls in PUT documents. Default: function.Builtins().
	Functions *function.Registry

	// Gatherer backs /metrics. The route is not mounted when nil.
	Gatherer prometheus.Gatherer

	// Logger receives request and lifecycle logs. Default: slog.Default().
	Logger *slog.Logger

	// Tracer traces requests. Default: otel.Tracer("recalc/inspect").
	Tracer trace.Tracer

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// VariableView is the JSON form of a Variable.
type VariableView struct {
	Name         string         `json:"name"`
	State        string         `json:"state"`
	Value        exprjson.Value `json:"value"`
	Content      *exprjson.Node `json:"content,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Dependents   []string       `json:"dependents,omitempty"`
}

// FunctionView is the JSON form of a catalog entry.
type FunctionView struct {
	Name       string `json:"name"`
	Summary    string `json:"summary"`
	Signatures string `json:"signatures"`
}

// Server exposes a Scope over HTTP.
type Server struct {
	scope   *recalc.Scope
	config  Config
	logger  *slog.Logger
	feed    *Feed
	decoder *exprjson.Decoder
	router  chi.Router

	mu         sync.Mutex
	watched    map[*recalc.Variable]func()
	httpServer *http.Server
}

// New creates a server for scope.
func New(scope *recalc.Scope, cfg Config) *Server {
	if cfg.Functions == nil {
		cfg.Functions = function.Builtins()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("recalc/inspect")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		scope:   scope,
		config:  cfg,
		logger:  cfg.Logger.With("component", "inspect"),
		decoder: &exprjson.Decoder{Scope: scope, Functions: cfg.Functions},
		watched: make(map[*recalc.Variable]func()),
	}
	s.feed = NewFeed(s.logger)
	s.router = s.routes()
	s.watch()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(traceRequests(s.config.Tracer))
	r.Use(logRequests(s.logger))

	r.Get("/vars", s.handleList)
	r.Get("/vars/{name}", s.handleGet)
	r.Put("/vars/{name}", s.handlePut)
	r.Get("/functions", s.handleFunctions)
	r.Get("/ws", s.feed.HandleWebSocket)
	if s.config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Feed returns the change feed.
func (s *Server) Feed() *Feed {
	return s.feed
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops watching variables, closes feed clients and shuts the
// HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	for v, unsubscribe := range s.watched {
		unsubscribe()
		delete(s.watched, v)
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.feed.Close()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// watch subscribes the feed to every variable not yet watched.
func (s *Server) watch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	walk(s.scope, "", func(name string, v *recalc.Variable) {
		if _, ok := s.watched[v]; ok {
			return
		}
		s.watched[v] = v.Subscribe(func(c recalc.ValueChange) {
			s.feed.Publish(name, c)
		})
	})
}

// walk visits the variables of s and its descendants with dotted names.
func walk(s *recalc.Scope, prefix string, fn func(string, *recalc.Variable)) {
	for _, v := range s.Variables() {
		fn(prefix+v.Name(), v)
	}
	for _, c := range s.Children() {
		walk(c, prefix+c.Name()+".", fn)
	}
}

// lookup resolves a dotted name. With create set, missing scopes and the
// variable are defined.
func (s *Server) lookup(name string, create bool) (*recalc.Variable, bool) {
	if !validName(name) {
		return nil, false
	}
	segs := strings.Split(name, ".")
	sc := s.scope
	for _, seg := range segs[:len(segs)-1] {
		if create {
			sc = sc.Child(seg)
			continue
		}
		sub, ok := sc.TryGetSubcontext(seg)
		if !ok {
			return nil, false
		}
		if sc, ok = sub.(*recalc.Scope); !ok {
			return nil, false
		}
	}
	last := segs[len(segs)-1]
	if create {
		return sc.Define(last), true
	}
	return sc.Variable(last)
}

// validName reports whether every dotted segment of name is non-empty.
func validName(name string) bool {
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	views := []VariableView{}
	walk(s.scope, "", func(name string, v *recalc.Variable) {
		views = append(views, view(name, v))
	})
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	v, ok := s.lookup(name, false)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("E004").WithSubject(name))
		return
	}
	writeJSON(w, http.StatusOK, view(name, v))
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("E003").WithSubject(name).Wrap(err))
		return
	}

	if !validName(name) {
		writeError(w, http.StatusNotFound, errors.New("E004").WithSubject(name))
		return
	}
	expr, err := s.decoder.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Classify(err).WithSubject(name))
		return
	}
	v, _ := s.lookup(name, true)
	// Subscribe first so the feed sees the new value.
	s.watch()

	if err := v.SetContent(r.Context(), expr); err != nil {
		status := http.StatusInternalServerError
		var cycle *recalc.CycleError
		switch {
		case stderrors.As(err, &cycle), stderrors.Is(err, recalc.ErrReferenceInUse):
			status = http.StatusConflict
		case stderrors.Is(err, recalc.ErrDisposed):
			status = http.StatusGone
		}
		writeError(w, status, errors.Classify(err))
		return
	}
	s.logger.Debug("content set", "variable", name)
	writeJSON(w, http.StatusOK, view(name, v))
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	fns := s.config.Functions.Functions()
	views := make([]FunctionView, len(fns))
	for i, f := range fns {
		views[i] = FunctionView{
			Name:       f.Name(),
			Summary:    f.Summary(),
			Signatures: f.Constraints().Describe(),
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func view(name string, v *recalc.Variable) VariableView {
	out := VariableView{
		Name:  name,
		State: v.State().String(),
		Value: exprjson.EncodeValue(v.Value()),
	}
	if c := v.Content(); c != nil {
		n := exprjson.FromExpression(c)
		out.Content = &n
	}
	for _, d := range v.Dependencies() {
		out.Dependencies = append(out.Dependencies, d.Name())
	}
	for _, d := range v.Dependents() {
		out.Dependents = append(out.Dependents, d.Name())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *errors.RecalcError) {
	writeJSON(w, status, struct {
		Error errors.Payload `json:"error"`
	}{err.Payload()})
}
