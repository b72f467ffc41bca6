// Package server exposes the transpiler over HTTP and WebSocket.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"pyjs/pkg/cache"
	"pyjs/pkg/codegen"
	"pyjs/pkg/logger"
	"pyjs/pkg/transpiler"
)

// MaxSourceBytes bounds request bodies and websocket messages.
const MaxSourceBytes = 1 << 20

type Options struct {
	Addr      string
	JWTSecret string // empty disables auth
	CacheSize int
	Codegen   codegen.Options
}

type Server struct {
	opts  Options
	cache *cache.Cache
	// one transpiler per indentation policy
	transpilers map[codegen.IndentPolicy]*transpiler.Transpiler
	mux         *http.ServeMux
}

// Response is the JSON body of every transpile reply.
type Response struct {
	Output *string     `json:"output,omitempty"`
	Error  *ErrorReply `json:"error,omitempty"`
}

type ErrorReply struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func New(opts Options) *Server {
	if opts.Codegen.Indent == "" {
		opts.Codegen.Indent = codegen.DefaultOptions().Indent
	}
	s := &Server{
		opts:        opts,
		cache:       cache.New(opts.CacheSize),
		transpilers: make(map[codegen.IndentPolicy]*transpiler.Transpiler),
		mux:         http.NewServeMux(),
	}
	for _, policy := range []codegen.IndentPolicy{codegen.Flat, codegen.Nested} {
		o := opts.Codegen
		o.Policy = policy
		s.transpilers[policy] = transpiler.New(o)
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("POST /transpile", s.requireAuth(false, http.HandlerFunc(s.handleTranspile)))
	s.mux.Handle("GET /ws", s.requireAuth(true, http.HandlerFunc(s.handleWebSocket)))
	return s
}

func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", s.opts.Addr, "auth", s.opts.JWTSecret != "")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) CacheStats() cache.Stats { return s.cache.Stats() }

// transpile answers from the cache when it can. Only successful results are
// cached.
func (s *Server) transpile(policy codegen.IndentPolicy, src string) Response {
	key := cache.KeyOf(policy.String(), src)
	if out, ok := s.cache.Get(key); ok {
		return Response{Output: &out}
	}

	out, err := s.transpilers[policy].Transpile("<request>", src)
	if err != nil {
		var terr *transpiler.Error
		if !errors.As(err, &terr) {
			terr = &transpiler.Error{Stage: transpiler.StageGenerate, Msg: err.Error()}
		}
		logger.LogError(string(terr.Stage), "<request>", terr.Line, terr.Msg)
		return Response{Error: &ErrorReply{
			Stage:   string(terr.Stage),
			Message: terr.Msg,
			Line:    terr.Line,
			Column:  terr.Column,
		}}
	}
	s.cache.Put(key, out)
	return Response{Output: &out}
}

func (s *Server) policyFor(r *http.Request) (codegen.IndentPolicy, error) {
	if p := r.URL.Query().Get("policy"); p != "" {
		return codegen.ParsePolicy(p)
	}
	return s.opts.Codegen.Policy, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  s.cache.Stats(),
	})
}

func (s *Server) handleTranspile(w http.ResponseWriter, r *http.Request) {
	policy, err := s.policyFor(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxSourceBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "source too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp := s.transpile(policy, string(body))
	status := http.StatusOK
	if resp.Error != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// requireAuth is a no-op when no secret is configured.
func (s *Server) requireAuth(allowQuery bool, next http.Handler) http.Handler {
	if s.opts.JWTSecret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := requestToken(r, allowQuery)
		if err == nil {
			_, err = VerifyToken(tok, s.opts.JWTSecret)
		}
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="pyjs"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized: " + err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Writing response failed", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("Request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
