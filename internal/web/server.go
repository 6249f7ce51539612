package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"verba/internal/application"
	"verba/internal/session"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

type Options struct {
	Addr           string
	MaxUploadBytes int64
	RateLimit      int // POST requests per minute per client, 0 disables
}

// Server is the browser form UI. Each request resolves its session from
// the signed cookie and runs one Assistant action against it.
type Server struct {
	addr      string
	maxUpload int64
	assistant *application.Assistant
	sessions  *session.Store
	cookies   *session.CookieCodec
	logger    *slog.Logger
	tmpl      *template.Template
	router    chi.Router
	limiter   *RateLimiter

	mu      sync.Mutex
	server  *http.Server
	running bool
}

func NewServer(
	opts Options,
	assistant *application.Assistant,
	sessions *session.Store,
	cookies *session.CookieCodec,
	logger *slog.Logger,
) *Server {
	s := &Server{
		addr:      opts.Addr,
		maxUpload: opts.MaxUploadBytes,
		assistant: assistant,
		sessions:  sessions,
		cookies:   cookies,
		logger:    logger,
		tmpl:      template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl")),
		limiter:   NewRateLimiter(opts.RateLimit, time.Minute),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleIndex)
		r.Get("/oauth/callback", s.handleOAuthCallback)

		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware)

			r.Post("/profile", s.handleProfile)
			r.Post("/upload", s.handleUpload)
			r.Post("/draft", s.handleDraft)
			r.Post("/send", s.handleSend)
			r.Post("/discard", s.handleDiscard)
			r.Post("/reset", s.handleReset)
		})
	})

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// Write timeout covers the slowest path: transcription plus drafting.
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		s.logger.Info("web server starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("web server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.running = false
	return nil
}

type sessionKey struct{}

// withSession attaches the caller's session, starting a new one when the
// cookie is missing, invalid or points at an ended session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *application.Session
		if id, ok := s.cookies.Read(r); ok {
			sess, _ = s.sessions.Get(id)
		}
		if sess == nil {
			sess = s.sessions.Create()
			if err := s.cookies.Write(w, sess.ID); err != nil {
				s.logger.Error("writing session cookie", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *application.Session {
	return r.Context().Value(sessionKey{}).(*application.Session)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
