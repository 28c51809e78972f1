package http

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Flarenzy/whats-my-ip/internal/domain"
	"github.com/Flarenzy/whats-my-ip/internal/page"
)

type API struct {
	Logger   *slog.Logger
	Provider domain.IPProvider

	draining atomic.Bool

	mu       sync.Mutex
	sessions map[*page.Session]struct{}
}

func NewAPI(logger *slog.Logger, provider domain.IPProvider) *API {
	return &API{
		Logger:   logger,
		Provider: provider,
		sessions: make(map[*page.Session]struct{}),
	}
}

func (a *API) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/readyz", a.handleReadyz)
	mux.HandleFunc("GET /{$}", a.handleIndex)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(page.Assets())))
	mux.HandleFunc("GET /ws", a.handleSession)
	mux.HandleFunc("GET /api/v1/ip", a.handleGetIP)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// Drain marks the API as not ready and closes every open page session.
func (a *API) Drain() {
	a.draining.Store(true)

	a.mu.Lock()
	sessions := make([]*page.Session, 0, len(a.sessions))
	for s := range a.sessions {
		sessions = append(sessions, s)
	}
	a.mu.Unlock()

	for _, s := range sessions {
		if err := s.Close(); err != nil {
			a.Logger.Debug("closing page session", "session", s.ID, "err", err.Error())
		}
	}
}

func (a *API) trackSession(s *page.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[s] = struct{}{}
}

func (a *API) untrackSession(s *page.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, s)
}
