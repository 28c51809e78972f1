package http

import (
	"net/http"

	"github.com/Flarenzy/whats-my-ip/internal/lookup"
	"github.com/Flarenzy/whats-my-ip/internal/page"
)

// @Summary Health check
// @Tags health
// @Success 200 {string} string "ok"
// @Router /healthz [get]
func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// @Summary Readiness check
// @Tags health
// @Success 200 {string} string "ready"
// @Failure 503 {string} string "draining"
// @Router /readyz [get]
func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.draining.Load() {
		http.Error(w, "draining", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (a *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, page.Assets(), "index.html")
}

// handleSession upgrades to a page session and mounts a lookup handler on
// the page's button and paragraph for as long as the socket stays open.
func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if a.draining.Load() {
		http.Error(w, "draining", http.StatusServiceUnavailable)
		return
	}

	conn, err := page.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.DebugContext(ctx, "websocket upgrade failed", "err", err.Error())
		return
	}

	session := page.NewSession(conn, a.Logger)
	a.trackSession(session)
	defer a.untrackSession(session)

	handler := lookup.NewHandler(session.Control(page.ControlID), session.Text(page.OutputID), a.Provider, a.Logger.With("session", session.ID))
	handler.Register()

	a.Logger.DebugContext(ctx, "page session opened", "session", session.ID)
	if err := session.Serve(ctx); err != nil {
		a.Logger.DebugContext(ctx, "page session ended", "session", session.ID, "err", err.Error())
	}
	_ = session.Close()
}

// @Summary Look up the public IP address
// @Tags ip
// @Produce json
// @Success 200 {object} IPResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/ip [get]
func (a *API) handleGetIP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := a.Provider.FetchIP(ctx)
	if err != nil {
		a.Logger.ErrorContext(ctx, lookup.FailureLabel, "err", err.Error())
		err = encode(w, r, http.StatusBadGateway, ErrorResponse{Error: "lookup failed"})
		if err != nil {
			a.Logger.ErrorContext(ctx, "cant respond to client", "err", err.Error())
		}
		return
	}

	err = encode(w, r, http.StatusOK, resultToResponse(result))
	if err != nil {
		a.Logger.ErrorContext(ctx, "cant respond to client", "err", err.Error())
	}
}
