// Package web serves the widget as a server-rendered HTML page. Every user
// interaction is a form POST that updates the session state and redirects
// back to the page.
package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"

	"github.com/okian/samemean/internal/adapters/http/middleware"
	"github.com/okian/samemean/internal/adapters/session"
	service "github.com/okian/samemean/internal/app"
	"github.com/okian/samemean/internal/domain/render"
	"github.com/okian/samemean/internal/domain/selection"
	"github.com/okian/samemean/pkg/logger"
	"github.com/okian/samemean/pkg/metrics"
)

// Dependencies required by the page handlers.
type Dependencies interface {
	Mount(ctx context.Context, sid string) (string, selection.State, bool, error)
	Unmount(ctx context.Context, sid string)
	Apply(ctx context.Context, sid string, action selection.Action, datasetID string) (selection.State, error)
	Page(ctx context.Context, st selection.State) (render.PageView, error)
	SessionTTL() time.Duration
}

// Handler renders the widget and handles its form actions.
type Handler struct {
	deps       Dependencies
	cookieName string
	logger     logger.Logger
}

// Option configures the Handler.
type Option func(*Handler)

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.cookieName = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates the page handler.
func NewHandler(deps Dependencies, opts ...Option) *Handler {
	h := &Handler{
		deps:       deps,
		cookieName: session.DefaultCookieName,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Named("web")
	}
	return h
}

// Register attaches the page routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /{$}", gziphandler.GzipHandler(middleware.MetricsFunc(h.HandlePage, "page")))
	mux.HandleFunc("POST /select/{id}", middleware.MetricsFunc(h.HandleSelect, "select"))
	mux.HandleFunc("POST /toggle/stats", middleware.MetricsFunc(h.action(selection.ActionToggleStats), "toggle_stats"))
	mux.HandleFunc("POST /toggle/interpretation",
		middleware.MetricsFunc(h.action(selection.ActionToggleInterpretation), "toggle_interpretation"))
	mux.HandleFunc("POST /reset", middleware.MetricsFunc(h.HandleReset, "reset"))
}

// HandlePage handles GET / by mounting the widget if needed and rendering it.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	sid, st, err := h.mount(w, r)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	view, err := h.deps.Page(ctx, st)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	// Rendered into a buffer so a template failure never sends half a page.
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", view); err != nil {
		h.logger.Error(ctx, "page template failed", logger.String("session", sid), logger.Error(err))
		http.Error(w, "render_failed", http.StatusInternalServerError)
		return
	}
	metrics.RecordPageRender(float64(time.Since(start).Microseconds()) / 1000)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// HandleSelect handles POST /select/{id}.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, selection.ActionSelect, r.PathValue("id"))
}

// HandleReset handles POST /reset: the widget is unmounted and the next
// page load mounts a fresh one.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if sid := session.FromRequest(r, h.cookieName); sid != "" {
		h.deps.Unmount(r.Context(), sid)
	}
	session.ClearCookie(w, h.cookieName)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) action(a selection.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.apply(w, r, a, "")
	}
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, a selection.Action, datasetID string) {
	ctx := r.Context()
	sid, _, err := h.mount(w, r)
	if err != nil {
		h.fail(ctx, w, err)
		return
	}
	if _, err := h.deps.Apply(ctx, sid, a, datasetID); err != nil {
		h.fail(ctx, w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) mount(w http.ResponseWriter, r *http.Request) (string, selection.State, error) {
	cookieID := session.FromRequest(r, h.cookieName)
	sid, st, _, err := h.deps.Mount(r.Context(), cookieID)
	if err != nil {
		return "", selection.State{}, err
	}
	// Reissued on every request so the cookie expires with the session.
	session.SetCookie(w, h.cookieName, sid, h.deps.SessionTTL())
	return sid, st, nil
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownDataset), errors.Is(err, render.ErrUnknownDataset):
		http.Error(w, "not_found", http.StatusNotFound)
	case errors.Is(err, selection.ErrUnknownAction):
		http.Error(w, "bad_request", http.StatusBadRequest)
	case errors.Is(err, service.ErrNotStarted):
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	default:
		h.logger.Error(ctx, "page request failed", logger.Error(err))
		http.Error(w, "render_failed", http.StatusInternalServerError)
	}
}
