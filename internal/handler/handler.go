package handler

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/mark-c-hall/movie-search/internal/config"
	mw "github.com/mark-c-hall/movie-search/internal/middleware"
	"github.com/mark-c-hall/movie-search/internal/session"
	"github.com/mark-c-hall/movie-search/internal/view"
)

const sessionCookie = "movie_session"

type Handler struct {
	store        *session.Store
	renderer     *view.Renderer
	logger       *slog.Logger
	secureCookie bool
	handler      http.Handler
}

// NewHandler serves the search page and its API out of fsys, which must
// hold templates/ and static/.
func NewHandler(store *session.Store, fsys fs.FS, cfg config.Config, logger *slog.Logger) (*Handler, error) {
	renderer, err := view.NewRenderer(fsys)
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(fsys, "static")
	if err != nil {
		return nil, fmt.Errorf("error opening static assets: %w", err)
	}

	h := &Handler{
		store:        store,
		renderer:     renderer,
		logger:       logger,
		secureCookie: cfg.Session.CookieSecure,
	}

	r := mux.NewRouter()
	h.addRoutes(r, static, cfg.Server)

	var handler http.Handler = r
	handler = mw.RateLimit(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateBurst, logger)(handler)
	handler = mw.Recovery(logger)(handler)
	handler = mw.Logging(logger)(handler)
	handler = mw.CORS(cfg.Server.CORSOrigin)(handler)
	handler = otelhttp.NewHandler(handler, "movie-search")

	h.handler = handler
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) addRoutes(r *mux.Router, static fs.FS, cfg config.ServerConfig) {
	r.Use(mw.Metrics)

	// hijacked connection, so it stays outside the timeout
	r.HandleFunc("/ws", h.handleWebSocket).Methods(http.MethodGet)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static)))).Methods(http.MethodGet)

	pages := r.NewRoute().Subrouter()
	pages.Use(mw.Timeout(cfg.RequestTimeout))
	pages.HandleFunc("/", h.handleIndex).Methods(http.MethodGet)
	pages.HandleFunc("/search", h.handleSearch).Methods(http.MethodPost)
	pages.HandleFunc("/movies/{id}/select", h.handleSelectMovie).Methods(http.MethodPost)
	pages.HandleFunc("/modal/close", h.handleCloseModal).Methods(http.MethodPost)
	pages.HandleFunc("/api/state", h.handleState).Methods(http.MethodGet)
}
