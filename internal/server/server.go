package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"

	"github.com/jpalmerr/finboard/fields"
	"github.com/jpalmerr/finboard/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "FinBoard"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"

	// maxDiscoverDepth caps the depth a client may request from /api/discover.
	maxDiscoverDepth = 10
)

// Refresher triggers an out-of-schedule fetch for a widget.
type Refresher interface {
	Refetch(id string) error
}

// Prober fetches the raw body of an arbitrary endpoint for field discovery.
type Prober interface {
	FetchRaw(ctx context.Context, endpoint string, params map[string]any) ([]byte, error)
}

// Option configures optional [Server] collaborators.
type Option func(*Server)

// WithRefresher enables POST /api/widgets/{id}/refresh.
func WithRefresher(r Refresher) Option {
	return func(s *Server) {
		s.refresher = r
	}
}

// WithProber enables GET /api/discover.
func WithProber(p Prober) Option {
	return func(s *Server) {
		s.prober = p
	}
}

// Server handles HTTP requests for the FinBoard dashboard and API.
//
// Routes:
//   - GET /: embedded dashboard HTML
//   - GET /healthz: liveness probe
//   - GET /api/widgets: all widget states
//   - GET /api/widgets/{id}: one widget state
//   - GET /api/widgets/{id}/fields: leaf fields of the widget's data
//   - GET /api/widgets/{id}/values: field mappings resolved and formatted
//   - POST /api/widgets/{id}/refresh: fetch now, keeping the schedule
//   - GET /api/discover?endpoint=URL&depth=N: fields of an arbitrary endpoint
//   - GET /api/sse: Server-Sent Events stream of widget states
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	logger     *slog.Logger
	refresher  Refresher
	prober     Prober
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: Store implementation for widget state
//   - port: TCP port to listen on
//   - assets: Embedded filesystem containing dashboard assets (may be nil)
//   - title: Dashboard title (defaults to "FinBoard" if empty)
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, port int, assets fs.FS, title string, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:  st,
		port:   port,
		assets: assets,
		title:  title,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router serving every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/widgets", s.handleWidgets)
		r.Get("/widgets/{id}", s.handleWidget)
		r.Get("/widgets/{id}/fields", s.handleFields)
		r.Get("/widgets/{id}/values", s.handleValues)
		r.Post("/widgets/{id}/refresh", s.handleRefresh)
		r.Get("/discover", s.handleDiscover)
		r.Get("/sse", s.handleSSE)
	})

	if s.assets != nil {
		r.Get("/", s.handleDashboard)
	}
	return r
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so long-running handlers such as
		// SSE end on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// title is escaped before substitution
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

func (s *Server) handleWidgets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.GetAll())
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	state, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type fieldsResponse struct {
	ID     string              `json:"id"`
	Fields []fields.Descriptor `json:"fields"`
}

// handleFields lists the leaf fields of the widget's current data so a
// client can build field mappings.
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	state, ok := s.lookup(w, r)
	if !ok {
		return
	}

	found := fields.Explore(state.Data)
	if found == nil {
		found = []fields.Descriptor{}
	}
	writeJSON(w, http.StatusOK, fieldsResponse{ID: state.ID, Fields: found})
}

type valuesResponse struct {
	ID     string           `json:"id"`
	Values []fields.Value   `json:"values,omitempty"`
	Rows   [][]fields.Value `json:"rows,omitempty"`
}

// handleValues renders the widget's field mappings. Tables render one row
// per record; other widget types render a single set of values.
func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	state, ok := s.lookup(w, r)
	if !ok {
		return
	}

	resp := valuesResponse{ID: state.ID}
	if state.Type == "table" {
		resp.Rows = fields.RenderRows(state.Data, state.Mappings)
	} else {
		resp.Values = fields.Render(state.Data, state.Mappings)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusNotImplemented, "refresh is not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.refresher.Refetch(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "refreshing"})
}

type discoverResponse struct {
	Endpoint string              `json:"endpoint"`
	Fields   []fields.Descriptor `json:"fields"`
}

// handleDiscover fetches an arbitrary endpoint and lists its fields in the
// order they appear in the response.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if s.prober == nil {
		writeError(w, http.StatusNotImplemented, "discovery is not enabled")
		return
	}

	endpoint := strings.TrimSpace(r.URL.Query().Get("endpoint"))
	if endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint query parameter is required")
		return
	}

	depth := fields.DefaultMaxDepth
	if raw := r.URL.Query().Get("depth"); raw != "" {
		d, err := cast.ToIntE(raw)
		if err != nil || d < 1 || d > maxDiscoverDepth {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("depth must be between 1 and %d", maxDiscoverDepth))
			return
		}
		depth = d
	}

	body, err := s.prober.FetchRaw(r.Context(), endpoint, nil)
	if err != nil {
		s.logger.Warn("discover fetch failed", "endpoint", endpoint, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	found, err := fields.ExploreJSONDepth(body, "", depth)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if found == nil {
		found = []fields.Descriptor{}
	}
	writeJSON(w, http.StatusOK, discoverResponse{Endpoint: endpoint, Fields: found})
}

// lookup resolves the {id} route parameter, writing a 404 when the widget
// is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (store.WidgetState, bool) {
	id := chi.URLParam(r, "id")
	state, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("widget %q not found", id))
	}
	return state, ok
}

// handleSSE streams widget states via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// some ResponseWriter implementations have no deadline support
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// initial snapshot
	for _, state := range s.store.GetAll() {
		data, err := json.Marshal(state)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case state, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(state)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on client disconnect and, via BaseContext, on shutdown
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
