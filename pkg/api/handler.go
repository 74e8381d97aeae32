package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazyhaar/wdtsmap/pkg/kit"
	"github.com/hazyhaar/wdtsmap/pkg/schools"
)

// RouterOptions configures the optional parts of the router.
type RouterOptions struct {
	Logger *slog.Logger
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
	// MCP serves the MCP tools over streamable HTTP at /mcp when set.
	MCP *server.MCPServer
}

// NewRouter returns an http.Handler with all wdtsmap API routes.
func NewRouter(svc *Service, opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{
		endpoints: newEndpoints(svc, middleware(svc, opts.Logger)),
		svc:       svc,
	}

	mux.HandleFunc("GET /v1/resolve/batch", methodNotAllowed) // prevent GET on batch
	mux.HandleFunc("POST /v1/resolve/batch", h.handleResolveBatch)
	mux.HandleFunc("GET /v1/resolve", h.handleResolve)
	mux.HandleFunc("GET /v1/labs", h.handleListLabs)
	mux.HandleFunc("GET /v1/years", h.handleListYears)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.MCP != nil {
		mux.Handle("/mcp", server.NewStreamableHTTPServer(opts.MCP))
	}

	return cors(mux)
}

// middleware builds the per-endpoint chain shared by both transports.
func middleware(svc *Service, logger *slog.Logger) func(name string) kit.Middleware {
	return func(name string) kit.Middleware {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name), countRequests(svc.metrics, name))
	}
}

func countRequests(m *Metrics, name string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		if m == nil {
			return next
		}
		return func(ctx context.Context, request any) (any, error) {
			m.RequestsTotal.WithLabelValues(name, kit.GetTransport(ctx)).Inc()
			return next(ctx, request)
		}
	}
}

type handler struct {
	endpoints
	svc *Service
}

// --- resolve single name ---

func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	year, err := parseYear(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.resolve(r.Context(), &resolveReq{Name: name, Year: year})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- resolve batch ---

type httpBatchRequest struct {
	Names []string `json:"names"`
	Year  int      `json:"year,omitempty"`
}

func (h *handler) handleResolveBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	var req httpBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.resolveBatch(r.Context(), &resolveBatchReq{Names: req.Names, Year: req.Year})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- listings ---

func (h *handler) handleListLabs(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listLabs(r.Context(), nil)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleListYears(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listYears(r.Context(), nil)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status       string `json:"status"`
	LoadedYears  []int  `json:"loaded_years"`
	Aliases      int    `json:"aliases"`
	Rules        int    `json:"rules"`
	Laboratories int    `json:"laboratories"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		LoadedYears:  h.svc.Catalog().Years(),
		Aliases:      h.svc.resolver.Aliases(),
		Rules:        len(h.svc.resolver.Rules()),
		Laboratories: len(h.svc.labs.Keys()),
	})
}

// --- helpers ---

func parseYear(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("year must be an integer")
	}
	return year, nil
}

// statusFor maps endpoint errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest), errors.Is(err, schools.ErrUnsupportedYear):
		return http.StatusBadRequest
	case errors.Is(err, schools.ErrMissingBackingFile):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
