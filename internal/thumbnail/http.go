package thumbnail

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/your-org/thumbflow/pkg/storage/objectstore"
	"github.com/your-org/thumbflow/pkg/storage/recordstore"
)

// AdminHandler exposes liveness and readiness endpoints for the worker.
type AdminHandler struct {
	store           objectstore.Client
	records         recordstore.Store
	thumbnailBucket string
	logger          *zap.Logger
	router          chi.Router
}

// NewAdminHandler constructs the admin handler and wires routes.
func NewAdminHandler(store objectstore.Client, records recordstore.Store, thumbnailBucket string, logger *zap.Logger) *AdminHandler {
	h := &AdminHandler{
		store:           store,
		records:         records,
		thumbnailBucket: thumbnailBucket,
		logger:          logger,
	}
	h.buildRouter()
	return h
}

func (h *AdminHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)

	h.router = r
}

// Router exposes the configured chi router.
func (h *AdminHandler) Router() http.Handler {
	return h.router
}

func (h *AdminHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleReady probes the destination bucket and the record store, the two
// dependencies an event cannot complete without.
func (h *AdminHandler) handleReady(w http.ResponseWriter, r *http.Request) {
	var problems []string

	ok, err := h.store.BucketExists(r.Context(), h.thumbnailBucket)
	if err != nil {
		problems = append(problems, "thumbnail bucket: "+err.Error())
	} else if !ok {
		problems = append(problems, "thumbnail bucket does not exist: "+h.thumbnailBucket)
	}

	if err := h.records.Ping(r.Context()); err != nil {
		problems = append(problems, "record store: "+err.Error())
	}

	if len(problems) > 0 {
		h.logger.Warn("readiness probe failed", zap.Strings("problems", problems))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "unavailable",
			"problems": problems,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
