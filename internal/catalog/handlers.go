package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/foodcart/internal/addon"
	"github.com/noah-isme/foodcart/internal/common"
)

// Handler exposes public menu endpoints.
type Handler struct {
	service *Service
	addons  addon.Catalog
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
	Addons  addon.Catalog
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, addons: cfg.Addons}
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	common.Data(w, http.StatusOK, h.service.Categories())
}

// Products handles GET /api/v1/products, optionally filtered by ?category=.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		items := h.service.ByCategory(category)
		common.Data(w, http.StatusOK, []Group{{Category: category, Items: items}})
		return
	}
	common.Data(w, http.StatusOK, h.service.Grouped())
}

// ProductDetail handles GET /api/v1/products/{id}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	item, err := h.lookup(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"item":        item,
			"addons":      h.addons,
			"complements": h.service.Complements(item.ID),
		},
	})
}

// Addons handles GET /api/v1/addons.
func (h *Handler) Addons(w http.ResponseWriter, r *http.Request) {
	common.Data(w, http.StatusOK, h.addons)
}

func (h *Handler) lookup(raw string) (Item, error) {
	id, err := ParseID(raw)
	if err != nil {
		return Item{}, err
	}
	item, err := h.service.Get(id)
	if err != nil {
		return Item{}, notFound(raw, err)
	}
	return item, nil
}

// ParseID converts a path parameter into an item id.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, badRequest("id", "id must be a positive integer", err)
	}
	return id, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if common.WriteAppError(w, err) {
		return
	}
	if errors.Is(err, ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, err.Error(), nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load catalog", nil)
}
