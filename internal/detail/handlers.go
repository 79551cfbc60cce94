package detail

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/foodcart/internal/addon"
	"github.com/noah-isme/foodcart/internal/cart"
	"github.com/noah-isme/foodcart/internal/catalog"
	"github.com/noah-isme/foodcart/internal/common"
	"github.com/noah-isme/foodcart/internal/money"
)

// Handler exposes quoting and committing configured items.
type Handler struct {
	catalog   *catalog.Service
	addons    addon.Catalog
	store     *cart.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Catalog   *catalog.Service
	Addons    addon.Catalog
	Store     *cart.Store
	Validator *validator.Validate
	Logger    *zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		catalog:   cfg.Catalog,
		addons:    cfg.Addons,
		store:     cfg.Store,
		validator: cfg.Validator,
		logger:    zerolog.Nop(),
	}
	if h.addons == nil {
		h.addons = addon.DefaultCatalog()
	}
	if h.validator == nil {
		h.validator = validator.New(validator.WithRequiredStructEnabled())
	}
	if cfg.Logger != nil {
		h.logger = *cfg.Logger
	}
	return h
}

type quoteRequest struct {
	Addons []string `json:"addons" validate:"max=16,dive,required,max=32"`
	Qty    int      `json:"qty" validate:"gte=0,lte=99"`
}

type addItemRequest struct {
	ProductID int      `json:"productId" validate:"required,gt=0"`
	Addons    []string `json:"addons" validate:"max=16,dive,required,max=32"`
	Note      string   `json:"note" validate:"max=280"`
	Qty       int      `json:"qty" validate:"gte=0,lte=99"`
}

type quoteResponse struct {
	ProductID          int              `json:"productId"`
	Addons             []addon.Selected `json:"addons"`
	Subtitle           string           `json:"subtitle,omitempty"`
	UnitPrice          money.Money      `json:"unitPrice"`
	Qty                int              `json:"qty"`
	LineTotal          money.Money      `json:"lineTotal"`
	UnitPriceFormatted string           `json:"unitPriceFormatted"`
	LineTotalFormatted string           `json:"lineTotalFormatted"`
}

// Quote handles POST /api/v1/products/{id}/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	id, err := catalog.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req quoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.configure(id, req.Addons, "", req.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	q, err := session.Quote()
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quoteResponse{
		ProductID:          id,
		Addons:             nonNil(session.Selected()),
		Subtitle:           session.Subtitle(),
		UnitPrice:          q.UnitPrice,
		Qty:                q.Quantity,
		LineTotal:          q.LineTotal,
		UnitPriceFormatted: money.FormatBRL(q.UnitPrice),
		LineTotalFormatted: money.FormatBRL(q.LineTotal),
	}})
}

// AddItem handles POST /api/v1/carts/{id}/items by committing a configured item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.configure(req.ProductID, req.Addons, req.Note, req.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	snap, err := session.Commit(r.Context(), h.store, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Debug().Str("cart_id", snap.ID).Int("product_id", req.ProductID).Msg("item added to cart")
	common.Data(w, http.StatusCreated, cart.NewView(snap))
}

func (h *Handler) configure(id int, addons []string, note string, qty int) (*Session, error) {
	if h.catalog == nil {
		return nil, errors.New("catalog not configured")
	}
	session := NewSession(h.addons)
	var item *catalog.Item
	if found, err := h.catalog.Get(id); err == nil {
		item = &found
	}
	if err := session.Open(item); err != nil {
		return nil, err
	}
	for _, a := range addons {
		if _, ok := h.addons.Get(a); !ok {
			return nil, &common.AppError{
				Code:       common.CodeUnknownAddon,
				Message:    "addon is not available",
				HTTPStatus: http.StatusBadRequest,
				Details:    map[string]string{"addon": a},
			}
		}
		if err := session.SetAddon(a, true); err != nil {
			return nil, err
		}
	}
	if err := session.SetNote(note); err != nil {
		return nil, err
	}
	if err := session.SetQuantity(qty); err != nil {
		return nil, err
	}
	return session, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err.Error())
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "request validation failed", validationDetails(err))
		return false
	}
	return true
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"error": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func nonNil(in []addon.Selected) []addon.Selected {
	if in == nil {
		return []addon.Selected{}
	}
	return in
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case common.WriteAppError(w, err):
	case errors.Is(err, ErrNoItem):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "product not found", nil)
	case errors.Is(err, ErrCommitted):
		common.JSONError(w, http.StatusConflict, "ALREADY_COMMITTED", err.Error(), nil)
	case errors.Is(err, cart.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidCartID, "cart id is invalid", nil)
	default:
		h.logger.Error().Err(err).Msg("detail request failed")
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "unable to process item", nil)
	}
}
