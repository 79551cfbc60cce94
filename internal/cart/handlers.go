package cart

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/foodcart/internal/common"
	"github.com/noah-isme/foodcart/internal/money"
)

// Handler exposes the cart endpoints.
type Handler struct {
	store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// LineView is the API representation of one line.
type LineView struct {
	LineItem
	LineTotal          money.Money `json:"lineTotal"`
	UnitPriceFormatted string      `json:"priceFormatted"`
	LineTotalFormatted string      `json:"lineTotalFormatted"`
}

// View is the API representation of a cart snapshot.
type View struct {
	ID                   string      `json:"id"`
	Items                []LineView  `json:"items"`
	Count                int         `json:"count"`
	Subtotal             money.Money `json:"subtotal"`
	DeliveryFee          money.Money `json:"deliveryFee"`
	Total                money.Money `json:"total"`
	SubtotalFormatted    string      `json:"subtotalFormatted"`
	DeliveryFeeFormatted string      `json:"deliveryFeeFormatted"`
	TotalFormatted       string      `json:"totalFormatted"`
}

// NewView projects a snapshot with freshly computed totals.
func NewView(c Cart) View {
	summary := c.Summary()
	v := View{
		ID:                   c.ID,
		Items:                make([]LineView, 0, len(c.Items)),
		Count:                c.Count(),
		Subtotal:             summary.Subtotal,
		DeliveryFee:          summary.DeliveryFee,
		Total:                summary.Total,
		SubtotalFormatted:    money.FormatBRL(summary.Subtotal),
		DeliveryFeeFormatted: money.FormatBRL(summary.DeliveryFee),
		TotalFormatted:       money.FormatBRL(summary.Total),
	}
	for _, it := range c.Items {
		total := it.LineTotal()
		v.Items = append(v.Items, LineView{
			LineItem:           it,
			LineTotal:          total,
			UnitPriceFormatted: money.FormatBRL(it.UnitPrice),
			LineTotalFormatted: money.FormatBRL(total),
		})
	}
	return v
}

// Create handles POST /api/v1/carts by issuing a new session id.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	c := Cart{ID: uuid.NewString(), DeliveryFee: h.store.DeliveryFee()}
	common.Data(w, http.StatusCreated, NewView(c))
}

// Get handles GET /api/v1/carts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	c, err := h.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, NewView(c))
}

// Increment handles POST /api/v1/carts/{id}/items/{itemId}/increment.
func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.store.Increment)
}

// Decrement handles POST /api/v1/carts/{id}/items/{itemId}/decrement.
func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.store.Decrement)
}

// Remove handles DELETE /api/v1/carts/{id}/items/{itemId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.store.Remove)
}

// Clear handles DELETE /api/v1/carts/{id}.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	if err := h.store.Clear(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, cartID string, id int) (Cart, error)) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	itemID, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "itemId")))
	if err != nil || itemID <= 0 {
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidItemID, "item id must be a positive integer", nil)
		return
	}
	c, err := op(r.Context(), chi.URLParam(r, "id"), itemID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, NewView(c))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case common.WriteAppError(w, err):
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidCartID, "cart id is invalid", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart unavailable", nil)
	}
}
