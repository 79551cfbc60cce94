package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/foodcart/internal/cart"
	"github.com/noah-isme/foodcart/internal/common"
	"github.com/noah-isme/foodcart/internal/money"
)

// ChannelWhatsApp labels WhatsApp handoffs.
const ChannelWhatsApp = "whatsapp"

// Handler exposes checkout and handoff endpoints.
type Handler struct {
	store     *cart.Store
	messenger Messenger
	validator *validator.Validate
	phone     string
	logger    zerolog.Logger
	now       func() time.Time
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Store     *cart.Store
	Messenger Messenger
	Validator *validator.Validate
	Phone     string
	Logger    *zerolog.Logger
	Now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		store:     cfg.Store,
		messenger: cfg.Messenger,
		validator: cfg.Validator,
		phone:     cfg.Phone,
		logger:    zerolog.Nop(),
		now:       cfg.Now,
	}
	if h.messenger == nil {
		h.messenger = NopMessenger{}
	}
	if h.validator == nil {
		h.validator = validator.New(validator.WithRequiredStructEnabled())
	}
	if cfg.Logger != nil {
		h.logger = *cfg.Logger
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

type noteRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type checkoutView struct {
	Payload
	SubtotalFormatted    string `json:"subtotalFormatted"`
	DeliveryFeeFormatted string `json:"deliveryFeeFormatted"`
	TotalFormatted       string `json:"totalFormatted"`
}

// Checkout handles POST /api/v1/carts/{id}/checkout and returns the transfer payload.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.payload(w, r, h.store.Load)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": checkoutView{
		Payload:              payload,
		SubtotalFormatted:    money.FormatBRL(payload.Subtotal),
		DeliveryFeeFormatted: money.FormatBRL(payload.DeliveryFee),
		TotalFormatted:       money.FormatBRL(payload.Total),
	}})
}

// WhatsApp handles POST /api/v1/carts/{id}/handoff/whatsapp. It answers with the message and
// click-to-chat link and queues delivery in the background. The cart is taken atomically, so
// lines added while the message is composed stay in the cart.
func (h *Handler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.payload(w, r, h.store.Take)
	if !ok {
		return
	}
	text := Compose(payload)
	msg := Message{
		ID:        uuid.NewString(),
		Channel:   ChannelWhatsApp,
		Text:      text,
		Link:      WhatsAppLink(h.phone, text),
		Payload:   payload,
		CreatedAt: h.now().UTC(),
	}
	Notify(r.Context(), h.messenger, msg, h.logger)

	common.JSON(w, http.StatusAccepted, map[string]any{"data": map[string]any{
		"id":      msg.ID,
		"message": msg.Text,
		"link":    msg.Link,
		"total":   payload.Total,
	}})
}

type snapshotFunc func(ctx context.Context, cartID string) (cart.Cart, error)

// payload validates the note before snapshot runs, so a rejected request never takes the cart.
func (h *Handler) payload(w http.ResponseWriter, r *http.Request, snapshot snapshotFunc) (Payload, bool) {
	if h.store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return Payload{}, false
	}
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err.Error())
		return Payload{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "request validation failed", err.Error())
		return Payload{}, false
	}
	snap, err := snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return Payload{}, false
	}
	payload := Build(snap, req.Note)
	if payload.IsEmpty() {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeCartEmpty, "cart has no items", nil)
		return Payload{}, false
	}
	return payload, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, common.CodeInvalidCartID, "cart id is invalid", nil)
	default:
		h.logger.Error().Err(err).Msg("handoff request failed")
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart unavailable", nil)
	}
}
