package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foodcart/internal/cart"
)

type cartEnvelope struct {
	Data struct {
		ID                string  `json:"id"`
		Count             int     `json:"count"`
		Subtotal          float64 `json:"subtotal"`
		DeliveryFee       float64 `json:"deliveryFee"`
		Total             float64 `json:"total"`
		TotalFormatted    string  `json:"totalFormatted"`
		SubtotalFormatted string  `json:"subtotalFormatted"`
		Items             []struct {
			ID                 int     `json:"id"`
			Name               string  `json:"name"`
			Price              float64 `json:"price"`
			Qty                int     `json:"qty"`
			LineTotal          float64 `json:"lineTotal"`
			LineTotalFormatted string  `json:"lineTotalFormatted"`
		} `json:"items"`
	} `json:"data"`
}

func newCartRouter(store *cart.Store) http.Handler {
	h := cart.NewHandler(store)
	r := chi.NewRouter()
	r.Post("/api/v1/carts", h.Create)
	r.Get("/api/v1/carts/{id}", h.Get)
	r.Delete("/api/v1/carts/{id}", h.Clear)
	r.Post("/api/v1/carts/{id}/items/{itemId}/increment", h.Increment)
	r.Post("/api/v1/carts/{id}/items/{itemId}/decrement", h.Decrement)
	r.Delete("/api/v1/carts/{id}/items/{itemId}", h.Remove)
	return r
}

func doCart(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, cartEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body cartEnvelope
	if rec.Body.Len() > 0 && rec.Code < 400 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHandlerCreateIssuesSession(t *testing.T) {
	store, _ := newMemoryStore(t)
	router := newCartRouter(store)

	rec, body := doCart(t, router, http.MethodPost, "/api/v1/carts")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, body.Data.ID)
	require.Empty(t, body.Data.Items)
	require.Equal(t, "R$ 0,00", body.Data.TotalFormatted)
}

func TestHandlerLifecycle(t *testing.T) {
	store, _ := newMemoryStore(t)
	router := newCartRouter(store)
	ctx := context.Background()

	_, err := store.Upsert(ctx, session, monsterBacon(3900, ""), 2)
	require.NoError(t, err)

	rec, body := doCart(t, router, http.MethodGet, "/api/v1/carts/"+session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Data.Items, 1)
	require.InDelta(t, 78.0, body.Data.Subtotal, 0.001)
	require.InDelta(t, 83.0, body.Data.Total, 0.001)
	require.Equal(t, "R$ 83,00", body.Data.TotalFormatted)
	require.Equal(t, "R$ 78,00", body.Data.Items[0].LineTotalFormatted)

	rec, body = doCart(t, router, http.MethodPost, "/api/v1/carts/"+session+"/items/1/increment")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 3, body.Data.Items[0].Qty)

	rec, body = doCart(t, router, http.MethodPost, "/api/v1/carts/"+session+"/items/1/decrement")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, body.Data.Items[0].Qty)

	rec, body = doCart(t, router, http.MethodDelete, "/api/v1/carts/"+session+"/items/1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body.Data.Items)
	require.InDelta(t, 0.0, body.Data.Total, 0.001)
}

func TestHandlerClear(t *testing.T) {
	store, _ := newMemoryStore(t)
	router := newCartRouter(store)
	_, err := store.Upsert(context.Background(), session, monsterBacon(3200, ""), 1)
	require.NoError(t, err)

	rec, _ := doCart(t, router, http.MethodDelete, "/api/v1/carts/"+session)
	require.Equal(t, http.StatusNoContent, rec.Code)

	c, err := store.Load(context.Background(), session)
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
}

func TestHandlerRejectsBadItemID(t *testing.T) {
	store, _ := newMemoryStore(t)
	router := newCartRouter(store)

	rec, _ := doCart(t, router, http.MethodPost, "/api/v1/carts/"+session+"/items/abc/increment")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_ITEM_ID")

	rec, _ = doCart(t, router, http.MethodGet, "/api/v1/carts/a:b")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_CART_ID")
}
