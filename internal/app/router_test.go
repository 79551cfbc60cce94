package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foodcart/internal/app"
	"github.com/noah-isme/foodcart/internal/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newServer(t *testing.T, env map[string]string) (*httptest.Server, *app.Dependencies) {
	t.Helper()
	base := map[string]string{
		"REDIS_URL":           "",
		"HANDOFF_WEBHOOK_URL": "",
		"WHATSAPP_PHONE":      "+55 (11) 99999-0000",
		"CART_DELIVERY_FEE":   "5.00",
		"RATE_LIMIT":          "1000-M",
	}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.LoadForTests(base)
	require.NoError(t, err)

	deps, err := app.Build(t.Context(), cfg, zerolog.Nop(), app.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	srv := httptest.NewServer(app.NewRouter(deps, app.RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv, deps
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, headers map[string]string) (*http.Response, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&env)
	}
	return resp, env
}

type cartView struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
	Items []struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Quantity int    `json:"qty"`
		Subtitle string `json:"subtitle"`
	} `json:"items"`
	Total          json.Number `json:"total"`
	TotalFormatted string      `json:"totalFormatted"`
}

func decodeCart(t *testing.T, env envelope) cartView {
	t.Helper()
	var v cartView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestStorefrontFlowInMemory(t *testing.T) {
	srv, _ := newServer(t, nil)

	resp, env := call(t, srv, http.MethodPost, "/api/v1/carts", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cartID := decodeCart(t, env).ID
	require.NotEmpty(t, cartID)

	resp, env = call(t, srv, http.MethodPost, "/api/v1/carts/"+cartID+"/items",
		`{"productId":1,"addons":["bacon"],"note":" sem cebola ","qty":2}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	view := decodeCart(t, env)
	require.Equal(t, 2, view.Count)
	require.Equal(t, "Monster Bacon", view.Items[0].Name)
	require.Equal(t, "77", view.Total.String())
	require.Equal(t, "R$ 77,00", view.TotalFormatted)

	resp, env = call(t, srv, http.MethodPost, "/api/v1/carts/"+cartID+"/items/1/increment", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 3, decodeCart(t, env).Count)

	resp, env = call(t, srv, http.MethodPost, "/api/v1/carts/"+cartID+"/checkout", `{"note":"portão azul"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(env.Data), `"orderObs":"portão azul"`)

	resp, env = call(t, srv, http.MethodPost, "/api/v1/carts/"+cartID+"/handoff/whatsapp", `{}`, nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var handoff struct {
		Message string `json:"message"`
		Link    string `json:"link"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &handoff))
	require.Contains(t, handoff.Message, "3x Monster Bacon - R$ 108,00")
	require.True(t, strings.HasPrefix(handoff.Link, "https://wa.me/5511999990000?text="))

	resp, env = call(t, srv, http.MethodGet, "/api/v1/carts/"+cartID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Zero(t, decodeCart(t, env).Count)

	resp, env = call(t, srv, http.MethodPost, "/api/v1/carts/"+cartID+"/checkout", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "CART_EMPTY", env.Error.Code)
}

func TestCatalogRoutes(t *testing.T) {
	srv, _ := newServer(t, nil)

	resp, env := call(t, srv, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(env.Data), "Sanduíches")

	resp, _ = call(t, srv, http.MethodGet, "/api/v1/products/999", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, srv, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestRedisBackedCartsAndIdempotency(t *testing.T) {
	mr := miniredis.RunT(t)
	srv, deps := newServer(t, map[string]string{"REDIS_URL": "redis://" + mr.Addr()})
	require.NotNil(t, deps.Redis)

	resp, env := call(t, srv, http.MethodPost, "/api/v1/carts", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cartID := decodeCart(t, env).ID

	headers := map[string]string{"Idempotency-Key": "add-1"}
	body := `{"productId":2,"qty":1}`
	resp, _ = call(t, srv, http.MethodPost, "/api/v1/carts/"+cartID+"/items", body, headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env = call(t, srv, http.MethodPost, "/api/v1/carts/"+cartID+"/items", body, headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("Idempotent-Replay"))
	require.Equal(t, 1, decodeCart(t, env).Count)

	require.True(t, mr.Exists(deps.Carts.Key(cartID)))

	resp, _ = call(t, srv, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
