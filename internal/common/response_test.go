package common_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foodcart/internal/common"
)

func TestJSONErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()
	common.JSONError(rec, http.StatusNotFound, "NOT_FOUND", "product not found", map[string]string{"id": "404"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"product not found","details":{"id":"404"}}}`, rec.Body.String())
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	require.Equal(t, "10.0.0.1", common.ClientIP(req))

	req.Header.Set("X-Real-IP", "192.0.2.4")
	require.Equal(t, "192.0.2.4", common.ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	require.Equal(t, "203.0.113.9", common.ClientIP(req))
}

func TestClientIPIgnoresGarbageHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	req.Header.Set("X-Forwarded-For", "unknown")
	req.Header.Set("X-Real-IP", "not-an-ip")
	require.Equal(t, "2001:db8::1", common.ClientIP(req))
}

func TestDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	common.Data(rec, http.StatusCreated, map[string]int{"count": 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"data":{"count":2}}`, rec.Body.String())
}

func TestWriteAppErrorUnwrapsWrappedErrors(t *testing.T) {
	appErr := common.NewAppError(common.CodeCartEmpty, "cart has no items", http.StatusUnprocessableEntity, nil)
	rec := httptest.NewRecorder()
	require.True(t, common.WriteAppError(rec, fmt.Errorf("checkout: %w", appErr)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.JSONEq(t, `{"error":{"code":"CART_EMPTY","message":"cart has no items"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	require.False(t, common.WriteAppError(rec, errors.New("plain")))
	require.Equal(t, 0, rec.Body.Len())
}

func TestJSONErrorDefaultsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	common.JSONError(rec, http.StatusTooManyRequests, common.CodeRateLimited, "", nil)
	require.JSONEq(t, `{"error":{"code":"RATE_LIMITED","message":"Too Many Requests"}}`, rec.Body.String())
}
