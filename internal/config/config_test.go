package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/foodcart/internal/config"
	"github.com/noah-isme/foodcart/internal/money"
)

func baseEnv() map[string]string {
	return map[string]string{
		"REDIS_URL":           "",
		"HANDOFF_WEBHOOK_URL": "",
		"CART_DELIVERY_FEE":   "",
		"CURRENCY_CODE":       "",
		"CART_TTL":            "",
		"RATE_LIMIT":          "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, money.Money(500), cfg.CartDeliveryFee)
	require.Equal(t, 168*time.Hour, cfg.CartTTL)
	require.Equal(t, "BRL", cfg.CurrencyCode)
	require.Equal(t, "300-M", cfg.RateLimit)
	require.False(t, cfg.UsesRedis())
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["CART_DELIVERY_FEE"] = "7,50"
	env["CART_TTL"] = "48h"
	env["REDIS_URL"] = "redis://localhost:6379/0"
	env["HANDOFF_WEBHOOK_URL"] = "https://orders.example.com/hook"
	env["PORT"] = ":9090"

	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, money.Money(750), cfg.CartDeliveryFee)
	require.Equal(t, 48*time.Hour, cfg.CartTTL)
	require.True(t, cfg.UsesRedis())
	require.Equal(t, ":9090", cfg.HTTPAddr())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	env := baseEnv()
	env["CART_DELIVERY_FEE"] = "-1"
	_, err := config.LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["CURRENCY_CODE"] = "USD"
	_, err = config.LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["HANDOFF_WEBHOOK_URL"] = "https://orders.example.com/hook"
	_, err = config.LoadForTests(env)
	require.Error(t, err)
}
