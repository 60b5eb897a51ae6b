package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("CART_UNKNOWN_STOCK", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REALTIME_DEBOUNCE", "")

	cfg, _ := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 999, cfg.CartUnknownStock)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, time.Second, cfg.RealtimeDebounce)
	assert.False(t, cfg.Production())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("CART_UNKNOWN_STOCK", "50")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("REALTIME_DEBOUNCE", "250ms")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example/")

	cfg, _ := Load()

	assert.True(t, cfg.Production())
	assert.Equal(t, 50, cfg.CartUnknownStock)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.RealtimeDebounce)
	assert.Equal(t, "https://shop.example", cfg.PublicBaseURL)
}
