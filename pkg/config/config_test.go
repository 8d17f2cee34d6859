package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsApplyBusinessRules(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.NotNil(t, cfg)
	assert.Equal(t, 10, cfg.Assignment.DriverPendingCapacity)
	assert.Equal(t, 2, cfg.Requests.MinPickupLeadDays)
	assert.Equal(t, 2, cfg.Requests.PricingMinorUnits)
	assert.Equal(t, 72*time.Hour, cfg.Payments.DueAfter)
	assert.Equal(t, "CASH", cfg.Payments.DefaultMethod)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
}

func TestOverridesAndFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DRIVER_PENDING_CAPACITY", 0)
	v.Set("PAYMENT_DUE_AFTER", "not-a-duration")
	v.Set("PAYMENT_DEFAULT_METHOD", "transfer")
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := fromViper(v)
	assert.Equal(t, 10, cfg.Assignment.DriverPendingCapacity)
	assert.Equal(t, 72*time.Hour, cfg.Payments.DueAfter)
	assert.Equal(t, "TRANSFER", cfg.Payments.DefaultMethod)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
