package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		MongoURI:                 "mongodb://localhost:27017",
		MongoDatabaseName:        "liora",
		MongoConnTimeout:         10 * time.Second,
		Port:                     "8080",
		RateLimitRequests:        100,
		RateLimitWindow:          time.Minute,
		RequestTimeout:           DefaultRequestTimeout,
		IdempotencyTTL:           time.Hour,
		MaxRequestSize:           1 << 20,
		ReadTimeout:              15 * time.Second,
		WriteTimeout:             15 * time.Second,
		IdleTimeout:              time.Minute,
		ShutdownTimeout:          30 * time.Second,
		JWTSecret:                "0123456789abcdef0123",
		JWTTTL:                   DefaultJWTTTL,
		AuthCookieName:           DefaultAuthCookieName,
		PaymentCurrency:          "usd",
		BookingLockTTL:           DefaultBookingLockTTL,
		BookingLockRetries:       DefaultBookingLockRetries,
		BookingLockRetryInterval: DefaultBookingLockRetryInterval,
		ListingCacheTTL:          DefaultListingCacheTTL,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"lock ttl equal to request timeout", func(c *Config) { c.BookingLockTTL = c.RequestTimeout }, "BookingLockTTL must exceed RequestTimeout"},
		{"lock ttl below request timeout", func(c *Config) { c.BookingLockTTL = 10 * time.Second }, "BookingLockTTL must exceed RequestTimeout"},
		{"negative scan limit", func(c *Config) { c.ConversationScanLimit = -1 }, "ConversationScanLimit"},
		{"bounded scan limit", func(c *Config) { c.ConversationScanLimit = 5000 }, ""},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }, "JWTSecret"},
		{"bad mongo uri", func(c *Config) { c.MongoURI = "postgres://x" }, "MongoURI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
