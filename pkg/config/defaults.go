package config

import "time"

const (
	DefaultMongoURI             = "mongodb://localhost:27017"
	DefaultMongoDatabaseName    = "liora"
	DefaultMongoConnTimeout     = 10 * time.Second
	DefaultMongoUseTransactions = true

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTTTL           = 7 * 24 * time.Hour
	DefaultAuthCookieName   = "token"
	DefaultAuthCookieSecure = false

	DefaultCORSAllowedOrigins = "http://localhost:5173"
	DefaultUploadDir          = "uploads"

	DefaultPaymentCurrency = "usd"

	DefaultBookingLockTTL           = 60 * time.Second
	DefaultBookingLockRetries       = 20
	DefaultBookingLockRetryInterval = 50 * time.Millisecond

	DefaultRedisDB         = 0
	DefaultListingCacheTTL = 5 * time.Minute

	DefaultKafkaEnabled       = false
	DefaultKafkaBookingTopic  = "liora.booking-events"
	DefaultKafkaChatTopic     = "liora.chat-messages"
	DefaultKafkaConsumerGroup = "liora-api"

	DefaultPaginationLimit = 10
	MaxPaginationLimit     = 100

	// Zero scans every message when building the conversation list.
	DefaultConversationScanLimit = 0
)
