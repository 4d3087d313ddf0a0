package config

const (
	EnvMongoURI             = "MONGO_URI"
	EnvMongoDatabaseName    = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout     = "MONGO_CONN_TIMEOUT"
	EnvMongoUseTransactions = "MONGO_USE_TRANSACTIONS"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret        = "JWT_SECRET"
	EnvJWTTTL           = "JWT_TTL"
	EnvAuthCookieName   = "AUTH_COOKIE_NAME"
	EnvAuthCookieSecure = "AUTH_COOKIE_SECURE"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	EnvUploadDir          = "UPLOAD_DIR"

	EnvStripeSecretKey     = "STRIPE_SECRET_KEY"
	EnvStripeWebhookSecret = "STRIPE_WEBHOOK_SECRET"
	EnvPaymentCurrency     = "PAYMENT_CURRENCY"

	EnvBookingLockTTL           = "BOOKING_LOCK_TTL"
	EnvBookingLockRetries       = "BOOKING_LOCK_RETRIES"
	EnvBookingLockRetryInterval = "BOOKING_LOCK_RETRY_INTERVAL"

	EnvConversationScanLimit = "CONVERSATION_SCAN_LIMIT"

	EnvRedisAddr       = "REDIS_ADDR"
	EnvRedisPassword   = "REDIS_PASSWORD"
	EnvRedisDB         = "REDIS_DB"
	EnvListingCacheTTL = "LISTING_CACHE_TTL"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvKafkaBookingTopic  = "KAFKA_BOOKING_TOPIC"
	EnvKafkaChatTopic     = "KAFKA_CHAT_TOPIC"
	EnvKafkaConsumerGroup = "KAFKA_CONSUMER_GROUP"
)
