package config

// EnvPrefix namespaces every variable read by envconfig.
const EnvPrefix = "RAWMART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "RAWMART_APP_ENV"
	EnvPort     = "RAWMART_APP_PORT"
	EnvLogLevel = "RAWMART_LOG_LEVEL"

	EnvDBDSN       = "RAWMART_DB_DSN"
	EnvDBDriver    = "RAWMART_DB_DRIVER"
	EnvDBHost      = "RAWMART_DB_HOST"
	EnvDBUser      = "RAWMART_DB_USER"
	EnvDBPassword  = "RAWMART_DB_PASSWORD"
	EnvDBName      = "RAWMART_DB_NAME"
	EnvDBSlowQuery = "RAWMART_DB_SLOW_QUERY"

	EnvRedisURL = "RAWMART_REDIS_URL"

	EnvCartBackend         = "RAWMART_CART_BACKEND"
	EnvCartTTL             = "RAWMART_CART_TTL"
	EnvCartRateLimitWindow = "RAWMART_CART_RATE_LIMIT_WINDOW"
	EnvCartRateLimit       = "RAWMART_CART_RATE_LIMIT"
	EnvCartMaxLineQuantity = "RAWMART_CART_MAX_LINE_QUANTITY"

	EnvCORSAllowedOrigins = "RAWMART_CORS_ALLOWED_ORIGINS"

	EnvGCPProjectID       = "RAWMART_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic  = "RAWMART_PUBSUB_ORDERS_TOPIC"
	EnvPubSubCreateTopics = "RAWMART_PUBSUB_CREATE_TOPICS"
	EnvOutboxBatchSize    = "RAWMART_OUTBOX_PUBLISH_BATCH_SIZE"
	EnvOutboxPollInterval = "RAWMART_OUTBOX_PUBLISH_POLL_MS"

	EnvStorefrontAPIURL      = "RAWMART_STOREFRONT_API_URL"
	EnvStorefrontTimeout     = "RAWMART_STOREFRONT_TIMEOUT"
	EnvStorefrontSessionFile = "RAWMART_STOREFRONT_SESSION_FILE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
