package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderIdempotency   = "Idempotency-Key"

	// Context keys
	ContextKeyPrincipalID = "principal_id"
	ContextKeyRole        = "role"
	ContextKeyRequestID   = "request_id"

	// Limits
	MaxWebhookBodyBytes = 1 << 20
)
