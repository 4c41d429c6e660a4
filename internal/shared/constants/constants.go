package constants

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"

	HeaderAuthorization  = "Authorization"
	HeaderAcceptLanguage = "Accept-Language"
	HeaderXRequestID     = "X-Request-ID"

	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeySessionID = "session_id"
	ContextKeyRequestID = "request_id"

	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgFeatureNotFound     = "Feature not found"
)
