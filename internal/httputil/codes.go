package httputil

// Machine-readable error codes returned in ErrorResponse.Code.
const (
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"

	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"

	CodeAlreadyRegistered  = "ALREADY_REGISTERED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeVerificationFailed = "VERIFICATION_FAILED"
	CodeVerifyEmailFirst   = "VERIFY_EMAIL_FIRST"

	CodeMissingAuth  = "MISSING_AUTH"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeTokenExpired = "TOKEN_EXPIRED"

	CodeAdminUnauthorized = "ADMIN_UNAUTHORIZED"
)
