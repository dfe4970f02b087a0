package apperrors

type ErrorCode string

const (
	// System
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeStorageError         ErrorCode = "STORAGE_ERROR"

	// Business logic
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeLimitExceeded    ErrorCode = "LIMIT_EXCEEDED"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// Cart and media
	CodeNoActiveOrder     ErrorCode = "NO_ACTIVE_ORDER"
	CodeItemNotInOrder    ErrorCode = "ITEM_NOT_IN_ORDER"
	CodeImageNotProcessed ErrorCode = "IMAGE_NOT_PROCESSED"
	CodeInvalidSignature  ErrorCode = "INVALID_SIGNATURE"
	CodeLockNotAcquired   ErrorCode = "LOCK_NOT_ACQUIRED"

	// Auth
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)
