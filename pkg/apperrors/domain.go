package apperrors

import (
	"net/http"
)

// =========================================================================
// Factories for wrapping repository errors
// =========================================================================

// ErrNotFound turns a repository miss (gorm.ErrRecordNotFound or a sentinel) into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, DomainResource, "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, DomainResource, "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrStorage(err error) *AppError {
	return Wrap(err, CodeStorageError, DomainStorage, "Storage operation failed", http.StatusInternalServerError)
}

// =========================================================================
// Factories for new errors
// =========================================================================

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Predefined values
// =========================================================================

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	DomainAuth,
	"Invalid email or password",
	http.StatusUnauthorized,
)

// --- Cart ---

var ErrNoActiveOrder = New(
	CodeNoActiveOrder,
	DomainCart,
	"No active orders",
	http.StatusBadRequest,
)

var ErrItemNotInOrder = New(
	CodeItemNotInOrder,
	DomainCart,
	"Product is not in the cart",
	http.StatusBadRequest,
)

var ErrEmptyCart = New(
	CodeInvalidOperation,
	DomainCart,
	"Cart is empty",
	http.StatusBadRequest,
)

var ErrCartBusy = New(
	CodeLockNotAcquired,
	DomainCart,
	"Cart is being updated, retry later",
	http.StatusConflict,
)

// --- Uploads & media ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	DomainRequest,
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidImage = New(
	CodeImageNotProcessed,
	DomainMedia,
	"Image could not be processed",
	http.StatusUnprocessableEntity,
)

var ErrInvalidBase64 = New(
	CodeValidationFailed,
	DomainMedia,
	"Malformed base64 image payload",
	http.StatusBadRequest,
)

// --- Payments ---

var ErrInvalidPaymentSignature = New(
	CodeInvalidSignature,
	DomainPayment,
	"Invalid payment signature",
	http.StatusBadRequest,
)

var ErrInvalidPaymentAmount = New(
	CodeConflict,
	DomainPayment,
	"Invalid payment amount",
	http.StatusConflict,
)

// ErrPaymentSuperseded is returned for an invoice that was closed because the
// cart changed after checkout or the order was paid through another invoice.
var ErrPaymentSuperseded = New(
	CodeConflict,
	DomainPayment,
	"Invoice is no longer valid for this order",
	http.StatusConflict,
)
