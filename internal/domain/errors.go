package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an Error for HTTP status mapping and logging.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindConflict
	KindNotFound
	KindInternal
)

// Stable error codes surfaced to clients as {error_code, message}.
const (
	CodeNameRequired           = "NAME_REQUIRED"
	CodeDefaultVariantRequired = "DEFAULT_VARIANT_REQUIRED"
	CodeVariantsRequired       = "VARIANTS_REQUIRED"
	CodeSKURequired            = "SKU_REQUIRED"
	CodeSKUDuplicate           = "SKU_DUPLICATE"
	CodePriceInvalid           = "PRICE_INVALID"
	CodeCostInvalid            = "COST_INVALID"
	CodeStockInvalid           = "STOCK_INVALID"
	CodeStatusInvalid          = "STATUS_INVALID"
	CodeSlugDuplicate          = "SLUG_DUPLICATE"
	CodeAttributeInvalid       = "ATTRIBUTE_INVALID"
	CodeAttributeValueInvalid  = "ATTRIBUTE_VALUE_INVALID"
	CodeAttributeNotFound      = "ATTRIBUTE_NOT_FOUND"
	CodeVariantNotFound        = "VARIANT_NOT_FOUND"
	CodeVariantHasOrders       = "VARIANT_HAS_ORDERS"
	CodeNotFound               = "NOT_FOUND"
	CodeCategoryInvalid        = "CATEGORY_INVALID"
	CodeAffiliateInvalid       = "AFFILIATE_INVALID"
	CodeActionInvalid          = "ACTION_INVALID"
	CodeIDsRequired            = "IDS_REQUIRED"
	CodeVariantIDsRequired     = "VARIANT_IDS_REQUIRED"
	CodeTooManyIDs             = "TOO_MANY_IDS"
	CodeUpdateInvalid          = "UPDATE_INVALID"
	CodeUploadInvalid          = "UPLOAD_INVALID"
	CodeUploadFailed           = "UPLOAD_FAILED"
	CodeInternalError          = "INTERNAL_ERROR"
)

// Error is the typed error of the catalog core. Handlers translate it to a
// structured response; anything else is treated as internal.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the error kind to the wire status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func ValidationError(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func ConflictError(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InternalError wraps an unexpected failure. The cause is kept for logging
// but never serialized to the client.
func InternalError(cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternalError, Message: "internal error", cause: cause}
}

// AsError extracts a typed *Error, wrapping anything else as internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return InternalError(err)
}
