package response

import (
	"net/http"

	"github.com/renewly/renewly/pkg/apperr"
)

type APIResponseCode int

const (
	APIResponseCodeOK         APIResponseCode = 0
	APIResponseCodeBadRequest APIResponseCode = 40000
	APIResponseCodeForbidden  APIResponseCode = 40300
	APIResponseCodeNotFound   APIResponseCode = 40400
	APIResponseCodeConflict   APIResponseCode = 40900
	APIResponseCodeError      APIResponseCode = 50000
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:         "ok",
	APIResponseCodeBadRequest: "bad request",
	APIResponseCodeForbidden:  "forbidden",
	APIResponseCodeNotFound:   "not found",
	APIResponseCodeConflict:   "conflict",
	APIResponseCodeError:      "unexpected error",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with a code-derived message and data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// FromError maps a service error onto an HTTP status and response envelope
// using the apperr kind taxonomy.
func FromError(err error) (int, *APIResponse[string]) {
	code := APIResponseCodeError
	status := http.StatusInternalServerError

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		code, status = APIResponseCodeBadRequest, http.StatusBadRequest
	case apperr.KindNotFound:
		code, status = APIResponseCodeNotFound, http.StatusNotFound
	case apperr.KindAuthorization:
		code, status = APIResponseCodeForbidden, http.StatusForbidden
	case apperr.KindConflict:
		code, status = APIResponseCodeConflict, http.StatusConflict
	case apperr.KindTransient:
		code, status = APIResponseCodeError, http.StatusServiceUnavailable
	}

	return status, &APIResponse[string]{Code: code, Message: codeToMsg[code], Data: err.Error()}
}
