package errutil

import (
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Codes shared across modules. Module-specific codes follow the same suffix
// conventions so HTTPStatus can map them without importing the modules.
const (
	CodeForbidden       = "FORBIDDEN"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
)

// Code returns the oops error code carried by err, or "" when there is none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// HTTPStatus maps an error to the status a handler should answer with.
//
//	*_NOT_FOUND                  404
//	FORBIDDEN, *_IMMUTABLE       403
//	INVALID_*                    400 (INVALID_CREDENTIALS is 401)
//	UNAUTHENTICATED              401
//	*_EXISTS, *_TAKEN            409
//	anything else                500
func HTTPStatus(err error) int {
	code := Code(err)
	switch {
	case code == "":
		return http.StatusInternalServerError
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case code == CodeForbidden, strings.HasSuffix(code, "_IMMUTABLE"):
		return http.StatusForbidden
	case code == CodeUnauthenticated, code == "INVALID_CREDENTIALS":
		return http.StatusUnauthorized
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_EXISTS"), strings.HasSuffix(code, "_TAKEN"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show a client. Internal failures
// collapse to a generic message; coded domain errors keep their own.
func PublicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Error()
	}
	return err.Error()
}
