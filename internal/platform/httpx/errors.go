package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors domain packages wrap so handlers can map them uniformly.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps a domain error onto the HTTP failure envelope. Unknown
// errors become a 500 without leaking internals.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		Fail(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "internal error")
	}
}
