package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/wsauth/internal/common"
)

var errTrailingData = errors.New("unexpected data after JSON body")

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusOf maps the common error taxonomy onto HTTP.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError answers with the mapped status. Internal causes are logged and
// replaced by an opaque message.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Code: "invalid_request"})
}
