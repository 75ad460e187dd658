package http

import (
	"net/http"

	"github.com/dmitrijs2005/wsauth/internal/dbclient"
)

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}

// Health is 200 only while the database actor connection is up.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	state := h.db.State()
	if state != dbclient.Connected {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", DB: state.String()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", DB: state.String()})
}
