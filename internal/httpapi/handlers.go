package httpapi

import (
	"net/http"
	"time"

	"github.com/Mailaender/vaisalad/internal/store"
)

// weatherAPI serves the read-only query interface over the store. Both
// endpoints return immediately; they never touch the serial link.
type weatherAPI struct {
	store *store.Store
}

type lastErrorResponse struct {
	Timestamp *time.Time `json:"timestamp"`
	Message   *string    `json:"message"`
}

// handleMeasurement returns the latest measurement, or JSON null when no
// reading has been received since the last (re)connect.
func (a *weatherAPI) handleMeasurement(w http.ResponseWriter, r *http.Request) {
	m, ok := a.store.Latest()
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleLastError returns the most recent link fault. Both fields are null
// when no fault has occurred since daemon start.
func (a *weatherAPI) handleLastError(w http.ResponseWriter, r *http.Request) {
	var resp lastErrorResponse
	if rec, ok := a.store.LastError(); ok {
		t := rec.Time
		msg := rec.Message
		resp.Timestamp = &t
		resp.Message = &msg
	}
	writeJSON(w, http.StatusOK, resp)
}

func registerWeather(mux *http.ServeMux, st *store.Store) {
	api := &weatherAPI{store: st}
	mux.HandleFunc("GET /api/v1/measurement", api.handleMeasurement)
	mux.HandleFunc("GET /api/v1/error", api.handleLastError)
}
