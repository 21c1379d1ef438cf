package httpapi

import (
	"net/http"
)

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealthz)
}
