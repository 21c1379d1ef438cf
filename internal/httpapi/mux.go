package httpapi

import (
	"net/http"

	"github.com/Mailaender/vaisalad/internal/store"
)

func NewMux(st *store.Store) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux)
	registerWeather(mux, st)
	return mux
}
