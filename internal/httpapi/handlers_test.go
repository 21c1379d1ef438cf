package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mailaender/vaisalad/internal/store"
	"github.com/Mailaender/vaisalad/internal/wxt"
)

func Test_handleMeasurement(t *testing.T) {
	t.Run("returns null when no measurement is cached", func(t *testing.T) {
		api := &weatherAPI{store: store.New()}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/measurement", nil)
		rec := httptest.NewRecorder()

		api.handleMeasurement(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json", ct)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "null" {
			t.Errorf("body = %q; want null", body)
		}
	})

	t.Run("returns the measurement as a mapping with a date string", func(t *testing.T) {
		st := store.New()
		st.SetLatest(wxt.Measurement{
			Date:              time.Date(2024, 3, 1, 12, 34, 56, 0, time.UTC),
			WindDirection:     45,
			WindSpeed:         12.3,
			Temperature:       20.5,
			RelativeHumidity:  55.0,
			Pressure:          1013.2,
			AccumulatedRain:   0.0,
			HeaterTemperature: 25.0,
			HeaterVoltage:     24.0,
		})
		api := &weatherAPI{store: st}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/measurement", nil)
		rec := httptest.NewRecorder()

		api.handleMeasurement(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}

		var got map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if got["date"] != "2024-03-01T12:34:56Z" {
			t.Errorf("date = %v; want 2024-03-01T12:34:56Z", got["date"])
		}
		if got["wind_direction"] != 45.0 {
			t.Errorf("wind_direction = %v; want 45", got["wind_direction"])
		}
		if got["pressure"] != 1013.2 {
			t.Errorf("pressure = %v; want 1013.2", got["pressure"])
		}
		if got["heater_voltage"] != 24.0 {
			t.Errorf("heater_voltage = %v; want 24", got["heater_voltage"])
		}
	})
}

func Test_handleLastError(t *testing.T) {
	t.Run("returns nulls when no fault has occurred", func(t *testing.T) {
		api := &weatherAPI{store: store.New()}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/error", nil)
		rec := httptest.NewRecorder()

		api.handleLastError(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		var got map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if got["timestamp"] != nil {
			t.Errorf("timestamp = %v; want null", got["timestamp"])
		}
		if got["message"] != nil {
			t.Errorf("message = %v; want null", got["message"])
		}
	})

	t.Run("returns the recorded fault", func(t *testing.T) {
		st := store.New()
		st.SetError(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "open /dev/ttyACM0: no such file or directory")
		api := &weatherAPI{store: st}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/error", nil)
		rec := httptest.NewRecorder()

		api.handleLastError(rec, req)

		var got map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if got["timestamp"] != "2024-03-01T12:00:00Z" {
			t.Errorf("timestamp = %v; want 2024-03-01T12:00:00Z", got["timestamp"])
		}
		if got["message"] != "open /dev/ttyACM0: no such file or directory" {
			t.Errorf("message = %v", got["message"])
		}
	})
}

func TestNewMux_Routes(t *testing.T) {
	mux := NewMux(store.New())

	tests := []struct {
		path string
		want int
	}{
		{path: "/healthz", want: http.StatusOK},
		{path: "/api/v1/measurement", want: http.StatusOK},
		{path: "/api/v1/error", want: http.StatusOK},
		{path: "/nope", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d; want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}
