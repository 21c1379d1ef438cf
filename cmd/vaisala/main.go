// Command vaisala prints the latest weather data held by a running
// vaisalad in human-readable form.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Mailaender/vaisalad/internal/store"
	"github.com/Mailaender/vaisalad/internal/wxt"
)

const defaultDaemonURL = "http://localhost:9001"

func main() {
	base := strings.TrimSpace(os.Getenv("VAISALAD_URL"))
	if base == "" {
		base = defaultDaemonURL
	}
	base = strings.TrimRight(base, "/")

	client := &http.Client{Timeout: 5 * time.Second}

	latest, err := fetchMeasurement(client, base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vaisala: %v\n", err)
		os.Exit(1)
	}

	if latest == nil {
		fmt.Println("No measurement available")
		if rec, err := fetchLastError(client, base); err == nil && rec != nil {
			fmt.Printf("Last error %s: %s\n", rec.Time.Format(time.RFC3339), rec.Message)
		}
		os.Exit(1)
	}

	fmt.Printf("Data received %s:\n", latest.Date.Format(time.RFC3339))
	fmt.Printf("Wind Direction: %.0f \u00B0\n", latest.WindDirection)
	fmt.Printf("    Wind Speed: %.1f km/h\n", latest.WindSpeed)
	fmt.Printf("   Temperature: %.1f \u2103\n", latest.Temperature)
	fmt.Printf(" Rel. Humidity: %.1f %%\n", latest.RelativeHumidity)
	fmt.Printf("      Pressure: %.1f hPa\n", latest.Pressure)
	fmt.Printf("   Accum. Rain: %.2f mm\n", latest.AccumulatedRain)
	fmt.Printf("  Heater Temp.: %.1f \u2103\n", latest.HeaterTemperature)
	fmt.Printf("Heater Voltage: %.1f V\n", latest.HeaterVoltage)
}

func fetchMeasurement(client *http.Client, base string) (*wxt.Measurement, error) {
	resp, err := client.Get(base + "/api/v1/measurement")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon returned %s", resp.Status)
	}

	// The daemon returns JSON null when no measurement is cached.
	var m *wxt.Measurement
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode measurement: %w", err)
	}
	return m, nil
}

func fetchLastError(client *http.Client, base string) (*store.ErrorRecord, error) {
	resp, err := client.Get(base + "/api/v1/error")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon returned %s", resp.Status)
	}

	var body struct {
		Timestamp *time.Time `json:"timestamp"`
		Message   *string    `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode error record: %w", err)
	}
	if body.Timestamp == nil || body.Message == nil {
		return nil, nil
	}
	return &store.ErrorRecord{Time: *body.Timestamp, Message: *body.Message}, nil
}
