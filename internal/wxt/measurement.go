// Package wxt decodes the composite data sentence of a Vaisala WXT520
// weather transmitter.
package wxt

import "time"

// Measurement is one decoded weather report. Date is the UTC time the
// sentence was decoded, truncated to whole seconds; it is not carried in
// the wire data.
type Measurement struct {
	Date              time.Time `json:"date"`
	WindDirection     float64   `json:"wind_direction"`
	WindSpeed         float64   `json:"wind_speed"`
	Temperature       float64   `json:"temperature"`
	RelativeHumidity  float64   `json:"relative_humidity"`
	Pressure          float64   `json:"pressure"`
	AccumulatedRain   float64   `json:"accumulated_rain"`
	HeaterTemperature float64   `json:"heater_temperature"`
	HeaterVoltage     float64   `json:"heater_voltage"`
}
