package domain

import "time"

// Conditions is a one-off report of city weather shown next to the sensor
// readings. Temperature is in degrees Celsius and pressure in hPa.
type Conditions struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	Description string    `json:"description"`
	UVIndex     float64   `json:"uv_index"`
	FetchedAt   time.Time `json:"fetched_at"`
}
