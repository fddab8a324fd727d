package domain

import (
	"time"
)

// Field identifies one scalar reading carried by every Point.
type Field string

const (
	FieldTemperature Field = "temperature"
	FieldUVIndex     Field = "uv"
	FieldHumidity    Field = "humidity"
	FieldPressure    Field = "pressure"
	FieldAirQuality  Field = "airQuality"
)

// Fields lists the scalar fields in display order.
var Fields = []Field{FieldTemperature, FieldUVIndex, FieldHumidity, FieldPressure, FieldAirQuality}

// Point is one monitored location's reading at a moment in time.
type Point struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	Temperature float64 `json:"temperature"`
	UVIndex     float64 `json:"uv"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	AirQuality  float64 `json:"airQuality"`
}

// Value returns the reading for f. Unknown fields read as zero.
func (p Point) Value(f Field) float64 {
	switch f {
	case FieldTemperature:
		return p.Temperature
	case FieldUVIndex:
		return p.UVIndex
	case FieldHumidity:
		return p.Humidity
	case FieldPressure:
		return p.Pressure
	case FieldAirQuality:
		return p.AirQuality
	default:
		return 0
	}
}

// Snapshot is the complete state of all monitored points at one instant.
type Snapshot struct {
	Points     []Point   `json:"points"`
	ReceivedAt time.Time `json:"received_at"`
}

// Len returns the number of points in the snapshot.
func (s Snapshot) Len() int { return len(s.Points) }

// LabeledPoint is a Point annotated for presentation.
type LabeledPoint struct {
	Point
	Severity Severity  `json:"severity"`
	Band     ColorBand `json:"band"`
	Color    RGB       `json:"color"`
}

// Result is the render-ready output for one accepted Snapshot.
type Result struct {
	SessionID  string         `json:"session_id"`
	ReceivedAt time.Time      `json:"received_at"`
	Averages   Averages       `json:"averages"`
	Counts     Counts         `json:"counts"`
	Points     []LabeledPoint `json:"points"`

	Snapshot Snapshot `json:"-"`
}

// BuildResult aggregates, classifies and labels s.
func BuildResult(sessionID string, s Snapshot, thresholds ThresholdSet) Result {
	labeled := make([]LabeledPoint, len(s.Points))
	for i, p := range s.Points {
		band := BandFor(p.Temperature)
		labeled[i] = LabeledPoint{
			Point:    p,
			Severity: thresholds.Label(p),
			Band:     band,
			Color:    band.Color(),
		}
	}

	return Result{
		SessionID:  sessionID,
		ReceivedAt: s.ReceivedAt,
		Averages:   Aggregate(s),
		Counts:     Classify(s, thresholds),
		Points:     labeled,
		Snapshot:   s,
	}
}
