package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// Mean is a per-field average that may be absent.
type Mean struct {
	Value float64
	Valid bool // false means "no data"
}

// NoData is the Mean of an empty snapshot.
var NoData = Mean{}

// IsNaN reports whether the mean was poisoned by a NaN reading.
func (m Mean) IsNaN() bool { return m.Valid && math.IsNaN(m.Value) }

// MarshalJSON renders no data as null. NaN and infinities have no JSON number
// form and are written as strings.
func (m Mean) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return json.Marshal(strconv.FormatFloat(m.Value, 'f', -1, 64))
	}
	return json.Marshal(m.Value)
}

// Averages holds one Mean per field.
type Averages struct {
	Temperature Mean `json:"temperature"`
	UVIndex     Mean `json:"uv"`
	Humidity    Mean `json:"humidity"`
	Pressure    Mean `json:"pressure"`
	AirQuality  Mean `json:"airQuality"`
}

// Get returns the Mean for f.
func (a Averages) Get(f Field) Mean {
	switch f {
	case FieldTemperature:
		return a.Temperature
	case FieldUVIndex:
		return a.UVIndex
	case FieldHumidity:
		return a.Humidity
	case FieldPressure:
		return a.Pressure
	case FieldAirQuality:
		return a.AirQuality
	default:
		return NoData
	}
}

// Aggregate computes the unweighted mean of every field across s.
// NaN readings propagate into the mean of their field.
func Aggregate(s Snapshot) Averages {
	n := len(s.Points)
	if n == 0 {
		return Averages{}
	}

	var sum [5]float64
	for _, p := range s.Points {
		for i, f := range Fields {
			sum[i] += p.Value(f)
		}
	}

	mean := func(i int) Mean {
		return Mean{Value: sum[i] / float64(n), Valid: true}
	}
	return Averages{
		Temperature: mean(0),
		UVIndex:     mean(1),
		Humidity:    mean(2),
		Pressure:    mean(3),
		AirQuality:  mean(4),
	}
}
