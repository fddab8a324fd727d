package domain

// Severity is the status bucket of a point. Values are ordered OK < WARNING < CRITICAL.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityWarning:
		return "WARNING"
	default:
		return "OK"
	}
}

// MarshalText renders the severity label.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Cutoff is the pair of inclusive lower bounds for one field.
type Cutoff struct {
	Critical float64 `json:"critical"`
	Warning  float64 `json:"warning"`
}

// ThresholdSet holds one Cutoff per field. It is configured once at startup
// and never mutated.
type ThresholdSet struct {
	Temperature Cutoff `json:"temperature"`
	UVIndex     Cutoff `json:"uv"`
	Humidity    Cutoff `json:"humidity"`
	Pressure    Cutoff `json:"pressure"`
	AirQuality  Cutoff `json:"airQuality"`
}

// DefaultThresholds are the cutoffs used when no thresholds file is configured.
// They sit far above any generator range so a fresh deployment reports OK
// until real cutoffs are supplied.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		Temperature: Cutoff{Critical: 1000, Warning: 1000},
		UVIndex:     Cutoff{Critical: 600, Warning: 400},
		Humidity:    Cutoff{Critical: 9000, Warning: 7000},
		Pressure:    Cutoff{Critical: 120000, Warning: 110000},
		AirQuality:  Cutoff{Critical: 2000, Warning: 1500},
	}
}

// Cutoff returns the cutoff pair for f.
func (t ThresholdSet) Cutoff(f Field) Cutoff {
	switch f {
	case FieldTemperature:
		return t.Temperature
	case FieldUVIndex:
		return t.UVIndex
	case FieldHumidity:
		return t.Humidity
	case FieldPressure:
		return t.Pressure
	case FieldAirQuality:
		return t.AirQuality
	default:
		return Cutoff{}
	}
}

// Label classifies a single point. A critical hit on any field wins over
// warnings on the others.
func (t ThresholdSet) Label(p Point) Severity {
	for _, f := range Fields {
		if p.Value(f) >= t.Cutoff(f).Critical {
			return SeverityCritical
		}
	}
	for _, f := range Fields {
		if p.Value(f) >= t.Cutoff(f).Warning {
			return SeverityWarning
		}
	}
	return SeverityOK
}

// Counts tallies points per severity bucket.
type Counts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	OK       int `json:"ok"`
}

// Total is the number of classified points.
func (c Counts) Total() int { return c.Critical + c.Warning + c.OK }

// Classify labels every point in s and tallies the buckets.
func Classify(s Snapshot, t ThresholdSet) Counts {
	var c Counts
	for _, p := range s.Points {
		switch t.Label(p) {
		case SeverityCritical:
			c.Critical++
		case SeverityWarning:
			c.Warning++
		default:
			c.OK++
		}
	}
	return c
}
