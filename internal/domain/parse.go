package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// DataPrefix marks a data-bearing feed line.
const DataPrefix = "data:"

// rawPoint is the wire shape of one feed record. Pointer fields distinguish a
// missing reading from a zero reading.
type rawPoint struct {
	Lat         *float64 `json:"lat" validate:"required"`
	Lon         *float64 `json:"lon" validate:"required"`
	Temperature *float64 `json:"temperature" validate:"required"`
	UV          *float64 `json:"uv" validate:"required"`
	Humidity    *float64 `json:"humidity" validate:"required"`
	Pressure    *float64 `json:"pressure" validate:"required"`
	AirQuality  *float64 `json:"airQuality" validate:"required"`
}

func (r rawPoint) point() Point {
	return Point{
		Latitude:    *r.Lat,
		Longitude:   *r.Lon,
		Temperature: *r.Temperature,
		UVIndex:     *r.UV,
		Humidity:    *r.Humidity,
		Pressure:    *r.Pressure,
		AirQuality:  *r.AirQuality,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseLine converts one feed line into a Snapshot.
//
// Lines that do not start with the data prefix are not snapshots: ParseLine
// returns ok=false and a nil error. Leading whitespace is not stripped. Data
// lines that cannot be decoded fail with ErrDecode; decodable payloads that
// are not an array of complete records fail with ErrMalformedSnapshot.
func ParseLine(line string) (snap Snapshot, ok bool, err error) {
	payload, found := strings.CutPrefix(strings.TrimRight(line, " \t\r\n"), DataPrefix)
	if !found {
		return Snapshot{}, false, nil
	}
	if !utf8.ValidString(payload) {
		return Snapshot{}, false, fmt.Errorf("%w: line is not valid UTF-8", ErrDecode)
	}

	points, err := parsePayload([]byte(strings.TrimSpace(payload)))
	if err != nil {
		return Snapshot{}, false, err
	}

	return Snapshot{Points: points, ReceivedAt: Now()}, true, nil
}

func parsePayload(payload []byte) ([]Point, error) {
	if bytes.Equal(payload, []byte("null")) {
		return nil, fmt.Errorf("%w: payload is null", ErrMalformedSnapshot)
	}

	var records []*rawPoint
	if err := json.Unmarshal(payload, &records); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}

	points := make([]Point, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("%w: record %d is null", ErrMalformedSnapshot, i)
		}
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %s", ErrMalformedSnapshot, i, describeValidation(err))
		}
		points = append(points, rec.point())
	}
	return points, nil
}

// describeValidation lists the missing fields of a failed record.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return "missing " + strings.Join(missing, ", ")
}
