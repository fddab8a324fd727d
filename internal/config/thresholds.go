package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/domain"
)

// thresholdsFile is the on-disk layout of a thresholds file:
//
//	temperature: {critical: 80, warning: 65}
//	uv:          {critical: 8,  warning: 6}
//	humidity:    {critical: 90, warning: 80}
//	pressure:    {critical: 1040, warning: 1020}
//	airQuality:  {critical: 150, warning: 100}
type thresholdsFile struct {
	Temperature *cutoff `yaml:"temperature" validate:"required"`
	UV          *cutoff `yaml:"uv" validate:"required"`
	Humidity    *cutoff `yaml:"humidity" validate:"required"`
	Pressure    *cutoff `yaml:"pressure" validate:"required"`
	AirQuality  *cutoff `yaml:"airQuality" validate:"required"`
}

type cutoff struct {
	Critical *float64 `yaml:"critical" validate:"required"`
	Warning  *float64 `yaml:"warning" validate:"required"`
}

// LoadThresholds returns the built-in defaults when path is empty, otherwise
// the cutoffs read from the YAML file at path. Every field needs both cutoffs
// and warning may not exceed critical.
func LoadThresholds(path string) (domain.ThresholdSet, error) {
	if path == "" {
		return domain.DefaultThresholds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ThresholdSet{}, fmt.Errorf("read thresholds file: %w", err)
	}
	return ParseThresholds(data)
}

// ParseThresholds decodes and validates thresholds YAML.
func ParseThresholds(data []byte) (domain.ThresholdSet, error) {
	var f thresholdsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return domain.ThresholdSet{}, fmt.Errorf("parse thresholds: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(&f); err != nil {
		return domain.ThresholdSet{}, fmt.Errorf("invalid thresholds: %w", err)
	}

	set := domain.ThresholdSet{
		Temperature: f.Temperature.toDomain(),
		UVIndex:     f.UV.toDomain(),
		Humidity:    f.Humidity.toDomain(),
		Pressure:    f.Pressure.toDomain(),
		AirQuality:  f.AirQuality.toDomain(),
	}

	var errs []error
	for _, field := range domain.Fields {
		c := set.Cutoff(field)
		if c.Warning > c.Critical {
			errs = append(errs, fmt.Errorf("%s: warning %g exceeds critical %g", field, c.Warning, c.Critical))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return domain.ThresholdSet{}, fmt.Errorf("invalid thresholds: %w", err)
	}

	return set, nil
}

func (c *cutoff) toDomain() domain.Cutoff {
	return domain.Cutoff{Critical: *c.Critical, Warning: *c.Warning}
}
