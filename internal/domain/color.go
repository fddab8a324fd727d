package domain

// ColorBand is the temperature band a map marker is drawn in.
type ColorBand string

const (
	BandCool     ColorBand = "cool"
	BandModerate ColorBand = "moderate"
	BandHot      ColorBand = "hot"
)

// RGB is a display color hint.
type RGB [3]uint8

// BandFor maps a temperature to its band: below 50 cool, below 60 moderate,
// anything else (NaN included) hot.
func BandFor(temperature float64) ColorBand {
	switch {
	case temperature < 50:
		return BandCool
	case temperature < 60:
		return BandModerate
	default:
		return BandHot
	}
}

// Color returns the marker color for the band.
func (b ColorBand) Color() RGB {
	switch b {
	case BandCool:
		return RGB{173, 216, 230}
	case BandModerate:
		return RGB{144, 238, 144}
	default:
		return RGB{255, 182, 193}
	}
}
