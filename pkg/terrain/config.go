package terrain

import "github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"

// Config describes how a HeightField is generated.
type Config struct {
	PlaneSize   float64 `json:"planeSize" toml:"planeSize"`     // world space edge length
	Resolution  int     `json:"resolution" toml:"resolution"`   // subdivisions per edge
	Frequency   float64 `json:"frequency" toml:"frequency"`     // amount of peaks
	HeightScale float64 `json:"heightScale" toml:"heightScale"` // height of peaks
	Seed        int64   `json:"seed" toml:"seed"`
	// UVScale is how many times the texture repeats over the plane.
	UVScale float64 `json:"uvScale" toml:"uvScale"`

	// Detail octaves added on top of the base noise. Zero amplitude disables them.
	DetailAmplitude float64 `json:"detailAmplitude" toml:"detailAmplitude"`
	DetailAlpha     float64 `json:"detailAlpha" toml:"detailAlpha"`
	DetailBeta      float64 `json:"detailBeta" toml:"detailBeta"`
	DetailOctaves   int32   `json:"detailOctaves" toml:"detailOctaves"`

	// Offset is applied once with Translate right after generation.
	Offset geometry.Vector3D `json:"offset" toml:"offset"`
}

// DefaultConfig returns the terrain used by the flock viewer.
func DefaultConfig() Config {
	return Config{
		PlaneSize:       20,
		Resolution:      100,
		Frequency:       0.1,
		HeightScale:     10,
		Seed:            1,
		UVScale:         1,
		DetailAmplitude: 0,
		DetailAlpha:     2,
		DetailBeta:      2,
		DetailOctaves:   3,
		Offset:          geometry.Vector3D{Y: -12},
	}
}
