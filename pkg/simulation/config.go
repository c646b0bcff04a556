package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-terrain/pkg/terrain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Params are the flocking knobs. They are read fresh at every step and may be
// changed between steps (the viewer sliders do). Nothing here is validated:
// a negative radius simply means an empty neighbourhood.
type Params struct {
	// Interaction radii and strengths
	AvoidRadius    float64 `json:"avoidRadius" toml:"avoidRadius"`
	AvoidForce     float64 `json:"avoidForce" toml:"avoidForce"`
	AlignRadius    float64 `json:"alignRadius" toml:"alignRadius"`
	AlignForce     float64 `json:"alignForce" toml:"alignForce"`
	CohesionRadius float64 `json:"cohesionRadius" toml:"cohesionRadius"`
	CohesionForce  float64 `json:"cohesionForce" toml:"cohesionForce"`

	// Fixed simulation step, not wall clock time
	DeltaTime float64 `json:"deltaTime" toml:"deltaTime"`

	// Population (read once, when the flock is created)
	BoidNumber  int     `json:"boidNumber" toml:"boidNumber"`
	SpawnExtent float64 `json:"spawnExtent" toml:"spawnExtent"` // half edge of the spawn cube
	Seed        int64   `json:"seed" toml:"seed"`

	// Containment cube
	BoundMin    float64 `json:"boundMin" toml:"boundMin"`
	BoundMax    float64 `json:"boundMax" toml:"boundMax"`
	BounceForce float64 `json:"bounceForce" toml:"bounceForce"`

	// Speed limits and ground contact
	MinSpeed        float64 `json:"minSpeed" toml:"minSpeed"`
	MaxSpeed        float64 `json:"maxSpeed" toml:"maxSpeed"`
	GroundClearance float64 `json:"groundClearance" toml:"groundClearance"`
	GroundDampening float64 `json:"groundDampening" toml:"groundDampening"`

	BoidModelScale geometry.Vector3D `json:"boidModelScale" toml:"boidModelScale"`
}

// DefaultParams returns the values the sliders start from.
func DefaultParams() Params {
	return Params{
		AvoidRadius:     1.2,
		AvoidForce:      2.0,
		AlignRadius:     1.5,
		AlignForce:      0.8,
		CohesionRadius:  2.0,
		CohesionForce:   0.4,
		DeltaTime:       0.05,
		BoidNumber:      200,
		SpawnExtent:     2.0,
		Seed:            1,
		BoundMin:        -8.0,
		BoundMax:        8.0,
		BounceForce:     1.5,
		MinSpeed:        0.2,
		MaxSpeed:        2.0,
		GroundClearance: 0.5,
		GroundDampening: 0.5,
		BoidModelScale:  geometry.Splat(0.2),
	}
}

// Config is the content of a configuration file.
type Config struct {
	Simulation Params         `json:"simulation" toml:"simulation"`
	Terrain    terrain.Config `json:"terrain" toml:"terrain"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Simulation: DefaultParams(),
		Terrain:    terrain.DefaultConfig(),
	}
}

//go:embed config.schema.json
var configSchema string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("config.schema.json", configSchema)
})

// LoadConfig loads a JSON or TOML file (chosen by extension), validates it
// against the embedded schema and overlays it on DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File, TOML is normalised to JSON so one schema serves both
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".json":
	case ".toml":
		var doc map[string]any
		if _, err := toml.Decode(string(b), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
		if b, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("failed to convert config toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}

	// 3. Validate
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
