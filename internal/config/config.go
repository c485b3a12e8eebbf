package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravlab/internal/engine"
)

const (
	DefaultScenario           = "solar"
	DefaultDt                 = 0.08
	DefaultFrames             = 1000
	DefaultG                  = 1.0
	DefaultMinDistance        = 1.0
	DefaultMaxForce           = 1e12
	DefaultMaxSpeed           = 1e6
	DefaultMaxCoord           = 1e6
	DefaultCollisionThreshold = 0.8
	DefaultTrailLength        = 100
)

type Config struct {
	Scenario string  `yaml:"scenario"`
	Seed     int64   `yaml:"seed"`
	Dt       float64 `yaml:"dt"`
	Frames   int     `yaml:"frames"`
	Physics  Physics `yaml:"physics"`
}

type Physics struct {
	G                  float64 `yaml:"g"`
	MinDistance        float64 `yaml:"min_distance"`
	MaxForce           float64 `yaml:"max_force"`
	MaxSpeed           float64 `yaml:"max_speed"`
	MaxCoord           float64 `yaml:"max_coord"`
	CollisionThreshold float64 `yaml:"collision_threshold"`
	TrailLength        int     `yaml:"trail_length"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: DefaultScenario,
		Dt:       DefaultDt,
		Frames:   DefaultFrames,
		Physics: Physics{
			G:                  DefaultG,
			MinDistance:        DefaultMinDistance,
			MaxForce:           DefaultMaxForce,
			MaxSpeed:           DefaultMaxSpeed,
			MaxCoord:           DefaultMaxCoord,
			CollisionThreshold: DefaultCollisionThreshold,
			TrailLength:        DefaultTrailLength,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EngineParams maps the physics section onto engine tuning.
func (c *Config) EngineParams() engine.Params {
	return engine.Params{
		G:                  c.Physics.G,
		MinDistance:        c.Physics.MinDistance,
		MaxForce:           c.Physics.MaxForce,
		MaxSpeed:           c.Physics.MaxSpeed,
		MaxCoord:           c.Physics.MaxCoord,
		CollisionThreshold: c.Physics.CollisionThreshold,
		TrailLength:        c.Physics.TrailLength,
	}
}
