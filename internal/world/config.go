package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"streamworld/internal/physics"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid world config")

// Config is the JSON world configuration.
type Config struct {
	ChunkSize          float32        `json:"chunk_size"`
	WindowWidth        int32          `json:"window_width"`
	WindowHeight       int32          `json:"window_height"`
	TickRate           int            `json:"tick_rate"`
	MaxTicksPerAdvance int            `json:"max_ticks_per_advance"`
	DeathWindow        float32        `json:"death_window"`
	Seed               uint32         `json:"seed"`
	Physics            physics.Config `json:"physics"`
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:          16,
		WindowWidth:        8,
		WindowHeight:       8,
		TickRate:           60,
		MaxTicksPerAdvance: 5,
		DeathWindow:        1.0,
		Physics:            physics.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidConfig)
	case c.WindowWidth <= 0 || c.WindowHeight <= 0:
		return fmt.Errorf("%w: window must be at least 1x1", ErrInvalidConfig)
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalidConfig)
	case c.MaxTicksPerAdvance <= 0:
		return fmt.Errorf("%w: max_ticks_per_advance must be positive", ErrInvalidConfig)
	case c.DeathWindow < 0:
		return fmt.Errorf("%w: death_window must not be negative", ErrInvalidConfig)
	}
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("%w: physics: %v", ErrInvalidConfig, err)
	}
	return nil
}

// TickDuration is the fixed logical step.
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Dt is the fixed logical step in seconds.
func (c Config) Dt() float32 {
	return 1 / float32(c.TickRate)
}

// LoadConfig reads a config file over the defaults. A missing file is not
// an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as indented JSON.
func SaveConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
