package physics

import "errors"

// Config holds the tunables of the resolver.
type Config struct {
	// Gravity is the downward (-Z) acceleration in units/s².
	Gravity float32 `json:"gravity"`
	// Epsilon is the time tolerance subtracted from impact times.
	Epsilon float32 `json:"epsilon"`
	// MaxCollisions caps the contacts resolved per body per tick.
	MaxCollisions int `json:"max_collisions"`
	// BisectionSteps is the refinement count for edge contacts.
	BisectionSteps int `json:"bisection_steps"`
	// MaxSpeedScale multiplies the 2*radius/dt speed limit.
	MaxSpeedScale float32 `json:"max_speed_scale"`
	// StartOverlapTolerance is the depth a body may sit inside a face at
	// tick start before it counts as penetrating.
	StartOverlapTolerance float32 `json:"start_overlap_tolerance"`
	// EdgeOverlapScale shrinks the cross-section radius for the tick-start
	// edge penetration test.
	EdgeOverlapScale float32 `json:"edge_overlap_scale"`
	LogClamps        bool    `json:"log_clamps"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:               9.8,
		Epsilon:               1e-4,
		MaxCollisions:         8,
		BisectionSteps:        9,
		MaxSpeedScale:         1,
		StartOverlapTolerance: 1e-3,
		EdgeOverlapScale:      0.5,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.Epsilon <= 0:
		return errors.New("epsilon must be positive")
	case c.MaxCollisions <= 0:
		return errors.New("max_collisions must be positive")
	case c.BisectionSteps < 0:
		return errors.New("bisection_steps must not be negative")
	case c.MaxSpeedScale <= 0:
		return errors.New("max_speed_scale must be positive")
	case c.StartOverlapTolerance < 0:
		return errors.New("start_overlap_tolerance must not be negative")
	case c.EdgeOverlapScale <= 0 || c.EdgeOverlapScale > 1:
		return errors.New("edge_overlap_scale must be in (0, 1]")
	}
	return nil
}
