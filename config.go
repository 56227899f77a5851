package lightpillar

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

// Default option values. These reproduce the stock violet-to-pink pillar.
const (
	DefaultTopColor       = "#5227FF"
	DefaultBottomColor    = "#FF9FFC"
	DefaultIntensity      = 1.0
	DefaultRotationSpeed  = 0.3
	DefaultGlowAmount     = 0.005
	DefaultPillarWidth    = 3.0
	DefaultPillarHeight   = 0.4
	DefaultNoiseIntensity = 0.5
)

// Config holds every recognized effect option. Build one with DefaultConfig
// and override fields, or load it from TOML with LoadConfig. New copies the
// value; the effect never mutates it.
//
// Empty color strings and zero GlowAmount, PillarWidth or PillarHeight are
// replaced with their defaults during validation. Intensity, RotationSpeed
// and NoiseIntensity take zero literally.
type Config struct {
	TopColor       string    `toml:"top_color"`
	BottomColor    string    `toml:"bottom_color"`
	Intensity      float64   `toml:"intensity"`
	RotationSpeed  float64   `toml:"rotation_speed"`
	Interactive    bool      `toml:"interactive"`
	GlowAmount     float64   `toml:"glow_amount"`
	PillarWidth    float64   `toml:"pillar_width"`
	PillarHeight   float64   `toml:"pillar_height"`
	NoiseIntensity float64   `toml:"noise_intensity"`
	PillarRotation float64   `toml:"pillar_rotation"` // degrees
	BlendMode      BlendMode `toml:"blend_mode"`
	FadeIn         float64   `toml:"fade_in"` // seconds of effect time; 0 disables
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		TopColor:       DefaultTopColor,
		BottomColor:    DefaultBottomColor,
		Intensity:      DefaultIntensity,
		RotationSpeed:  DefaultRotationSpeed,
		GlowAmount:     DefaultGlowAmount,
		PillarWidth:    DefaultPillarWidth,
		PillarHeight:   DefaultPillarHeight,
		NoiseIntensity: DefaultNoiseIntensity,
		BlendMode:      BlendNormal,
	}
}

// resolvedConfig is a validated Config with colors parsed.
type resolvedConfig struct {
	Config
	top, bottom Color
}

// Validate checks every field and returns the first problem as a *ConfigError.
func (c Config) Validate() error {
	_, err := c.resolve()
	return err
}

// resolve applies defaults, validates, and parses colors.
func (c Config) resolve() (resolvedConfig, error) {
	if c.TopColor == "" {
		c.TopColor = DefaultTopColor
	}
	if c.BottomColor == "" {
		c.BottomColor = DefaultBottomColor
	}
	if c.GlowAmount == 0 {
		c.GlowAmount = DefaultGlowAmount
	}
	if c.PillarWidth == 0 {
		c.PillarWidth = DefaultPillarWidth
	}
	if c.PillarHeight == 0 {
		c.PillarHeight = DefaultPillarHeight
	}

	checks := []struct {
		field string
		v     float64
		min   float64
		open  bool // v must be > min rather than >= min
	}{
		{"intensity", c.Intensity, 0, false},
		{"rotation_speed", c.RotationSpeed, 0, false},
		{"glow_amount", c.GlowAmount, 0, true},
		{"pillar_width", c.PillarWidth, 0, true},
		{"pillar_height", c.PillarHeight, 0, true},
		{"noise_intensity", c.NoiseIntensity, 0, false},
		{"fade_in", c.FadeIn, 0, false},
	}
	for _, ck := range checks {
		if !finite(ck.v) {
			return resolvedConfig{}, &ConfigError{Field: ck.field, Reason: "must be finite"}
		}
		if ck.open && ck.v <= ck.min {
			return resolvedConfig{}, &ConfigError{Field: ck.field, Reason: fmt.Sprintf("must be > %g, got %g", ck.min, ck.v)}
		}
		if !ck.open && ck.v < ck.min {
			return resolvedConfig{}, &ConfigError{Field: ck.field, Reason: fmt.Sprintf("must be >= %g, got %g", ck.min, ck.v)}
		}
	}
	if !finite(c.PillarRotation) {
		return resolvedConfig{}, &ConfigError{Field: "pillar_rotation", Reason: "must be finite"}
	}
	if !c.BlendMode.Valid() {
		return resolvedConfig{}, &ConfigError{Field: "blend_mode", Reason: fmt.Sprintf("unsupported mode %d", uint8(c.BlendMode))}
	}

	top, err := ResolveColor(c.TopColor)
	if err != nil {
		return resolvedConfig{}, &ConfigError{Field: "top_color", Reason: "cannot parse", Err: err}
	}
	bottom, err := ResolveColor(c.BottomColor)
	if err != nil {
		return resolvedConfig{}, &ConfigError{Field: "bottom_color", Reason: "cannot parse", Err: err}
	}
	return resolvedConfig{Config: c, top: top, bottom: bottom}, nil
}

// DecodeConfig reads TOML from r on top of DefaultConfig, so keys absent from
// the document keep their defaults. Unknown keys are rejected.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, &ConfigError{Field: undec[0].String(), Reason: "unknown key"}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a TOML config file. See DecodeConfig.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()
	cfg, err := DecodeConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// EncodeConfig writes cfg as TOML.
func EncodeConfig(w io.Writer, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
