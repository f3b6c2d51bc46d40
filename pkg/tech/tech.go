// Package tech holds the technology and session parameters shared by the
// placement, planning, lowering and supply packages.
//
// A Config is usually decoded from TOML:
//
//	[tech]
//	horizontal_layer = "m3"
//	vertical_layer   = "m4"
//	track_wire       = 0.14
//	track_space      = 0.14
//	structure_height = 120.0
//
// Zero fields are filled by SetDefaults; Validate rejects inconsistent values.
package tech

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/macroroute/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultHorizontalLayer = "m3"
	DefaultVerticalLayer   = "m4"

	DefaultTrackWire  = 0.14
	DefaultTrackSpace = 0.14

	// DefaultBoundaryOffset pulls perimeter placeholders back toward the macro so
	// they do not overflow the boundary.
	DefaultBoundaryOffset = 0.95 + 0.19

	// DefaultPitchBase is the constant part of the minimum pitch between
	// placeholders on one edge (pitch = base + 4×half_wire).
	DefaultPitchBase = 0.4

	DefaultProbeStep     = 0.1
	DefaultMaxProbeSteps = 20000

	// DefaultViaClearance is the minimum displacement a data-output placeholder
	// keeps from its source once it has been pushed off its nominal position.
	DefaultViaClearance = 0.6

	DefaultTopChannelClearance    = 3.0
	DefaultBottomChannelClearance = 21.0
	DefaultChannelNudge           = 0.5

	DefaultRingVias = 3
	DefaultRingTaps = 4
)

// Data-output edge rules.
const (
	// DataOutParity sends even bits to the top edge and odd bits to the bottom.
	DataOutParity = "parity"
	// DataOutPort sends port 0 outputs to the bottom edge and port 1 to the top.
	DataOutPort = "port"
)

// =============================================================================
// Config
// =============================================================================

// Config carries the technology constants of one routing session.
type Config struct {
	// Routing layers. Horizontal wires use HorizontalLayer, vertical wires
	// VerticalLayer; via stacks join the two.
	HorizontalLayer string `toml:"horizontal_layer" json:"horizontal_layer"`
	VerticalLayer   string `toml:"vertical_layer" json:"vertical_layer"`

	TrackWire  float64 `toml:"track_wire" json:"track_wire"`
	TrackSpace float64 `toml:"track_space" json:"track_space"`
	HalfWire   float64 `toml:"half_wire" json:"half_wire"` // default: TrackWire / 2

	BoundaryOffset float64 `toml:"boundary_offset" json:"boundary_offset"`
	PitchBase      float64 `toml:"pitch_base" json:"pitch_base"`
	ProbeStep      float64 `toml:"probe_step" json:"probe_step"`
	MaxProbeSteps  int     `toml:"max_probe_steps" json:"max_probe_steps"`
	ViaClearance   float64 `toml:"via_clearance" json:"via_clearance"`

	// StructureHeight is the height of the macro's core block; the top jog
	// channel sits TopChannelClearance above it.
	StructureHeight        float64 `toml:"structure_height" json:"structure_height"`
	TopChannelClearance    float64 `toml:"top_channel_clearance" json:"top_channel_clearance"`
	BottomChannelClearance float64 `toml:"bottom_channel_clearance" json:"bottom_channel_clearance"`
	ChannelNudge           float64 `toml:"channel_nudge" json:"channel_nudge"`

	RingVias int `toml:"ring_vias" json:"ring_vias"`
	RingTaps int `toml:"ring_taps" json:"ring_taps"`

	DataOutEdges string `toml:"data_out_edges" json:"data_out_edges"`

	// StrictRoles fails a placement pass that contains pins matching no role
	// instead of reporting them as unclassified.
	StrictRoles bool `toml:"strict_roles" json:"strict_roles,omitempty"`
}

// Default returns a Config with every field at its default.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields with defaults.
func (c *Config) SetDefaults() {
	if c.HorizontalLayer == "" {
		c.HorizontalLayer = DefaultHorizontalLayer
	}
	if c.VerticalLayer == "" {
		c.VerticalLayer = DefaultVerticalLayer
	}
	if c.TrackWire == 0 {
		c.TrackWire = DefaultTrackWire
	}
	if c.TrackSpace == 0 {
		c.TrackSpace = DefaultTrackSpace
	}
	if c.HalfWire == 0 {
		c.HalfWire = c.TrackWire / 2
	}
	if c.BoundaryOffset == 0 {
		c.BoundaryOffset = DefaultBoundaryOffset
	}
	if c.PitchBase == 0 {
		c.PitchBase = DefaultPitchBase
	}
	if c.ProbeStep == 0 {
		c.ProbeStep = DefaultProbeStep
	}
	if c.MaxProbeSteps == 0 {
		c.MaxProbeSteps = DefaultMaxProbeSteps
	}
	if c.ViaClearance == 0 {
		c.ViaClearance = DefaultViaClearance
	}
	if c.TopChannelClearance == 0 {
		c.TopChannelClearance = DefaultTopChannelClearance
	}
	if c.BottomChannelClearance == 0 {
		c.BottomChannelClearance = DefaultBottomChannelClearance
	}
	if c.ChannelNudge == 0 {
		c.ChannelNudge = DefaultChannelNudge
	}
	if c.RingVias == 0 {
		c.RingVias = DefaultRingVias
	}
	if c.RingTaps == 0 {
		c.RingTaps = DefaultRingTaps
	}
	if c.DataOutEdges == "" {
		c.DataOutEdges = DataOutParity
	}
}

// Validate checks the config after defaults have been applied.
func (c *Config) Validate() error {
	if err := errors.ValidateLayerName(c.HorizontalLayer); err != nil {
		return err
	}
	if err := errors.ValidateLayerName(c.VerticalLayer); err != nil {
		return err
	}
	if c.HorizontalLayer == c.VerticalLayer {
		return errors.New(errors.ErrCodeInvalidConfig, "horizontal and vertical layers must differ (both %q)", c.HorizontalLayer)
	}
	for name, v := range map[string]float64{
		"track_wire":  c.TrackWire,
		"track_space": c.TrackSpace,
		"half_wire":   c.HalfWire,
		"probe_step":  c.ProbeStep,
	} {
		if err := errors.ValidatePositive(name, v); err != nil {
			return err
		}
	}
	if c.MaxProbeSteps < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_probe_steps must be at least 1")
	}
	if c.RingVias < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "ring_vias must be at least 1")
	}
	if c.RingTaps < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "ring_taps cannot be negative")
	}
	switch c.DataOutEdges {
	case DataOutParity, DataOutPort:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid data_out_edges: %q (must be one of: parity, port)", c.DataOutEdges)
	}
	return nil
}

// MinPitch is the minimum along-edge spacing between placeholders on one edge.
func (c *Config) MinPitch() float64 { return c.PitchBase + 4*c.HalfWire }

// Clearance is how far outside the perimeter a placeholder center sits.
func (c *Config) Clearance() float64 { return 2*c.TrackWire - c.BoundaryOffset }

// TrackWidth is one routing track: wire plus spacing.
func (c *Config) TrackWidth() float64 { return c.TrackWire + c.TrackSpace }

// RingThickness is the width of one ring side holding RingVias via columns.
func (c *Config) RingThickness() float64 {
	return c.TrackWire*float64(c.RingVias) + c.TrackSpace*float64(c.RingVias-1)
}

// Layer returns the layer used for wiring in the given direction.
func (c *Config) Layer(vertical bool) string {
	if vertical {
		return c.VerticalLayer
	}
	return c.HorizontalLayer
}

// =============================================================================
// Loading
// =============================================================================

// Decode parses TOML text into a Config, applies defaults and validates it.
func Decode(data string) (Config, error) {
	var c Config
	if _, err := toml.Decode(data, &c); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode tech config")
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads a TOML tech file from disk.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Decode(string(data))
}
