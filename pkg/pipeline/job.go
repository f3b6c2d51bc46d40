package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/router"
	"github.com/matzehuels/macroroute/pkg/tech"
)

// Job is one routing run over a macro, usually loaded from TOML:
//
//	name = "sram_16x8"
//	io_pins = ["clk0", "addr0[0]", "dout0[0]"]
//	connect_io = true
//
//	[bbox]
//	ll = { x = 0.0, y = 0.0 }
//	ur = { x = 120.0, y = 90.0 }
//
//	[tech]
//	structure_height = 70.0
//
//	[[pins]]
//	name = "clk0"
//	layer = "m3"
//	rect = { ll = { x = 1.0, y = 40.0 }, ur = { x = 1.2, y = 40.2 } }
//
//	[[supply]]
//	net = "vdd"
//	ring = true
//
//	[[moat]]
//	net = "vdd"
//	pins = ["moat_vdd0"]
type Job struct {
	Name string    `toml:"name" json:"name,omitempty"`
	BBox geom.Rect `toml:"bbox" json:"bbox"`

	Tech tech.Config `toml:"tech" json:"tech"`

	// Pins is the initial content of the layout.
	Pins []geom.Shape `toml:"pins" json:"pins"`

	// IOPins are brought to the perimeter; ConnectIO also wires them.
	IOPins    []string `toml:"io_pins" json:"io_pins,omitempty"`
	ConnectIO bool     `toml:"connect_io" json:"connect_io,omitempty"`

	Supply []router.SupplyNet `toml:"supply" json:"supply,omitempty"`
	Moat   []MoatGroup        `toml:"moat" json:"moat,omitempty"`
}

// MoatGroup lists moat pins connected to the ring of one net.
type MoatGroup struct {
	Net  string   `toml:"net" json:"net"`
	Pins []string `toml:"pins" json:"pins"`
}

// DecodeJob parses TOML text into a Job, applies defaults and validates it.
func DecodeJob(data string) (Job, error) {
	var j Job
	if _, err := toml.Decode(data, &j); err != nil {
		return Job{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode job")
	}
	if err := j.ValidateAndSetDefaults(); err != nil {
		return Job{}, err
	}
	return j, nil
}

// LoadJob reads a TOML job file. A job without a name is named after the file.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	j, err := DecodeJob(string(data))
	if err != nil {
		return Job{}, errors.Wrap(errors.GetCode(err), err, "load %s", path)
	}
	if j.Name == "" {
		j.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return j, nil
}

// SetDefaults fills zero fields with defaults.
func (j *Job) SetDefaults() {
	j.Tech.SetDefaults()
}

// ValidateAndSetDefaults applies defaults and checks the job. It is
// idempotent.
func (j *Job) ValidateAndSetDefaults() error {
	j.SetDefaults()
	return j.Validate()
}

// Validate checks the job after defaults have been applied.
func (j *Job) Validate() error {
	if err := errors.ValidateBoundingBox(j.BBox.LL.X, j.BBox.LL.Y, j.BBox.UR.X, j.BBox.UR.Y); err != nil {
		return err
	}
	if err := j.Tech.Validate(); err != nil {
		return err
	}
	if len(j.Pins) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "job has no pins")
	}

	names := make(map[string]bool, len(j.Pins))
	for _, p := range j.Pins {
		if err := errors.ValidatePinName(p.Name); err != nil {
			return err
		}
		if err := errors.ValidateLayerName(p.Layer); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPin, err, "pin %s", p.Name)
		}
		names[p.Name] = true
	}
	for _, name := range j.IOPins {
		if !names[name] {
			return errors.New(errors.ErrCodePinNotFound, "io pin %q is not in pins", name)
		}
	}
	if j.ConnectIO && len(j.IOPins) > 0 && j.Tech.StructureHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "connect_io needs tech.structure_height for the top jog channel")
	}

	rings := make(map[string]bool, len(j.Supply))
	for _, n := range j.Supply {
		if n.Net == "" {
			return errors.New(errors.ErrCodeInvalidInput, "supply entry has no net")
		}
		if n.MaxRingDistance < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "max_ring_distance of %s cannot be negative", n.Net)
		}
		if n.Taps && !n.Ring {
			return errors.New(errors.ErrCodeInvalidConfig, "supply %s uses taps without a ring", n.Net)
		}
		rings[n.Net] = rings[n.Net] || n.Ring
	}
	for _, m := range j.Moat {
		if !rings[m.Net] {
			return errors.New(errors.ErrCodeInvalidConfig, "moat pins of %s need a supply entry with ring = true", m.Net)
		}
		for _, name := range m.Pins {
			if !names[name] {
				return errors.New(errors.ErrCodePinNotFound, "moat pin %q is not in pins", name)
			}
		}
	}
	return nil
}

// Box returns the validated bounding box of the job.
func (j *Job) Box() (geom.BoundingBox, error) {
	return geom.NewBoundingBox(j.BBox.LL, j.BBox.UR)
}
