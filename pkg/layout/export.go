package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/matzehuels/macroroute/pkg/geom"
)

// Export is the serialization format of a recorded layout.
type Export struct {
	Pins  []geom.Shape `json:"pins,omitempty" bson:"pins,omitempty"`
	Paths []Path       `json:"paths,omitempty" bson:"paths,omitempty"`
	Vias  []Via        `json:"vias,omitempty" bson:"vias,omitempty"`
	Rects []Rect       `json:"rects,omitempty" bson:"rects,omitempty"`
}

// Export snapshots the recorded layout.
func (m *Memory) Export() Export {
	return Export{
		Pins:  slices.Clone(m.pins),
		Paths: slices.Clone(m.paths),
		Vias:  slices.Clone(m.vias),
		Rects: slices.Clone(m.rects),
	}
}

// Import rebuilds a Memory layout from an export.
func Import(e Export) *Memory {
	return &Memory{
		pins:  slices.Clone(e.Pins),
		paths: slices.Clone(e.Paths),
		vias:  slices.Clone(e.Vias),
		rects: slices.Clone(e.Rects),
	}
}

// Marshal serializes an Export to pretty-printed JSON bytes.
func Marshal(e Export) ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// Unmarshal deserializes JSON bytes into an Export.
func Unmarshal(data []byte) (Export, error) {
	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return Export{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	return e, nil
}

// WriteFile writes an Export to a JSON file.
func WriteFile(e Export, path string) error {
	data, err := Marshal(e)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads an Export from a JSON file.
func ReadFile(path string) (Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Export{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
