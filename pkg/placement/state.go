package placement

import (
	"math"

	"github.com/matzehuels/macroroute/pkg/edge"
	"github.com/matzehuels/macroroute/pkg/geom"
)

// Placement is one fake pin placed on the perimeter for a source pin.
type Placement struct {
	Source geom.Shape `json:"source"`
	Fake   geom.Shape `json:"fake"`
	Center geom.Point `json:"center"`
	Edge   edge.Edge  `json:"edge"`
	Role   Role       `json:"role"`
	// Up is the parity flag handed to the planner: true for even
	// data-output bits, false otherwise.
	Up bool `json:"up"`
	// Displacement is how far the fake pin was pushed off its nominal position.
	Displacement float64 `json:"displacement"`
}

// State tracks fake pins placed during one routing pass. Create one per pass
// and hand it to every placement call of that pass.
//
// State is not safe for concurrent use.
type State struct {
	byEdge   [4][]float64
	order    []Placement
	bySource map[string]int
}

// NewState returns an empty placement state.
func NewState() *State {
	return &State{bySource: make(map[string]int)}
}

// Add registers a placement on its edge and in the flat registry.
func (s *State) Add(p Placement) {
	s.byEdge[p.Edge] = append(s.byEdge[p.Edge], p.Edge.Along(p.Center))
	s.bySource[p.Source.Name] = len(s.order)
	s.order = append(s.order, p)
}

// Reserve marks an along-edge coordinate as occupied without registering a
// fake pin. Moat exits use this.
func (s *State) Reserve(e edge.Edge, along float64) {
	s.byEdge[e] = append(s.byEdge[e], along)
}

// Occupied returns the along-edge coordinates taken on e, in placement order.
func (s *State) Occupied(e edge.Edge) []float64 {
	return append([]float64(nil), s.byEdge[e]...)
}

// Conflicts reports whether along is closer than pitch to any coordinate
// already occupied on e.
func (s *State) Conflicts(e edge.Edge, along, pitch float64) bool {
	for _, v := range s.byEdge[e] {
		if math.Abs(v-along) < pitch {
			return true
		}
	}
	return false
}

// Lookup returns the placement made for the named source pin.
func (s *State) Lookup(source string) (Placement, bool) {
	i, ok := s.bySource[source]
	if !ok {
		return Placement{}, false
	}
	return s.order[i], true
}

// OnEdge returns the placements registered on e, in placement order.
func (s *State) OnEdge(e edge.Edge) []Placement {
	var out []Placement
	for _, p := range s.order {
		if p.Edge == e {
			out = append(out, p)
		}
	}
	return out
}

// All returns every placement in placement order.
func (s *State) All() []Placement {
	return append([]Placement(nil), s.order...)
}

// Len returns the number of registered placements.
func (s *State) Len() int { return len(s.order) }
