package placement

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/macroroute/pkg/edge"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/tech"
)

// Role is the function of an escaping pin, derived from its name.
type Role int

const (
	RoleUnclassified Role = iota
	RoleClock
	RoleAddr0
	RoleAddr1
	RoleDataOut0
	RoleDataOut1
	RoleDataIn
	RoleWriteMask
	RoleSpareWriteEnable
	RoleWriteEnableBar
	RoleChipSelectBar
)

var roleNames = map[Role]string{
	RoleUnclassified:     "unclassified",
	RoleClock:            "clock",
	RoleAddr0:            "addr0",
	RoleAddr1:            "addr1",
	RoleDataOut0:         "dout0",
	RoleDataOut1:         "dout1",
	RoleDataIn:           "din",
	RoleWriteMask:        "wmask",
	RoleSpareWriteEnable: "spare_wen",
	RoleWriteEnableBar:   "web",
	RoleChipSelectBar:    "csb",
}

func (r Role) String() string { return roleNames[r] }

// IsDataOut reports whether the role is one of the data-output buses.
func (r Role) IsDataOut() bool { return r == RoleDataOut0 || r == RoleDataOut1 }

// rolePrefixes is checked in order; the first matching prefix wins.
var rolePrefixes = []struct {
	prefix string
	role   Role
}{
	{"clk", RoleClock},
	{"addr0", RoleAddr0},
	{"addr1", RoleAddr1},
	{"dout0", RoleDataOut0},
	{"dout1", RoleDataOut1},
	{"din", RoleDataIn},
	{"wmask", RoleWriteMask},
	{"spare_wen", RoleSpareWriteEnable},
	{"web", RoleWriteEnableBar},
	{"csb", RoleChipSelectBar},
}

// ClassifyRole maps a pin name to its role.
func ClassifyRole(name string) Role {
	for _, rp := range rolePrefixes {
		if strings.HasPrefix(name, rp.prefix) {
			return rp.role
		}
	}
	return RoleUnclassified
}

// Rule decides the escape edge of one role.
type Rule struct {
	// Edge maps the classifier's natural edge to the escape edge.
	// Nil for data-output roles, whose edge does not depend on geometry.
	Edge func(natural edge.Edge) edge.Edge
	// Deferred roles are placed in a second pass after all other pins.
	Deferred bool
}

func keep(natural edge.Edge) edge.Edge { return natural }

// Rules is the role → edge rule table.
var Rules = map[Role]Rule{
	RoleClock: {Edge: func(n edge.Edge) edge.Edge {
		if n == edge.Left || n == edge.Bottom {
			return edge.Bottom
		}
		return edge.Top
	}},
	RoleAddr0: {Edge: func(n edge.Edge) edge.Edge {
		if n == edge.Bottom {
			return edge.Bottom
		}
		return edge.Left
	}},
	RoleAddr1: {Edge: func(n edge.Edge) edge.Edge {
		if n == edge.Top {
			return edge.Top
		}
		return edge.Right
	}},
	RoleDataIn:           {Edge: keep},
	RoleWriteMask:        {Edge: keep},
	RoleSpareWriteEnable: {Edge: keep},
	RoleWriteEnableBar:   {Edge: keep},
	RoleChipSelectBar:    {Edge: keep},
	RoleDataOut0:         {Deferred: true},
	RoleDataOut1:         {Deferred: true},
}

var bitIndexRe = regexp.MustCompile(`\[(\d+)\]`)

// BitIndex returns the bus bit of a name such as "dout0[12]".
func BitIndex(name string) (int, bool) {
	m := bitIndexRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DataOutEdge returns the escape edge of a data-output pin and whether its bit
// is even. With the parity rule even bits leave through the top edge and odd
// bits through the bottom; with the port rule dout0 uses the bottom edge and
// dout1 the top.
func DataOutEdge(role Role, name, mode string) (edge.Edge, bool, error) {
	bit, ok := BitIndex(name)
	if !ok {
		return 0, false, errors.New(errors.ErrCodeInvalidPin, "data-output pin %q has no bit index", name)
	}
	even := bit%2 == 0
	if mode == tech.DataOutPort {
		if role == RoleDataOut0 {
			return edge.Bottom, even, nil
		}
		return edge.Top, even, nil
	}
	if even {
		return edge.Top, even, nil
	}
	return edge.Bottom, even, nil
}
