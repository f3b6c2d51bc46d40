package placement

import (
	stderrors "errors"
)

// ProbeMode selects how successive displacements are generated.
type ProbeMode int

const (
	// Forward grows the displacement monotonically along the +axis:
	// s, 2s, 3s, ...
	Forward ProbeMode = iota
	// Alternate swings around the nominal position: +s, -s, +2s, -2s, ...
	Alternate
)

// ErrProbeExhausted is returned by Probe when no free displacement was found
// within the step budget.
var ErrProbeExhausted = stderrors.New("probe exhausted")

// Offset returns the displacement tried at the given attempt (attempt 0 is the
// nominal position).
func (m ProbeMode) Offset(attempt int, step float64) float64 {
	if attempt <= 0 {
		return 0
	}
	if m == Forward {
		return float64(attempt) * step
	}
	k := float64((attempt + 1) / 2)
	if attempt%2 == 1 {
		return k * step
	}
	return -k * step
}

// Probe returns the first displacement d for which free(d) holds, trying the
// nominal position first and then up to maxSteps displaced candidates.
// The second return value is the number of displaced attempts made.
func Probe(mode ProbeMode, step float64, maxSteps int, free func(d float64) bool) (float64, int, error) {
	for attempt := 0; attempt <= maxSteps; attempt++ {
		d := mode.Offset(attempt, step)
		if free(d) {
			return d, attempt, nil
		}
	}
	return 0, maxSteps, ErrProbeExhausted
}
