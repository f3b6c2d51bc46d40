package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidatePinName validates a layout pin name.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 256 characters
func ValidatePinName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPin, "pin name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPin, "pin name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPin, "pin name %q contains invalid characters", name)
		}
	}

	return nil
}

// ValidateBoundingBox checks that (llx, lly)-(urx, ury) describes a non-degenerate
// rectangle with finite coordinates.
func ValidateBoundingBox(llx, lly, urx, ury float64) error {
	for _, v := range []float64{llx, lly, urx, ury} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidBBox, "bounding box has non-finite coordinate")
		}
	}
	if llx >= urx {
		return New(ErrCodeInvalidBBox, "bounding box lower-left x (%g) must be below upper-right x (%g)", llx, urx)
	}
	if lly >= ury {
		return New(ErrCodeInvalidBBox, "bounding box lower-left y (%g) must be below upper-right y (%g)", lly, ury)
	}
	return nil
}

// ValidateLayerName validates a metal layer name.
func ValidateLayerName(layer string) error {
	if strings.TrimSpace(layer) == "" {
		return New(ErrCodeInvalidConfig, "layer name cannot be empty")
	}
	return nil
}

// ValidatePositive checks that a named technology value is strictly positive.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %g", name, v)
	}
	return nil
}
