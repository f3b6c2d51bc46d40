package errors

import (
	"math"
	"testing"
)

func TestValidatePinName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "clk", false},
		{"valid bus bit", "addr0[3]", false},
		{"valid underscore", "spare_wen0", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"space", "dout0 [1]", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePinName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePinName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPin) {
				t.Errorf("ValidatePinName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPin)
			}
		})
	}
}

func TestValidateBoundingBox(t *testing.T) {
	tests := []struct {
		name               string
		llx, lly, urx, ury float64
		wantErr            bool
	}{
		{"unit square", 0, 0, 1, 1, false},
		{"negative origin", -10, -5, 10, 5, false},
		{"zero width", 0, 0, 0, 10, true},
		{"zero height", 0, 0, 10, 0, true},
		{"inverted", 10, 10, 0, 0, true},
		{"nan", math.NaN(), 0, 10, 10, true},
		{"inf", 0, 0, math.Inf(1), 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBoundingBox(tt.llx, tt.lly, tt.urx, tt.ury)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBoundingBox() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidBBox) {
				t.Errorf("ValidateBoundingBox() code = %v, want %v", GetCode(err), ErrCodeInvalidBBox)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	if err := ValidatePositive("track_wire", 0.14); err != nil {
		t.Errorf("ValidatePositive(0.14) = %v, want nil", err)
	}
	for _, v := range []float64{0, -1, math.NaN()} {
		if err := ValidatePositive("track_wire", v); err == nil {
			t.Errorf("ValidatePositive(%v) = nil, want error", v)
		}
	}
}

func TestValidateLayerName(t *testing.T) {
	if err := ValidateLayerName("m3"); err != nil {
		t.Errorf("ValidateLayerName(m3) = %v", err)
	}
	if err := ValidateLayerName("  "); err == nil {
		t.Error("ValidateLayerName(blank) should fail")
	}
}
