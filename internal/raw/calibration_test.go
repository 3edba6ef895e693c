package raw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalibrationForwardInverse(t *testing.T) {
	tests := []struct {
		name string
		cal  Calibration
		bin  float64
	}{
		{"identity", Calibration{Kind: CalibIdentity}, 100},
		{"linear", Calibration{Kind: CalibLinear, Coeffs: []float64{10, 0.5}}, 50},
		{"reciprocal", Calibration{Kind: CalibReciprocal, Coeffs: []float64{1e6, -10}}, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mz := tt.cal.Forward(tt.bin)
			gotBin := tt.cal.Inverse(mz)
			assert.InDeltaf(t, tt.bin, gotBin, 1e-6, "inverse(forward(bin)) should recover bin for %s", tt.name)
		})
	}
}

func TestCalibrationQuadraticBinarySearchInverse(t *testing.T) {
	cal := Calibration{Kind: CalibQuadratic, Coeffs: []float64{0, 1, 0.0001}}
	bin := 500.0
	mz := cal.Forward(bin)
	gotBin := cal.Inverse(mz)
	assert.InDelta(t, bin, gotBin, 1e-3)
}

func TestCalibrationMonotonic(t *testing.T) {
	cal := Calibration{Kind: CalibLinear, Coeffs: []float64{100, 1}}
	prev := cal.Forward(0)
	for bin := 1.0; bin <= 10; bin++ {
		cur := cal.Forward(bin)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}
