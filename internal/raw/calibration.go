package raw

import "math"

// CalibrationKind tags the shape of a per-scan-event calibration transform.
// Modeled as a small tagged variant with pure forward/inverse functions
// rather than embedded closures, per §9 ("Calibration transforms").
type CalibrationKind uint16

const (
	CalibIdentity CalibrationKind = iota
	CalibLinear
	CalibQuadratic
	// CalibReciprocal models FTICR/Orbitrap-style m/z = a/(bin-b) transforms,
	// which have a closed-form inverse but no closed-form forward inverse
	// derivative (kept separate from CalibLinear/CalibQuadratic, which are
	// simple polynomials).
	CalibReciprocal
)

// Calibration is the decoded, evaluable calibration attached to a scan
// event: a kind tag plus its numeric coefficients (§3, §6, §9).
type Calibration struct {
	Kind   CalibrationKind
	Coeffs []float64
}

func calibrationFromRecord(preamble Record) Calibration {
	return Calibration{
		Kind:   CalibrationKind(preamble.Uint16("calibration_kind")),
		Coeffs: preamble.Float64Slice("coefficients"),
	}
}

func coeff(c []float64, i int) float64 {
	if i < len(c) {
		return c[i]
	}
	return 0
}

// Forward maps a bin index to an m/z value. Monotonicity is not enforced:
// the result is non-decreasing in bin only when the coefficients make it so
// (CalibReciprocal with a > 0, for example, decreases as bin grows past b).
func (c Calibration) Forward(bin float64) float64 {
	switch c.Kind {
	case CalibIdentity:
		return bin
	case CalibLinear:
		a, b := coeff(c.Coeffs, 0), coeff(c.Coeffs, 1)
		return a + b*bin
	case CalibQuadratic:
		a, b, cc := coeff(c.Coeffs, 0), coeff(c.Coeffs, 1), coeff(c.Coeffs, 2)
		return a + b*bin + cc*bin*bin
	case CalibReciprocal:
		a, b := coeff(c.Coeffs, 0), coeff(c.Coeffs, 1)
		denom := bin - b
		if denom == 0 {
			return math.Inf(1)
		}
		return a / denom
	default:
		return bin
	}
}

// Inverse maps a target m/z to the nearest bin index. Closed-form where the
// kind allows it; binary search fallback otherwise, per §4.5/§9 ("the
// calibration does not provide a closed-form inverse").
func (c Calibration) Inverse(mz float64) float64 {
	switch c.Kind {
	case CalibIdentity:
		return mz
	case CalibLinear:
		a, b := coeff(c.Coeffs, 0), coeff(c.Coeffs, 1)
		if b == 0 {
			return 0
		}
		return (mz - a) / b
	case CalibReciprocal:
		a, b := coeff(c.Coeffs, 0), coeff(c.Coeffs, 1)
		if mz == 0 {
			return b
		}
		return b + a/mz
	default:
		return c.binarySearchInverse(mz)
	}
}

// binarySearchInverse assumes Forward is monotonic over the search window,
// as documented in §4.5/§9.
func (c Calibration) binarySearchInverse(mz float64) float64 {
	lo, hi := 0.0, float64(1<<20)
	if c.Forward(lo) > c.Forward(hi) {
		lo, hi = hi, lo
	}
	for i := 0; i < 64; i++ {
		mid := lo + (hi-lo)/2
		if c.Forward(mid) < mz {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2
}
