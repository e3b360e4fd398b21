package curve

import (
	"fmt"
	"math"

	"volition/internal/model"
)

// Curve is a validated, immutable response transform. Evaluate clamps the raw
// input to the curve's declared domain, applies the family transform, and
// clamps the result to [0,1]. Evaluation never fails; malformed parameters
// are rejected by the constructors.
type Curve struct {
	family    string
	domainMin float64
	domainMax float64
	eval      func(x float64) float64
}

func (c Curve) Family() string {
	return c.family
}

func (c Curve) Domain() (min, max float64) {
	return c.domainMin, c.domainMax
}

func (c Curve) Evaluate(raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	if raw < c.domainMin {
		raw = c.domainMin
	}
	if raw > c.domainMax {
		raw = c.domainMax
	}
	return Clamp01(c.eval(raw))
}

// Clamp01 clamps v to [0,1]. NaN maps to 0 so a degenerate transform can
// never poison an aggregate.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func checkDomain(min, max float64) error {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return fmt.Errorf("%w: domain bounds must be finite", ErrCurveParams)
	}
	if max <= min {
		return fmt.Errorf("%w: domain max %v must exceed min %v", ErrCurveParams, max, min)
	}
	return nil
}

// NewLinear maps the domain [min,max] linearly onto [0,1].
func NewLinear(min, max float64) (Curve, error) {
	if err := checkDomain(min, max); err != nil {
		return Curve{}, err
	}
	span := max - min
	return Curve{
		family:    FamilyLinear,
		domainMin: min,
		domainMax: max,
		eval: func(x float64) float64 {
			return (x - min) / span
		},
	}, nil
}

// NewPolynomial is a power curve over the normalized domain position:
// slope * t^exponent + shift, where t = (raw-min)/(max-min).
// The exponent must be positive.
func NewPolynomial(min, max, exponent, slope, shift float64) (Curve, error) {
	if err := checkDomain(min, max); err != nil {
		return Curve{}, err
	}
	if exponent <= 0 || math.IsNaN(exponent) || math.IsInf(exponent, 0) {
		return Curve{}, fmt.Errorf("%w: exponent %v must be positive and finite", ErrCurveParams, exponent)
	}
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(shift) || math.IsInf(shift, 0) {
		return Curve{}, fmt.Errorf("%w: slope and shift must be finite", ErrCurveParams)
	}
	span := max - min
	return Curve{
		family:    FamilyPolynomial,
		domainMin: min,
		domainMax: max,
		eval: func(x float64) float64 {
			t := (x - min) / span
			return slope*math.Pow(t, exponent) + shift
		},
	}, nil
}

// NewLogistic is a sigmoid: 1 / (1 + e^(-steepness*(raw-midpoint))).
// The steepness must be non-zero; the midpoint must lie within the domain.
func NewLogistic(min, max, steepness, midpoint float64) (Curve, error) {
	if err := checkDomain(min, max); err != nil {
		return Curve{}, err
	}
	if steepness == 0 || math.IsNaN(steepness) || math.IsInf(steepness, 0) {
		return Curve{}, fmt.Errorf("%w: steepness %v must be non-zero and finite", ErrCurveParams, steepness)
	}
	if midpoint < min || midpoint > max || math.IsNaN(midpoint) {
		return Curve{}, fmt.Errorf("%w: midpoint %v must lie within domain [%v,%v]", ErrCurveParams, midpoint, min, max)
	}
	return Curve{
		family:    FamilyLogistic,
		domainMin: min,
		domainMax: max,
		eval: func(x float64) float64 {
			return 1.0 / (1.0 + math.Exp(-steepness*(x-midpoint)))
		},
	}, nil
}

// NewStep returns low for raw values below the threshold and high otherwise.
// Low and high must already be in [0,1]; the threshold must lie within the
// domain.
func NewStep(min, max, threshold, low, high float64) (Curve, error) {
	if err := checkDomain(min, max); err != nil {
		return Curve{}, err
	}
	if threshold < min || threshold > max || math.IsNaN(threshold) {
		return Curve{}, fmt.Errorf("%w: threshold %v must lie within domain [%v,%v]", ErrCurveParams, threshold, min, max)
	}
	if low < 0 || low > 1 || high < 0 || high > 1 || math.IsNaN(low) || math.IsNaN(high) {
		return Curve{}, fmt.Errorf("%w: step levels low=%v high=%v must be in [0,1]", ErrCurveParams, low, high)
	}
	return Curve{
		family:    FamilyStep,
		domainMin: min,
		domainMax: max,
		eval: func(x float64) float64 {
			if x < threshold {
				return low
			}
			return high
		},
	}, nil
}

// FromSpec builds a curve from its serialized form, resolving the family
// through the registry.
func FromSpec(spec model.CurveSpec) (Curve, error) {
	build, err := Get(spec.Family)
	if err != nil {
		return Curve{}, err
	}
	c, err := build(spec)
	if err != nil {
		return Curve{}, fmt.Errorf("curve %s: %w", spec.Family, err)
	}
	return c, nil
}
