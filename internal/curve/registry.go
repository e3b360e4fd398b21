package curve

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"volition/internal/model"
)

const (
	FamilyLinear     = "linear"
	FamilyPolynomial = "polynomial"
	FamilyLogistic   = "logistic"
	FamilyStep       = "step"
)

var (
	ErrCurveParams   = errors.New("invalid curve parameters")
	ErrFamilyExists  = errors.New("curve family already registered")
	ErrFamilyUnknown = errors.New("curve family not found")
)

// BuilderFunc constructs a curve from its serialized parameters.
type BuilderFunc func(spec model.CurveSpec) (Curve, error)

var familyRegistry = struct {
	mu sync.RWMutex
	m  map[string]BuilderFunc
}{
	m: make(map[string]BuilderFunc),
}

func init() {
	initializeBuiltInFamilies()
}

func initializeBuiltInFamilies() {
	MustRegister(FamilyLinear, func(spec model.CurveSpec) (Curve, error) {
		return NewLinear(spec.DomainMin, spec.DomainMax)
	})
	MustRegister(FamilyPolynomial, func(spec model.CurveSpec) (Curve, error) {
		slope := spec.Slope
		if slope == 0 {
			slope = 1
		}
		return NewPolynomial(spec.DomainMin, spec.DomainMax, spec.Exponent, slope, spec.Shift)
	})
	MustRegister(FamilyLogistic, func(spec model.CurveSpec) (Curve, error) {
		return NewLogistic(spec.DomainMin, spec.DomainMax, spec.Steepness, spec.Midpoint)
	})
	MustRegister(FamilyStep, func(spec model.CurveSpec) (Curve, error) {
		return NewStep(spec.DomainMin, spec.DomainMax, spec.Threshold, spec.Low, spec.High)
	})
}

func Register(name string, fn BuilderFunc) error {
	if name == "" {
		return errors.New("curve family name is required")
	}
	if fn == nil {
		return errors.New("curve builder function is required")
	}

	familyRegistry.mu.Lock()
	defer familyRegistry.mu.Unlock()

	if _, exists := familyRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrFamilyExists, name)
	}
	familyRegistry.m[name] = fn
	return nil
}

func MustRegister(name string, fn BuilderFunc) {
	if err := Register(name, fn); err != nil {
		panic(err)
	}
}

func Get(name string) (BuilderFunc, error) {
	familyRegistry.mu.RLock()
	fn, ok := familyRegistry.m[name]
	familyRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFamilyUnknown, name)
	}
	return fn, nil
}

func List() []string {
	familyRegistry.mu.RLock()
	defer familyRegistry.mu.RUnlock()

	names := make([]string, 0, len(familyRegistry.m))
	for name := range familyRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetFamilyRegistryForTests() {
	familyRegistry.mu.Lock()
	familyRegistry.m = make(map[string]BuilderFunc)
	familyRegistry.mu.Unlock()
	initializeBuiltInFamilies()
}
