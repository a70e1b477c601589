package fidimag

import "fmt"

// ComputeUniaxialAnisotropy overwrites field and energy with the uniaxial anisotropy
// contribution of every site:
//
//	m_u = S·u, h = 2 Ku m_u u / μs, E = -Ku m_u².
//
// The axis may change from one site to another and is not normalised here.
func ComputeUniaxialAnisotropy(spin, field VectorField, muSInv, energy, Ku []float64, axis VectorField) error {
	n := spin.Sites()
	if err := checkFields(n, spin, field, axis); err != nil {
		return fmt.Errorf("uniaxial anisotropy: %w", err)
	}
	if err := checkScalars(n, []string{"mu_s_inv", "energy", "Ku"}, muSInv, energy, Ku); err != nil {
		return fmt.Errorf("uniaxial anisotropy: %w", err)
	}
	parallelFor(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			u := axis.Vec(i)
			mu := dot3(spin.Vec(i), u)
			energy[i] = -Ku[i] * mu * mu
			fact := 2 * Ku[i] * mu * muSInv[i]
			field.SetVec(i, [3]float64{fact * u[0], fact * u[1], fact * u[2]})
		}
	})
	return nil
}

// ComputeCubicAnisotropy overwrites field and energy with the cubic anisotropy
// contribution of every site:
//
//	h_c = -4 Kc S_c³ / μs, E = -¼ Σ_c h_c S_c (with h before the 1/μs scaling).
func ComputeCubicAnisotropy(spin, field VectorField, muSInv, energy, Kc []float64) error {
	n := spin.Sites()
	if err := checkFields(n, spin, field); err != nil {
		return fmt.Errorf("cubic anisotropy: %w", err)
	}
	if err := checkScalars(n, []string{"mu_s_inv", "energy", "Kc"}, muSInv, energy, Kc); err != nil {
		return fmt.Errorf("cubic anisotropy: %w", err)
	}
	parallelFor(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			s := spin.Vec(i)
			var h [3]float64
			e := 0.0
			for c := 0; c < 3; c++ {
				h[c] = -4 * Kc[i] * s[c] * s[c] * s[c]
				e += h[c] * s[c]
			}
			energy[i] = -0.25 * e
			field.SetVec(i, [3]float64{h[0] * muSInv[i], h[1] * muSInv[i], h[2] * muSInv[i]})
		}
	})
	return nil
}

// UniaxialAnisotropy is the uniaxial single site anisotropy.
type UniaxialAnisotropy struct {
	Ku     []float64
	Axis   VectorField
	muSInv []float64
	field  VectorField
	energy []float64
}

// NewUniaxialAnisotropy returns a uniaxial anisotropy of strength ku (per site) along axis (per site).
func NewUniaxialAnisotropy(ku []float64, axis VectorField, m Material) (*UniaxialAnisotropy, error) {
	n := axis.Sites()
	if err := m.check(n); err != nil {
		return nil, err
	}
	if err := checkScalars(n, []string{"Ku"}, ku); err != nil {
		return nil, err
	}
	return &UniaxialAnisotropy{ku, axis, m.MuSInv(), MakeVectorField(n, axis.Layout()), make([]float64, n)}, nil
}

// Name implements the Interaction interface.
func (a *UniaxialAnisotropy) Name() string {
	return "anisotropy"
}

// Compute implements the Interaction interface.
func (a *UniaxialAnisotropy) Compute(spin VectorField, t float64) error {
	return ComputeUniaxialAnisotropy(spin, a.field, a.muSInv, a.energy, a.Ku, a.Axis)
}

// Field implements the Interaction interface.
func (a *UniaxialAnisotropy) Field() VectorField {
	return a.field
}

// Energy implements the Interaction interface.
func (a *UniaxialAnisotropy) Energy() []float64 {
	return a.energy
}

// CubicAnisotropy is the cubic single site anisotropy.
type CubicAnisotropy struct {
	Kc     []float64
	muSInv []float64
	field  VectorField
	energy []float64
}

// NewCubicAnisotropy returns a cubic anisotropy of strength kc (per site).
func NewCubicAnisotropy(kc []float64, m Material, layout Layout) (*CubicAnisotropy, error) {
	n := len(kc)
	if err := m.check(n); err != nil {
		return nil, err
	}
	return &CubicAnisotropy{kc, m.MuSInv(), MakeVectorField(n, layout), make([]float64, n)}, nil
}

// Name implements the Interaction interface.
func (a *CubicAnisotropy) Name() string {
	return "cubic anisotropy"
}

// Compute implements the Interaction interface.
func (a *CubicAnisotropy) Compute(spin VectorField, t float64) error {
	return ComputeCubicAnisotropy(spin, a.field, a.muSInv, a.energy, a.Kc)
}

// Field implements the Interaction interface.
func (a *CubicAnisotropy) Field() VectorField {
	return a.field
}

// Energy implements the Interaction interface.
func (a *CubicAnisotropy) Energy() []float64 {
	return a.energy
}
