package fidimag

import "fmt"

// DMIType selects the orientation of the Dzyaloshinskii-Moriya vectors.
type DMIType uint8

const (
	// BulkDMI uses D_ij = D r_ij, with r_ij the unit vector from site i to site j.
	BulkDMI DMIType = iota
	// InterfacialDMI uses D_ij = D z × r_ij, only in-plane bonds contribute.
	InterfacialDMI
)

func (d DMIType) String() string {
	switch d {
	case BulkDMI:
		return "bulk"
	case InterfacialDMI:
		return "interfacial"
	}
	panic("cannot stringify unknown DMI type")
}

// DMITypeFromString returns the DMI type of that name.
func DMITypeFromString(s string) (DMIType, error) {
	switch s {
	case "", "bulk":
		return BulkDMI, nil
	case "interfacial":
		return InterfacialDMI, nil
	}
	return BulkDMI, fmt.Errorf("unknown DMI type `%s`: %w", s, ErrInvalidArgument)
}

// vector returns D_ij for a bond along the unit vector r.
func (d DMIType) vector(D float64, r [3]float64) [3]float64 {
	if d == InterfacialDMI {
		r = cross([3]float64{0, 0, 1}, r)
	}
	return [3]float64{D * r[0], D * r[1], D * r[2]}
}

// ComputeDMI overwrites field with the Dzyaloshinskii-Moriya field Σ_j D_ij × S_j of every
// site, from the energy Σ_<ij> D_ij·(S_i × S_j). Boundaries are open as for the exchange.
func ComputeDMI(spin, field VectorField, D float64, g Grid, kind DMIType) error {
	n := g.N()
	if n <= 0 {
		return fmt.Errorf("dmi on grid %s: %w", g, ErrInvalidArgument)
	}
	if kind != BulkDMI && kind != InterfacialDMI {
		return fmt.Errorf("unknown DMI type %d: %w", kind, ErrInvalidArgument)
	}
	if err := checkFields(n, spin, field); err != nil {
		return fmt.Errorf("dmi on grid %s: %w", g, err)
	}
	parallelFor(n, func(lo, hi int) {
		for index := lo; index < hi; index++ {
			var tmp [3]float64
			g.neighbours(index, func(id int, r [3]float64) {
				h := cross(kind.vector(D, r), spin.Vec(id))
				tmp[0] += h[0]
				tmp[1] += h[1]
				tmp[2] += h[2]
			})
			field.SetVec(index, tmp)
		}
	})
	return nil
}

// DMI is the Dzyaloshinskii-Moriya interaction on a grid.
type DMI struct {
	D      float64
	Type   DMIType
	grid   Grid
	muSInv []float64
	field  VectorField
	energy []float64
}

// NewDMI returns a new uniform DMI of strength D.
func NewDMI(D float64, kind DMIType, g Grid, m Material, layout Layout) (*DMI, error) {
	n := g.N()
	if err := m.check(n); err != nil {
		return nil, err
	}
	if kind != BulkDMI && kind != InterfacialDMI {
		return nil, fmt.Errorf("unknown DMI type %d: %w", kind, ErrInvalidArgument)
	}
	return &DMI{D, kind, g, m.MuSInv(), MakeVectorField(n, layout), make([]float64, n)}, nil
}

// Name implements the Interaction interface.
func (d *DMI) Name() string {
	return "dmi"
}

// Compute implements the Interaction interface.
// As for the exchange, the energy per site is -½ S·h before the 1/μs scaling.
func (d *DMI) Compute(spin VectorField, t float64) error {
	if err := ComputeDMI(spin, d.field, d.D, d.grid, d.Type); err != nil {
		return err
	}
	parallelFor(spin.Sites(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			h := d.field.Vec(i)
			d.energy[i] = -0.5 * dot3(spin.Vec(i), h)
			d.field.SetVec(i, [3]float64{h[0] * d.muSInv[i], h[1] * d.muSInv[i], h[2] * d.muSInv[i]})
		}
	})
	return nil
}

// Field implements the Interaction interface.
func (d *DMI) Field() VectorField {
	return d.field
}

// Energy implements the Interaction interface.
func (d *DMI) Energy() []float64 {
	return d.energy
}
