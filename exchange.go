package fidimag

import "fmt"

// ComputeUniformExchange overwrites field with the nearest-neighbour exchange field
// J * Σ S_neighbour of every site of the grid.
// Boundaries are open: sites on a face simply have fewer neighbours. The grid spacing is
// not used, i.e. the coupling is uniform even for anisotropic cells.
func ComputeUniformExchange(spin, field VectorField, J float64, g Grid) error {
	n := g.N()
	if n <= 0 {
		return fmt.Errorf("exchange on grid %s: %w", g, ErrInvalidArgument)
	}
	if err := checkFields(n, spin, field); err != nil {
		return fmt.Errorf("exchange on grid %s: %w", g, err)
	}
	parallelFor(n, func(lo, hi int) {
		for index := lo; index < hi; index++ {
			var tmp [3]float64
			g.neighbours(index, func(id int, _ [3]float64) {
				tmp[0] += J * spin.At(id, 0)
				tmp[1] += J * spin.At(id, 1)
				tmp[2] += J * spin.At(id, 2)
			})
			field.SetVec(index, tmp)
		}
	})
	return nil
}

// Exchange is the uniform exchange interaction on a grid.
type Exchange struct {
	J      float64
	grid   Grid
	muSInv []float64
	field  VectorField
	energy []float64
}

// NewExchange returns a new uniform exchange interaction.
func NewExchange(J float64, g Grid, m Material, layout Layout) (*Exchange, error) {
	n := g.N()
	if err := m.check(n); err != nil {
		return nil, err
	}
	return &Exchange{J, g, m.MuSInv(), MakeVectorField(n, layout), make([]float64, n)}, nil
}

// Name implements the Interaction interface.
func (e *Exchange) Name() string {
	return "exchange"
}

// Compute implements the Interaction interface.
// The energy per site is -½ S·h, before the field is scaled by 1/μs.
func (e *Exchange) Compute(spin VectorField, t float64) error {
	if err := ComputeUniformExchange(spin, e.field, e.J, e.grid); err != nil {
		return err
	}
	parallelFor(spin.Sites(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			h := e.field.Vec(i)
			e.energy[i] = -0.5 * dot3(spin.Vec(i), h)
			e.field.SetVec(i, [3]float64{h[0] * e.muSInv[i], h[1] * e.muSInv[i], h[2] * e.muSInv[i]})
		}
	})
	return nil
}

// Field implements the Interaction interface.
func (e *Exchange) Field() VectorField {
	return e.field
}

// Energy implements the Interaction interface.
func (e *Exchange) Energy() []float64 {
	return e.energy
}
