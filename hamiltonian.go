package fidimag

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Interaction defines a contribution to the effective field.
// Compute must overwrite (never accumulate into) the buffers returned by Field and Energy.
type Interaction interface {
	Name() string
	Compute(spin VectorField, t float64) error
	Field() VectorField
	Energy() []float64
}

// Material stores the per-site magnetic moments.
type Material struct {
	MuS []float64
}

// UniformMaterial returns a material of n sites of moment muS.
func UniformMaterial(n int, muS float64) Material {
	m := Material{make([]float64, n)}
	for i := range m.MuS {
		m.MuS[i] = muS
	}
	return m
}

// MuSInv returns 1/μs per site, zero where there is no moment.
func (m Material) MuSInv() []float64 {
	inv := make([]float64, len(m.MuS))
	for i, mu := range m.MuS {
		if mu != 0 {
			inv[i] = 1 / mu
		}
	}
	return inv
}

func (m Material) check(n int) error {
	if n <= 0 {
		return fmt.Errorf("material needs a positive site count, got %d: %w", n, ErrInvalidArgument)
	}
	if len(m.MuS) != n {
		return fmt.Errorf("material holds %d moments for %d sites: %w", len(m.MuS), n, ErrInvalidArgument)
	}
	return nil
}

// Zeeman is a static (possibly space dependent) applied field.
type Zeeman struct {
	H      VectorField
	muS    []float64
	field  VectorField
	energy []float64
}

// NewZeeman returns a new static Zeeman interaction for the field h.
func NewZeeman(h VectorField, m Material) (*Zeeman, error) {
	n := h.Sites()
	if err := m.check(n); err != nil {
		return nil, err
	}
	return &Zeeman{h, m.MuS, MakeVectorField(n, h.Layout()), make([]float64, n)}, nil
}

// Name implements the Interaction interface.
func (z *Zeeman) Name() string {
	return "zeeman"
}

// Compute implements the Interaction interface, with E = -μs S·H.
func (z *Zeeman) Compute(spin VectorField, t float64) error {
	n := spin.Sites()
	if err := checkFields(n, spin, z.H, z.field); err != nil {
		return fmt.Errorf("zeeman: %w", err)
	}
	copy(z.field.Raw(), z.H.Raw())
	parallelFor(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			z.energy[i] = -z.muS[i] * dot3(spin.Vec(i), z.H.Vec(i))
		}
	})
	return nil
}

// Field implements the Interaction interface.
func (z *Zeeman) Field() VectorField {
	return z.field
}

// Energy implements the Interaction interface.
func (z *Zeeman) Energy() []float64 {
	return z.energy
}

// Hamiltonian sums the fields and energies of several interactions.
type Hamiltonian struct {
	interactions []Interaction
	field        VectorField
	energy       []float64
	sites        int
}

// NewHamiltonian returns a Hamiltonian for n sites in the given layout.
func NewHamiltonian(n int, layout Layout, interactions ...Interaction) (*Hamiltonian, error) {
	if n <= 0 {
		return nil, fmt.Errorf("hamiltonian needs a positive site count, got %d: %w", n, ErrInvalidArgument)
	}
	h := &Hamiltonian{field: MakeVectorField(n, layout), energy: make([]float64, n), sites: n}
	for _, i := range interactions {
		if err := h.Add(i); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Add adds an interaction.
func (h *Hamiltonian) Add(i Interaction) error {
	if err := checkFields(h.sites, h.field, i.Field()); err != nil {
		return fmt.Errorf("cannot add %s: %w", i.Name(), err)
	}
	h.interactions = append(h.interactions, i)
	return nil
}

// Interactions returns the interactions in insertion order.
func (h *Hamiltonian) Interactions() []Interaction {
	return h.interactions
}

// Interaction returns the interaction of that name, if any.
func (h *Hamiltonian) Interaction(name string) (Interaction, bool) {
	for _, i := range h.interactions {
		if i.Name() == name {
			return i, true
		}
	}
	return nil, false
}

// Compute computes every interaction and sums them into the total field and energy.
func (h *Hamiltonian) Compute(spin VectorField, t float64) error {
	h.field.Zero()
	for i := range h.energy {
		h.energy[i] = 0
	}
	for _, inter := range h.interactions {
		if err := inter.Compute(spin, t); err != nil {
			return fmt.Errorf("%s: %w", inter.Name(), err)
		}
		floats.Add(h.field.Raw(), inter.Field().Raw())
		floats.Add(h.energy, inter.Energy())
	}
	return nil
}

// Field returns the total field of the latest Compute.
func (h *Hamiltonian) Field() VectorField {
	return h.field
}

// Energy returns the total per-site energy of the latest Compute.
func (h *Hamiltonian) Energy() []float64 {
	return h.energy
}

// TotalEnergy returns the total energy of the latest Compute.
func (h *Hamiltonian) TotalEnergy() float64 {
	return floats.Sum(h.energy)
}

// Energies computes the total energy of each interaction for the given spins.
func (h *Hamiltonian) Energies(spin VectorField, t float64) (map[string]float64, error) {
	rslt := make(map[string]float64, len(h.interactions))
	for _, inter := range h.interactions {
		if err := inter.Compute(spin, t); err != nil {
			return nil, fmt.Errorf("%s: %w", inter.Name(), err)
		}
		rslt[inter.Name()] = floats.Sum(inter.Energy())
	}
	return rslt, nil
}

// Sites returns the number of sites.
func (h *Hamiltonian) Sites() int {
	return h.sites
}

// Layout returns the layout of the fields.
func (h *Hamiltonian) Layout() Layout {
	return h.field.Layout()
}
