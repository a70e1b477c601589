package fidimag

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestDMIBulkPair(t *testing.T) {
	for _, layout := range []Layout{ComponentMajor, Interleaved} {
		g, _ := NewGrid(2, 1, 1, 1, 1, 1)
		dmi, err := NewDMI(0.7, BulkDMI, g, UniformMaterial(2, 2), layout)
		require.NoError(t, err)
		spin := MakeVectorField(2, layout)
		spin.SetVec(0, [3]float64{0, 0, 1})
		spin.SetVec(1, [3]float64{0, 1, 0})
		require.NoError(t, dmi.Compute(spin, 0))
		// D x·(S0 × S1) = -D, shared by both sites.
		if !floats.EqualApprox(dmi.Energy(), []float64{-0.35, -0.35}, 1e-15) {
			t.Fatalf("[%s] unexpected energies %v", layout, dmi.Energy())
		}
		// Fields are D_ij × S_j, scaled by 1/μs.
		if !vectorsEqual(dmi.Field().Vec(0), [3]float64{0, 0, 0.35}) || !vectorsEqual(dmi.Field().Vec(1), [3]float64{0, 0.35, 0}) {
			t.Fatalf("[%s] unexpected fields %v %v", layout, dmi.Field().Vec(0), dmi.Field().Vec(1))
		}
	}
}

func TestDMIInterfacial(t *testing.T) {
	g, _ := NewGrid(2, 1, 1, 1, 1, 1)
	dmi, err := NewDMI(1, InterfacialDMI, g, UniformMaterial(2, 1), ComponentMajor)
	require.NoError(t, err)
	spin := MakeVectorField(2, ComponentMajor)
	spin.SetVec(0, [3]float64{0, 0, 1})
	spin.SetVec(1, [3]float64{1, 0, 0})
	require.NoError(t, dmi.Compute(spin, 0))
	// D_01 = D z × x = D y
	if e := floats.Sum(dmi.Energy()); !scalar.EqualWithinAbs(e, 1, 1e-15) {
		t.Fatalf("interfacial pair energy %f", e)
	}

	// Out of plane bonds do not contribute.
	gz, _ := NewGrid(1, 1, 3, 1, 1, 1)
	dmi, err = NewDMI(1, InterfacialDMI, gz, UniformMaterial(3, 1), ComponentMajor)
	require.NoError(t, err)
	spin = MakeVectorField(3, ComponentMajor)
	spin.SetVec(0, [3]float64{1, 0, 0})
	spin.SetVec(1, [3]float64{0, 1, 0})
	spin.SetVec(2, [3]float64{0, 0, 1})
	require.NoError(t, dmi.Compute(spin, 0))
	if !floats.Equal(dmi.Field().Raw(), make([]float64, 9)) {
		t.Fatalf("bonds along z should not contribute: %v", dmi.Field().Raw())
	}
}

func TestDMIUniform(t *testing.T) {
	g, _ := NewGrid(3, 3, 3, 1, 1, 1)
	dmi, err := NewDMI(1.3, BulkDMI, g, UniformMaterial(g.N(), 1), Interleaved)
	require.NoError(t, err)
	spin := UniformVectorField(g.N(), Interleaved, unit([3]float64{1, 2, 3}))
	require.NoError(t, dmi.Compute(spin, 0))
	if e := floats.Sum(dmi.Energy()); !scalar.EqualWithinAbs(e, 0, 1e-12) {
		t.Fatalf("a uniform state has no DMI energy, got %g", e)
	}
	// The bulk site sees opposite bonds cancel.
	if !vectorsEqual(dmi.Field().Vec(g.Index(1, 1, 1)), [3]float64{0, 0, 0}) {
		t.Fatalf("bulk field should vanish, got %v", dmi.Field().Vec(g.Index(1, 1, 1)))
	}
}

func TestDMIFieldIsEnergyGradient(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g, _ := NewGrid(3, 2, 2, 1, 1, 1)
	n := g.N()
	for _, kind := range []DMIType{BulkDMI, InterfacialDMI} {
		dmi, err := NewDMI(0.9, kind, g, UniformMaterial(n, 1), ComponentMajor)
		require.NoError(t, err)
		spin := MakeVectorField(n, ComponentMajor)
		for i := range spin.Raw() {
			spin.Raw()[i] = rng.NormFloat64()
		}
		NormaliseField(spin)
		require.NoError(t, dmi.Compute(spin, 0))
		field := append([]float64(nil), dmi.Field().Raw()...)

		energy := func() float64 {
			require.NoError(t, dmi.Compute(spin, 0))
			return floats.Sum(dmi.Energy())
		}
		const ε = 1e-4
		for j := range spin.Raw() {
			s := spin.Raw()[j]
			spin.Raw()[j] = s + ε
			ePlus := energy()
			spin.Raw()[j] = s - ε
			eMinus := energy()
			spin.Raw()[j] = s
			// The energy is linear in every single spin, the central difference is exact.
			if grad := -(ePlus - eMinus) / (2 * ε); !scalar.EqualWithinAbs(grad, field[j], 1e-9) {
				t.Fatalf("[%s] dof %d: field %g but -dE/dS=%g", kind, j, field[j], grad)
			}
		}
	}
}

func TestDMIErrors(t *testing.T) {
	g, _ := NewGrid(2, 2, 1, 1, 1, 1)
	_, err := NewDMI(1, BulkDMI, g, UniformMaterial(3, 1), ComponentMajor)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewDMI(1, DMIType(7), g, UniformMaterial(4, 1), ComponentMajor)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.ErrorIs(t, ComputeDMI(MakeVectorField(4, ComponentMajor), MakeVectorField(3, ComponentMajor), 1, g, BulkDMI), ErrInvalidArgument)
	require.ErrorIs(t, ComputeDMI(MakeVectorField(4, ComponentMajor), MakeVectorField(4, ComponentMajor), 1, g, DMIType(7)), ErrInvalidArgument)

	kind, err := DMITypeFromString("interfacial")
	require.NoError(t, err)
	require.Equal(t, InterfacialDMI, kind)
	_, err = DMITypeFromString("chiral")
	require.ErrorIs(t, err, ErrInvalidArgument)
}
