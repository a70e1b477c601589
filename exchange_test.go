package fidimag

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func vectorsEqual(a, b [3]float64) bool {
	return floats.EqualApprox(a[:], b[:], 1e-12)
}

func TestExchange2x2x2(t *testing.T) {
	g, _ := NewGrid(2, 2, 2, 1, 1, 1)
	n := g.N()
	J := 1.5
	spin := MakeVectorField(n, ComponentMajor)
	for i := 0; i < n; i++ {
		spin.SetVec(i, [3]float64{float64(i), float64(10 + i), float64(-i)})
	}
	field := MakeVectorField(n, ComponentMajor)
	require.NoError(t, ComputeUniformExchange(spin, field, J, g))
	// On a 2x2x2 grid, every site has exactly the three sites differing by one coordinate as neighbours.
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				var exp [3]float64
				for _, nb := range [][3]int{{1 - i, j, k}, {i, 1 - j, k}, {i, j, 1 - k}} {
					s := spin.Vec(g.Index(nb[0], nb[1], nb[2]))
					for c := 0; c < 3; c++ {
						exp[c] += J * s[c]
					}
				}
				if got := field.Vec(g.Index(i, j, k)); !vectorsEqual(got, exp) {
					t.Fatalf("(%d,%d,%d): got %v expected %v", i, j, k, got, exp)
				}
			}
		}
	}
}

func TestExchangeSymmetry(t *testing.T) {
	g, _ := NewGrid(2, 2, 2, 1, 1, 1)
	n := g.N()
	J := -0.7
	a, b := g.Index(0, 0, 0), g.Index(0, 1, 0)
	sa, sb := [3]float64{0.6, 0, 0.8}, [3]float64{0, 1, 0}
	spin := MakeVectorField(n, ComponentMajor)
	field := MakeVectorField(n, ComponentMajor)

	// Only A is non nil: B sees J*Sa and A sees nothing.
	spin.SetVec(a, sa)
	require.NoError(t, ComputeUniformExchange(spin, field, J, g))
	if !vectorsEqual(field.Vec(b), [3]float64{J * sa[0], J * sa[1], J * sa[2]}) {
		t.Fatalf("contribution of A to B: %v", field.Vec(b))
	}
	if !vectorsEqual(field.Vec(a), [3]float64{}) {
		t.Fatalf("A should not see itself: %v", field.Vec(a))
	}
	// Not a neighbour of A.
	if !vectorsEqual(field.Vec(g.Index(1, 1, 0)), [3]float64{}) {
		t.Fatal("diagonal site should not be coupled")
	}

	// Only B is non nil: A sees J*Sb.
	spin.Zero()
	spin.SetVec(b, sb)
	require.NoError(t, ComputeUniformExchange(spin, field, J, g))
	if !vectorsEqual(field.Vec(a), [3]float64{J * sb[0], J * sb[1], J * sb[2]}) {
		t.Fatalf("contribution of B to A: %v", field.Vec(a))
	}
}

func TestExchangeOpenBoundaries(t *testing.T) {
	g, _ := NewGrid(3, 3, 3, 1, 1, 1)
	for _, layout := range []Layout{ComponentMajor, Interleaved} {
		spin := UniformVectorField(g.N(), layout, [3]float64{1, 0, 0})
		field := MakeVectorField(g.N(), layout)
		require.NoError(t, ComputeUniformExchange(spin, field, 1, g))
		for _, tc := range []struct {
			i, j, k, neighbours int
		}{
			{0, 0, 0, 3}, // corner
			{2, 2, 2, 3}, // corner
			{1, 0, 0, 4}, // edge
			{1, 1, 0, 5}, // face centre
			{1, 2, 1, 5}, // face centre
			{1, 1, 1, 6}, // bulk
		} {
			got := field.Vec(g.Index(tc.i, tc.j, tc.k))
			if !vectorsEqual(got, [3]float64{float64(tc.neighbours), 0, 0}) {
				t.Fatalf("[%s] (%d,%d,%d) expected %d contributions, got %v", layout, tc.i, tc.j, tc.k, tc.neighbours, got)
			}
		}
	}
}

func TestExchangeIgnoresSpacing(t *testing.T) {
	g1, _ := NewGrid(3, 2, 1, 1, 1, 1)
	g2, _ := NewGrid(3, 2, 1, 0.1, 5, 2)
	spin := MakeVectorField(g1.N(), ComponentMajor)
	for i := 0; i < g1.N(); i++ {
		spin.SetVec(i, unit([3]float64{float64(i), 1, -1}))
	}
	f1, f2 := MakeVectorField(g1.N(), ComponentMajor), MakeVectorField(g1.N(), ComponentMajor)
	require.NoError(t, ComputeUniformExchange(spin, f1, 2, g1))
	require.NoError(t, ComputeUniformExchange(spin, f2, 2, g2))
	if !floats.Equal(f1.Raw(), f2.Raw()) {
		t.Fatal("the coupling should not depend on the spacing")
	}
}

func TestExchangeErrors(t *testing.T) {
	g, _ := NewGrid(2, 2, 2, 1, 1, 1)
	spin := MakeVectorField(7, ComponentMajor)
	field := MakeVectorField(8, ComponentMajor)
	require.ErrorIs(t, ComputeUniformExchange(spin, field, 1, g), ErrInvalidArgument)
	spin = MakeVectorField(8, Interleaved)
	require.ErrorIs(t, ComputeUniformExchange(spin, field, 1, g), ErrInvalidArgument)
}

func TestExchangeInteraction(t *testing.T) {
	g, _ := NewGrid(2, 1, 1, 1, 1, 1)
	exch, err := NewExchange(1, g, UniformMaterial(2, 2), ComponentMajor)
	require.NoError(t, err)
	spin := UniformVectorField(2, ComponentMajor, [3]float64{0, 0, 1})
	require.NoError(t, exch.Compute(spin, 0))
	// Each site sees J*S = (0,0,1), scaled by 1/μs, and has -½ of the bond energy.
	if !vectorsEqual(exch.Field().Vec(0), [3]float64{0, 0, 0.5}) {
		t.Fatalf("incorrect field %v", exch.Field().Vec(0))
	}
	if !scalar.EqualWithinAbs(floats.Sum(exch.Energy()), -1, 1e-14) {
		t.Fatalf("a single ferromagnetic bond should have energy -J, got %f", floats.Sum(exch.Energy()))
	}
}
