package fidimag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// macrospin returns the hamiltonian of a single spin with a uniaxial anisotropy along z.
func macrospin(t *testing.T, Ku float64) *Hamiltonian {
	m := UniformMaterial(1, 1)
	anis, err := NewUniaxialAnisotropy([]float64{Ku}, UniformVectorField(1, ComponentMajor, [3]float64{0, 0, 1}), m)
	require.NoError(t, err)
	h, err := NewHamiltonian(1, ComponentMajor, anis)
	require.NoError(t, err)
	return h
}

func macrospinBand(t *testing.T, nImages int) []float64 {
	up := UniformVectorField(1, ComponentMajor, [3]float64{0, 0, 1})
	down := UniformVectorField(1, ComponentMajor, [3]float64{0, 0, -1})
	y, err := InterpolateBand(up, down, nImages)
	require.NoError(t, err)
	return y
}

func TestNEBForceEquilibrium(t *testing.T) {
	nImages := 7
	y := macrospinBand(t, nImages)
	forces := make([]float64, len(y))
	f, err := NewNEBForce(macrospin(t, 1), nImages, 1, forces)
	require.NoError(t, err)
	require.NoError(t, f.UpdateForces(0, y))

	for im, e := range f.Energies() {
		θ := float64(im) * math.Pi / float64(nImages-1)
		if exp := -math.Pow(math.Cos(θ), 2); !scalar.EqualWithinAbs(e, exp, 1e-12) {
			t.Fatalf("image %d: energy %f expected %f", im, e, exp)
		}
	}
	chord := 2 * math.Sin(math.Pi/float64(nImages-1)/2)
	for i, d := range f.Distances() {
		if !scalar.EqualWithinAbs(d, chord, 1e-12) {
			t.Fatalf("distance %d: %f expected %f", i, d, chord)
		}
	}
	// The band is a great circle through the saddle, equally spaced: nothing moves.
	if max := floats.Norm(forces, math.Inf(1)); max > 1e-12 {
		t.Fatalf("equilibrium band has a force of %g", max)
	}
}

func TestNEBForcePerturbed(t *testing.T) {
	nImages := 5
	y := macrospinBand(t, nImages)
	// Tilt the second image out of the plane of the band.
	tilted := VectorField{y[3:6], 1, ComponentMajor}
	tilted.SetVec(0, unit([3]float64{tilted.At(0, 0), 0.3, tilted.At(0, 2)}))
	forces := make([]float64, len(y))
	for i := range forces {
		forces[i] = 42
	}
	f, err := NewNEBForce(macrospin(t, 1), nImages, 2, forces)
	require.NoError(t, err)
	require.NoError(t, f.UpdateForces(0, y))

	if !floats.Equal(forces[:3], []float64{0, 0, 0}) || !floats.Equal(forces[12:], []float64{0, 0, 0}) {
		t.Fatalf("endpoint forces must be nil: %v", forces)
	}
	for im := 1; im < nImages-1; im++ {
		s := [3]float64{y[3*im], y[3*im+1], y[3*im+2]}
		fo := [3]float64{forces[3*im], forces[3*im+1], forces[3*im+2]}
		if !scalar.EqualWithinAbs(dot3(s, fo), 0, 1e-12) {
			t.Fatalf("image %d: force %v not perpendicular to the spin %v", im, fo, s)
		}
	}
	// The perturbed image is pulled back toward the plane of the band (y=0).
	if forces[4] >= 0 {
		t.Fatalf("tilted image should be pulled back, force %v", forces[3:6])
	}
}

func TestNEBForceErrors(t *testing.T) {
	h := macrospin(t, 1)
	_, err := NewNEBForce(nil, 3, 1, make([]float64, 9))
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewNEBForce(h, 3, 1, make([]float64, 8))
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewNEBForce(h, 3, -1, make([]float64, 9))
	require.ErrorIs(t, err, ErrInvalidArgument)
	f, err := NewNEBForce(h, 3, 1, make([]float64, 9))
	require.NoError(t, err)
	require.ErrorIs(t, f.UpdateForces(0, make([]float64, 6)), ErrInvalidArgument)
	y := []float64{0, 0, 1, math.Inf(1), 0, 0, 0, 0, -1}
	require.ErrorIs(t, f.UpdateForces(0, y), ErrDegenerateState)
}
