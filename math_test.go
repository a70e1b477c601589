package fidimag

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestCross(t *testing.T) {
	i := [3]float64{1, 0, 0}
	j := [3]float64{0, 1, 0}
	k := [3]float64{0, 0, 1}
	if !vectorsEqual(cross(i, j), k) {
		t.Fatal("i x j != k")
	}
	if !vectorsEqual(cross(j, k), i) {
		t.Fatal("j x k != i")
	}
	if !vectorsEqual(cross([3]float64{2, 3, 4}, [3]float64{5, 6, 7}), [3]float64{-3, 6, -3}) {
		t.Fatal("cross fail")
	}
}

func TestPerpendicular(t *testing.T) {
	for _, a := range [][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}, {1, 1, 1}, {0.3, -2, 0.1}, {1e-9, 0, 1}} {
		p := perpendicular(a)
		if !scalar.EqualWithinAbs(norm(p), 1, 1e-15) {
			t.Fatalf("perpendicular of %v is not unit length: %v", a, p)
		}
		if !scalar.EqualWithinAbs(dot3(a, p), 0, 1e-15) {
			t.Fatalf("%v is not perpendicular to %v", p, a)
		}
	}
}

func TestMisc(t *testing.T) {
	nilVec := [3]float64{0, 0, 0}
	if norm(nilVec) != 0 {
		t.Fatal("norm of a nil vector was not nil")
	}
	five0 := [3]float64{5, 6, 7}
	five1 := [3]float64{7, 6, 5}
	five2 := [3]float64{6, 7, 5}
	if norm(five0) != math.Sqrt(110) || norm(five0) != norm(five1) || norm(five0) != norm(five2) {
		t.Fatal("norm of the [5, 6, 7] and permutations is invalid")
	}
	if unit(nilVec) != nilVec {
		t.Fatal("unit of a nil vector should be nil")
	}
	if !vectorsEqual(unit([3]float64{0, 3, 4}), [3]float64{0, 0.6, 0.8}) {
		t.Fatal("unit fail")
	}
	if !isFinite([]float64{0, 1, -1e300}) {
		t.Fatal("finite values reported as not finite")
	}
	if isFinite([]float64{0, math.NaN()}) || isFinite([]float64{math.Inf(-1), 0}) {
		t.Fatal("non finite values not detected")
	}
}
