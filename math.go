package fidimag

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// norm returns the norm of a 3-vector.
func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// unit returns the unit vector of a given 3-vector, or the nil vector.
func unit(a [3]float64) [3]float64 {
	n := norm(a)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return [3]float64{0, 0, 0}
	}
	return [3]float64{a[0] / n, a[1] / n, a[2] / n}
}

// dot3 performs the inner product of two 3-vectors.
func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// cross performs the cross product.
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

// perpendicular returns a unit vector orthogonal to a (non nil) 3-vector.
func perpendicular(a [3]float64) [3]float64 {
	// Cross with the axis least aligned with a.
	ax := [3]float64{1, 0, 0}
	if math.Abs(a[1]) < math.Abs(a[0]) && math.Abs(a[1]) <= math.Abs(a[2]) {
		ax = [3]float64{0, 1, 0}
	} else if math.Abs(a[2]) < math.Abs(a[0]) && math.Abs(a[2]) < math.Abs(a[1]) {
		ax = [3]float64{0, 0, 1}
	}
	return unit(cross(a, ax))
}

// isFinite returns whether none of the values is NaN or infinite.
func isFinite(s []float64) bool {
	if floats.HasNaN(s) {
		return false
	}
	for _, v := range s {
		if math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
