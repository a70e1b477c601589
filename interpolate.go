package fidimag

import (
	"fmt"
	"math"
)

// InterpolateBand returns a chain of nImages images going from initial to final.
// Every spin is rotated along the great circle joining its initial and final directions,
// so all intermediate spins have unit length. Antiparallel spins are rotated about an
// arbitrary perpendicular axis.
func InterpolateBand(initial, final VectorField, nImages int) ([]float64, error) {
	n := initial.Sites()
	if err := checkFields(n, initial, final); err != nil {
		return nil, fmt.Errorf("interpolating band: %w", err)
	}
	if nImages < 2 {
		return nil, fmt.Errorf("a band needs at least 2 images, got %d: %w", nImages, ErrInvalidArgument)
	}
	nDofs := 3 * n
	y := make([]float64, nImages*nDofs)
	for im := 0; im < nImages; im++ {
		image := VectorField{y[im*nDofs : (im+1)*nDofs], n, initial.Layout()}
		frac := float64(im) / float64(nImages-1)
		for i := 0; i < n; i++ {
			image.SetVec(i, slerp(unit(initial.Vec(i)), unit(final.Vec(i)), frac))
		}
	}
	// The endpoints are copied verbatim, interpolation would round them.
	copy(y[:nDofs], initial.Raw())
	copy(y[(nImages-1)*nDofs:], final.Raw())
	return y, nil
}

// slerp rotates a toward b by the fraction frac of the angle between them.
func slerp(a, b [3]float64, frac float64) [3]float64 {
	axb := cross(a, b)
	θ := math.Atan2(norm(axb), dot3(a, b))
	if θ < 1e-12 {
		return a
	}
	// Rotation axis, normal to the plane of a and b.
	k := unit(axb)
	if norm(k) == 0 {
		k = perpendicular(a)
	}
	// Rodrigues' rotation of a about k (a ⟂ k).
	sin, cos := math.Sincos(frac * θ)
	kxa := cross(k, a)
	return unit([3]float64{a[0]*cos + kxa[0]*sin, a[1]*cos + kxa[1]*sin, a[2]*cos + kxa[2]*sin})
}
