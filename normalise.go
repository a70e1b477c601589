package fidimag

import (
	"fmt"
	"math"
)

// Normaliser restores the unit length of every spin of a chain of images.
type Normaliser interface {
	Normalise(y []float64, nImages, nDofsImage int) error
}

// SpinNormaliser normalises every spin 3-vector of every image stored with Layout.
// Nil spins are left untouched.
type SpinNormaliser struct {
	Layout Layout
}

// Normalise implements the Normaliser interface.
func (s SpinNormaliser) Normalise(y []float64, nImages, nDofsImage int) error {
	if err := checkImages(len(y), nImages, nDofsImage); err != nil {
		return fmt.Errorf("normalise: %w", err)
	}
	for im := 0; im < nImages; im++ {
		image, err := NewVectorField(y[im*nDofsImage:(im+1)*nDofsImage], nDofsImage/3, s.Layout)
		if err != nil {
			return fmt.Errorf("normalise image %d: %w", im, err)
		}
		NormaliseField(image)
	}
	return nil
}

// NormaliseField normalises every non nil 3-vector of f in place.
func NormaliseField(f VectorField) {
	parallelFor(f.Sites(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v := f.Vec(i)
			n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
			if n == 0 {
				continue
			}
			f.SetVec(i, [3]float64{v[0] / n, v[1] / n, v[2] / n})
		}
	})
}

// checkChain makes sure a chain buffer of length l holds nImages images of nDofsImage 3-vector dofs.
func checkChain(l, nImages, nDofsImage int) error {
	if nImages < 2 {
		return fmt.Errorf("a band needs at least 2 images, got %d: %w", nImages, ErrInvalidArgument)
	}
	return checkImages(l, nImages, nDofsImage)
}

// checkImages makes sure a buffer of length l holds nImages (at least one) images.
func checkImages(l, nImages, nDofsImage int) error {
	if nImages < 1 {
		return fmt.Errorf("at least one image is needed, got %d: %w", nImages, ErrInvalidArgument)
	}
	if nDofsImage <= 0 || nDofsImage%3 != 0 {
		return fmt.Errorf("dofs per image must be a positive multiple of 3, got %d: %w", nDofsImage, ErrInvalidArgument)
	}
	if l != nImages*nDofsImage {
		return fmt.Errorf("buffer holds %d values, expected %d images of %d dofs: %w", l, nImages, nDofsImage, ErrInvalidArgument)
	}
	return nil
}
