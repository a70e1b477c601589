package fidimag

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NEBForce computes the nudged elastic band force of every interior image of a band:
// the effective field perpendicular to the band plus a spring force along the band.
// It implements ForceUpdater and writes into Forces.
type NEBForce struct {
	H          *Hamiltonian
	NImages    int
	NDofsImage int
	Spring     float64
	Forces     []float64
	energies   []float64
	distances  []float64
	tangents   []float64
}

// NewNEBForce returns a new NEB force writing into forces.
func NewNEBForce(h *Hamiltonian, nImages int, spring float64, forces []float64) (*NEBForce, error) {
	if h == nil {
		return nil, fmt.Errorf("NEB force needs a hamiltonian: %w", ErrInvalidArgument)
	}
	nDofs := 3 * h.Sites()
	if err := checkChain(len(forces), nImages, nDofs); err != nil {
		return nil, err
	}
	if spring < 0 {
		return nil, fmt.Errorf("spring constant must not be negative, got %g: %w", spring, ErrInvalidArgument)
	}
	return &NEBForce{h, nImages, nDofs, spring, forces, make([]float64, nImages), make([]float64, nImages-1), make([]float64, len(forces))}, nil
}

// Energies returns the total energy of every image from the latest update.
func (f *NEBForce) Energies() []float64 {
	return f.energies
}

// Distances returns the distance between consecutive images from the latest update.
func (f *NEBForce) Distances() []float64 {
	return f.distances
}

func (f *NEBForce) image(buf []float64, im int) VectorField {
	return VectorField{buf[im*f.NDofsImage : (im+1)*f.NDofsImage], f.NDofsImage / 3, f.H.Layout()}
}

// UpdateForces implements the ForceUpdater interface.
func (f *NEBForce) UpdateForces(t float64, y []float64) error {
	if err := checkChain(len(y), f.NImages, f.NDofsImage); err != nil {
		return fmt.Errorf("NEB force: %w", err)
	}
	last := f.NImages - 1
	for im := 0; im < f.NImages; im++ {
		spin := f.image(y, im)
		if err := f.H.Compute(spin, t); err != nil {
			return fmt.Errorf("image %d: %w", im, err)
		}
		f.energies[im] = f.H.TotalEnergy()
		if math.IsNaN(f.energies[im]) || math.IsInf(f.energies[im], 0) {
			return fmt.Errorf("energy of image %d is %g: %w", im, f.energies[im], ErrDegenerateState)
		}
		force := f.image(f.Forces, im)
		if im == 0 || im == last {
			force.Zero()
		} else {
			// Keep the part of the field which rotates the spins: h - (h·m)m.
			projectOnSpins(force, f.H.Field(), spin)
		}
		if im > 0 {
			f.distances[im-1] = floats.Distance(f.image(y, im).Raw(), f.image(y, im-1).Raw(), 2)
		}
	}

	for im := 1; im < last; im++ {
		tangent := f.tangent(y, im)
		τ := mat.NewVecDense(f.NDofsImage, tangent.Raw())
		g := mat.NewVecDense(f.NDofsImage, f.image(f.Forces, im).Raw())
		g.AddScaledVec(g, -mat.Dot(g, τ), τ)
		g.AddScaledVec(g, f.Spring*(f.distances[im]-f.distances[im-1]), τ)
	}
	return nil
}

// tangent computes the energy weighted tangent of image im, in the tangent space of its
// spins and normalised, into the tangents buffer.
func (f *NEBForce) tangent(y []float64, im int) VectorField {
	prev, cur, next := f.image(y, im-1).Raw(), f.image(y, im).Raw(), f.image(y, im+1).Raw()
	ePrev, eCur, eNext := f.energies[im-1], f.energies[im], f.energies[im+1]

	var wPlus, wMinus float64
	switch {
	case eNext > eCur && eCur > ePrev:
		wPlus, wMinus = 1, 0
	case eNext < eCur && eCur < ePrev:
		wPlus, wMinus = 0, 1
	default:
		dEMax := math.Max(math.Abs(eNext-eCur), math.Abs(ePrev-eCur))
		dEMin := math.Min(math.Abs(eNext-eCur), math.Abs(ePrev-eCur))
		if eNext > ePrev {
			wPlus, wMinus = dEMax, dEMin
		} else {
			wPlus, wMinus = dEMin, dEMax
		}
	}
	tangent := f.image(f.tangents, im)
	raw := tangent.Raw()
	for j := range raw {
		raw[j] = wPlus*(next[j]-cur[j]) + wMinus*(cur[j]-prev[j])
	}
	projectOnSpins(tangent, tangent, f.image(y, im))
	τ := mat.NewVecDense(len(raw), raw)
	if n := mat.Norm(τ, 2); n > 0 {
		τ.ScaleVec(1/n, τ)
	}
	return tangent
}

// projectOnSpins writes v - (v·m)m for every site into dst (which may alias v).
func projectOnSpins(dst, v, spin VectorField) {
	parallelFor(spin.Sites(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			m := spin.Vec(i)
			h := v.Vec(i)
			p := dot3(h, m)
			dst.SetVec(i, [3]float64{h[0] - p*m[0], h[1] - p*m[1], h[2] - p*m[2]})
		}
	})
}
