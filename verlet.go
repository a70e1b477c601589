package fidimag

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ForceUpdater refreshes the force buffer for the state y of the whole chain at time t.
type ForceUpdater interface {
	UpdateForces(t float64, y []float64) error
}

// ForceUpdaterFunc allows a plain function to be used as a ForceUpdater.
type ForceUpdaterFunc func(t float64, y []float64) error

// UpdateForces implements the ForceUpdater interface.
func (f ForceUpdaterFunc) UpdateForces(t float64, y []float64) error {
	return f(t, y)
}

// VerletBuffers groups the per-dof buffers of the quick-min integrator.
// ForcesPrev and VelocitiesNew carry the momentum from one step to the next.
type VerletBuffers struct {
	Forces, ForcesPrev, Velocities, VelocitiesNew []float64
}

// NewVerletBuffers allocates zeroed buffers for a chain of size values.
func NewVerletBuffers(size int) *VerletBuffers {
	return &VerletBuffers{make([]float64, size), make([]float64, size), make([]float64, size), make([]float64, size)}
}

// QuickMinVerlet is a velocity Verlet integrator with quick-min velocity projection,
// applied to every interior image of a band. The first and last images are never written.
type QuickMinVerlet struct {
	Mass       float64
	NImages    int
	NDofsImage int
	Updater    ForceUpdater // Writes into Buffers.Forces.
	Normaliser Normaliser
	Buffers    *VerletBuffers
}

// NewQuickMinVerlet returns a new integrator after checking the sizes of the buffers.
func NewQuickMinVerlet(mass float64, nImages, nDofsImage int, upd ForceUpdater, norm Normaliser, buf *VerletBuffers) (*QuickMinVerlet, error) {
	q := &QuickMinVerlet{mass, nImages, nDofsImage, upd, norm, buf}
	if err := q.check(nImages * nDofsImage); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *QuickMinVerlet) check(size int) error {
	if q.Mass <= 0 {
		return fmt.Errorf("mass must be positive, got %g: %w", q.Mass, ErrInvalidArgument)
	}
	if q.Updater == nil || q.Normaliser == nil || q.Buffers == nil {
		return fmt.Errorf("updater, normaliser and buffers are required: %w", ErrInvalidArgument)
	}
	if err := checkChain(size, q.NImages, q.NDofsImage); err != nil {
		return err
	}
	for name, buf := range map[string][]float64{"forces": q.Buffers.Forces, "forces_prev": q.Buffers.ForcesPrev, "velocities": q.Buffers.Velocities, "velocities_new": q.Buffers.VelocitiesNew} {
		if len(buf) != size {
			return fmt.Errorf("%s holds %d values, expected %d: %w", name, len(buf), size, ErrInvalidArgument)
		}
	}
	return nil
}

// Step advances every interior image of y by one time step h and returns t+h.
// The forces are refreshed once, for the pre-step state, and the interior images are
// normalised at the end of the step.
func (q *QuickMinVerlet) Step(y []float64, t, h float64) (float64, error) {
	if h <= 0 {
		return t, fmt.Errorf("time step must be positive, got %g: %w", h, ErrInvalidArgument)
	}
	if err := q.check(len(y)); err != nil {
		return t, err
	}
	if err := q.Updater.UpdateForces(t, y); err != nil {
		return t, fmt.Errorf("updating forces at t=%g: %w", t, err)
	}
	if !isFinite(q.Buffers.Forces) {
		return t, fmt.Errorf("non finite force at t=%g: %w", t, ErrDegenerateState)
	}

	halfStep := h / (2 * q.Mass)
	nDofs := q.NDofsImage
	// Images own disjoint slices of every buffer, so they are updated concurrently.
	parallelForChunk(q.NImages-2, 1, func(lo, hi int) {
		for im := lo + 1; im < hi+1; im++ {
			from, to := im*nDofs, (im+1)*nDofs
			image := y[from:to]
			force := q.Buffers.Forces[from:to]
			forcePrev := q.Buffers.ForcesPrev[from:to]
			velocity := q.Buffers.Velocities[from:to]
			velocityNew := q.Buffers.VelocitiesNew[from:to]

			for j := 0; j < nDofs; j++ {
				image[j] += h * (velocity[j] + halfStep*force[j])
				velocity[j] = velocityNew[j] + halfStep*(forcePrev[j]+force[j])
			}
			vDotF := floats.Dot(velocity, force)
			fDotF := floats.Dot(force, force)

			if vDotF <= 0 || fDotF == 0 {
				// Moving against the force (or no force at all): drop all momentum.
				for j := range velocityNew {
					velocityNew[j] = 0
				}
			} else {
				// Only keep the velocity component along the force.
				factor := vDotF / fDotF
				for j := range velocityNew {
					velocityNew[j] = factor * force[j]
				}
			}
			copy(forcePrev, force)
		}
	})

	// Endpoints are left alone: renormalising a unit vector is not bit stable.
	if q.NImages > 2 {
		if err := q.Normaliser.Normalise(y[nDofs:(q.NImages-1)*nDofs], q.NImages-2, nDofs); err != nil {
			return t, fmt.Errorf("normalising band at t=%g: %w", t, err)
		}
	}
	return t + h, nil
}
