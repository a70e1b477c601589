package fidimag

import (
	"context"
	"fmt"
	"math"

	"github.com/Xing-Huang/fidimag/integrator"
	kitlog "github.com/go-kit/kit/log"
)

// RelaxOptions configures the relaxation of a single image.
type RelaxOptions struct {
	Method    integrator.Method
	Step      float64 // Pseudo time step.
	MaxIter   uint64
	Tolerance float64 // Stop once max|dm/dt| is below this value.
}

// DefaultRelaxOptions returns the default relaxation options.
func DefaultRelaxOptions() RelaxOptions {
	return RelaxOptions{integrator.RK4, 1e-2, 10000, 1e-6}
}

// imageRelaxer is an integrator.Integrable of the precession free dynamics
// dm/dt = -m × (m × h) = h - (m·h)m, which drives every spin along its local field.
type imageRelaxer struct {
	ctx     context.Context
	h       *Hamiltonian
	spin    VectorField
	opts    RelaxOptions
	dmdt    float64 // Latest max|dm/dt|.
	err     error
	scratch []float64
	logger  kitlog.Logger
}

// GetState implements the integrator.Integrable interface.
func (r *imageRelaxer) GetState() []float64 {
	return r.spin.Raw()
}

// SetState implements the integrator.Integrable interface; spins are normalised at every step.
func (r *imageRelaxer) SetState(i uint64, s []float64) {
	copy(r.spin.Raw(), s)
	NormaliseField(r.spin)
}

// Stop implements the integrator.Integrable interface.
func (r *imageRelaxer) Stop(i uint64) bool {
	if r.err != nil {
		return true
	}
	if err := r.ctx.Err(); err != nil {
		r.err = err
		return true
	}
	// Compute the torque of the current state.
	r.torque(0, r.spin.Raw(), r.scratch)
	if r.err != nil {
		return true
	}
	if r.dmdt < r.opts.Tolerance {
		r.logger.Log("level", "info", "subsys", "relax", "status", "converged", "iter", i, "dmdt", r.dmdt, "energy", r.h.TotalEnergy())
		return true
	}
	if i >= r.opts.MaxIter {
		r.err = fmt.Errorf("relaxation stopped after %d iterations with max|dm/dt|=%g: %w", i, r.dmdt, ErrNotConverged)
		return true
	}
	return false
}

// Func implements the integrator.Integrable interface.
func (r *imageRelaxer) Func(t float64, s []float64) []float64 {
	fDot := make([]float64, len(s))
	r.torque(t, s, fDot)
	return fDot
}

func (r *imageRelaxer) torque(t float64, s, dst []float64) {
	spin := VectorField{s, r.spin.Sites(), r.spin.Layout()}
	if err := r.h.Compute(spin, t); err != nil {
		r.err = err
		return
	}
	out := VectorField{dst, r.spin.Sites(), r.spin.Layout()}
	projectOnSpins(out, r.h.Field(), spin)
	max := 0.0
	for _, v := range dst {
		max = math.Max(max, math.Abs(v))
	}
	if math.IsNaN(max) || math.IsInf(max, 0) {
		r.err = fmt.Errorf("non finite torque at t=%g: %w", t, ErrDegenerateState)
	}
	r.dmdt = max
}

// RelaxImage drives spin, in place, toward the nearest energy minimum of h.
// It returns the number of iterations performed and the final energy.
func RelaxImage(ctx context.Context, h *Hamiltonian, spin VectorField, opts RelaxOptions, logger kitlog.Logger) (uint64, float64, error) {
	if h == nil || spin.Sites() != h.Sites() || spin.Layout() != h.Layout() {
		return 0, 0, fmt.Errorf("spin field does not match the hamiltonian: %w", ErrInvalidArgument)
	}
	if opts.Step <= 0 || opts.Tolerance <= 0 {
		return 0, 0, fmt.Errorf("relaxation step and tolerance must be positive (%g, %g): %w", opts.Step, opts.Tolerance, ErrInvalidArgument)
	}
	if opts.Method == 0 {
		opts.Method = integrator.RK4
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	NormaliseField(spin)
	r := &imageRelaxer{ctx: ctx, h: h, spin: spin, opts: opts, scratch: make([]float64, len(spin.Raw())), logger: logger}
	iters, _, err := integrator.New(opts.Method, 0, opts.Step, r).Solve()
	if err != nil {
		return iters, 0, err
	}
	if r.err != nil {
		return iters, h.TotalEnergy(), r.err
	}
	return iters, h.TotalEnergy(), nil
}
