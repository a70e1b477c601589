package integrator

import "fmt"

// Method defines the fixed step scheme of a Solver.
type Method uint8

const (
	// Euler is the explicit first order method.
	Euler Method = iota + 1
	// RK4 is the classical fourth order Runge Kutta method.
	RK4
)

func (m Method) String() string {
	switch m {
	case Euler:
		return "euler"
	case RK4:
		return "rk4"
	}
	panic("cannot stringify unknown integration method")
}

// MethodFromString returns the method of that name.
func MethodFromString(s string) (Method, error) {
	switch s {
	case "euler":
		return Euler, nil
	case "rk4", "":
		return RK4, nil
	}
	return 0, fmt.Errorf("unknown integration method `%s` (must be euler or rk4)", s)
}

// Solver integrates an Integrable with a fixed step.
type Solver struct {
	X0         float64    // The initial x0.
	StepSize   float64    // The step size.
	Method     Method     // The scheme.
	Integrator Integrable // What is to be integrated.
	// Buffers, reused between iterations.
	k1, k2, k3, k4, tState []float64
}

// NewRK4 returns a new RK4 solver.
func NewRK4(x0 float64, stepSize float64, inte Integrable) *Solver {
	return newSolver(x0, stepSize, RK4, inte)
}

// NewEuler returns a new explicit Euler solver.
func NewEuler(x0 float64, stepSize float64, inte Integrable) *Solver {
	return newSolver(x0, stepSize, Euler, inte)
}

// New returns a solver of the provided method.
func New(method Method, x0 float64, stepSize float64, inte Integrable) *Solver {
	return newSolver(x0, stepSize, method, inte)
}

func newSolver(x0 float64, stepSize float64, method Method, inte Integrable) *Solver {
	if stepSize <= 0 {
		panic("config StepSize must be positive")
	}
	if inte == nil {
		panic("config Integrator may not be nil")
	}
	if method != Euler && method != RK4 {
		panic(fmt.Errorf("unknown integration method %d", method))
	}
	return &Solver{X0: x0, StepSize: stepSize, Method: method, Integrator: inte}
}

func (r *Solver) ensureBuffers(n int) {
	if len(r.k1) != n {
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
		r.tState = make([]float64, n)
	}
}

// Solve solves the configured integrable.
// Returns the number of iterations performed and the last X_i, or an error.
func (r *Solver) Solve() (uint64, float64, error) {
	const (
		half     = 1 / 2.0
		oneSixth = 1 / 6.0
		oneThird = 1 / 3.0
	)

	iterNum := uint64(0)
	xi := r.X0
	for !r.Integrator.Stop(iterNum) {
		state := r.Integrator.GetState()
		r.ensureBuffers(len(state))
		newState := make([]float64, len(state))
		halfStep := r.StepSize * half

		// Compute the k's.
		k1, err := r.eval(xi, state)
		if err != nil {
			return iterNum, xi, err
		}
		if r.Method == Euler {
			for i, y := range k1 {
				newState[i] = state[i] + y*r.StepSize
			}
		} else {
			for i, y := range k1 {
				r.k1[i] = y * r.StepSize
				r.tState[i] = state[i] + r.k1[i]*half
			}
			k2, err := r.eval(xi+halfStep, r.tState)
			if err != nil {
				return iterNum, xi, err
			}
			for i, y := range k2 {
				r.k2[i] = y * r.StepSize
				r.tState[i] = state[i] + r.k2[i]*half
			}
			k3, err := r.eval(xi+halfStep, r.tState)
			if err != nil {
				return iterNum, xi, err
			}
			for i, y := range k3 {
				r.k3[i] = y * r.StepSize
				r.tState[i] = state[i] + r.k3[i]
			}
			k4, err := r.eval(xi+r.StepSize, r.tState)
			if err != nil {
				return iterNum, xi, err
			}
			for i, y := range k4 {
				r.k4[i] = y * r.StepSize
				newState[i] = state[i] + oneSixth*(r.k1[i]+r.k4[i]) + oneThird*(r.k2[i]+r.k3[i])
			}
		}
		r.Integrator.SetState(iterNum, newState)

		xi += r.StepSize
		iterNum++ // Don't forget to increment the number of iterations.
	}

	return iterNum, xi, nil
}

func (r *Solver) eval(t float64, s []float64) ([]float64, error) {
	d := r.Integrator.Func(t, s)
	if len(d) != len(s) {
		return nil, fmt.Errorf("derivative at t=%g has %d components for a state of %d", t, len(d), len(s))
	}
	return d, nil
}
