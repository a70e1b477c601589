package fidimag

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/floats"
)

// BandConfig configures the NEB relaxation of a band.
type BandConfig struct {
	Name      string
	Images    int     // Number of images, endpoints included.
	Spring    float64 // Spring constant between images.
	Mass      float64 // Mass of the quick-min dynamics.
	Step      float64 // Time step.
	MaxSteps  uint64
	Tolerance float64 // Convergence threshold on max|dY/dt|.
	LogEvery  uint64  // Status logging period in steps (0 disables it).
}

// DefaultBandConfig returns a band configuration with the usual quick-min settings.
func DefaultBandConfig(name string, images int) BandConfig {
	return BandConfig{Name: name, Images: images, Spring: 1e5, Mass: 0.1, Step: 1e-4, MaxSteps: 10000, Tolerance: 1e-5, LogEvery: 100}
}

// Validate checks the configuration.
func (c BandConfig) Validate() error {
	if c.Images < 3 {
		return fmt.Errorf("a band needs at least 3 images to have a moving one, got %d: %w", c.Images, ErrInvalidArgument)
	}
	if c.Mass <= 0 || c.Step <= 0 || c.Tolerance <= 0 {
		return fmt.Errorf("mass, step and tolerance must be positive (%g, %g, %g): %w", c.Mass, c.Step, c.Tolerance, ErrInvalidArgument)
	}
	if c.Spring < 0 {
		return fmt.Errorf("spring constant must not be negative, got %g: %w", c.Spring, ErrInvalidArgument)
	}
	if c.MaxSteps == 0 {
		return fmt.Errorf("max steps must be positive: %w", ErrInvalidArgument)
	}
	return nil
}

// BandState is a snapshot of the band at a given step.
type BandState struct {
	Step      uint64
	Time      float64
	Energies  []float64
	Distances []float64
	MaxdYdt   float64
}

// Band is a chain of images relaxed toward a minimum energy path.
type Band struct {
	Y       []float64 // All the images, one after the other.
	H       *Hamiltonian
	conf    BandConfig
	buffers *VerletBuffers
	force   *NEBForce
	verlet  *QuickMinVerlet
	prev    []float64
	t       float64
	steps   uint64
	maxdYdt float64
	export  ExportConfig
	logger  kitlog.Logger
}

// NewBand returns a band interpolated between the initial and final states.
func NewBand(h *Hamiltonian, initial, final VectorField, conf BandConfig, export ExportConfig, logger kitlog.Logger) (*Band, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if h == nil || initial.Layout() != h.Layout() {
		return nil, fmt.Errorf("endpoints must share the layout of the hamiltonian: %w", ErrInvalidArgument)
	}
	y, err := InterpolateBand(initial, final, conf.Images)
	if err != nil {
		return nil, err
	}
	return NewBandFromChain(h, y, conf, export, logger)
}

// NewBandFromChain returns a band over an existing chain y, which is used in place.
func NewBandFromChain(h *Hamiltonian, y []float64, conf BandConfig, export ExportConfig, logger kitlog.Logger) (*Band, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("band needs a hamiltonian: %w", ErrInvalidArgument)
	}
	nDofs := 3 * h.Sites()
	if err := checkChain(len(y), conf.Images, nDofs); err != nil {
		return nil, err
	}
	if logger == nil {
		klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
		logger = kitlog.With(klog, "band", conf.Name)
	}
	buffers := NewVerletBuffers(len(y))
	force, err := NewNEBForce(h, conf.Images, conf.Spring, buffers.Forces)
	if err != nil {
		return nil, err
	}
	verlet, err := NewQuickMinVerlet(conf.Mass, conf.Images, nDofs, force, SpinNormaliser{h.Layout()}, buffers)
	if err != nil {
		return nil, err
	}
	// Endpoints are normalised once here, the integrator never writes them afterwards.
	if err := verlet.Normaliser.Normalise(y, conf.Images, nDofs); err != nil {
		return nil, err
	}
	return &Band{y, h, conf, buffers, force, verlet, make([]float64, len(y)), 0, 0, math.Inf(1), export, logger}, nil
}

// Image returns a view of image im.
func (b *Band) Image(im int) VectorField {
	nDofs := b.verlet.NDofsImage
	return VectorField{b.Y[im*nDofs : (im+1)*nDofs], nDofs / 3, b.H.Layout()}
}

// Time returns the current pseudo time of the band.
func (b *Band) Time() float64 {
	return b.t
}

// Steps returns the number of steps performed.
func (b *Band) Steps() uint64 {
	return b.steps
}

// Energies returns the energy of every image, as evaluated at the start of the latest step.
func (b *Band) Energies() []float64 {
	return b.force.Energies()
}

// Distances returns the distances between consecutive images, as evaluated at the start of the latest step.
func (b *Band) Distances() []float64 {
	return b.force.Distances()
}

// Barrier returns the highest energy of the band relative to the initial state.
func (b *Band) Barrier() float64 {
	e := b.Energies()
	return floats.Max(e) - e[0]
}

// Step advances the band by one step and returns max|dY/dt| of that step.
func (b *Band) Step() (float64, error) {
	copy(b.prev, b.Y)
	t, err := b.verlet.Step(b.Y, b.t, b.conf.Step)
	if err != nil {
		return 0, err
	}
	b.t = t
	b.steps++
	floats.SubTo(b.prev, b.Y, b.prev)
	b.maxdYdt = floats.Norm(b.prev, math.Inf(1)) / b.conf.Step
	return b.maxdYdt, nil
}

func (b *Band) state() BandState {
	return BandState{b.steps, b.t, append([]float64(nil), b.Energies()...), append([]float64(nil), b.Distances()...), b.maxdYdt}
}

// LogStatus logs the status of the band.
func (b *Band) LogStatus() {
	b.logger.Log("level", "info", "subsys", "neb", "step", b.steps, "t", b.t, "maxdYdt", b.maxdYdt, "barrier", b.Barrier())
}

// Relax steps the band until max|dY/dt| drops below the tolerance, the maximum number of
// steps is reached (ErrNotConverged) or the context is done.
func (b *Band) Relax(ctx context.Context) error {
	var wg sync.WaitGroup
	var histChan chan BandState
	if !b.export.IsUseless() {
		histChan = make(chan BandState, 1000) // a 1k entry buffer
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := StreamBand(b.export, histChan); err != nil {
				b.logger.Log("level", "critical", "subsys", "export", "err", err)
			}
		}()
	}
	defer func() {
		if histChan != nil {
			close(histChan)
		}
		wg.Wait() // Don't return until we're done writing all the files.
	}()

	start := time.Now()
	b.logger.Log("level", "notice", "subsys", "neb", "status", "started", "images", b.conf.Images, "sites", b.H.Sites(), "step", b.conf.Step)
	for b.steps < b.conf.MaxSteps {
		if err := ctx.Err(); err != nil {
			b.logger.Log("level", "warning", "subsys", "neb", "status", "cancelled", "step", b.steps)
			return err
		}
		dYdt, err := b.Step()
		if err != nil {
			b.logger.Log("level", "critical", "subsys", "neb", "step", b.steps, "err", err)
			return err
		}
		if histChan != nil {
			histChan <- b.state()
		}
		if b.conf.LogEvery > 0 && b.steps%b.conf.LogEvery == 0 {
			b.LogStatus()
		}
		if dYdt < b.conf.Tolerance {
			b.logger.Log("level", "notice", "subsys", "neb", "status", "converged", "steps", b.steps, "duration", time.Since(start), "barrier", b.Barrier())
			return b.summarize()
		}
	}
	b.logger.Log("level", "warning", "subsys", "neb", "status", "max steps", "steps", b.steps, "maxdYdt", b.maxdYdt)
	if err := b.summarize(); err != nil {
		return err
	}
	return fmt.Errorf("band %s after %d steps (max|dY/dt|=%g): %w", b.conf.Name, b.steps, b.maxdYdt, ErrNotConverged)
}

func (b *Band) summarize() error {
	if b.export.IsUseless() {
		return nil
	}
	return WriteSummary(b.export, b.state())
}
