package fidimag

import "fmt"

// Layout defines how the three components of each site are stored in a flat buffer.
type Layout uint8

const (
	// ComponentMajor stores all x components, then all y, then all z (stride of n sites).
	ComponentMajor Layout = iota
	// Interleaved stores x0, y0, z0, x1, y1, z1, ...
	Interleaved
)

func (l Layout) String() string {
	switch l {
	case ComponentMajor:
		return "component-major"
	case Interleaved:
		return "interleaved"
	}
	panic("cannot stringify unknown layout")
}

// LayoutFromString returns the layout matching the provided name.
func LayoutFromString(s string) (Layout, error) {
	switch s {
	case "", "component-major", "component_major":
		return ComponentMajor, nil
	case "interleaved":
		return Interleaved, nil
	}
	return ComponentMajor, fmt.Errorf("unknown layout `%s`: %w", s, ErrInvalidArgument)
}

// VectorField is a typed view over a flat buffer of 3 components per site.
// It never copies the buffer: writes through the view mutate the caller's slice.
type VectorField struct {
	data   []float64
	n      int
	layout Layout
}

// NewVectorField wraps data, which must hold exactly 3*n values.
func NewVectorField(data []float64, n int, layout Layout) (VectorField, error) {
	if n <= 0 {
		return VectorField{}, fmt.Errorf("vector field needs a positive site count, got %d: %w", n, ErrInvalidArgument)
	}
	if len(data) != 3*n {
		return VectorField{}, fmt.Errorf("vector field of %d sites needs %d values, got %d: %w", n, 3*n, len(data), ErrInvalidArgument)
	}
	if layout != ComponentMajor && layout != Interleaved {
		return VectorField{}, fmt.Errorf("unknown layout %d: %w", layout, ErrInvalidArgument)
	}
	return VectorField{data, n, layout}, nil
}

// MakeVectorField allocates a zeroed vector field of n sites.
func MakeVectorField(n int, layout Layout) VectorField {
	return VectorField{make([]float64, 3*n), n, layout}
}

// UniformVectorField allocates a vector field where every site holds v.
func UniformVectorField(n int, layout Layout, v [3]float64) VectorField {
	f := MakeVectorField(n, layout)
	for i := 0; i < n; i++ {
		f.SetVec(i, v)
	}
	return f
}

// Index returns the flat index of component c of the given site.
func (f VectorField) Index(site, c int) int {
	if f.layout == Interleaved {
		return 3*site + c
	}
	return c*f.n + site
}

// At returns component c of the given site.
func (f VectorField) At(site, c int) float64 {
	return f.data[f.Index(site, c)]
}

// Set sets component c of the given site.
func (f VectorField) Set(site, c int, v float64) {
	f.data[f.Index(site, c)] = v
}

// Vec returns the 3-vector of the given site.
func (f VectorField) Vec(site int) [3]float64 {
	return [3]float64{f.At(site, 0), f.At(site, 1), f.At(site, 2)}
}

// SetVec sets the 3-vector of the given site.
func (f VectorField) SetVec(site int, v [3]float64) {
	f.Set(site, 0, v[0])
	f.Set(site, 1, v[1])
	f.Set(site, 2, v[2])
}

// Sites returns the number of sites.
func (f VectorField) Sites() int {
	return f.n
}

// Layout returns the storage layout.
func (f VectorField) Layout() Layout {
	return f.layout
}

// Raw returns the underlying buffer.
func (f VectorField) Raw() []float64 {
	return f.data
}

// Zero resets all components.
func (f VectorField) Zero() {
	for i := range f.data {
		f.data[i] = 0
	}
}

// sameShape returns whether both views cover the same number of sites with the same layout.
func (f VectorField) sameShape(o VectorField) bool {
	return f.n == o.n && f.layout == o.layout && len(f.data) == len(o.data)
}

// checkFields makes sure all the fields match the reference (the first) and hold n sites.
func checkFields(n int, fields ...VectorField) error {
	for i, f := range fields {
		if f.n != n || len(f.data) != 3*n {
			return fmt.Errorf("field #%d holds %d sites (%d values), expected %d: %w", i, f.n, len(f.data), n, ErrInvalidArgument)
		}
		if !f.sameShape(fields[0]) {
			return fmt.Errorf("field #%d is %s while field #0 is %s: %w", i, f.layout, fields[0].layout, ErrInvalidArgument)
		}
	}
	return nil
}

// checkScalars makes sure all the per-site buffers hold n values.
func checkScalars(n int, names []string, scalars ...[]float64) error {
	for i, s := range scalars {
		if len(s) != n {
			return fmt.Errorf("%s holds %d values, expected %d: %w", names[i], len(s), n, ErrInvalidArgument)
		}
	}
	return nil
}
