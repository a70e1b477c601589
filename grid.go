package fidimag

import "fmt"

// Grid is a regular 3D lattice of nx*ny*nz sites with open boundaries.
type Grid struct {
	Nx, Ny, Nz int
	Dx, Dy, Dz float64 // Cell spacing, carried for completeness: couplings are not rescaled by it.
}

// NewGrid returns a new grid after checking its extents.
func NewGrid(nx, ny, nz int, dx, dy, dz float64) (Grid, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return Grid{}, fmt.Errorf("grid extents must be positive, got (%d, %d, %d): %w", nx, ny, nz, ErrInvalidArgument)
	}
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return Grid{}, fmt.Errorf("grid spacing must be positive, got (%g, %g, %g): %w", dx, dy, dz, ErrInvalidArgument)
	}
	return Grid{nx, ny, nz, dx, dy, dz}, nil
}

// N returns the number of sites.
func (g Grid) N() int {
	return g.Nx * g.Ny * g.Nz
}

// Index returns the flat site index of (i, j, k).
func (g Grid) Index(i, j, k int) int {
	return i*g.Ny*g.Nz + j*g.Nz + k
}

// Coords returns (i, j, k) of a flat site index.
func (g Grid) Coords(index int) (i, j, k int) {
	nyz := g.Ny * g.Nz
	i = index / nyz
	j = (index % nyz) / g.Nz
	k = index % g.Nz
	return
}

// neighbours calls fn with the index of every existing axis-aligned neighbour of a site and
// the unit vector pointing toward it. Boundaries are open.
func (g Grid) neighbours(index int, fn func(id int, r [3]float64)) {
	i, j, k := g.Coords(index)
	nyz := g.Ny * g.Nz
	if i > 0 {
		fn(index-nyz, [3]float64{-1, 0, 0})
	}
	if j > 0 {
		fn(index-g.Nz, [3]float64{0, -1, 0})
	}
	if k > 0 {
		fn(index-1, [3]float64{0, 0, -1})
	}
	if i < g.Nx-1 {
		fn(index+nyz, [3]float64{1, 0, 0})
	}
	if j < g.Ny-1 {
		fn(index+g.Nz, [3]float64{0, 1, 0})
	}
	if k < g.Nz-1 {
		fn(index+1, [3]float64{0, 0, 1})
	}
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%dx%d (d=%g,%g,%g)", g.Nx, g.Ny, g.Nz, g.Dx, g.Dy, g.Dz)
}
