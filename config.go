package fidimag

import (
	"fmt"

	"github.com/Xing-Huang/fidimag/integrator"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Scenario is everything needed to compute a minimum energy path, as read from a TOML file.
type Scenario struct {
	Grid   Grid
	Layout Layout
	// Material
	MuS, J, Ku, Kc, D float64
	DMI               DMIType
	Axis, Zeeman      [3]float64
	// Endpoints
	Initial, Final [3]float64
	// Endpoint relaxation
	RelaxEndpoints bool
	Relax          RelaxOptions
	// NEB
	Band   BandConfig
	Export ExportConfig
}

// setDefaults sets the default values of every optional key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("grid.ny", 1)
	v.SetDefault("grid.nz", 1)
	v.SetDefault("grid.dx", 1.0)
	v.SetDefault("grid.dy", 1.0)
	v.SetDefault("grid.dz", 1.0)
	v.SetDefault("grid.layout", ComponentMajor.String())
	v.SetDefault("material.mu_s", 1.0)
	v.SetDefault("material.axis", []float64{0, 0, 1})
	v.SetDefault("material.zeeman", []float64{0, 0, 0})
	v.SetDefault("material.dmi_type", BulkDMI.String())
	def := DefaultRelaxOptions()
	v.SetDefault("relax.enabled", false)
	v.SetDefault("relax.method", def.Method.String())
	v.SetDefault("relax.step", def.Step)
	v.SetDefault("relax.max_iter", def.MaxIter)
	v.SetDefault("relax.tolerance", def.Tolerance)
	band := DefaultBandConfig("band", 10)
	v.SetDefault("neb.name", band.Name)
	v.SetDefault("neb.images", band.Images)
	v.SetDefault("neb.spring", band.Spring)
	v.SetDefault("neb.mass", band.Mass)
	v.SetDefault("neb.step", band.Step)
	v.SetDefault("neb.max_steps", band.MaxSteps)
	v.SetDefault("neb.tolerance", band.Tolerance)
	v.SetDefault("neb.log_every", band.LogEvery)
	v.SetDefault("output.directory", ".")
	v.SetDefault("output.csv", false)
	v.SetDefault("output.summary", false)
	v.SetDefault("output.timestamp", false)
}

// LoadScenario reads and validates the scenario TOML file at path.
func LoadScenario(path string) (Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return ScenarioFromViper(v)
}

// ScenarioFromViper reads a scenario from an already loaded viper instance.
func ScenarioFromViper(v *viper.Viper) (s Scenario, err error) {
	setDefaults(v)
	if !v.IsSet("grid.nx") {
		return s, fmt.Errorf("grid.nx is missing: %w", ErrInvalidArgument)
	}
	if s.Grid, err = NewGrid(v.GetInt("grid.nx"), v.GetInt("grid.ny"), v.GetInt("grid.nz"), v.GetFloat64("grid.dx"), v.GetFloat64("grid.dy"), v.GetFloat64("grid.dz")); err != nil {
		return s, err
	}
	if s.Layout, err = LayoutFromString(v.GetString("grid.layout")); err != nil {
		return s, err
	}

	s.MuS = v.GetFloat64("material.mu_s")
	s.J = v.GetFloat64("material.J")
	s.Ku = v.GetFloat64("material.Ku")
	s.Kc = v.GetFloat64("material.Kc")
	s.D = v.GetFloat64("material.D")
	if s.DMI, err = DMITypeFromString(v.GetString("material.dmi_type")); err != nil {
		return s, err
	}
	for key, dst := range map[string]*[3]float64{"material.axis": &s.Axis, "material.zeeman": &s.Zeeman, "endpoints.initial": &s.Initial, "endpoints.final": &s.Final} {
		if *dst, err = readVector(v, key); err != nil {
			return s, err
		}
	}

	s.RelaxEndpoints = v.GetBool("relax.enabled")
	if s.Relax.Method, err = integrator.MethodFromString(v.GetString("relax.method")); err != nil {
		return s, fmt.Errorf("relax.method: %s: %w", err, ErrInvalidArgument)
	}
	s.Relax.Step = v.GetFloat64("relax.step")
	s.Relax.MaxIter = v.GetUint64("relax.max_iter")
	s.Relax.Tolerance = v.GetFloat64("relax.tolerance")

	s.Band = BandConfig{
		Name:      v.GetString("neb.name"),
		Images:    v.GetInt("neb.images"),
		Spring:    v.GetFloat64("neb.spring"),
		Mass:      v.GetFloat64("neb.mass"),
		Step:      v.GetFloat64("neb.step"),
		MaxSteps:  v.GetUint64("neb.max_steps"),
		Tolerance: v.GetFloat64("neb.tolerance"),
		LogEvery:  v.GetUint64("neb.log_every"),
	}
	filename := v.GetString("output.filename")
	if filename == "" {
		filename = s.Band.Name
	}
	s.Export = ExportConfig{v.GetString("output.directory"), filename, v.GetBool("output.csv"), v.GetBool("output.summary"), v.GetBool("output.timestamp")}
	return s, s.Validate()
}

// readVector reads a three component array.
func readVector(v *viper.Viper, key string) (vec [3]float64, err error) {
	if !v.IsSet(key) {
		return vec, fmt.Errorf("%s is missing: %w", key, ErrInvalidArgument)
	}
	raw, err := cast.ToSliceE(v.Get(key))
	if err != nil {
		// Defaults are set as []float64, which cast does not turn into []interface{}.
		if fl, ok := v.Get(key).([]float64); ok {
			raw = make([]interface{}, len(fl))
			for i, f := range fl {
				raw[i] = f
			}
		} else {
			return vec, fmt.Errorf("%s: %s: %w", key, err, ErrInvalidArgument)
		}
	}
	if len(raw) != 3 {
		return vec, fmt.Errorf("%s must have 3 components, got %d: %w", key, len(raw), ErrInvalidArgument)
	}
	for i, c := range raw {
		if vec[i], err = cast.ToFloat64E(c); err != nil {
			return vec, fmt.Errorf("%s[%d]: %s: %w", key, i, err, ErrInvalidArgument)
		}
	}
	return vec, nil
}

// Validate checks the consistency of the scenario.
func (s Scenario) Validate() error {
	if s.MuS <= 0 {
		return fmt.Errorf("material.mu_s must be positive, got %g: %w", s.MuS, ErrInvalidArgument)
	}
	if norm(s.Initial) == 0 || norm(s.Final) == 0 {
		return fmt.Errorf("endpoint directions may not be nil: %w", ErrInvalidArgument)
	}
	if s.Ku != 0 && norm(s.Axis) == 0 {
		return fmt.Errorf("material.axis may not be nil with a uniaxial anisotropy: %w", ErrInvalidArgument)
	}
	if s.RelaxEndpoints && (s.Relax.Step <= 0 || s.Relax.Tolerance <= 0) {
		return fmt.Errorf("relax.step and relax.tolerance must be positive: %w", ErrInvalidArgument)
	}
	return s.Band.Validate()
}

// Hamiltonian builds the interactions of the scenario. Interactions with a nil strength are skipped.
func (s Scenario) Hamiltonian() (*Hamiltonian, error) {
	n := s.Grid.N()
	m := UniformMaterial(n, s.MuS)
	h, err := NewHamiltonian(n, s.Layout)
	if err != nil {
		return nil, err
	}
	var inters []Interaction
	if s.J != 0 {
		exch, err := NewExchange(s.J, s.Grid, m, s.Layout)
		if err != nil {
			return nil, err
		}
		inters = append(inters, exch)
	}
	if s.D != 0 {
		dmi, err := NewDMI(s.D, s.DMI, s.Grid, m, s.Layout)
		if err != nil {
			return nil, err
		}
		inters = append(inters, dmi)
	}
	if s.Ku != 0 {
		anis, err := NewUniaxialAnisotropy(uniform(n, s.Ku), UniformVectorField(n, s.Layout, unit(s.Axis)), m)
		if err != nil {
			return nil, err
		}
		inters = append(inters, anis)
	}
	if s.Kc != 0 {
		cubic, err := NewCubicAnisotropy(uniform(n, s.Kc), m, s.Layout)
		if err != nil {
			return nil, err
		}
		inters = append(inters, cubic)
	}
	if norm(s.Zeeman) != 0 {
		zee, err := NewZeeman(UniformVectorField(n, s.Layout, s.Zeeman), m)
		if err != nil {
			return nil, err
		}
		inters = append(inters, zee)
	}
	for _, i := range inters {
		if err := h.Add(i); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Endpoints returns the uniform initial and final states of the scenario.
func (s Scenario) Endpoints() (initial, final VectorField) {
	n := s.Grid.N()
	return UniformVectorField(n, s.Layout, unit(s.Initial)), UniformVectorField(n, s.Layout, unit(s.Final))
}

func uniform(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
