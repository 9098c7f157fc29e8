// Package InputParameters defines the YAML-backed simulation parameters and
// their validation. Validation runs once, before any step executes; a bad
// configuration never reaches the solver.
package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// SimParameters obtained from the YAML input file.
type SimParameters struct {
	Title     string              `yaml:"Title"`
	NCells    int                 `yaml:"NCells"`
	Geometry  GeometryParameters  `yaml:"Geometry"`
	Numerics  NumericsParameters  `yaml:"Numerics"`
	Profiles  ProfileParameters   `yaml:"Profiles"`
	Pedestal  PedestalParameters  `yaml:"Pedestal"`
	Transport TransportParameters `yaml:"Transport"`
	Sources   SourcesParameters   `yaml:"Sources"`
}

type GeometryParameters struct {
	Rmaj  float64 `yaml:"Rmaj"`  // major radius [m]
	Rmin  float64 `yaml:"Rmin"`  // minor radius [m]
	B0    float64 `yaml:"B0"`    // toroidal field on axis [T]
	Kappa float64 `yaml:"Kappa"` // elongation
}

type NumericsParameters struct {
	TInitial float64 `yaml:"TInitial"`
	TFinal   float64 `yaml:"TFinal"`

	DtInitial float64 `yaml:"DtInitial"`
	DtMin     float64 `yaml:"DtMin"`
	DtMax     float64 `yaml:"DtMax"`
	DtGrowth  float64 `yaml:"DtGrowth"` // step growth factor after an easy accept

	Tolerance      float64 `yaml:"Tolerance"`      // nonlinear residual tolerance
	MaxIterations  int     `yaml:"MaxIterations"`  // corrector iteration budget
	EasyIterations int     `yaml:"EasyIterations"` // accept at or below this count grows dt
	Relaxation     float64 `yaml:"Relaxation"`     // corrector under-relaxation in (0,1]
	Predictor      bool    `yaml:"Predictor"`      // linear extrapolation predictor
	FrozenCoeffs   bool    `yaml:"FrozenCoeffs"`   // single linear implicit solve per step

	QCorrection float64 `yaml:"QCorrection"`

	EvolveIonHeat bool `yaml:"EvolveIonHeat"`
	EvolveElHeat  bool `yaml:"EvolveElHeat"`
	EvolveDensity bool `yaml:"EvolveDensity"`

	LogFrequency int `yaml:"LogFrequency"`
}

// ProfileSpec gives a parabolic initial profile value(rho) =
// Edge + (Axis-Edge)*(1-rho^2). Edge doubles as the derivable boundary value
// when no explicit BoundRight is set.
type ProfileSpec struct {
	Axis       float64  `yaml:"Axis"`
	Edge       *float64 `yaml:"Edge"`
	BoundRight *float64 `yaml:"BoundRight"`
}

// BoundaryValue resolves the outer boundary value: an explicit BoundRight
// wins over the profile's rho=1 value. The second return reports whether the
// explicit value was used.
func (p ProfileSpec) BoundaryValue() (v float64, explicit bool, err error) {
	if p.BoundRight != nil {
		return *p.BoundRight, true, nil
	}
	if p.Edge != nil {
		return *p.Edge, false, nil
	}
	return 0, false, fmt.Errorf("profile has neither an explicit boundary value nor an edge value at rho=1")
}

// Value evaluates the initial profile at rho.
func (p ProfileSpec) Value(rho float64) float64 {
	var edge float64
	if p.Edge != nil {
		edge = *p.Edge
	} else if p.BoundRight != nil {
		edge = *p.BoundRight
	}
	return edge + (p.Axis-edge)*(1-rho*rho)
}

type ProfileParameters struct {
	IpTot float64 `yaml:"IpTot"` // total plasma current [MA]

	Ti ProfileSpec `yaml:"Ti"`
	Te ProfileSpec `yaml:"Te"`
	Ne ProfileSpec `yaml:"Ne"`

	// Optional prescribed initial psi on the cell grid. When absent the
	// initial flux comes from the "nu formula" current profile.
	Psi []float64 `yaml:"Psi"`

	// Line-averaged density renormalization. Disabled automatically when an
	// explicit Ne boundary value is set.
	NormalizeToNbar bool    `yaml:"NormalizeToNbar"`
	Nbar            float64 `yaml:"Nbar"`
	NeIsGreenwald   bool    `yaml:"NeIsGreenwald"` // Nbar given as Greenwald fraction

	// Peaking exponent of the initial "Ohmic" current johm ~ (1-rho^2)^Nu.
	Nu float64 `yaml:"Nu"`
	// Treat the nu-formula current as the total current at initialization
	// instead of adding non-inductive contributions.
	InitialJIsTotal bool `yaml:"InitialJIsTotal"`

	Zi   float64 `yaml:"Zi"`
	Ai   float64 `yaml:"Ai"`
	Zimp float64 `yaml:"Zimp"`
	Aimp float64 `yaml:"Aimp"`
	Zeff float64 `yaml:"Zeff"`
}

type PedestalParameters struct {
	Set    float64 `yaml:"Set"` // 0 disables; kept numeric for time-series use
	RhoPed float64 `yaml:"RhoPed"`
	TiPed  float64 `yaml:"TiPed"`
	TePed  float64 `yaml:"TePed"`
	NePed  float64 `yaml:"NePed"`
}

func (p PedestalParameters) Enabled() bool { return p.Set != 0 }

type TransportParameters struct {
	Model string `yaml:"Model"` // constant | CGM | bohm-gyrobohm | surrogate | surrogate-based

	ChiMin float64 `yaml:"ChiMin"`
	ChiMax float64 `yaml:"ChiMax"`
	DMin   float64 `yaml:"DMin"`
	DMax   float64 `yaml:"DMax"`

	SmoothingSigma    float64 `yaml:"SmoothingSigma"`
	QSawtoothProxy    bool    `yaml:"QSawtoothProxy"`
	AvoidBigNegativeS bool    `yaml:"AvoidBigNegativeS"`

	Constant  ConstantTransportParameters  `yaml:"Constant"`
	CGM       CGMTransportParameters       `yaml:"CGM"`
	BgB       BgBTransportParameters       `yaml:"BgB"`
	Surrogate SurrogateTransportParameters `yaml:"Surrogate"`
}

type ConstantTransportParameters struct {
	ChiI float64 `yaml:"ChiI"`
	ChiE float64 `yaml:"ChiE"`
	De   float64 `yaml:"De"`
	Ve   float64 `yaml:"Ve"`
}

type CGMTransportParameters struct {
	Threshold float64 `yaml:"Threshold"` // critical normalized gradient R/LTi
	Stiffness float64 `yaml:"Stiffness"`
	Exponent  float64 `yaml:"Exponent"`
	ChiRatio  float64 `yaml:"ChiRatio"` // chi_e/chi_i
	DRatio    float64 `yaml:"DRatio"`   // D_e/chi_e
}

type BgBTransportParameters struct {
	BohmCoeff     float64 `yaml:"BohmCoeff"`
	GyroBohmCoeff float64 `yaml:"GyroBohmCoeff"`
	ChiIonFactor  float64 `yaml:"ChiIonFactor"`
	DFactor       float64 `yaml:"DFactor"`
}

type SurrogateTransportParameters struct {
	CollMult     float64 `yaml:"CollMult"`
	FluxScale    float64 `yaml:"FluxScale"`
	PinchScale   float64 `yaml:"PinchScale"`
	DVEffRatio   float64 `yaml:"DVEffRatio"`
	SmagAlphaFix bool    `yaml:"SmagAlphaFix"`
}

type SourceMode string

const (
	SourceModeZero       SourceMode = "zero"
	SourceModeFormula    SourceMode = "formula"
	SourceModePrescribed SourceMode = "prescribed"
)

// PrescribedProfile is a time series of cell-grid profiles; evaluation
// interpolates linearly in time and bypasses any formula.
type PrescribedProfile struct {
	Times    []float64   `yaml:"Times"`
	Profiles [][]float64 `yaml:"Profiles"`
}

type SourcesParameters struct {
	GenericHeat       GenericHeatParameters    `yaml:"GenericHeat"`
	GenericCurrent    GenericCurrentParameters `yaml:"GenericCurrent"`
	ElectronCyclotron ECParameters             `yaml:"ElectronCyclotron"`
	Fusion            SimpleSourceParameters   `yaml:"Fusion"`
	OhmicHeat         SimpleSourceParameters   `yaml:"OhmicHeat"`
	Bootstrap         BootstrapParameters      `yaml:"Bootstrap"`
	Bremsstrahlung    SimpleSourceParameters   `yaml:"Bremsstrahlung"`
	QeiExchange       QeiParameters            `yaml:"QeiExchange"`
}

type SimpleSourceParameters struct {
	Mode       SourceMode        `yaml:"Mode"`
	Prescribed PrescribedProfile `yaml:"Prescribed"`
}

type GenericHeatParameters struct {
	Mode        SourceMode        `yaml:"Mode"`
	Ptot        float64           `yaml:"Ptot"` // total injected power [MW]
	Location    float64           `yaml:"Location"`
	Width       float64           `yaml:"Width"`
	IonFraction float64           `yaml:"IonFraction"`
	Prescribed  PrescribedProfile `yaml:"Prescribed"`
}

type GenericCurrentParameters struct {
	Mode       SourceMode        `yaml:"Mode"`
	Fraction   float64           `yaml:"Fraction"` // fraction of Ip driven externally
	Location   float64           `yaml:"Location"`
	Width      float64           `yaml:"Width"`
	Prescribed PrescribedProfile `yaml:"Prescribed"`
	// TotalCurrent treats the external drive as the full non-inductive
	// current, suppressing the Ohmic-current closure to avoid double
	// counting. Mutually exclusive with a formula-mode bootstrap source.
	TotalCurrent bool `yaml:"TotalCurrent"`
}

// ECParameters configures electron-cyclotron heating. The deposited power
// heats the electrons and drives a current density linked to it through the
// local current-drive efficiency, so the heat and psi equations always see
// the source together.
type ECParameters struct {
	Mode     SourceMode `yaml:"Mode"`
	Ptot     float64    `yaml:"Ptot"` // total injected power [MW]
	Location float64    `yaml:"Location"`
	Width    float64    `yaml:"Width"`
	// CDEfficiency is the dimensionless local current-drive efficiency zeta.
	CDEfficiency float64           `yaml:"CDEfficiency"`
	Prescribed   PrescribedProfile `yaml:"Prescribed"` // power density [MW/m^3]
}

type BootstrapParameters struct {
	Mode SourceMode `yaml:"Mode"`
	Mult float64    `yaml:"Mult"`
}

type QeiParameters struct {
	Mode SourceMode `yaml:"Mode"`
	Mult float64    `yaml:"Mult"`
}

func (sp *SimParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, sp)
}

func (sp *SimParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", sp.Title)
	fmt.Printf("[%d]\t\t\t= NCells\n", sp.NCells)
	fmt.Printf("%8.5f\t\t= TInitial\n", sp.Numerics.TInitial)
	fmt.Printf("%8.5f\t\t= TFinal\n", sp.Numerics.TFinal)
	fmt.Printf("%8.5f\t\t= DtInitial\n", sp.Numerics.DtInitial)
	fmt.Printf("%8.2e\t\t= Tolerance\n", sp.Numerics.Tolerance)
	fmt.Printf("[%s]\t\t\t= Transport Model\n", sp.Transport.Model)
	fmt.Printf("[%v]\t\t\t= Pedestal\n", sp.Pedestal.Enabled())
}

// Defaults fills unset values with a workable ITER-like baseline.
func Defaults() (sp *SimParameters) {
	one := 1.0
	sp = &SimParameters{
		Title:  "baseline",
		NCells: 25,
		Geometry: GeometryParameters{
			Rmaj:  6.2,
			Rmin:  2.0,
			B0:    5.3,
			Kappa: 1.72,
		},
		Numerics: NumericsParameters{
			TInitial:       0,
			TFinal:         5,
			DtInitial:      1e-2,
			DtMin:          1e-8,
			DtMax:          2e-1,
			DtGrowth:       1.5,
			Tolerance:      1e-7,
			MaxIterations:  30,
			EasyIterations: 5,
			Relaxation:     1.0,
			QCorrection:    1.25,
			EvolveIonHeat:  true,
			EvolveElHeat:   true,
			EvolveDensity:  true,
			LogFrequency:   50,
		},
		Profiles: ProfileParameters{
			IpTot:           15,
			Ti:              ProfileSpec{Axis: 15, Edge: &one},
			Te:              ProfileSpec{Axis: 15, Edge: &one},
			Ne:              ProfileSpec{Axis: 1.5, Edge: &one},
			NormalizeToNbar: true,
			Nbar:            0.85,
			NeIsGreenwald:   true,
			Nu:              3,
			Zi:              1,
			Ai:              2.5,
			Zimp:            10,
			Aimp:            20.18,
			Zeff:            1.6,
		},
		Pedestal: PedestalParameters{
			Set:    1,
			RhoPed: 0.91,
			TiPed:  4.5,
			TePed:  4.5,
			NePed:  0.62,
		},
		Transport: TransportParameters{
			Model:             "constant",
			ChiMin:            0.05,
			ChiMax:            100,
			DMin:              0.05,
			DMax:              100,
			SmoothingSigma:    0,
			QSawtoothProxy:    true,
			AvoidBigNegativeS: true,
			Constant:          ConstantTransportParameters{ChiI: 1, ChiE: 1, De: 1, Ve: -0.33},
			CGM:               CGMTransportParameters{Threshold: 2, Stiffness: 2, Exponent: 2, ChiRatio: 2, DRatio: 0.2},
			BgB:               BgBTransportParameters{BohmCoeff: 8e-5, GyroBohmCoeff: 5e-6, ChiIonFactor: 2, DFactor: 0.1},
			Surrogate:         SurrogateTransportParameters{CollMult: 1, FluxScale: 1, PinchScale: 0.3, DVEffRatio: 0.5},
		},
		Sources: SourcesParameters{
			GenericHeat:       GenericHeatParameters{Mode: SourceModeFormula, Ptot: 51, Location: 0.36, Width: 0.18, IonFraction: 0.5},
			GenericCurrent:    GenericCurrentParameters{Mode: SourceModeFormula, Fraction: 0.2, Location: 0.4, Width: 0.2},
			ElectronCyclotron: ECParameters{Mode: SourceModeZero, Ptot: 10, Location: 0.35, Width: 0.1, CDEfficiency: 0.2},
			Fusion:            SimpleSourceParameters{Mode: SourceModeFormula},
			OhmicHeat:         SimpleSourceParameters{Mode: SourceModeFormula},
			Bootstrap:         BootstrapParameters{Mode: SourceModeFormula, Mult: 1},
			Bremsstrahlung:    SimpleSourceParameters{Mode: SourceModeFormula},
			QeiExchange:       QeiParameters{Mode: SourceModeFormula, Mult: 1},
		},
	}
	return
}

// Validate checks the full configuration eagerly. Any error returned here is
// a configuration error: the simulation refuses to start.
func (sp *SimParameters) Validate() error {
	if sp.NCells < 4 {
		return fmt.Errorf("NCells = %d, need at least 4 cells", sp.NCells)
	}
	if sp.Geometry.Rmaj <= 0 || sp.Geometry.Rmin <= 0 || sp.Geometry.Rmin >= sp.Geometry.Rmaj {
		return fmt.Errorf("geometry requires 0 < Rmin < Rmaj, got Rmin=%g Rmaj=%g",
			sp.Geometry.Rmin, sp.Geometry.Rmaj)
	}
	if sp.Geometry.B0 <= 0 || sp.Geometry.Kappa <= 0 {
		return fmt.Errorf("geometry requires B0 > 0 and Kappa > 0")
	}
	n := sp.Numerics
	if n.TFinal < n.TInitial {
		return fmt.Errorf("TFinal = %g precedes TInitial = %g", n.TFinal, n.TInitial)
	}
	if n.DtMin <= 0 || n.DtInitial < n.DtMin || n.DtMax < n.DtInitial {
		return fmt.Errorf("need 0 < DtMin <= DtInitial <= DtMax, got %g, %g, %g",
			n.DtMin, n.DtInitial, n.DtMax)
	}
	if n.Tolerance <= 0 {
		return fmt.Errorf("Tolerance must be positive, got %g", n.Tolerance)
	}
	if n.MaxIterations < 1 && !n.FrozenCoeffs {
		return fmt.Errorf("MaxIterations must be at least 1 unless FrozenCoeffs is set")
	}
	if n.Relaxation <= 0 || n.Relaxation > 1 {
		return fmt.Errorf("Relaxation must lie in (0, 1], got %g", n.Relaxation)
	}
	for name, p := range map[string]ProfileSpec{
		"Ti": sp.Profiles.Ti, "Te": sp.Profiles.Te, "Ne": sp.Profiles.Ne,
	} {
		if _, _, err := p.BoundaryValue(); err != nil {
			return fmt.Errorf("%s: %v", name, err)
		}
	}
	if len(sp.Profiles.Psi) != 0 && len(sp.Profiles.Psi) != sp.NCells {
		return fmt.Errorf("prescribed Psi has %d cells, mesh has %d", len(sp.Profiles.Psi), sp.NCells)
	}
	if sp.Profiles.Zeff < sp.Profiles.Zi || sp.Profiles.Zeff >= sp.Profiles.Zimp {
		return fmt.Errorf("Zeff = %g must lie in [Zi, Zimp) = [%g, %g)",
			sp.Profiles.Zeff, sp.Profiles.Zi, sp.Profiles.Zimp)
	}
	if sp.Pedestal.Enabled() && (sp.Pedestal.RhoPed <= 0 || sp.Pedestal.RhoPed >= 1) {
		return fmt.Errorf("pedestal location RhoPed = %g must lie inside (0, 1)", sp.Pedestal.RhoPed)
	}
	switch sp.Transport.Model {
	case "constant", "CGM", "bohm-gyrobohm", "surrogate", "surrogate-based":
	default:
		return fmt.Errorf("unknown transport model %q", sp.Transport.Model)
	}
	if sp.Sources.GenericCurrent.TotalCurrent && sp.Sources.Bootstrap.Mode != SourceModeZero {
		return fmt.Errorf("GenericCurrent.TotalCurrent and a non-zero bootstrap source both claim the non-inductive current; disable one")
	}
	if sp.Sources.GenericCurrent.TotalCurrent && sp.Sources.ElectronCyclotron.Mode != SourceModeZero {
		return fmt.Errorf("GenericCurrent.TotalCurrent and an electron-cyclotron drive both claim the non-inductive current; disable one")
	}
	for name, pre := range map[string]SimpleSourceParameters{
		"Fusion": sp.Sources.Fusion, "OhmicHeat": sp.Sources.OhmicHeat,
		"Bremsstrahlung": sp.Sources.Bremsstrahlung,
	} {
		if pre.Mode == SourceModePrescribed {
			if err := pre.Prescribed.check(sp.NCells); err != nil {
				return fmt.Errorf("%s: %v", name, err)
			}
		}
	}
	if sp.Sources.GenericHeat.Mode == SourceModePrescribed {
		if err := sp.Sources.GenericHeat.Prescribed.check(sp.NCells); err != nil {
			return fmt.Errorf("GenericHeat: %v", err)
		}
	}
	if sp.Sources.GenericCurrent.Mode == SourceModePrescribed {
		if err := sp.Sources.GenericCurrent.Prescribed.check(sp.NCells); err != nil {
			return fmt.Errorf("GenericCurrent: %v", err)
		}
	}
	if sp.Sources.ElectronCyclotron.Mode == SourceModePrescribed {
		if err := sp.Sources.ElectronCyclotron.Prescribed.check(sp.NCells); err != nil {
			return fmt.Errorf("ElectronCyclotron: %v", err)
		}
	}
	return nil
}

func (pp PrescribedProfile) check(nCells int) error {
	if len(pp.Times) == 0 || len(pp.Times) != len(pp.Profiles) {
		return fmt.Errorf("prescribed profile needs matching Times and Profiles, got %d and %d",
			len(pp.Times), len(pp.Profiles))
	}
	for i, p := range pp.Profiles {
		if len(p) != nCells {
			return fmt.Errorf("prescribed profile %d has %d cells, mesh has %d", i, len(p), nCells)
		}
	}
	for i := 1; i < len(pp.Times); i++ {
		if pp.Times[i] <= pp.Times[i-1] {
			return fmt.Errorf("prescribed profile times must increase")
		}
	}
	return nil
}

// Eval interpolates the prescribed profile linearly at time t, clamping to
// the first/last entry outside the covered interval.
func (pp PrescribedProfile) Eval(t float64) (p []float64) {
	var (
		n = len(pp.Times)
	)
	if n == 0 {
		return nil
	}
	if t <= pp.Times[0] {
		return append([]float64(nil), pp.Profiles[0]...)
	}
	if t >= pp.Times[n-1] {
		return append([]float64(nil), pp.Profiles[n-1]...)
	}
	k := 1
	for pp.Times[k] < t {
		k++
	}
	var (
		t0, t1 = pp.Times[k-1], pp.Times[k]
		w      = (t - t0) / (t1 - t0)
	)
	p = make([]float64, len(pp.Profiles[k]))
	for i := range p {
		p[i] = (1-w)*pp.Profiles[k-1][i] + w*pp.Profiles[k][i]
	}
	return
}
