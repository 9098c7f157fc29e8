// Package sources defines the pluggable source and sink terms of the
// transport equations. Every source is a pure function of the simulation
// time, the profile state and the geometry, recomputed at each nonlinear
// iterate and never cached across time steps.
//
// Internal heat units are 10^20 keV m^-3 s^-1; MWPerM3 converts a power
// density in MW/m^3. Particle sources are 10^20 m^-3 s^-1, current densities
// A/m^2.
package sources

import (
	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/utils"
)

// MWPerM3 is 1 MW/m^3 expressed in internal heat units.
const MWPerM3 = 62.415

// Contribution is one source's output on the cell grid. Nil slices mean the
// source does not affect that equation.
type Contribution struct {
	IonHeat    []float64
	ElHeat     []float64
	ParticleEl []float64
	Current    []float64 // non-inductive current density [A/m^2]
	QeiCoef    []float64 // implicit ion-electron exchange coefficient
}

// Source is the closure contract for one physical source variant.
type Source interface {
	Name() string
	Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) Contribution
}

// Profiles is the summed ephemeral result of evaluating every configured
// source at one iterate, with the per-source contributions retained for
// diagnostics.
type Profiles struct {
	IonHeat    []float64
	ElHeat     []float64
	ParticleEl []float64
	Current    []float64
	QeiCoef    []float64

	Jext       []float64 // external-drive share of Current
	Jbootstrap []float64 // bootstrap share of Current

	ByName map[string]Contribution
}

// Models aggregates the configured sources. TotalCurrent marks the external
// drive as representing the entire non-inductive current, which suppresses
// the Ohmic-current closure; the mode is validated to be mutually exclusive
// with a formula bootstrap source.
type Models struct {
	List         []Source
	TotalCurrent bool
}

// NewModels builds the source set from the validated configuration.
func NewModels(sp *InputParameters.SimParameters) (m *Models) {
	var (
		src = sp.Sources
	)
	m = &Models{TotalCurrent: src.GenericCurrent.TotalCurrent}
	m.List = []Source{
		&GenericHeat{Params: src.GenericHeat},
		&GenericCurrent{Params: src.GenericCurrent, Ip: sp.Profiles.IpTot * 1e6},
		&ElectronCyclotron{Params: src.ElectronCyclotron},
		&FusionHeat{Params: src.Fusion},
		&OhmicHeat{Params: src.OhmicHeat},
		&BootstrapCurrent{Params: src.Bootstrap},
		&Bremsstrahlung{Params: src.Bremsstrahlung},
		&QeiExchange{Params: src.QeiExchange},
	}
	return
}

// Compute evaluates every source and sums the per-equation densities.
func (m *Models) Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) (p Profiles) {
	var (
		N = geo.Grid.N
	)
	p = Profiles{
		IonHeat:    make([]float64, N),
		ElHeat:     make([]float64, N),
		ParticleEl: make([]float64, N),
		Current:    make([]float64, N),
		QeiCoef:    make([]float64, N),
		Jext:       make([]float64, N),
		Jbootstrap: make([]float64, N),
		ByName:     make(map[string]Contribution, len(m.List)),
	}
	add := func(dst, src []float64) {
		for i := range src {
			dst[i] += src[i]
		}
	}
	for _, s := range m.List {
		c := s.Compute(t, cp, geo)
		p.ByName[s.Name()] = c
		if c.IonHeat != nil {
			add(p.IonHeat, c.IonHeat)
		}
		if c.ElHeat != nil {
			add(p.ElHeat, c.ElHeat)
		}
		if c.ParticleEl != nil {
			add(p.ParticleEl, c.ParticleEl)
		}
		if c.Current != nil {
			add(p.Current, c.Current)
			switch s.Name() {
			case "generic-current", "electron-cyclotron":
				add(p.Jext, c.Current)
			case "bootstrap":
				add(p.Jbootstrap, c.Current)
			}
		}
		if c.QeiCoef != nil {
			add(p.QeiCoef, c.QeiCoef)
		}
	}
	return
}

// prescribedOrNil evaluates a prescribed profile when the mode asks for it,
// converting with the given unit factor; the bool reports whether the
// prescribed path was taken.
func prescribedOrNil(mode InputParameters.SourceMode, pp InputParameters.PrescribedProfile, t, unit float64) ([]float64, bool) {
	if mode != InputParameters.SourceModePrescribed {
		return nil, false
	}
	return utils.ScaleArray(pp.Eval(t), unit), true
}
