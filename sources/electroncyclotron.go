package sources

import (
	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/utils"
)

// ecCD is 2*pi*eps0^2/e^3 collapsed onto the working units: Te in keV, ne in
// 10^20 m^-3, power density in MW/m^3, current density in A/m^2.
const ecCD = 1.92e5

// ElectronCyclotron deposits a Gaussian electron heating profile and drives
// a current density tied to it through the local dimensionless current-drive
// efficiency zeta:
//
//	j_ec = 2 pi eps0^2/e^3 * zeta * (Te/ne) * p_ec
//
// so the electron heat and current-diffusion equations always see the source
// together.
type ElectronCyclotron struct {
	Params InputParameters.ECParameters
}

func (s *ElectronCyclotron) Name() string { return "electron-cyclotron" }

func (s *ElectronCyclotron) Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) (c Contribution) {
	var (
		p    = s.Params
		grid = geo.Grid
		dens []float64 // power density [MW/m^3]
	)
	switch p.Mode {
	case InputParameters.SourceModeZero:
		return
	case InputParameters.SourceModePrescribed:
		dens = p.Prescribed.Eval(t)
	default:
		dens = utils.GaussianProfile(grid.CellCenters, geo.VprCell, grid.Dr,
			p.Location, p.Width, p.Ptot)
	}
	c.ElHeat = utils.ScaleArray(dens, MWPerM3)
	c.Current = make([]float64, grid.N)
	for i := range dens {
		c.Current[i] = ecCD * p.CDEfficiency * cp.TempEl.Value[i] / cp.Ne.Value[i] * dens[i]
	}
	return
}
