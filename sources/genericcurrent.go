package sources

import (
	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/utils"
)

// GenericCurrent is the external current drive: a Gaussian current density
// carrying a prescribed fraction of the total plasma current. It feeds the
// current-diffusion equation's non-inductive source.
type GenericCurrent struct {
	Params InputParameters.GenericCurrentParameters
	Ip     float64 // total plasma current [A]
}

func (s *GenericCurrent) Name() string { return "generic-current" }

func (s *GenericCurrent) Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) (c Contribution) {
	var (
		p    = s.Params
		grid = geo.Grid
	)
	switch p.Mode {
	case InputParameters.SourceModeZero:
		return
	case InputParameters.SourceModePrescribed:
		c.Current, _ = prescribedOrNil(p.Mode, p.Prescribed, t, 1)
		return
	}
	c.Current = utils.GaussianProfile(grid.CellCenters, geo.SprCell, grid.Dr,
		p.Location, p.Width, p.Fraction*s.Ip)
	return
}
