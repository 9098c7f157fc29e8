package sources

import (
	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/utils"
)

// GenericHeat is the auxiliary heating stand-in (NBI/ECRH/ICRH): a Gaussian
// deposition profile carrying a prescribed total power, split between ions
// and electrons by a fixed fraction.
type GenericHeat struct {
	Params InputParameters.GenericHeatParameters
}

func (s *GenericHeat) Name() string { return "generic-heat" }

func (s *GenericHeat) Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) (c Contribution) {
	var (
		p    = s.Params
		grid = geo.Grid
	)
	switch p.Mode {
	case InputParameters.SourceModeZero:
		return
	case InputParameters.SourceModePrescribed:
		total, _ := prescribedOrNil(p.Mode, p.Prescribed, t, MWPerM3)
		c.IonHeat = utils.ScaleArray(total, p.IonFraction)
		c.ElHeat = utils.ScaleArray(total, 1-p.IonFraction)
		return
	}
	// Formula mode: Gaussian with volume integral equal to Ptot.
	dens := utils.GaussianProfile(grid.CellCenters, geo.VprCell, grid.Dr,
		p.Location, p.Width, p.Ptot*MWPerM3)
	c.IonHeat = utils.ScaleArray(dens, p.IonFraction)
	c.ElHeat = utils.ScaleArray(dens, 1-p.IonFraction)
	return
}
