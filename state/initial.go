package state

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/fvm"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/physics"
	"github.com/plasmakit/gotransp/utils"
)

// NewInitialProfiles constructs the t = TInitial state from the validated
// parameters: parabolic analytic profiles (or prescribed ones), boundary
// conditions honoring the explicit-value-wins precedence, the nu-formula
// initial current, and the flux profile consistent with that current.
func NewInitialProfiles(sp *InputParameters.SimParameters, geo *geometry.Geometry) (cp *CoreProfiles, err error) {
	var (
		grid = geo.Grid
		N    = grid.N
		ip   = sp.Profiles.IpTot * 1e6
	)
	cp = &CoreProfiles{
		Zi:          sp.Profiles.Zi,
		Ai:          sp.Profiles.Ai,
		Zimp:        sp.Profiles.Zimp,
		Aimp:        sp.Profiles.Aimp,
		Zeff:        sp.Profiles.Zeff,
		QCorrection: sp.Numerics.QCorrection,
	}

	if cp.TempIon, err = buildProfile(sp.Profiles.Ti, grid); err != nil {
		return nil, err
	}
	if cp.TempEl, err = buildProfile(sp.Profiles.Te, grid); err != nil {
		return nil, err
	}
	if cp.Ne, err = buildProfile(sp.Profiles.Ne, grid); err != nil {
		return nil, err
	}

	// Density renormalization to the requested line-averaged value. An
	// explicit boundary value is absolute and disables the renormalization.
	_, explicitNe, _ := sp.Profiles.Ne.BoundaryValue()
	if sp.Profiles.NormalizeToNbar && !explicitNe {
		target := sp.Profiles.Nbar
		if sp.Profiles.NeIsGreenwald {
			target *= physics.GreenwaldDensity(geo, ip)
		}
		var avg float64
		for _, v := range cp.Ne.Value {
			avg += v * grid.Dr
		}
		if avg > 0 {
			scale := target / avg
			for i := range cp.Ne.Value {
				cp.Ne.Value[i] *= scale
			}
			cp.Ne.SetRightValue(*cp.Ne.RightValue * scale)
		}
	}

	// Initial current profile: broad nu-formula "Ohmic" current plus the
	// localized external drive, unless the formula current is declared to be
	// the total.
	jext := make([]float64, N)
	extFraction := 0.
	gc := sp.Sources.GenericCurrent
	if gc.Mode == InputParameters.SourceModeFormula && !sp.Profiles.InitialJIsTotal {
		extFraction = gc.Fraction
		jext = utils.GaussianProfile(grid.CellCenters, geo.SprCell, grid.Dr,
			gc.Location, gc.Width, extFraction*ip)
	}
	jformula := make([]float64, N)
	for i, rho := range grid.CellCenters {
		jformula[i] = math.Pow(1-rho*rho, sp.Profiles.Nu)
	}
	// Normalize the formula current to carry the remaining current.
	norm := utils.Integrate(jformula, geo.SprCell, grid.Dr)
	scale := (1 - extFraction) * ip / norm
	if sp.Profiles.InitialJIsTotal {
		scale = ip / norm
	}
	jtot := make([]float64, N)
	for i := range jtot {
		jtot[i] = jformula[i]*scale + jext[i]
	}

	if len(sp.Profiles.Psi) == N {
		cp.Psi = fvm.NewCellVariable(sp.Profiles.Psi, grid.Dr)
	} else {
		cp.Psi = psiFromJtot(geo, jtot)
	}
	cp.Psi.SetRightGrad(physics.PsiRightGradFromIp(geo, ip))

	cp.Currents = Currents{
		Jext:       jext,
		Jbootstrap: make([]float64, N),
		Ip:         ip,
	}
	cp.PsiDot = make([]float64, N)
	cp.UpdateDerived(geo)
	return cp, nil
}

func buildProfile(spec InputParameters.ProfileSpec, grid *geometry.Grid1D) (c *fvm.CellVariable, err error) {
	var (
		bv float64
	)
	if bv, _, err = spec.BoundaryValue(); err != nil {
		return nil, err
	}
	values := make([]float64, grid.N)
	for i, rho := range grid.CellCenters {
		values[i] = spec.Value(rho)
	}
	c = fvm.NewCellVariable(values, grid.Dr)
	c.SetRightValue(bv)
	return
}

// psiFromJtot integrates Ampere's law twice: rho*psi' on faces from the
// enclosed current, then psi on cells, anchored at psi(axis) = 0.
func psiFromJtot(geo *geometry.Geometry, jtot []float64) (psi *fvm.CellVariable) {
	var (
		grid = geo.Grid
		N    = grid.N
		cj   = physics.Mu0 * geo.Rmaj * geo.Rmin * geo.Rmin
		pg   = make([]float64, N+1)
	)
	var enclosed float64 // integral of rho*j drho
	for f := 1; f <= N; f++ {
		enclosed += grid.CellCenters[f-1] * jtot[f-1] * grid.Dr
		pg[f] = cj * enclosed / grid.Faces[f]
	}
	values := make([]float64, N)
	values[0] = 0.5 * grid.Dr * pg[1] / 2
	for i := 1; i < N; i++ {
		values[i] = values[i-1] + grid.Dr*pg[i]
	}
	psi = fvm.NewCellVariable(values, grid.Dr)
	return
}
