package solver

import (
	"github.com/plasmakit/gotransp/fvm"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/physics"
	"github.com/plasmakit/gotransp/sources"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/transport"
	"github.com/plasmakit/gotransp/utils"
)

// Pedestal is the internal-boundary settings: at the designated cell the
// transported field is relaxed strongly toward the pedestal value, which
// approximates a fixed internal boundary without a discretization
// discontinuity elsewhere.
type Pedestal struct {
	Enabled bool
	RhoPed  float64
	TiPed   float64
	TePed   float64
	NePed   float64
}

// pedestalRate is the relaxation rate relative to the step's own transient
// scale; large enough to pin the cell within one step.
const pedestalRate = 1e3

func (p Pedestal) cellIndex(grid *geometry.Grid1D) int {
	i := int(p.RhoPed / grid.Dr)
	if i >= grid.N {
		i = grid.N - 1
	}
	return i
}

// apply adds the relaxation override to one equation at the pedestal cell.
func (p Pedestal) apply(eq *fvm.EquationSystem, grid *geometry.Grid1D, dt, value float64) {
	if !p.Enabled {
		return
	}
	var (
		i = p.cellIndex(grid)
		c = pedestalRate * eq.Coeffs.TransientCell[i] / dt
	)
	eq.Coeffs.SourceMatCell[i] -= c
	eq.Coeffs.SourceCell[i] += c * value
}

// qeiFold adds the collisional exchange to a single-channel heat equation
// against the frozen partner temperature: the equation gains
// vpr*C*(T_other - T), kept implicit in the evolving temperature.
func qeiFold(eq *fvm.EquationSystem, coef, tOther []float64, geo *geometry.Geometry) {
	w := utils.MulArrays(geo.VprCell, coef)
	for i := range w {
		eq.Coeffs.SourceMatCell[i] -= w[i]
		eq.Coeffs.SourceCell[i] += w[i] * tOther[i]
	}
}

// buildIonHeat assembles the ion temperature equation:
// (3/2) ni vpr dTi/dt = d/drho(vpr ni chi_i/Rmin^2 dTi/drho) + vpr S_i.
func buildIonHeat(old, it *state.CoreProfiles, tc transport.Coefficients, src sources.Profiles,
	geo *geometry.Geometry) (eq fvm.EquationSystem) {
	var (
		grid   = geo.Grid
		N      = grid.N
		niFace = it.NiFace()
		coeffs = fvm.NewEquationCoeffs(N)
	)
	for i := 0; i < N; i++ {
		coeffs.TransientCell[i] = 1.5 * it.Ni[i] * geo.VprCell[i]
		coeffs.SourceCell[i] = geo.VprCell[i] * src.IonHeat[i]
	}
	for f := 0; f <= N; f++ {
		coeffs.DFace[f] = geo.VprFace[f] * niFace[f] * tc.ChiFaceIon[f] / (geo.Rmin * geo.Rmin)
	}
	eq = fvm.EquationSystem{Var: it.TempIon, Old: utils.CopyArray(old.TempIon.Value), Coeffs: coeffs}
	return
}

func buildElHeat(old, it *state.CoreProfiles, tc transport.Coefficients, src sources.Profiles,
	geo *geometry.Geometry) (eq fvm.EquationSystem) {
	var (
		grid   = geo.Grid
		N      = grid.N
		neFace = it.Ne.FaceValue()
		coeffs = fvm.NewEquationCoeffs(N)
	)
	for i := 0; i < N; i++ {
		coeffs.TransientCell[i] = 1.5 * it.Ne.Value[i] * geo.VprCell[i]
		coeffs.SourceCell[i] = geo.VprCell[i] * src.ElHeat[i]
	}
	for f := 0; f <= N; f++ {
		coeffs.DFace[f] = geo.VprFace[f] * neFace[f] * tc.ChiFaceEl[f] / (geo.Rmin * geo.Rmin)
	}
	eq = fvm.EquationSystem{Var: it.TempEl, Old: utils.CopyArray(old.TempEl.Value), Coeffs: coeffs}
	return
}

// buildDensity assembles the electron particle equation with both diffusion
// and pinch convection.
func buildDensity(old, it *state.CoreProfiles, tc transport.Coefficients, src sources.Profiles,
	geo *geometry.Geometry) (eq fvm.EquationSystem) {
	var (
		grid   = geo.Grid
		N      = grid.N
		coeffs = fvm.NewEquationCoeffs(N)
	)
	for i := 0; i < N; i++ {
		coeffs.TransientCell[i] = geo.VprCell[i]
		coeffs.SourceCell[i] = geo.VprCell[i] * src.ParticleEl[i]
	}
	for f := 0; f <= N; f++ {
		coeffs.DFace[f] = geo.VprFace[f] * tc.DFaceEl[f] / (geo.Rmin * geo.Rmin)
		coeffs.VFace[f] = geo.VprFace[f] * tc.VFaceEl[f] / geo.Rmin
	}
	eq = fvm.EquationSystem{Var: it.Ne, Old: utils.CopyArray(old.Ne.Value), Coeffs: coeffs}
	return
}

// buildPsi assembles the current-diffusion equation in cylindrical form:
// sigma mu0 Rmin^2 rho dpsi/dt = d/drho(rho dpsi/drho) - mu0 Rmaj Rmin^2 rho j_ni.
func buildPsi(old, it *state.CoreProfiles, src sources.Profiles, geo *geometry.Geometry) (eq fvm.EquationSystem) {
	var (
		grid   = geo.Grid
		N      = grid.N
		sigma  = physics.SpitzerConductivity(it.TempEl.Value, it.Zeff)
		cj     = physics.Mu0 * geo.Rmaj * geo.Rmin * geo.Rmin
		coeffs = fvm.NewEquationCoeffs(N)
	)
	for i := 0; i < N; i++ {
		rho := grid.CellCenters[i]
		coeffs.TransientCell[i] = sigma[i] * physics.Mu0 * geo.Rmin * geo.Rmin * rho
		coeffs.SourceCell[i] = -cj * rho * src.Current[i]
	}
	for f := 0; f <= N; f++ {
		coeffs.DFace[f] = grid.Faces[f]
	}
	eq = fvm.EquationSystem{Var: it.Psi, Old: utils.CopyArray(old.Psi.Value), Coeffs: coeffs}
	return
}
