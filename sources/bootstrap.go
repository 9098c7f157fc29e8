package sources

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/physics"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/utils"
)

// BootstrapCurrent is a simplified Sauter-style closure: the self-generated
// current scales with the square root of the inverse aspect ratio and the
// total pressure gradient over the poloidal field,
//
//	j_bs = -2.44 sqrt(eps) dp/dr / Btheta,  Btheta = psi' / (Rmaj Rmin kappa).
//
// It contributes to the current-diffusion equation's non-inductive source.
type BootstrapCurrent struct {
	Params InputParameters.BootstrapParameters
}

func (s *BootstrapCurrent) Name() string { return "bootstrap" }

func (s *BootstrapCurrent) Compute(t float64, cp *state.CoreProfiles, geo *geometry.Geometry) (c Contribution) {
	var (
		grid = geo.Grid
		N    = grid.N
	)
	if s.Params.Mode == InputParameters.SourceModeZero {
		return
	}
	var (
		tiFace = cp.TempIon.FaceValue()
		teFace = cp.TempEl.FaceValue()
		neFace = cp.Ne.FaceValue()
		niFace = cp.NiFace()
		tiGrad = cp.TempIon.FaceGrad()
		teGrad = cp.TempEl.FaceGrad()
		neGrad = cp.Ne.FaceGrad()
		psiG   = cp.Psi.FaceGrad()
		jFace  = make([]float64, N+1)
	)
	for f := 1; f <= N; f++ {
		var (
			eps = grid.Faces[f] * geo.Rmin / geo.Rmaj
			// Total pressure gradient dp/drho [Pa], the ion density gradient
			// taking the electron density's shape.
			dp = physics.KeV * 1e20 * (neGrad[f]*teFace[f] + neFace[f]*teGrad[f] +
				niFace[f]*tiGrad[f] + tiFace[f]*niFace[f]*neGrad[f]/math.Max(neFace[f], 1e-3))
			// Poloidal field from the flux gradient, floored away from the
			// axis where it vanishes.
			btheta = math.Max(math.Abs(psiG[f]), 1e-2) / (geo.Rmaj * geo.Rmin * geo.Kappa)
		)
		jFace[f] = -s.Params.Mult * 2.44 * math.Sqrt(eps) * dp / (geo.Rmin * btheta)
	}
	c.Current = utils.FaceToCell(jFace)
	return
}
