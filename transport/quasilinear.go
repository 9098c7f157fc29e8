package transport

import (
	"math"

	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/physics"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/utils"
)

// Inputs are the normalized local quantities shared by every quasilinear
// closure: logarithmic gradients scaled to the major radius, the safety
// factor and shear on faces, and the gyroBohm normalization. Computed fresh
// at each evaluation from the profile state.
type Inputs struct {
	Ati, Ate, Ane []float64 // -Rmaj * dln{Ti,Te,ne}/dr
	Q, Smag       []float64
	X             []float64 // rho coordinate
	TiTe          []float64
	LogNuStar     []float64
	ChiGB         []float64
}

// Quasilinear is the shared base behavior of the surrogate closures:
// preparing normalized inputs with the model-specific shear and q
// corrections applied.
type Quasilinear struct {
	// QSawtoothProxy flattens q and shear inside the q=1 surface, standing
	// in for sawtooth mixing.
	QSawtoothProxy bool
	// AvoidBigNegativeS clamps strongly negative shear, where the fitted
	// closures are unreliable.
	AvoidBigNegativeS bool
}

// PrepareInputs computes the normalized gradient inputs on the face grid.
// Pure: identical state and geometry give identical outputs.
func (ql Quasilinear) PrepareInputs(cp *state.CoreProfiles, geo *geometry.Geometry) (in Inputs) {
	var (
		grid   = geo.Grid
		N      = grid.N
		tiFace = cp.TempIon.FaceValue()
		teFace = cp.TempEl.FaceValue()
		neFace = cp.Ne.FaceValue()
		tiGrad = cp.TempIon.FaceGrad()
		teGrad = cp.TempEl.FaceGrad()
		neGrad = cp.Ne.FaceGrad()
	)
	in = Inputs{
		Ati:       make([]float64, N+1),
		Ate:       make([]float64, N+1),
		Ane:       make([]float64, N+1),
		Q:         utils.CopyArray(cp.QFace),
		Smag:      utils.CopyArray(cp.SFace),
		X:         utils.CopyArray(grid.Faces),
		TiTe:      make([]float64, N+1),
		LogNuStar: physics.CollisionalityFace(geo, neFace, teFace, cp.QFace, cp.Zeff),
		ChiGB:     GyroBohmFace(cp, geo),
	}
	for f := 0; f <= N; f++ {
		in.Ati[f] = -geo.Rmaj / geo.Rmin * tiGrad[f] / math.Max(tiFace[f], 1e-3)
		in.Ate[f] = -geo.Rmaj / geo.Rmin * teGrad[f] / math.Max(teFace[f], 1e-3)
		in.Ane[f] = -geo.Rmaj / geo.Rmin * neGrad[f] / math.Max(neFace[f], 1e-3)
		in.TiTe[f] = tiFace[f] / math.Max(teFace[f], 1e-3)
	}
	if ql.QSawtoothProxy {
		for f := 0; f <= N; f++ {
			if in.Q[f] < 1 {
				in.Q[f] = 1
				in.Smag[f] = 0.1
			}
		}
	}
	if ql.AvoidBigNegativeS {
		for f := 0; f <= N; f++ {
			if in.Smag[f] < -0.2 {
				in.Smag[f] = -0.2
			}
		}
	}
	return
}

// FluxesToCoefficients converts normalized heat and particle fluxes back to
// diffusivities: chi = chiGB * flux / gradient, with the gradient floored so
// flat profiles map to the minimum diffusivity rather than infinity. The
// particle flux is split into an effective D and a pinch V in a fixed ratio.
func FluxesToCoefficients(in Inputs, qi, qe, pfe []float64, dvRatio, pinchScale float64, geo *geometry.Geometry) (c Coefficients) {
	var (
		N = len(qi) - 1
	)
	c = NewCoefficients(N)
	for f := 0; f <= N; f++ {
		c.ChiFaceIon[f] = in.ChiGB[f] * qi[f] / math.Max(in.Ati[f], 0.1)
		c.ChiFaceEl[f] = in.ChiGB[f] * qe[f] / math.Max(in.Ate[f], 0.1)
		d := in.ChiGB[f] * pfe[f] / math.Max(in.Ane[f], 0.1) * dvRatio
		c.DFaceEl[f] = d
		c.VFaceEl[f] = -pinchScale * d / geo.Rmaj * in.X[f]
	}
	return
}
