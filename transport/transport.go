// Package transport defines the pluggable turbulent-transport closures. A
// Model maps the current profile state and geometry to face-grid
// diffusivities and convective velocities; every variant is a pure function
// of its inputs and may be evaluated many times per step.
package transport

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
	"github.com/plasmakit/gotransp/utils"
)

// Coefficients are the ephemeral face-grid transport coefficients for one
// nonlinear iterate: heat conductivities for ions and electrons, particle
// diffusivity and pinch velocity. All arrays have N+1 entries.
type Coefficients struct {
	ChiFaceIon []float64 // [m^2/s]
	ChiFaceEl  []float64
	DFaceEl    []float64
	VFaceEl    []float64 // [m/s], negative = inward pinch
}

func NewCoefficients(N int) (c Coefficients) {
	c = Coefficients{
		ChiFaceIon: make([]float64, N+1),
		ChiFaceEl:  make([]float64, N+1),
		DFaceEl:    make([]float64, N+1),
		VFaceEl:    make([]float64, N+1),
	}
	return
}

// Model is the transport-closure contract: pure, deterministic, read-only on
// its inputs.
type Model interface {
	Name() string
	Coefficients(cp *state.CoreProfiles, geo *geometry.Geometry) Coefficients
}

// Clamps is the smoothing and clamping policy applied uniformly after every
// closure evaluation: a floor keeps stiff models from returning negative or
// vanishing diffusivities near the edge, a ceiling bounds explosive ones,
// and an optional Gaussian kernel smooths sharp radial structure.
type Clamps struct {
	ChiMin, ChiMax float64
	DMin, DMax     float64
	SmoothingSigma float64
}

func (cl Clamps) Apply(geo *geometry.Geometry, c Coefficients) (r Coefficients) {
	var (
		faces = geo.Grid.Faces
	)
	r = Coefficients{
		ChiFaceIon: utils.KernelSmooth(faces, c.ChiFaceIon, cl.SmoothingSigma),
		ChiFaceEl:  utils.KernelSmooth(faces, c.ChiFaceEl, cl.SmoothingSigma),
		DFaceEl:    utils.KernelSmooth(faces, c.DFaceEl, cl.SmoothingSigma),
		VFaceEl:    utils.KernelSmooth(faces, c.VFaceEl, cl.SmoothingSigma),
	}
	for f := range r.ChiFaceIon {
		r.ChiFaceIon[f] = utils.Clamp(r.ChiFaceIon[f], cl.ChiMin, cl.ChiMax)
		r.ChiFaceEl[f] = utils.Clamp(r.ChiFaceEl[f], cl.ChiMin, cl.ChiMax)
		r.DFaceEl[f] = utils.Clamp(r.DFaceEl[f], cl.DMin, cl.DMax)
	}
	return
}

// GyroBohmFace is the gyroBohm conductivity normalization on faces,
// chiGB = sqrt(Ai*mp) * (Ti*keV)^1.5 / (e^2 * B0^2 * Rmin).
func GyroBohmFace(cp *state.CoreProfiles, geo *geometry.Geometry) (chiGB []float64) {
	var (
		tiFace = cp.TempIon.FaceValue()
		mp     = 1.6726e-27
		e      = 1.602176634e-19
		denom  = e * e * geo.B0 * geo.B0 * geo.Rmin
	)
	chiGB = make([]float64, len(tiFace))
	for f, ti := range tiFace {
		t := math.Max(ti, 1e-3) * 1e3 * e // keV -> J
		chiGB[f] = math.Sqrt(cp.Ai*mp*t) * t / denom
	}
	return
}

// NewModel selects the closure variant from the validated configuration.
// Selection happens once at startup, never by runtime type inspection.
func NewModel(tp InputParameters.TransportParameters) (m Model) {
	var (
		clamps = Clamps{
			ChiMin:         tp.ChiMin,
			ChiMax:         tp.ChiMax,
			DMin:           tp.DMin,
			DMax:           tp.DMax,
			SmoothingSigma: tp.SmoothingSigma,
		}
	)
	switch tp.Model {
	case "CGM":
		m = &CriticalGradientModel{Params: tp.CGM, Clamps: clamps}
	case "bohm-gyrobohm":
		m = &BohmGyroBohmModel{Params: tp.BgB, Clamps: clamps}
	case "surrogate":
		m = &SurrogateModel{
			Params: tp.Surrogate,
			Quasilinear: Quasilinear{
				QSawtoothProxy:    tp.QSawtoothProxy,
				AvoidBigNegativeS: tp.AvoidBigNegativeS,
			},
			Clamps: clamps,
		}
	case "surrogate-based":
		m = &SurrogateBasedModel{
			Params: tp.Surrogate,
			Quasilinear: Quasilinear{
				QSawtoothProxy:    tp.QSawtoothProxy,
				AvoidBigNegativeS: tp.AvoidBigNegativeS,
			},
			Clamps: clamps,
		}
	case "constant":
		fallthrough
	default:
		m = &ConstantModel{Params: tp.Constant}
	}
	return
}
