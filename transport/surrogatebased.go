package transport

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
)

// SurrogateBasedModel is the effective single-mode sibling of SurrogateModel:
// instead of separate ITG and TEM branches it fits one total heat flux driven
// by a weighted ion-electron gradient above the ITG threshold, then splits it
// between the channels by the temperature ratio. It trades channel fidelity
// for a smoother response near the threshold.
type SurrogateBasedModel struct {
	Params      InputParameters.SurrogateTransportParameters
	Quasilinear Quasilinear
	Clamps      Clamps
}

func (m *SurrogateBasedModel) Name() string { return "surrogate-based" }

func (m *SurrogateBasedModel) Coefficients(cp *state.CoreProfiles, geo *geometry.Geometry) Coefficients {
	var (
		in = m.Quasilinear.PrepareInputs(cp, geo)
		N  = geo.Grid.N
		qi = make([]float64, N+1)
		qe = make([]float64, N+1)
		pf = make([]float64, N+1)
	)
	for f := 0; f <= N; f++ {
		var (
			atiCrit = (4. / 3.) * (1 + in.TiTe[f]) * (1 + in.Smag[f]/math.Max(in.Q[f], 0.5))
			drive   = pos(in.Ati[f] + 0.5*in.Ate[f] - atiCrit)
			qTot    = m.Params.FluxScale * drive * math.Sqrt(drive)
			// Hotter ions push the shared flux into the ion channel.
			wi = in.TiTe[f] / (1 + in.TiTe[f])
		)
		qi[f] = wi * qTot
		qe[f] = (1 - wi) * qTot
		pf[f] = m.Params.FluxScale * (0.3*pos(in.Ane[f]-1) + 0.1*qe[f])
	}
	c := FluxesToCoefficients(in, qi, qe, pf, m.Params.DVEffRatio, m.Params.PinchScale, geo)
	return m.Clamps.Apply(geo, c)
}
