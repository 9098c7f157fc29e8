package transport

import (
	"math"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
)

// BohmGyroBohmModel: the electron heat conductivity is a weighted sum of a
// Bohm term driven by the normalized electron pressure gradient and q^2, and
// a gyroBohm term driven by the local electron temperature gradient. The
// original mixed Bohm/gyroBohm L-mode scaling.
type BohmGyroBohmModel struct {
	Params InputParameters.BgBTransportParameters
	Clamps Clamps
}

func (m *BohmGyroBohmModel) Name() string { return "bohm-gyrobohm" }

func (m *BohmGyroBohmModel) Coefficients(cp *state.CoreProfiles, geo *geometry.Geometry) Coefficients {
	var (
		grid   = geo.Grid
		N      = grid.N
		teFace = cp.TempEl.FaceValue()
		teGrad = cp.TempEl.FaceGrad()
		neFace = cp.Ne.FaceValue()
		neGrad = cp.Ne.FaceGrad()
		c      = NewCoefficients(N)
	)
	for f := 0; f <= N; f++ {
		var (
			te = math.Max(teFace[f], 1e-3)
			ne = math.Max(neFace[f], 1e-3)
			// d(pe)/drho / pe, with pe = ne*Te.
			peGrad = teGrad[f]/te + neGrad[f]/ne
			q      = cp.QFace[f]
		)
		chiB := m.Params.BohmCoeff * geo.Rmin * te * 1e3 / geo.B0 *
			math.Abs(peGrad) * q * q
		chiGB := m.Params.GyroBohmCoeff * math.Sqrt(te) * te * 1e3 / (geo.B0 * geo.B0) *
			math.Abs(teGrad[f]) / geo.Rmin
		c.ChiFaceEl[f] = chiB + chiGB
		c.ChiFaceIon[f] = m.Params.ChiIonFactor * c.ChiFaceEl[f]
		c.DFaceEl[f] = m.Params.DFactor * (c.ChiFaceEl[f] + c.ChiFaceIon[f])
	}
	return m.Clamps.Apply(geo, c)
}
