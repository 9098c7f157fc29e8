package transport

import (
	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
)

// ConstantModel returns fixed, profile-independent coefficients. It is the
// cheapest closure and the reference case for solver verification.
type ConstantModel struct {
	Params InputParameters.ConstantTransportParameters
}

func (m *ConstantModel) Name() string { return "constant" }

func (m *ConstantModel) Coefficients(cp *state.CoreProfiles, geo *geometry.Geometry) (c Coefficients) {
	var (
		N = geo.Grid.N
	)
	c = NewCoefficients(N)
	for f := 0; f <= N; f++ {
		c.ChiFaceIon[f] = m.Params.ChiI
		c.ChiFaceEl[f] = m.Params.ChiE
		c.DFaceEl[f] = m.Params.De
		// The pinch scales with rho so it vanishes on axis.
		c.VFaceEl[f] = m.Params.Ve * geo.Grid.Faces[f]
	}
	return
}
