package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/state"
)

func testState(t *testing.T) (*state.CoreProfiles, *geometry.Geometry) {
	sp := InputParameters.Defaults()
	g := sp.Geometry
	geo := geometry.NewCircularGeometry(sp.NCells, g.Rmaj, g.Rmin, g.B0, g.Kappa)
	cp, err := state.NewInitialProfiles(sp, geo)
	assert.NoError(t, err)
	return cp, geo
}

func TestConstantModel(t *testing.T) {
	cp, geo := testState(t)
	m := NewModel(InputParameters.Defaults().Transport)
	assert.Equal(t, "constant", m.Name())
	c := m.Coefficients(cp, geo)
	N := geo.Grid.N
	assert.Equal(t, N+1, len(c.ChiFaceIon))
	for f := 0; f <= N; f++ {
		assert.Equal(t, 1., c.ChiFaceIon[f])
		assert.Equal(t, 1., c.ChiFaceEl[f])
		assert.Equal(t, 1., c.DFaceEl[f])
	}
	// the pinch vanishes on axis and is inward elsewhere
	assert.Equal(t, 0., c.VFaceEl[0])
	assert.True(t, c.VFaceEl[N] < 0)
}

func TestCriticalGradientModel(t *testing.T) {
	cp, geo := testState(t)
	tp := InputParameters.Defaults().Transport
	tp.Model = "CGM"
	tp.ChiMin = 0 // expose the raw threshold behavior
	tp.DMin = 0
	m := NewModel(tp)
	assert.Equal(t, "CGM", m.Name())
	c := m.Coefficients(cp, geo)
	N := geo.Grid.N
	// the axis gradient is zero, below any threshold
	assert.Equal(t, 0., c.ChiFaceIon[0])
	// mid-radius the parabolic profile is steep enough to drive transport
	assert.True(t, c.ChiFaceIon[N/2] > 0)
	// channels follow the ion conductivity in fixed ratios
	assert.InDelta(t, tp.CGM.ChiRatio*c.ChiFaceIon[N/2], c.ChiFaceEl[N/2], 1.e-12)
	assert.InDelta(t, tp.CGM.DRatio*c.ChiFaceEl[N/2], c.DFaceEl[N/2], 1.e-12)
}

func TestBohmGyroBohmModel(t *testing.T) {
	cp, geo := testState(t)
	tp := InputParameters.Defaults().Transport
	tp.Model = "bohm-gyrobohm"
	m := NewModel(tp)
	c := m.Coefficients(cp, geo)
	N := geo.Grid.N
	for f := 0; f <= N; f++ {
		assert.True(t, c.ChiFaceEl[f] >= tp.ChiMin)
		assert.True(t, c.ChiFaceEl[f] <= tp.ChiMax)
	}
	// mid-radius the Bohm term dominates and exceeds the floor
	assert.True(t, c.ChiFaceEl[N/2] > tp.ChiMin)
}

func TestSurrogateModel(t *testing.T) {
	cp, geo := testState(t)
	tp := InputParameters.Defaults().Transport
	tp.Model = "surrogate"
	m := NewModel(tp)
	c := m.Coefficients(cp, geo)
	N := geo.Grid.N
	for f := 0; f <= N; f++ {
		assert.True(t, c.ChiFaceIon[f] >= tp.ChiMin && c.ChiFaceIon[f] <= tp.ChiMax)
		assert.True(t, c.DFaceEl[f] >= tp.DMin && c.DFaceEl[f] <= tp.DMax)
	}
}

func TestSurrogateBasedModel(t *testing.T) {
	cp, geo := testState(t)
	tp := InputParameters.Defaults().Transport
	tp.Model = "surrogate-based"
	m := NewModel(tp)
	assert.Equal(t, "surrogate-based", m.Name())
	c := m.Coefficients(cp, geo)
	N := geo.Grid.N
	for f := 0; f <= N; f++ {
		assert.True(t, c.ChiFaceIon[f] >= tp.ChiMin && c.ChiFaceIon[f] <= tp.ChiMax)
		assert.True(t, c.ChiFaceEl[f] >= tp.ChiMin && c.ChiFaceEl[f] <= tp.ChiMax)
		assert.True(t, c.DFaceEl[f] >= tp.DMin && c.DFaceEl[f] <= tp.DMax)
	}
	// the axis gradients are flat, so the raw closure is quiet there
	tp.ChiMin = 0
	tp.DMin = 0
	raw := NewModel(tp).Coefficients(cp, geo)
	assert.Equal(t, 0., raw.ChiFaceIon[0])
	// equal temperatures split the shared flux evenly, and with identical
	// gradients the channel conductivities coincide
	assert.InDelta(t, raw.ChiFaceIon[N/2], raw.ChiFaceEl[N/2], 1.e-10*(1+raw.ChiFaceIon[N/2]))
}

func TestQuasilinearInputs(t *testing.T) {
	cp, geo := testState(t)
	ql := Quasilinear{QSawtoothProxy: true, AvoidBigNegativeS: true}
	in := ql.PrepareInputs(cp, geo)
	N := geo.Grid.N
	assert.Equal(t, N+1, len(in.Ati))
	assert.Equal(t, N+1, len(in.ChiGB))
	// flat on axis, steep off-axis for parabolic profiles
	assert.InDelta(t, 0., in.Ati[0], 1.e-10)
	assert.True(t, in.Ati[N/2] > 0)
	// the sawtooth proxy floors q at one and fixes the shear there
	for f := 0; f <= N; f++ {
		assert.True(t, in.Q[f] >= 1)
		assert.True(t, in.Smag[f] >= -0.2)
	}
	// equal temperatures give TiTe = 1
	assert.InDelta(t, 1., in.TiTe[N/2], 1.e-10)
	// gyroBohm normalization grows with temperature
	assert.True(t, in.ChiGB[0] > in.ChiGB[N])
}

func TestClamps(t *testing.T) {
	_, geo := testState(t)
	N := geo.Grid.N
	c := NewCoefficients(N)
	for f := 0; f <= N; f++ {
		c.ChiFaceIon[f] = 1.e6
		c.ChiFaceEl[f] = -3
		c.DFaceEl[f] = 0.5
	}
	cl := Clamps{ChiMin: 0.05, ChiMax: 100, DMin: 0.05, DMax: 100}
	r := cl.Apply(geo, c)
	for f := 0; f <= N; f++ {
		assert.Equal(t, 100., r.ChiFaceIon[f])
		assert.Equal(t, 0.05, r.ChiFaceEl[f])
		assert.Equal(t, 0.5, r.DFaceEl[f])
	}
}
