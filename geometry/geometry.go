package geometry

import (
	"math"

	"github.com/plasmakit/gotransp/utils"
)

// Grid1D is the fixed radial mesh in normalized minor radius. Cell centers
// live at (i+1/2)*Dr, faces at i*Dr, i = 0..N, spanning [0, 1] from the
// magnetic axis to the last closed flux surface.
type Grid1D struct {
	N           int
	Dr          float64
	CellCenters []float64 // length N
	Faces       []float64 // length N+1
}

func NewGrid1D(N int) (g *Grid1D) {
	var (
		dr = 1. / float64(N)
	)
	g = &Grid1D{
		N:           N,
		Dr:          dr,
		CellCenters: make([]float64, N),
		Faces:       make([]float64, N+1),
	}
	for i := 0; i < N; i++ {
		g.CellCenters[i] = (float64(i) + 0.5) * dr
	}
	for i := 0; i <= N; i++ {
		g.Faces[i] = float64(i) * dr
	}
	return
}

// Geometry is an immutable snapshot of the magnetic equilibrium: the mesh
// plus the metric coefficients needed by the transport equations. All arrays
// are read-only once constructed.
type Geometry struct {
	Grid *Grid1D

	Rmaj, Rmin float64 // major / minor radius [m]
	B0         float64 // toroidal field on axis [T]
	Kappa      float64 // elongation

	// Volume and surface elements per unit normalized radius, dV/drho and
	// dS/drho, on cells and faces.
	VprCell, VprFace []float64
	SprCell, SprFace []float64

	Volume float64 // total plasma volume
	Phib   float64 // toroidal flux at the edge, pi*B0*Rmin^2
}

// NewCircularGeometry builds the analytic circular (elongated) equilibrium:
// V(rho) = 2 pi^2 Rmaj kappa (rho Rmin)^2, S(rho) = pi kappa (rho Rmin)^2.
func NewCircularGeometry(N int, Rmaj, Rmin, B0, Kappa float64) (geo *Geometry) {
	var (
		grid = NewGrid1D(N)
		cv   = 4 * math.Pi * math.Pi * Rmaj * Kappa * Rmin * Rmin
		cs   = 2 * math.Pi * Kappa * Rmin * Rmin
	)
	geo = &Geometry{
		Grid:    grid,
		Rmaj:    Rmaj,
		Rmin:    Rmin,
		B0:      B0,
		Kappa:   Kappa,
		VprCell: utils.ScaleArray(grid.CellCenters, cv),
		VprFace: utils.ScaleArray(grid.Faces, cv),
		SprCell: utils.ScaleArray(grid.CellCenters, cs),
		SprFace: utils.ScaleArray(grid.Faces, cs),
		Volume:  0.5 * cv, // integral of cv*rho over [0,1]
		Phib:    math.Pi * B0 * Rmin * Rmin,
	}
	return
}

// Provider supplies an immutable geometry snapshot for a given simulation
// time. Time dependence is expressed by returning a new snapshot per query,
// never by mutating a previous one.
type Provider interface {
	Geometry(t float64) *Geometry
}

// StaticProvider returns the same snapshot at every time.
type StaticProvider struct {
	Geo *Geometry
}

func (p StaticProvider) Geometry(t float64) *Geometry { return p.Geo }
