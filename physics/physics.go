// Package physics holds the pure derived-quantity calculations: everything
// here is a function of a profile state plus geometry, with no internal
// state, so repeated evaluation is safe at every nonlinear iterate.
package physics

import (
	"math"

	"github.com/plasmakit/gotransp/fvm"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/utils"
)

const (
	// Mu0 is the vacuum permeability [H/m].
	Mu0 = 4 * math.Pi * 1e-7
	// KeV in Joules.
	KeV = 1.602176634e-16
)

// CalcQFromPsi derives the safety factor on the face grid from the poloidal
// flux. The rotational transform iota vanishes on the magnetic axis, so the
// axis value is taken from the second face's flux gradient instead of the
// direct ratio.
func CalcQFromPsi(geo *geometry.Geometry, psi *fvm.CellVariable, qCorrection float64) (qFace, qCell []float64) {
	var (
		grid = geo.Grid
		pg   = psi.FaceGrad()
	)
	iota := make([]float64, grid.N+1)
	for f := 1; f <= grid.N; f++ {
		iota[f] = math.Abs(pg[f] / (2 * geo.Phib * grid.Faces[f]))
	}
	iota[0] = math.Abs(pg[1] / (2 * geo.Phib * grid.Dr))
	qFace = make([]float64, grid.N+1)
	for f := range qFace {
		qFace[f] = qCorrection / iota[f]
	}
	qCell = utils.FaceToCell(qFace)
	return
}

// CalcSFromPsi derives the normalized magnetic shear s = (rho/q) dq/drho on
// the face grid. s vanishes on axis.
func CalcSFromPsi(geo *geometry.Geometry, psi *fvm.CellVariable, qCorrection float64) (sFace []float64) {
	var (
		grid     = geo.Grid
		qFace, _ = CalcQFromPsi(geo, psi, qCorrection)
		N        = grid.N
	)
	sFace = make([]float64, N+1)
	for f := 1; f < N; f++ {
		dq := (qFace[f+1] - qFace[f-1]) / (2 * grid.Dr)
		sFace[f] = grid.Faces[f] / qFace[f] * dq
	}
	sFace[N] = grid.Faces[N] / qFace[N] * (qFace[N] - qFace[N-1]) / grid.Dr
	return
}

// CalcJtotFromPsi derives the total parallel current density on cells,
// along with the enclosed-current profile on faces, from the flux profile:
//
//	jtot = d/drho( rho * dpsi/drho ) / (mu0 * Rmaj * Rmin^2 * rho)
//
// The axis cell uses the first face pair without dividing at rho=0 since the
// numerator vanishes at the same order.
func CalcJtotFromPsi(geo *geometry.Geometry, psi *fvm.CellVariable) (jtot []float64, ipFace []float64) {
	var (
		grid = geo.Grid
		N    = grid.N
		pg   = psi.FaceGrad()
		cj   = Mu0 * geo.Rmaj * geo.Rmin * geo.Rmin
	)
	jtot = make([]float64, N)
	for i := 0; i < N; i++ {
		num := grid.Faces[i+1]*pg[i+1] - grid.Faces[i]*pg[i]
		jtot[i] = num / (grid.Dr * cj * grid.CellCenters[i])
	}
	// Enclosed current I(rho) = integral of jtot over the cross-section.
	ipFace = make([]float64, N+1)
	for f := 1; f <= N; f++ {
		ipFace[f] = ipFace[f-1] + jtot[f-1]*geo.SprCell[f-1]*grid.Dr
	}
	return
}

// PsiRightGradFromIp gives the outer Neumann boundary gradient of psi that
// carries the prescribed total plasma current Ip [A].
func PsiRightGradFromIp(geo *geometry.Geometry, ip float64) float64 {
	return Mu0 * geo.Rmaj * ip / (2 * math.Pi * geo.Kappa)
}

// GreenwaldDensity returns the Greenwald density limit nGW in units of
// 10^20 m^-3 for Ip in [A].
func GreenwaldDensity(geo *geometry.Geometry, ip float64) float64 {
	return ip / 1e6 / (math.Pi * geo.Rmin * geo.Rmin)
}

// SpitzerConductivity returns the parallel conductivity profile [S/m] from
// the electron temperature [keV] and effective charge.
func SpitzerConductivity(teCell []float64, zeff float64) (sigma []float64) {
	var (
		// Neoclassical-free Spitzer prefactor with lnLambda folded in.
		c = 1.9e4 / zeff
	)
	sigma = make([]float64, len(teCell))
	for i, te := range teCell {
		t := math.Max(te, 1e-3)
		sigma[i] = c * t * math.Sqrt(t) * 1e4
	}
	return
}

// CollisionalityFace computes log10 of the normalized electron collision
// frequency nu_star on faces. ne in 10^20 m^-3, te in keV.
func CollisionalityFace(geo *geometry.Geometry, neFace, teFace, qFace []float64, zeff float64) (logNuStar []float64) {
	logNuStar = make([]float64, len(neFace))
	for f := range neFace {
		var (
			eps = math.Max(geo.Grid.Faces[f]*geo.Rmin/geo.Rmaj, 1e-6)
			te  = math.Max(teFace[f], 1e-3)
			nu  = 6.9e-2 * qFace[f] * geo.Rmaj * neFace[f] * zeff /
				(te * te * math.Pow(eps, 1.5))
		)
		logNuStar[f] = math.Log10(math.Max(nu, 1e-10))
	}
	return
}

// IonHeatFraction is the fractional fast-ion energy transferred to thermal
// ions during slowing down, from the critical-energy formula. birthEnergy in
// keV, te in keV, mass in amu. Tends to 1 when the birth energy is far below
// the critical energy and to 0 far above.
func IonHeatFraction(birthEnergy, te, mass float64) float64 {
	var (
		critical = 10 * mass * math.Max(te, 1e-6)
		x        = birthEnergy / critical
	)
	if x < 1e-9 {
		return 1
	}
	// Fraction = integral_0^1 dy / (1 + (x*y)^{3/2}), evaluated by
	// fixed-order midpoint quadrature.
	const nq = 64
	var sum float64
	for k := 0; k < nq; k++ {
		y := (float64(k) + 0.5) / nq
		sum += 1 / (1 + math.Pow(y*x, 1.5))
	}
	return sum / nq
}

// WeightedZeff is the mass-weighted effective charge
// (ni*Zi^2/Ai + nimp*Zimp^2/Aimp)/ne entering the gyroBohm normalization.
func WeightedZeff(ne, ni, nimp, zi, ai, zimp, aimp float64) float64 {
	return (ni*zi*zi/ai + nimp*zimp*zimp/aimp) / ne
}
