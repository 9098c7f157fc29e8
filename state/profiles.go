// Package state defines the mutable simulation entity: the core plasma
// profiles. A CoreProfiles value is replaced, never mutated in place, on
// every accepted time step; transport and source models only ever read it.
package state

import (
	"github.com/plasmakit/gotransp/fvm"
	"github.com/plasmakit/gotransp/geometry"
	"github.com/plasmakit/gotransp/physics"
	"github.com/plasmakit/gotransp/utils"
)

// Currents collects the current-density bookkeeping on the cell grid, plus
// the enclosed-current profile on faces.
type Currents struct {
	Jtot       []float64
	Johm       []float64
	Jext       []float64
	Jbootstrap []float64
	IpFace     []float64
	Ip         float64 // prescribed total plasma current [A]
}

func (c Currents) Copy() (r Currents) {
	r = Currents{
		Jtot:       utils.CopyArray(c.Jtot),
		Johm:       utils.CopyArray(c.Johm),
		Jext:       utils.CopyArray(c.Jext),
		Jbootstrap: utils.CopyArray(c.Jbootstrap),
		IpFace:     utils.CopyArray(c.IpFace),
		Ip:         c.Ip,
	}
	return
}

// CoreProfiles is the full radial profile state: the four transported
// fields, the derived ion/impurity densities, and the face-grid quantities
// recomputed from psi after every accepted solve.
type CoreProfiles struct {
	Psi     *fvm.CellVariable
	TempIon *fvm.CellVariable // [keV]
	TempEl  *fvm.CellVariable // [keV]
	Ne      *fvm.CellVariable // [10^20 m^-3]

	Ni   []float64 // main ion density from quasineutrality
	Nimp []float64 // impurity density

	PsiDot []float64 // d(psi)/dt from the last accepted step
	QFace  []float64
	SFace  []float64

	Currents Currents

	// Plasma composition scalars.
	Zi, Ai     float64
	Zimp, Aimp float64
	Zeff       float64

	QCorrection float64
}

// Copy returns a deep copy; the new value shares nothing with the receiver.
func (cp *CoreProfiles) Copy() (r *CoreProfiles) {
	r = &CoreProfiles{
		Psi:         cp.Psi.Copy(),
		TempIon:     cp.TempIon.Copy(),
		TempEl:      cp.TempEl.Copy(),
		Ne:          cp.Ne.Copy(),
		Ni:          utils.CopyArray(cp.Ni),
		Nimp:        utils.CopyArray(cp.Nimp),
		PsiDot:      utils.CopyArray(cp.PsiDot),
		QFace:       utils.CopyArray(cp.QFace),
		SFace:       utils.CopyArray(cp.SFace),
		Currents:    cp.Currents.Copy(),
		Zi:          cp.Zi,
		Ai:          cp.Ai,
		Zimp:        cp.Zimp,
		Aimp:        cp.Aimp,
		Zeff:        cp.Zeff,
		QCorrection: cp.QCorrection,
	}
	return
}

// UpdateDerived recomputes the ion densities from quasineutrality and the
// face-grid quantities q, s, jtot from the flux profile. It is pure in the
// sense that the same psi and ne always produce bit-identical results.
func (cp *CoreProfiles) UpdateDerived(geo *geometry.Geometry) {
	var (
		N = geo.Grid.N
	)
	// Quasineutrality with a single impurity: ne = ni*Zi + nimp*Zimp and
	// Zeff = (ni*Zi^2 + nimp*Zimp^2)/ne fix the dilution.
	dil := (cp.Zimp - cp.Zeff) / (cp.Zi * (cp.Zimp - cp.Zi))
	cp.Ni = make([]float64, N)
	cp.Nimp = make([]float64, N)
	for i := 0; i < N; i++ {
		cp.Ni[i] = cp.Ne.Value[i] * dil
		cp.Nimp[i] = (cp.Ne.Value[i] - cp.Ni[i]*cp.Zi) / cp.Zimp
	}

	cp.QFace, _ = physics.CalcQFromPsi(geo, cp.Psi, cp.QCorrection)
	cp.SFace = physics.CalcSFromPsi(geo, cp.Psi, cp.QCorrection)
	jtot, ipFace := physics.CalcJtotFromPsi(geo, cp.Psi)
	cp.Currents.Jtot = jtot
	cp.Currents.IpFace = ipFace
	// Ohmic current is whatever the total is not accounted for by the
	// non-inductive drives.
	jni := utils.AddArrays(cp.Currents.Jext, cp.Currents.Jbootstrap)
	cp.Currents.Johm = make([]float64, N)
	for i := 0; i < N; i++ {
		cp.Currents.Johm[i] = jtot[i] - jni[i]
	}
}

// NiFace returns the main-ion density interpolated to faces. The linear
// boundary extrapolation can undershoot for steeply falling profiles;
// densities are floored at zero.
func (cp *CoreProfiles) NiFace() (face []float64) {
	face = utils.CellToFace(cp.Ni)
	n := len(face) - 1
	if face[0] < 0 {
		face[0] = 0
	}
	if face[n] < 0 {
		face[n] = 0
	}
	return
}
