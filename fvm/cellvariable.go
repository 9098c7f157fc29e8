package fvm

import (
	"fmt"

	"github.com/plasmakit/gotransp/utils"
)

// CellVariable is a transported field sampled on cell centers together with
// the boundary conditions in force at the two mesh boundaries. The inner
// boundary (rho=0) always carries a symmetry (zero gradient) condition unless
// a different gradient is set explicitly. The outer boundary (rho=1) carries
// either a Dirichlet value or a Neumann gradient; exactly one must be set.
type CellVariable struct {
	Value []float64
	Dr    float64

	LeftGrad   float64  // inner Neumann gradient, 0 for the symmetry condition
	RightValue *float64 // outer Dirichlet value
	RightGrad  *float64 // outer Neumann gradient
}

func NewCellVariable(value []float64, dr float64) (c *CellVariable) {
	c = &CellVariable{
		Value:    utils.CopyArray(value),
		Dr:       dr,
		LeftGrad: 0,
	}
	return
}

func (c *CellVariable) SetRightValue(v float64) *CellVariable {
	val := v
	c.RightValue = &val
	c.RightGrad = nil
	return c
}

func (c *CellVariable) SetRightGrad(g float64) *CellVariable {
	grad := g
	c.RightGrad = &grad
	c.RightValue = nil
	return c
}

// Check verifies the boundary specification is complete. It is called during
// configuration validation, before any step executes.
func (c *CellVariable) Check(name string) error {
	if c.RightValue == nil && c.RightGrad == nil {
		return fmt.Errorf("field %s has neither an outer boundary value nor an outer boundary gradient", name)
	}
	if c.RightValue != nil && c.RightGrad != nil {
		return fmt.Errorf("field %s has both an outer boundary value and an outer boundary gradient", name)
	}
	return nil
}

// Copy returns a deep copy, preserving the boundary conditions.
func (c *CellVariable) Copy() (r *CellVariable) {
	r = &CellVariable{
		Value:    utils.CopyArray(c.Value),
		Dr:       c.Dr,
		LeftGrad: c.LeftGrad,
	}
	if c.RightValue != nil {
		v := *c.RightValue
		r.RightValue = &v
	}
	if c.RightGrad != nil {
		g := *c.RightGrad
		r.RightGrad = &g
	}
	return
}

// FaceGrad returns d(value)/drho on the N+1 faces. The boundary faces honor
// the boundary conditions: the prescribed gradient at rho=0, and at rho=1
// either the prescribed gradient or the half-cell difference toward the
// Dirichlet value.
func (c *CellVariable) FaceGrad() (g []float64) {
	var (
		N = len(c.Value)
	)
	g = make([]float64, N+1)
	g[0] = c.LeftGrad
	for i := 1; i < N; i++ {
		g[i] = (c.Value[i] - c.Value[i-1]) / c.Dr
	}
	switch {
	case c.RightValue != nil:
		g[N] = (*c.RightValue - c.Value[N-1]) / (0.5 * c.Dr)
	case c.RightGrad != nil:
		g[N] = *c.RightGrad
	}
	return
}

// FaceValue returns the field interpolated onto the N+1 faces. The inner
// face takes the first cell value (symmetry), the outer face the Dirichlet
// value when set, otherwise a half-cell extrapolation along the prescribed
// gradient.
func (c *CellVariable) FaceValue() (v []float64) {
	var (
		N = len(c.Value)
	)
	v = make([]float64, N+1)
	v[0] = c.Value[0]
	for i := 1; i < N; i++ {
		v[i] = 0.5 * (c.Value[i-1] + c.Value[i])
	}
	v[N] = c.RightFaceValue()
	return
}

// RightFaceValue is the field value at the rho=1 face.
func (c *CellVariable) RightFaceValue() float64 {
	var (
		N = len(c.Value)
	)
	if c.RightValue != nil {
		return *c.RightValue
	}
	if c.RightGrad != nil {
		return c.Value[N-1] + *c.RightGrad*0.5*c.Dr
	}
	return c.Value[N-1]
}
