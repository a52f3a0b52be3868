package engine_test

import (
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/blocks/lti/engine"
	"github.com/sofia-silvestri/SignalProcessing/internal/numeric"
	"github.com/stretchr/testify/assert"
)

func TestFromTransferFunction_Integrator_EmitsBeforeUpdate(t *testing.T) {
	// spec §8 scenario 4: a discrete integrator (num=[1], den=[1,-1]) fed
	// a unit step of ones emits 0, 1, 2, 3, ...
	s := engine.FromTransferFunction([]float64{1}, []float64{1, -1}, []float64{0})

	for k, want := range []float64{0, 1, 2, 3, 4} {
		y := s.Step(numeric.ColumnVector([]float64{1}))
		assert.InDeltaf(t, want, y.At(0, 0), 1e-9, "sample %d", k)
	}
}

func TestFromZeroPoleGain_SinglePole_ImpulseResponse(t *testing.T) {
	// A single real pole p with gain g and no zeros realizes
	// H(z) = g / (z - p); its impulse response is the strictly causal
	// geometric sequence h[0]=0, h[k]=g*p^(k-1) for k >= 1.
	p := 0.5
	g := 2.0
	s := engine.FromZeroPoleGain(nil, []float64{p}, g, []float64{0})

	h0 := s.Step(numeric.ColumnVector([]float64{1}))
	assert.InDelta(t, 0.0, h0.At(0, 0), 1e-9)

	want := g
	for k := 1; k < 6; k++ {
		y := s.Step(numeric.ColumnVector([]float64{0}))
		assert.InDeltaf(t, want, y.At(0, 0), 1e-9, "sample %d", k)
		want *= p
	}
}

func TestStateSpace_DirectFeedthrough(t *testing.T) {
	// A=0,B=0,C=0,D=3: output is purely 3*u regardless of state.
	a := numeric.NewMatrix(1, 1)
	b := numeric.NewMatrix(1, 1)
	c := numeric.NewMatrix(1, 1)
	d := numeric.NewMatrix(1, 1)
	d.Set(0, 0, 3.0)
	s := engine.New(a, b, c, d, numeric.ColumnVector([]float64{0}))

	for _, u := range []float64{1, 2, -4} {
		y := s.Step(numeric.ColumnVector([]float64{u}))
		assert.InDelta(t, 3*u, y.At(0, 0), 1e-12)
	}
}

func TestStateSpace_Sizes(t *testing.T) {
	s := engine.FromTransferFunction([]float64{1, 0}, []float64{1, -1, 0.25}, []float64{0, 0})
	assert.Equal(t, 1, s.InputSize())
	assert.Equal(t, 2, s.StateSize())
	assert.Equal(t, 1, s.OutputSize())
}
