package numeric_test

import (
	"math"
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/internal/numeric"
	"github.com/stretchr/testify/assert"
)

func TestTransform_ImpulseSpectrumIsFlat(t *testing.T) {
	// spec §8 scenario 6: forward FFT of a unit impulse is all-ones.
	in := make([]complex128, 8)
	in[0] = 1

	out := numeric.Transform(in, false)
	for _, c := range out {
		assert.InDelta(t, 1.0, real(c), 1e-12)
		assert.InDelta(t, 0.0, imag(c), 1e-12)
	}
}

func TestTransform_ForwardInverseRoundTrip_ScalesByN(t *testing.T) {
	in := make([]complex128, 8)
	in[0] = 1

	forward := numeric.Transform(in, false)
	back := numeric.Transform(forward, true)

	assert.InDelta(t, 8.0, real(back[0]), 1e-9)
	for i := 1; i < len(back); i++ {
		assert.InDelta(t, 0.0, real(back[i]), 1e-9)
		assert.InDelta(t, 0.0, imag(back[i]), 1e-9)
	}
}

func TestTransform_NonPowerOfTwo_RoundTrip(t *testing.T) {
	n := 6
	in := make([]complex128, n)
	for i := range in {
		in[i] = complex(math.Sin(float64(i)), 0)
	}

	forward := numeric.Transform(in, false)
	back := numeric.Transform(forward, true)
	for i := range in {
		assert.InDelta(t, real(in[i])*float64(n), real(back[i]), 1e-9)
		assert.InDelta(t, 0.0, imag(back[i]), 1e-9)
	}
}

func TestFactorize_ProductEqualsN(t *testing.T) {
	for _, n := range []int{1, 2, 12, 17, 360} {
		factors := numeric.Factorize(n)
		product := 1
		for _, f := range factors {
			product *= f
		}
		assert.Equal(t, n, product)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.True(t, numeric.IsPowerOfTwo(1))
	assert.True(t, numeric.IsPowerOfTwo(1024))
	assert.False(t, numeric.IsPowerOfTwo(0))
	assert.False(t, numeric.IsPowerOfTwo(6))
}
