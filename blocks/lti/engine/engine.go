// Package engine implements the reusable linear-time-invariant
// state-space simulator (spec §4.9) shared by the Ss, Tf, and Zpk
// blocks, grounded on original_source/lti/src/state_space.rs.
package engine

import "github.com/sofia-silvestri/SignalProcessing/internal/numeric"

// StateSpace is a discrete-time LTI system x[k+1] = A x[k] + B u[k],
// y[k] = C x[k] + D u[k].
type StateSpace struct {
	A, B, C, D *numeric.Matrix
	x          *numeric.Matrix
}

// New constructs a StateSpace engine from raw matrices and an initial
// state column vector.
func New(a, b, c, d, x0 *numeric.Matrix) *StateSpace {
	return &StateSpace{A: a, B: b, C: c, D: d, x: x0}
}

// FromTransferFunction builds a controllable-canonical-form realization
// of num(z)/den(z) with n = len(den)-1 states, matching
// original_source/lti/src/state_space.rs's from_tf (spec §4.9), with num
// first left-padded with zeros to len(den):
// D = num[0]/den[0] iff len(num) == len(den), else 0; A is the companion
// matrix with -den[k+1]/den[0] in its last row; B holds num[k]/den[0]
// for k >= 1 of the padded num; C = [0,...,0,1].
func FromTransferFunction(num, den, x0 []float64) *StateSpace {
	n := len(den) - 1
	if len(num) < len(den) {
		padded := make([]float64, len(den)-len(num), len(den))
		num = append(padded, num...)
	}

	a := numeric.NewMatrix(n, n)
	b := numeric.NewMatrix(n, 1)
	c := numeric.NewMatrix(1, n)
	d := numeric.NewMatrix(1, 1)

	if n > 0 {
		c.Set(0, n-1, 1.0)
	}
	if len(num) == len(den) {
		d.Set(0, 0, num[0]/den[0])
	}
	for k := 0; k < n; k++ {
		if k < n-1 {
			a.Set(k, k+1, 1.0)
		}
		a.Set(n-1, k, -den[k+1]/den[0])
	}
	for k := 1; k < len(num); k++ {
		b.Set(k-1, 0, num[k]/den[0])
	}

	return &StateSpace{A: a, B: b, C: c, D: d, x: numeric.ColumnVector(x0)}
}

// cauchy computes the polynomial product (convolution) of coefficient
// vectors a and b, both in ascending-power order.
func cauchy(a, b []float64) []float64 {
	result := make([]float64, len(a)+len(b)-1)
	for i := range a {
		for j := range b {
			result[i+j] += a[i] * b[j]
		}
	}
	return result
}

// FromZeroPoleGain builds the state-space realization of a system
// described by its zeros, poles, and gain, matching
// original_source/lti/src/state_space.rs's from_zpk: convolve (x - p_i)
// to form the denominator, convolve (x - z_j) to form the numerator,
// scale by gain, reverse both into descending-power order, left-pad the
// numerator to the denominator's length, then hand off to
// FromTransferFunction.
func FromZeroPoleGain(zeros, poles []float64, gain float64, x0 []float64) *StateSpace {
	num := []float64{1.0}
	den := []float64{1.0}
	for _, p := range poles {
		den = cauchy(den, []float64{-p, 1.0})
	}
	for _, z := range zeros {
		num = cauchy(num, []float64{-z, 1.0})
	}
	for i := range num {
		num[i] *= gain
	}
	reverse(num)
	reverse(den)
	for len(num) < len(den) {
		num = append([]float64{0.0}, num...)
	}
	return FromTransferFunction(num, den, x0)
}

func reverse(xs []float64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// Step advances the engine by one sample. It returns y[k] = C x[k] + D
// u[k] computed from the state BEFORE the update, then performs
// x[k+1] = A x[k] + B u[k] for the next call. This ordering (emit from
// the pre-update state, then advance) is what reproduces the literal
// worked example in spec §8 (a unit-gain integrator fed a unit step
// emits 0, 1, 2, ...), and is the standard state-space convention; a
// naive transcription of original_source's update-then-emit order does
// not.
func (s *StateSpace) Step(u *numeric.Matrix) *numeric.Matrix {
	y := s.C.Mul(s.x).Add(s.D.Mul(u))
	s.x = s.A.Mul(s.x).Add(s.B.Mul(u))
	return y
}

// InputSize returns the number of columns B has, i.e. the expected
// length of u.
func (s *StateSpace) InputSize() int { return s.B.Cols }

// StateSize returns n, the number of state variables.
func (s *StateSpace) StateSize() int { return s.A.Rows }

// OutputSize returns p, the number of outputs.
func (s *StateSpace) OutputSize() int { return s.C.Rows }
