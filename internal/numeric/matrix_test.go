package numeric_test

import (
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/internal/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix_MulAdd(t *testing.T) {
	a := numeric.NewMatrixFromRows([][]float64{{1, 2}, {3, 4}})
	b := numeric.ColumnVector([]float64{1, 1})

	got := a.Mul(b)
	assert.Equal(t, []float64{3, 7}, got.ToColumnSlice())

	sum := a.Add(a)
	assert.Equal(t, 2.0, sum.At(0, 0))
	assert.Equal(t, 8.0, sum.At(1, 1))
}

func TestMatrix_Transpose(t *testing.T) {
	a := numeric.NewMatrixFromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	tr := a.Transpose()
	require.Equal(t, 3, tr.Rows)
	require.Equal(t, 2, tr.Cols)
	assert.Equal(t, 4.0, tr.At(0, 1))
	assert.Equal(t, 3.0, tr.At(2, 0))
}

func TestMatrix_Inverse_IdentityIsSelfInverse(t *testing.T) {
	id := numeric.Identity(3)
	inv := id.Inverse()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, id.At(i, j), inv.At(i, j), 1e-12)
		}
	}
}

func TestMatrix_Inverse_RoundTrip(t *testing.T) {
	a := numeric.NewMatrixFromRows([][]float64{{4, 7}, {2, 6}})
	inv := a.Inverse()
	product := a.Mul(inv)

	assert.InDelta(t, 1.0, product.At(0, 0), 1e-9)
	assert.InDelta(t, 0.0, product.At(0, 1), 1e-9)
	assert.InDelta(t, 0.0, product.At(1, 0), 1e-9)
	assert.InDelta(t, 1.0, product.At(1, 1), 1e-9)
}

func TestMatrix_Inverse_SingularPanics(t *testing.T) {
	a := numeric.NewMatrixFromRows([][]float64{{1, 2}, {2, 4}})
	assert.Panics(t, func() { a.Inverse() })
}

func TestMatrix_Clone_Independent(t *testing.T) {
	a := numeric.Identity(2)
	cp := a.Clone()
	cp.Set(0, 0, 99)
	assert.Equal(t, 1.0, a.At(0, 0))
}
