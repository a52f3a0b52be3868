package ss_test

import (
	"context"
	goerrors "errors"
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/blocks/lti/ss"
	"github.com/sofia-silvestri/SignalProcessing/internal/numeric"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireSS(t *testing.T, a, b, c, d, x0 *numeric.Matrix) (*ss.Block, *port.Output, *port.Input) {
	t.Helper()
	blk := ss.New("ss-under-test")
	require.NoError(t, blk.SetStatic("A", block.MatrixValue(a)))
	require.NoError(t, blk.SetStatic("B", block.MatrixValue(b)))
	require.NoError(t, blk.SetStatic("C", block.MatrixValue(c)))
	require.NoError(t, blk.SetStatic("D", block.MatrixValue(d)))
	require.NoError(t, blk.SetStatic("x0", block.MatrixValue(x0)))

	genOut, filterIn := port.NewChannelPair("gen", blk.Name(), "input", 1)
	blk.ConnectInput("input", filterIn)
	filterOut, sinkIn := port.NewChannelPair(blk.Name(), "sink", "output", 1)
	blk.ConnectOutput("output", filterOut)

	return blk, genOut, sinkIn
}

func TestSS_Init_RejectsNonSquareA(t *testing.T) {
	blk, _, _ := wireSS(t, numeric.NewMatrix(1, 2), numeric.NewMatrix(1, 1), numeric.NewMatrix(1, 1), numeric.NewMatrix(1, 1), numeric.NewMatrix(1, 1))
	err := blk.Init(context.Background())
	assert.True(t, streamprocerrors.IsInvalidStatics(err))
	assert.False(t, blk.CheckState(block.Initial))
}

func TestSS_Init_RejectsMismatchedB(t *testing.T) {
	blk, _, _ := wireSS(t, numeric.NewMatrix(2, 2), numeric.NewMatrix(1, 1), numeric.NewMatrix(1, 2), numeric.NewMatrix(1, 1), numeric.NewMatrix(2, 1))
	err := blk.Init(context.Background())
	assert.True(t, streamprocerrors.IsInvalidStatics(err))
}

func TestSS_Integrator_EmitsBeforeUpdate(t *testing.T) {
	// A=1,B=1,C=1,D=0, x0=0: unit-gain integrator, spec §8 scenario 4.
	a := numeric.NewMatrix(1, 1)
	a.Set(0, 0, 1)
	b := numeric.NewMatrix(1, 1)
	b.Set(0, 0, 1)
	c := numeric.NewMatrix(1, 1)
	c.Set(0, 0, 1)
	d := numeric.NewMatrix(1, 1)
	x0 := numeric.NewMatrix(1, 1)

	blk, out, in := wireSS(t, a, b, c, d, x0)
	require.NoError(t, blk.Init(context.Background()))
	require.True(t, blk.CheckState(block.Initial))

	for _, want := range []float64{0, 1, 2, 3} {
		require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{1})))
		require.NoError(t, blk.Process(context.Background()))
		v, err := in.Recv(context.Background())
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{want}, v.AsRealVec(), 1e-9)
	}
}

func TestSS_Process_RejectsDimensionMismatch(t *testing.T) {
	a := numeric.NewMatrix(1, 1)
	b := numeric.NewMatrix(1, 1)
	c := numeric.NewMatrix(1, 1)
	d := numeric.NewMatrix(1, 1)
	x0 := numeric.NewMatrix(1, 1)
	blk, out, _ := wireSS(t, a, b, c, d, x0)
	require.NoError(t, blk.Init(context.Background()))

	require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{1, 2})))
	err := blk.Process(context.Background())
	var invalidInput *streamprocerrors.InvalidInputError
	assert.True(t, goerrors.As(err, &invalidInput))
	assert.True(t, blk.CheckState(block.Stopped))
}
