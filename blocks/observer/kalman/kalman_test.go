package kalman_test

import (
	"context"
	goerrors "errors"
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/blocks/observer/kalman"
	"github.com/sofia-silvestri/SignalProcessing/internal/numeric"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireKalman(t *testing.T, a, b, h, q, r, p0 *numeric.Matrix, x0 []float64) (*kalman.Block, *port.Output, *port.Output, *port.Input) {
	t.Helper()
	blk := kalman.New("kalman-under-test")
	require.NoError(t, blk.SetStatic("A", block.MatrixValue(a)))
	require.NoError(t, blk.SetStatic("B", block.MatrixValue(b)))
	require.NoError(t, blk.SetStatic("H", block.MatrixValue(h)))
	require.NoError(t, blk.SetStatic("Q", block.MatrixValue(q)))
	require.NoError(t, blk.SetStatic("R", block.MatrixValue(r)))
	require.NoError(t, blk.SetStatic("P0", block.MatrixValue(p0)))
	require.NoError(t, blk.SetStatic("initial_state", block.RealVec(x0)))

	controlOut, controlIn := port.NewChannelPair("gen", blk.Name(), "control", 1)
	blk.ConnectInput("control", controlIn)
	measOut, measIn := port.NewChannelPair("gen", blk.Name(), "measurement", 1)
	blk.ConnectInput("measurement", measIn)
	filterOut, sinkIn := port.NewChannelPair(blk.Name(), "sink", "output", 1)
	blk.ConnectOutput("output", filterOut)

	return blk, controlOut, measOut, sinkIn
}

func TestKalman_ZeroProcessAndMeasurementNoise_TracksMeasurementExactly(t *testing.T) {
	// spec §8: with A=I, B=0, H=I, Q=0, P0=I and R=0, the posterior
	// estimate collapses exactly onto the first measurement (the Kalman
	// gain is the identity when the innovation covariance equals the
	// prior covariance). A second step would leave the innovation
	// covariance S singular (P has collapsed to 0 and R is 0 too), so
	// this only exercises the first predict-correct cycle.
	a := numeric.Identity(1)
	b := numeric.NewMatrix(1, 1)
	h := numeric.Identity(1)
	q := numeric.NewMatrix(1, 1)
	r := numeric.NewMatrix(1, 1)
	p0 := numeric.Identity(1)

	blk, controlOut, measOut, in := wireKalman(t, a, b, h, q, r, p0, []float64{0})
	require.NoError(t, blk.Init(context.Background()))

	require.NoError(t, controlOut.Send(context.Background(), block.RealVec([]float64{0})))
	require.NoError(t, measOut.Send(context.Background(), block.RealVec([]float64{42.0})))
	require.NoError(t, blk.Process(context.Background()))

	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{42.0}, v.AsRealVec(), 1e-9)
}

func TestKalman_Init_RejectsNonSquareA(t *testing.T) {
	a := numeric.NewMatrix(1, 2)
	b := numeric.NewMatrix(1, 1)
	h := numeric.Identity(1)
	q := numeric.Identity(1)
	r := numeric.Identity(1)
	p0 := numeric.Identity(1)
	blk, _, _, _ := wireKalman(t, a, b, h, q, r, p0, []float64{0})
	err := blk.Init(context.Background())
	assert.True(t, streamprocerrors.IsInvalidStatics(err))
}

func TestKalman_Process_RejectsMeasurementDimensionMismatch(t *testing.T) {
	a := numeric.Identity(1)
	b := numeric.Identity(1)
	h := numeric.Identity(1)
	q := numeric.Identity(1)
	r := numeric.Identity(1)
	p0 := numeric.Identity(1)
	blk, controlOut, measOut, _ := wireKalman(t, a, b, h, q, r, p0, []float64{0})
	require.NoError(t, blk.Init(context.Background()))

	require.NoError(t, controlOut.Send(context.Background(), block.RealVec([]float64{0})))
	require.NoError(t, measOut.Send(context.Background(), block.RealVec([]float64{1, 2})))
	err := blk.Process(context.Background())

	var invalidInput *streamprocerrors.InvalidInputError
	assert.True(t, goerrors.As(err, &invalidInput))
	assert.True(t, blk.CheckState(block.Stopped))
}
