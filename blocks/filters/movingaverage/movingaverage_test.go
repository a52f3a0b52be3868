package movingaverage_test

import (
	"context"
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/blocks/filters/movingaverage"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireMA(t *testing.T, order int) (*movingaverage.Block, *port.Output, *port.Input) {
	t.Helper()
	b := movingaverage.New("ma-under-test")
	require.NoError(t, b.SetStatic("order", block.Int(order)))

	genOut, filterIn := port.NewChannelPair("gen", b.Name(), "input", 1)
	b.ConnectInput("input", filterIn)
	filterOut, sinkIn := port.NewChannelPair(b.Name(), "sink", "output", 1)
	b.ConnectOutput("output", filterOut)

	require.NoError(t, b.Init(context.Background()))
	return b, genOut, sinkIn
}

func TestMovingAverage_OrderZero_IsIdentity(t *testing.T) {
	// spec §8 "Moving average with order = 0 is the identity".
	b, out, in := wireMA(t, 0)

	x := []float64{1, 2, 3, 4, 5}
	require.NoError(t, out.Send(context.Background(), block.RealVec(x)))
	require.NoError(t, b.Process(context.Background()))

	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, x, v.AsRealVec())
}

func TestMovingAverage_Scenario_CenteredWindow(t *testing.T) {
	// spec §8 scenario 3: order=2 on [1,2,3,4,5] -> [1.5,2.0,3.0,4.0,4.5].
	b, out, in := wireMA(t, 2)

	require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{1, 2, 3, 4, 5})))
	require.NoError(t, b.Process(context.Background()))

	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.5, 2.0, 3.0, 4.0, 4.5}, v.AsRealVec(), 1e-12)
}

func TestMovingAverage_OrderAtLeastN_IsCumulativeMeanPrefix(t *testing.T) {
	// spec §8 "with order >= N, output equals the cumulative mean prefix":
	// y[k] = mean(x[0..k]), growing one sample at a time, not the
	// whole-batch mean repeated at every index.
	b, out, in := wireMA(t, 100)

	x := []float64{2, 4, 6, 8}
	require.NoError(t, out.Send(context.Background(), block.RealVec(x)))
	require.NoError(t, b.Process(context.Background()))

	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.0, 3.0, 4.0, 5.0}, v.AsRealVec(), 1e-12)
}

func TestMovingAverage_EmptyInput(t *testing.T) {
	b, out, in := wireMA(t, 2)

	require.NoError(t, out.Send(context.Background(), block.RealVec(nil)))
	require.NoError(t, b.Process(context.Background()))

	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.Empty(t, v.AsRealVec())
}
