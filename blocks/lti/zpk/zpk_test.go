package zpk_test

import (
	"context"
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/blocks/lti/zpk"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireZPK(t *testing.T, zeros, poles []float64, gain float64, x0 []float64) (*zpk.Block, *port.Output, *port.Input) {
	t.Helper()
	blk := zpk.New("zpk-under-test")
	require.NoError(t, blk.SetStatic("zeros", block.RealVec(zeros)))
	require.NoError(t, blk.SetStatic("poles", block.RealVec(poles)))
	require.NoError(t, blk.SetStatic("gain", block.Real(gain)))
	require.NoError(t, blk.SetStatic("x0", block.RealVec(x0)))

	genOut, filterIn := port.NewChannelPair("gen", blk.Name(), "input", 1)
	blk.ConnectInput("input", filterIn)
	filterOut, sinkIn := port.NewChannelPair(blk.Name(), "sink", "output", 1)
	blk.ConnectOutput("output", filterOut)

	return blk, genOut, sinkIn
}

func TestZPK_Init_RejectsMoreZerosThanPoles(t *testing.T) {
	blk, _, _ := wireZPK(t, []float64{1, 2}, []float64{0.5}, 1.0, []float64{0})
	err := blk.Init(context.Background())
	assert.True(t, streamprocerrors.IsInvalidStatics(err))
}

func TestZPK_SinglePole_ImpulseResponse(t *testing.T) {
	p := 0.5
	g := 2.0
	blk, out, in := wireZPK(t, nil, []float64{p}, g, []float64{0})
	require.NoError(t, blk.Init(context.Background()))
	assert.True(t, blk.CheckState(block.Initial))

	require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{1})))
	require.NoError(t, blk.Process(context.Background()))
	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0}, v.AsRealVec(), 1e-9)

	want := g
	for k := 1; k < 5; k++ {
		require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{0})))
		require.NoError(t, blk.Process(context.Background()))
		v, err := in.Recv(context.Background())
		require.NoError(t, err)
		assert.InDeltaSlicef(t, []float64{want}, v.AsRealVec(), 1e-9, "sample %d", k)
		want *= p
	}
}
