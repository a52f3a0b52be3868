package iir_test

import (
	"context"
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/blocks/filters/iir"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireIir(t *testing.T, order int, a, b []float64) (*iir.Block, *port.Output, *port.Input) {
	t.Helper()
	blk := iir.New("iir-under-test")
	require.NoError(t, blk.SetStatic("order", block.Int(order)))
	require.NoError(t, blk.SetStatic("a_coefficient", block.RealVec(a)))
	require.NoError(t, blk.SetStatic("b_coefficient", block.RealVec(b)))

	genOut, filterIn := port.NewChannelPair("gen", blk.Name(), "input", 1)
	blk.ConnectInput("input", filterIn)
	filterOut, sinkIn := port.NewChannelPair(blk.Name(), "sink", "output", 1)
	blk.ConnectOutput("output", filterOut)

	require.NoError(t, blk.Init(context.Background()))
	return blk, genOut, sinkIn
}

func TestIir_InitRejectsLengthMismatch(t *testing.T) {
	blk := iir.New("iir")
	require.NoError(t, blk.SetStatic("order", block.Int(2)))
	require.NoError(t, blk.SetStatic("a_coefficient", block.RealVec([]float64{1, 0, 0})))
	require.NoError(t, blk.SetStatic("b_coefficient", block.RealVec([]float64{1})))

	err := blk.Init(context.Background())
	assert.True(t, streamprocerrors.IsInvalidStatics(err))
}

func TestIir_DegeneratesIntoFir_WhenFeedbackIsZero(t *testing.T) {
	// spec §8 "IIR: response y = b.x when all a[k>=1] = 0 (degenerates to FIR)".
	// b[i] is the tap at lag i (i=0..order-1); with zero history, y[k] is
	// a pure FIR convolution of b against x.
	order := 2
	a := []float64{1, 0, 0}
	b := []float64{0.5, 0.25}
	blk, out, in := wireIir(t, order, a, b)

	x := []float64{1, 2, 3, 4}
	require.NoError(t, out.Send(context.Background(), block.RealVec(x)))
	require.NoError(t, blk.Process(context.Background()))
	v, err := in.Recv(context.Background())
	require.NoError(t, err)

	expected := make([]float64, len(x))
	for k := range x {
		val := b[0] * x[k]
		if k >= 1 {
			val += b[1] * x[k-1]
		}
		expected[k] = val
	}
	assert.InDeltaSlice(t, expected, v.AsRealVec(), 1e-9)
}

func TestIir_HistoryCarriesAcrossProcessCalls(t *testing.T) {
	a := []float64{1, 0, 0}
	b := []float64{0.5, 0.25}
	blk, out, in := wireIir(t, 2, a, b)

	require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{10})))
	require.NoError(t, blk.Process(context.Background()))
	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	// y[0] = b0*x[0] + b1*x[-1] = 0.5*10 + 0.25*0 = 5
	assert.InDeltaSlice(t, []float64{5.0}, v.AsRealVec(), 1e-12)

	require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{2})))
	require.NoError(t, blk.Process(context.Background()))
	v, err = in.Recv(context.Background())
	require.NoError(t, err)
	// y[0] of this call = b0*x[0] + b1*x[-1] (last sample of the PREVIOUS
	// call, 10) = 0.5*2 + 0.25*10 = 3.5, not contaminated by this call's
	// own in-progress output.
	assert.InDeltaSlice(t, []float64{3.5}, v.AsRealVec(), 1e-12)
}
