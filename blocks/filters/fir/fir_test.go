package fir_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/blocks/filters/fir"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wireFir constructs a Fir block with its ports connected to directly
// accessible in/out channel halves, ready for Init.
func wireFir(t *testing.T, order int, coefficient []float64) (*fir.Block, *port.Output, *port.Input) {
	t.Helper()
	b := fir.New("fir-under-test")
	require.NoError(t, b.SetStatic("order", block.Int(order)))
	require.NoError(t, b.SetStatic("coefficient", block.RealVec(coefficient)))

	genOut, filterIn := port.NewChannelPair("gen", b.Name(), "input", 1)
	b.ConnectInput("input", filterIn)
	filterOut, sinkIn := port.NewChannelPair(b.Name(), "sink", "output", 1)
	b.ConnectOutput("output", filterOut)

	require.NoError(t, b.Init(context.Background()))
	return b, genOut, sinkIn
}

func TestFir_InitRejectsLengthMismatch(t *testing.T) {
	b := fir.New("fir")
	require.NoError(t, b.SetStatic("order", block.Int(3)))
	require.NoError(t, b.SetStatic("coefficient", block.RealVec([]float64{1, 2})))

	err := b.Init(context.Background())
	assert.True(t, streamprocerrors.IsInvalidStatics(err))
}

func TestFir_Scenario_Averager(t *testing.T) {
	// spec §8 scenario 1.
	b, out, in := wireFir(t, 3, []float64{0.25, 0.25, 0.25, 0.25})

	require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{1, 1, 1, 1, 1})))
	require.NoError(t, b.Process(context.Background()))

	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.75, 1.0, 1.0}, v.AsRealVec(), 1e-12)
}

func TestFir_ImpulseResponseEqualsCoefficients(t *testing.T) {
	// spec §8 "Algorithm properties": impulse response of length L with
	// coefficients c yields output exactly c.
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		order := rng.Intn(8)
		c := make([]float64, order+1)
		for i := range c {
			c[i] = rng.Float64()*4 - 2
		}
		b, out, in := wireFir(t, order, c)

		impulse := make([]float64, order+1)
		impulse[0] = 1
		require.NoError(t, out.Send(context.Background(), block.RealVec(impulse)))
		require.NoError(t, b.Process(context.Background()))

		v, err := in.Recv(context.Background())
		require.NoError(t, err)
		assert.InDeltaSlice(t, c, v.AsRealVec(), 1e-9)
	}
}

func TestFir_HistoryCarriesAcrossProcessCalls(t *testing.T) {
	// A pre-call history that is nonzero must be read correctly on the
	// NEXT call rather than being contaminated by samples this same call
	// already produced (the bug spec §9 item 1 calls out).
	b, out, in := wireFir(t, 1, []float64{1.0, 1.0})

	require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{5})))
	require.NoError(t, b.Process(context.Background()))
	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5.0}, v.AsRealVec(), 1e-12)

	require.NoError(t, out.Send(context.Background(), block.RealVec([]float64{3, 3})))
	require.NoError(t, b.Process(context.Background()))
	v, err = in.Recv(context.Background())
	require.NoError(t, err)
	// y[0] = c0*3 + c1*5 (previous call's last sample) = 8
	// y[1] = c0*3 + c1*3 (this call's own previous sample) = 6
	assert.InDeltaSlice(t, []float64{8.0, 6.0}, v.AsRealVec(), 1e-12)
}
