package alphabetagamma_test

import (
	"context"
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/blocks/observer/alphabetagamma"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireABG(t *testing.T, alpha, beta, gamma float64) (*alphabetagamma.Block, *port.Output, *port.Input) {
	t.Helper()
	b := alphabetagamma.New("abg-under-test")
	require.NoError(t, b.SetStatic("alpha", block.Real(alpha)))
	require.NoError(t, b.SetStatic("beta", block.Real(beta)))
	require.NoError(t, b.SetStatic("gamma", block.Real(gamma)))

	genOut, filterIn := port.NewChannelPair("gen", b.Name(), "input", 1)
	b.ConnectInput("input", filterIn)
	filterOut, sinkIn := port.NewChannelPair(b.Name(), "sink", "output", 1)
	b.ConnectOutput("output", filterOut)

	require.NoError(t, b.Init(context.Background()))
	return b, genOut, sinkIn
}

func TestAlphaBetaGamma_ZeroGains_HoldsFirstEstimateForever(t *testing.T) {
	// spec §8 scenario 5: alpha=beta=gamma=0 means no correction ever
	// happens, so every later sample still reports the seeded position
	// regardless of how much wall-clock time elapses between calls.
	b, out, in := wireABG(t, 0, 0, 0)

	require.NoError(t, out.Send(context.Background(), block.Real(5.0)))
	require.NoError(t, b.Process(context.Background()))
	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v.AsReal(), 1e-12)

	require.NoError(t, out.Send(context.Background(), block.Real(7.0)))
	require.NoError(t, b.Process(context.Background()))
	v, err = in.Recv(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v.AsReal(), 1e-12)
}

func TestAlphaBetaGamma_AlphaOne_TracksMeasurementExactly(t *testing.T) {
	// With alpha=1, beta=gamma=0 and zero initial velocity, the full
	// innovation is applied every step: the filter tracks the raw
	// measurement exactly from the second sample on.
	b, out, in := wireABG(t, 1, 0, 0)

	for _, m := range []float64{5.0, 7.0, -3.0, 12.0} {
		require.NoError(t, out.Send(context.Background(), block.Real(m)))
		require.NoError(t, b.Process(context.Background()))
		v, err := in.Recv(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, m, v.AsReal(), 1e-9)
	}
}
