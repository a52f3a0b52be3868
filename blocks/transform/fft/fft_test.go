package fft_test

import (
	"context"
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/blocks/transform/fft"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireFft(t *testing.T, size int, inverse, complexInput bool) (*fft.Block, *port.Output, *port.Output, *port.Input) {
	t.Helper()
	b := fft.New("fft-under-test")
	require.NoError(t, b.SetStatic("fft_size", block.Int(size)))
	require.NoError(t, b.SetStatic("inverse", block.Bool(inverse)))
	require.NoError(t, b.SetStatic("complex_input", block.Bool(complexInput)))

	realOut, realIn := port.NewChannelPair("gen", b.Name(), "real_signal", 1)
	b.ConnectInput("real_signal", realIn)
	complexOut, complexIn := port.NewChannelPair("gen", b.Name(), "complex_signal", 1)
	b.ConnectInput("complex_signal", complexIn)
	filterOut, sinkIn := port.NewChannelPair(b.Name(), "sink", "output_transform", 1)
	b.ConnectOutput("output_transform", filterOut)

	require.NoError(t, b.Init(context.Background()))
	return b, realOut, complexOut, sinkIn
}

func TestFft_Scenario_ImpulseSpectrumIsFlat(t *testing.T) {
	// spec §8 scenario 6: forward FFT of a unit impulse is all-ones.
	b, realOut, _, in := wireFft(t, 8, false, false)

	require.NoError(t, realOut.Send(context.Background(), block.RealVec([]float64{1, 0, 0, 0, 0, 0, 0, 0})))
	require.NoError(t, b.Process(context.Background()))

	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	out := v.AsComplexVec()
	require.Len(t, out, 8)
	for _, c := range out {
		assert.InDelta(t, 1.0, real(c), 1e-9)
		assert.InDelta(t, 0.0, imag(c), 1e-9)
	}
}

func TestFft_ZeroPadsShortInputToFftSize(t *testing.T) {
	b, realOut, _, in := wireFft(t, 16, false, false)

	require.NoError(t, realOut.Send(context.Background(), block.RealVec([]float64{1, 2, 3})))
	require.NoError(t, b.Process(context.Background()))

	v, err := in.Recv(context.Background())
	require.NoError(t, err)
	assert.Len(t, v.AsComplexVec(), 16)
}

func TestFft_ComplexInput_InverseRoundTrip(t *testing.T) {
	forward, realOut, _, in := wireFft(t, 4, false, false)
	require.NoError(t, realOut.Send(context.Background(), block.RealVec([]float64{1, 2, 3, 4})))
	require.NoError(t, forward.Process(context.Background()))
	spectrum, err := in.Recv(context.Background())
	require.NoError(t, err)

	inverse, _, complexOut, backIn := wireFft(t, 4, true, true)
	require.NoError(t, complexOut.Send(context.Background(), block.ComplexVec(spectrum.AsComplexVec())))
	require.NoError(t, inverse.Process(context.Background()))
	back, err := backIn.Recv(context.Background())
	require.NoError(t, err)

	want := []float64{1, 2, 3, 4}
	got := back.AsComplexVec()
	require.Len(t, got, 4)
	for i, w := range want {
		assert.InDelta(t, w*4, real(got[i]), 1e-9)
		assert.InDelta(t, 0.0, imag(got[i]), 1e-9)
	}
}
