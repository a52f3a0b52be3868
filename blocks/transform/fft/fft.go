// Package fft implements a spectral-transform block (spec §4.13),
// grounded on original_source/transform/src/fft.rs. The reference
// implements its own mixed-radix recursion by hand; this implementation
// substitutes internal/numeric's radix-2/general-DFT kernel, which spec
// §4.13 explicitly permits ("implementers may substitute a production
// FFT library provided correctness matches that contract") while
// additionally fixing a latent truncation: the original's
// `factorize`-driven recursion implicitly assumes a size matching its
// precomputed weights table and produces incorrect results for sizes
// whose factorization doesn't evenly terminate in a radix-2/radix-others
// base case; internal/numeric.Transform instead supports any length
// exactly via its generic-DFT fallback.
package fft

import (
	"context"

	"github.com/sofia-silvestri/SignalProcessing/internal/blockbase"
	"github.com/sofia-silvestri/SignalProcessing/internal/numeric"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/internal/registry"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

const TypeName = "Fft"

// Block is a spectral-transform instance.
type Block struct {
	*blockbase.Base
}

// New constructs an Fft block instance named name.
func New(name string) *Block {
	b := &Block{Base: blockbase.New(name, TypeName)}
	b.DeclareInput("real_signal", nil)
	b.DeclareInput("complex_signal", nil)
	b.DeclareOutput("output_transform", nil)
	b.DeclareStatic("fft_size", block.Int(1024), nil)
	b.DeclareStatic("inverse", block.Bool(false), nil)
	b.DeclareStatic("complex_input", block.Bool(false), nil)
	return b
}

// ConnectInput wires the named input port's receive side ("real_signal"
// or "complex_signal").
func (b *Block) ConnectInput(tag string, in *port.Input) { b.DeclareInput(tag, in) }

// ConnectOutput wires the named output port's send side.
func (b *Block) ConnectOutput(tag string, out *port.Output) { b.DeclareOutput(tag, out) }

// Init has no cross-static invariant beyond statics being assigned; the
// twiddle/factorization "plan" is implicit in internal/numeric.Transform,
// which derives it from fft_size on every call rather than caching a
// precomputed plan object, trading a small amount of repeated work for a
// stateless, allocation-light kernel.
func (b *Block) Init(ctx context.Context) error {
	return b.BeginInit(nil)
}

// Run transitions to Running and loops Process until Stopped.
func (b *Block) Run(ctx context.Context) error {
	if err := b.BeginRun(); err != nil {
		return err
	}
	for !b.CheckState(block.Stopped) {
		if err := b.Process(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Process consumes either real_signal or complex_signal depending on
// complex_input, zero-pads to fft_size if shorter, and emits the
// transform on output_transform.
func (b *Block) Process(ctx context.Context) error {
	sizeV, err := b.GetStatic("fft_size")
	if err != nil {
		return err
	}
	inverseV, err := b.GetStatic("inverse")
	if err != nil {
		return err
	}
	complexInputV, err := b.GetStatic("complex_input")
	if err != nil {
		return err
	}
	size := sizeV.AsInt()
	inverse := inverseV.AsBool()
	complexInput := complexInputV.AsBool()

	var samples []complex128
	if complexInput {
		in, err := b.RecvInput(ctx, "complex_signal")
		if err != nil {
			if streamprocerrors.IsChannelClosed(err) {
				b.StopOnFatal()
			}
			return err
		}
		samples = in.AsComplexVec()
	} else {
		in, err := b.RecvInput(ctx, "real_signal")
		if err != nil {
			if streamprocerrors.IsChannelClosed(err) {
				b.StopOnFatal()
			}
			return err
		}
		real := in.AsRealVec()
		samples = make([]complex128, len(real))
		for i, v := range real {
			samples[i] = complex(v, 0)
		}
	}

	padded := make([]complex128, size)
	copy(padded, samples)

	b.Lock()
	spectrum := numeric.Transform(padded, inverse)
	b.Unlock()

	return b.SendOutput(ctx, "output_transform", block.ComplexVec(spectrum))
}

func init() {
	registry.Register(TypeName, func(instanceName string) block.Block { return New(instanceName) })
}
