// Package fir implements a finite-impulse-response filter block (spec
// §4.5), grounded on original_source/filters/src/fir.rs. The reference
// implementation's inner-loop index (`input_memory[order - k]`) goes out
// of range and does not correspond to a standard convolution (spec §9,
// item 1); this implementation instead computes the textbook
// convolution y[k] = Σ c[i]·x[k-i] against a ring of past samples.
package fir

import (
	"context"

	"github.com/sofia-silvestri/SignalProcessing/internal/blockbase"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/internal/registry"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

const TypeName = "Fir"

// Block is an FIR filter instance.
type Block struct {
	*blockbase.Base
}

// New constructs a Fir block instance named name.
func New(name string) *Block {
	b := &Block{Base: blockbase.New(name, TypeName)}
	b.DeclareInput("input", nil)
	b.DeclareOutput("output", nil)
	b.DeclareStatic("order", block.Int(0), nil)
	b.DeclareStatic("coefficient", block.RealVec(nil), nil)
	b.DeclareState("inputs_memory", block.RealVec(nil))
	return b
}

// ConnectInput wires the named input port's receive side.
func (b *Block) ConnectInput(tag string, in *port.Input) { b.DeclareInput(tag, in) }

// ConnectOutput wires the named output port's send side.
func (b *Block) ConnectOutput(tag string, out *port.Output) { b.DeclareOutput(tag, out) }

// Init validates the order/coefficient invariant and zero-initializes
// the sample history.
func (b *Block) Init(ctx context.Context) error {
	return b.BeginInit(func() error {
		orderV, err := b.GetStatic("order")
		if err != nil {
			return err
		}
		coefV, err := b.GetStatic("coefficient")
		if err != nil {
			return err
		}
		order := orderV.AsInt()
		coefficient := coefV.AsRealVec()
		if len(coefficient) != order+1 {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "coefficient", "len(coefficient) must equal order+1", nil)
		}
		return b.SetState("inputs_memory", block.RealVec(make([]float64, order)))
	})
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

// Process receives one input block, convolves it against the
// coefficient vector and the rolling sample history, and emits the
// filtered block.
func (b *Block) Process(ctx context.Context) error {
	coefV, err := b.GetStatic("coefficient")
	if err != nil {
		return err
	}
	coefficient := coefV.AsRealVec()
	order := len(coefficient) - 1

	input, err := b.RecvInput(ctx, "input")
	if err != nil {
		if streamprocerrors.IsChannelClosed(err) {
			b.StopOnFatal()
		}
		return err
	}
	x := input.AsRealVec()

	b.Lock()
	defer b.Unlock()

	memV, err := b.GetState("inputs_memory")
	if err != nil {
		return err
	}
	// hist is the frozen pre-call history (the last `order` samples seen
	// before this Process call); it must not be mutated while computing
	// y, since every sample in this call needs to see the SAME history
	// that preceded the block, not one another's already-computed output.
	hist := memV.AsRealVec()

	y := make([]float64, len(x))
	for k := range x {
		value := coefficient[0] * x[k]
		for i := 1; i <= order; i++ {
			var sample float64
			if k-i >= 0 {
				sample = x[k-i]
			} else {
				histIdx := len(hist) + (k - i)
				if histIdx >= 0 && histIdx < len(hist) {
					sample = hist[histIdx]
				}
			}
			value += coefficient[i] * sample
		}
		y[k] = value
	}

	// Advance the rolling history for the next call: the last `order`
	// samples of (hist ++ x).
	full := make([]float64, 0, len(hist)+len(x))
	full = append(full, hist...)
	full = append(full, x...)
	newMem := full
	if len(full) > order {
		newMem = full[len(full)-order:]
	}

	if err := b.SetState("inputs_memory", block.RealVec(newMem)); err != nil {
		return err
	}
	return b.SendOutput(ctx, "output", block.RealVec(y))
}

func init() {
	registry.Register(TypeName, func(instanceName string) block.Block { return New(instanceName) })
}
