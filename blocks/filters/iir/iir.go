// Package iir implements an infinite-impulse-response filter block (spec
// §4.6), grounded on original_source/filters/src/iir.rs. Like the FIR
// block, the reference's inner-loop index is replaced with the standard
// direct-form-I difference equation (spec §9, item 2).
package iir

import (
	"context"

	"github.com/sofia-silvestri/SignalProcessing/internal/blockbase"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/internal/registry"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

const TypeName = "Iir"

// Block is an IIR filter instance.
type Block struct {
	*blockbase.Base
}

// New constructs an Iir block instance named name.
func New(name string) *Block {
	b := &Block{Base: blockbase.New(name, TypeName)}
	b.DeclareInput("input", nil)
	b.DeclareOutput("output", nil)
	b.DeclareStatic("order", block.Int(0), nil)
	b.DeclareStatic("a_coefficient", block.RealVec(nil), nil)
	b.DeclareStatic("b_coefficient", block.RealVec(nil), nil)
	b.DeclareState("inputs_memory", block.RealVec(nil))
	b.DeclareState("outputs_memory", block.RealVec(nil))
	return b
}

// ConnectInput wires the named input port's receive side.
func (b *Block) ConnectInput(tag string, in *port.Input) { b.DeclareInput(tag, in) }

// ConnectOutput wires the named output port's send side.
func (b *Block) ConnectOutput(tag string, out *port.Output) { b.DeclareOutput(tag, out) }

// Init validates the order/a_coefficient/b_coefficient shapes and
// zero-initializes both sample histories.
func (b *Block) Init(ctx context.Context) error {
	return b.BeginInit(func() error {
		orderV, err := b.GetStatic("order")
		if err != nil {
			return err
		}
		aV, err := b.GetStatic("a_coefficient")
		if err != nil {
			return err
		}
		bV, err := b.GetStatic("b_coefficient")
		if err != nil {
			return err
		}
		order := orderV.AsInt()
		a := aV.AsRealVec()
		bc := bV.AsRealVec()
		if len(a) != order+1 {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "a_coefficient", "len(a_coefficient) must equal order+1", nil)
		}
		if len(bc) != order {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "b_coefficient", "len(b_coefficient) must equal order", nil)
		}
		if err := b.SetState("inputs_memory", block.RealVec(make([]float64, order))); err != nil {
			return err
		}
		return b.SetState("outputs_memory", block.RealVec(make([]float64, order)))
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

// Process applies the direct-form-I difference equation
// y[k] = Σ b[i] x[k-i] - Σ_{j>=1} a[j] y[k-j] sample by sample.
func (b *Block) Process(ctx context.Context) error {
	aV, err := b.GetStatic("a_coefficient")
	if err != nil {
		return err
	}
	bV, err := b.GetStatic("b_coefficient")
	if err != nil {
		return err
	}
	a := aV.AsRealVec()
	bc := bV.AsRealVec()
	order := len(bc)

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

	xMemV, err := b.GetState("inputs_memory")
	if err != nil {
		return err
	}
	yMemV, err := b.GetState("outputs_memory")
	if err != nil {
		return err
	}
	// xHist/yHist are frozen pre-call histories. They must not be mutated
	// while computing y: every sample in this call looks back at the same
	// pre-call history, not at history contaminated by earlier samples
	// already produced within this same call.
	xHist := xMemV.AsRealVec()
	yHist := yMemV.AsRealVec()

	y := make([]float64, len(x))
	sampleAt := func(hist []float64, cur []float64, k, lag int) float64 {
		if k-lag >= 0 {
			return cur[k-lag]
		}
		idx := len(hist) + (k - lag)
		if idx >= 0 && idx < len(hist) {
			return hist[idx]
		}
		return 0
	}
	for k := range x {
		value := bc[0] * x[k]
		for i := 1; i < order; i++ {
			value += bc[i] * sampleAt(xHist, x, k, i)
		}
		for j := 1; j <= order; j++ {
			value -= a[j] * sampleAt(yHist, y, k, j)
		}
		y[k] = value
	}

	fullX := make([]float64, 0, len(xHist)+len(x))
	fullX = append(fullX, xHist...)
	fullX = append(fullX, x...)
	newXMem := fullX
	if len(fullX) > order {
		newXMem = fullX[len(fullX)-order:]
	}

	fullY := make([]float64, 0, len(yHist)+len(y))
	fullY = append(fullY, yHist...)
	fullY = append(fullY, y...)
	newYMem := fullY
	if len(fullY) > order {
		newYMem = fullY[len(fullY)-order:]
	}

	if err := b.SetState("inputs_memory", block.RealVec(newXMem)); err != nil {
		return err
	}
	if err := b.SetState("outputs_memory", block.RealVec(newYMem)); err != nil {
		return err
	}
	return b.SendOutput(ctx, "output", block.RealVec(y))
}

func init() {
	registry.Register(TypeName, func(instanceName string) block.Block { return New(instanceName) })
}
