// Package movingaverage implements a centered moving-average filter
// block (spec §4.8), grounded on
// original_source/filters/src/moving_average.rs. The reference's
// boundary arithmetic (`k < order` / `k > N - half_order - 1`)
// under- or over-counts at the right edge when order is even (spec §9,
// item 3); this implementation instead reproduces the documented intent
// directly: a centered window of half-width order/2 that shrinks at
// both edges, dividing by the window's current (possibly smaller) count
// so energy is preserved near the endpoints.
package movingaverage

import (
	"context"

	"github.com/sofia-silvestri/SignalProcessing/internal/blockbase"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/internal/registry"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

const TypeName = "MovingAverage"

// Block is a moving-average filter instance.
type Block struct {
	*blockbase.Base
}

// New constructs a MovingAverage block instance named name.
func New(name string) *Block {
	b := &Block{Base: blockbase.New(name, TypeName)}
	b.DeclareInput("input", nil)
	b.DeclareOutput("output", nil)
	b.DeclareStatic("order", block.Int(0), nil)
	return b
}

// ConnectInput wires the named input port's receive side.
func (b *Block) ConnectInput(tag string, in *port.Input) { b.DeclareInput(tag, in) }

// ConnectOutput wires the named output port's send side.
func (b *Block) ConnectOutput(tag string, out *port.Output) { b.DeclareOutput(tag, out) }

// Init has no cross-static invariant beyond statics being assigned.
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

// Process computes a centered moving average over the received block
// using an O(1)-amortized running sum/count that grows at the leading
// edge and shrinks at the trailing edge. When order spans (or exceeds)
// the whole batch, the centered window would otherwise collapse to the
// same full-batch mean at every index; instead this falls back to a
// plain growing-prefix cumulative mean, so order=0 and order>=N sit at
// the two ends of one continuous family: a single-sample window and an
// ever-growing one.
func (b *Block) Process(ctx context.Context) error {
	orderV, err := b.GetStatic("order")
	if err != nil {
		return err
	}
	order := orderV.AsInt()
	halfOrder := order / 2

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

	n := len(x)
	y := make([]float64, n)
	if n == 0 {
		return b.SendOutput(ctx, "output", block.RealVec(y))
	}

	if order >= n {
		var sum float64
		for k := 0; k < n; k++ {
			sum += x[k]
			y[k] = sum / float64(k+1)
		}
		return b.SendOutput(ctx, "output", block.RealVec(y))
	}

	initialHi := halfOrder
	if initialHi > n-1 {
		initialHi = n - 1
	}
	var sum float64
	count := 0
	for i := 0; i <= initialHi; i++ {
		sum += x[i]
		count++
	}

	for k := 0; k < n; k++ {
		y[k] = sum / float64(count)

		enter := k + halfOrder + 1
		if enter <= n-1 {
			sum += x[enter]
			count++
		}
		leave := k - halfOrder
		if leave >= 0 {
			sum -= x[leave]
			count--
		}
	}

	return b.SendOutput(ctx, "output", block.RealVec(y))
}

func init() {
	registry.Register(TypeName, func(instanceName string) block.Block { return New(instanceName) })
}
