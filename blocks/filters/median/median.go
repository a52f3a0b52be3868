// Package median implements a running median filter block (spec §4.7),
// grounded on original_source/filters/src/median_filter.rs. The sliding
// window is kept as persistent block state so a filter driven by many
// small process() calls still despikes across call boundaries, not just
// within one call's batch.
package median

import (
	"context"
	"sort"

	"github.com/sofia-silvestri/SignalProcessing/internal/blockbase"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/internal/registry"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

const TypeName = "MedianFilter"

// Block is a median filter instance.
type Block struct {
	*blockbase.Base
}

// New constructs a MedianFilter block instance named name.
func New(name string) *Block {
	b := &Block{Base: blockbase.New(name, TypeName)}
	b.DeclareInput("input", nil)
	b.DeclareOutput("output", nil)
	b.DeclareStatic("order", block.Int(0), nil)
	b.DeclareState("window", block.RealVec(nil))
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

// Process pushes each input sample into the sliding window (dropping the
// oldest once the window holds `order` samples) and emits the median:
// the exact middle value if the window length is odd, the mean of the
// two middle values if even (spec §4.7, order==1 is the identity per
// spec §8).
func (b *Block) Process(ctx context.Context) error {
	orderV, err := b.GetStatic("order")
	if err != nil {
		return err
	}
	order := orderV.AsInt()

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

	windowV, err := b.GetState("window")
	if err != nil {
		return err
	}
	window := append([]float64(nil), windowV.AsRealVec()...)

	y := make([]float64, len(x))
	sorted := make([]float64, 0, order)
	for k, v := range x {
		window = append(window, v)
		if order > 0 && len(window) > order {
			window = window[1:]
		}

		sorted = append(sorted[:0], window...)
		sort.Float64s(sorted)
		n := len(sorted)
		if n == 0 {
			y[k] = 0
		} else if n%2 == 1 {
			y[k] = sorted[n/2]
		} else {
			y[k] = (sorted[n/2-1] + sorted[n/2]) / 2.0
		}
	}

	if err := b.SetState("window", block.RealVec(window)); err != nil {
		return err
	}
	return b.SendOutput(ctx, "output", block.RealVec(y))
}

func init() {
	registry.Register(TypeName, func(instanceName string) block.Block { return New(instanceName) })
}
