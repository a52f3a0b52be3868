// Package tf implements a transfer-function LTI block (spec §4.10),
// grounded on original_source/lti/src/tf.rs. The reference's init never
// sets the lifecycle state to Initial on success (spec §9, item 5); this
// implementation routes through blockbase.Base.BeginInit, which always
// performs that transition, so the fix falls out of the shared lifecycle
// helper rather than needing a block-local patch.
package tf

import (
	"context"

	"github.com/sofia-silvestri/SignalProcessing/blocks/lti/engine"
	"github.com/sofia-silvestri/SignalProcessing/internal/blockbase"
	"github.com/sofia-silvestri/SignalProcessing/internal/numeric"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/internal/registry"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

const TypeName = "Tf"

// Block is a transfer-function simulator instance.
type Block struct {
	*blockbase.Base
	model *engine.StateSpace
}

// New constructs a Tf block instance named name.
func New(name string) *Block {
	b := &Block{Base: blockbase.New(name, TypeName)}
	b.DeclareInput("input", nil)
	b.DeclareOutput("output", nil)
	b.DeclareStatic("numerator", block.RealVec([]float64{1.0}), nil)
	b.DeclareStatic("denominator", block.RealVec([]float64{1.0}), nil)
	b.DeclareStatic("x0", block.RealVec([]float64{0.0}), nil)
	return b
}

// ConnectInput wires the named input port's receive side.
func (b *Block) ConnectInput(tag string, in *port.Input) { b.DeclareInput(tag, in) }

// ConnectOutput wires the named output port's send side.
func (b *Block) ConnectOutput(tag string, out *port.Output) { b.DeclareOutput(tag, out) }

// Init validates the numerator/denominator, left-pads the numerator to
// the denominator's length, and constructs the state-space engine.
func (b *Block) Init(ctx context.Context) error {
	return b.BeginInit(func() error {
		numV, err := b.GetStatic("numerator")
		if err != nil {
			return err
		}
		denV, err := b.GetStatic("denominator")
		if err != nil {
			return err
		}
		x0V, err := b.GetStatic("x0")
		if err != nil {
			return err
		}
		den := denV.AsRealVec()
		num := append([]float64(nil), numV.AsRealVec()...)
		x0 := x0V.AsRealVec()

		if len(den) == 0 || den[0] == 0.0 {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "denominator", "denominator must be non-empty with a nonzero leading coefficient", nil)
		}
		if len(num) == 0 {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "numerator", "numerator must be non-empty", nil)
		}
		size := len(den)
		for len(num) < size {
			num = append([]float64{0.0}, num...)
		}

		b.model = engine.FromTransferFunction(num, den, x0)
		return nil
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

// Process receives one column vector u, advances the engine one step
// under the block mutex, and emits y. A dimension mismatch on u
// transitions the block to Stopped and returns InvalidInput.
func (b *Block) Process(ctx context.Context) error {
	input, err := b.RecvInput(ctx, "input")
	if err != nil {
		if streamprocerrors.IsChannelClosed(err) {
			b.StopOnFatal()
		}
		return err
	}
	u := numeric.ColumnVector(input.AsRealVec())

	if u.Rows != b.model.InputSize() || u.Cols != 1 {
		b.StopOnFatal()
		return streamprocerrors.NewInvalidInputError(b.Name(), "input", "input vector length does not match the model's input size")
	}

	b.Lock()
	y := b.model.Step(u)
	b.Unlock()

	return b.SendOutput(ctx, "output", block.RealVec(y.ToColumnSlice()))
}

func init() {
	registry.Register(TypeName, func(instanceName string) block.Block { return New(instanceName) })
}
