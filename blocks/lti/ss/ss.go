// Package ss implements a raw state-space simulator block (spec §4.9,
// §6 "Ss"), grounded on original_source/lti/src/ss.rs.
package ss

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

const TypeName = "Ss"

// Block is a raw state-space simulator instance.
type Block struct {
	*blockbase.Base
	model *engine.StateSpace
}

// New constructs an Ss block instance named name.
func New(name string) *Block {
	b := &Block{Base: blockbase.New(name, TypeName)}
	b.DeclareInput("input", nil)
	b.DeclareOutput("output", nil)
	b.DeclareStatic("A", block.MatrixValue(numeric.NewMatrix(1, 1)), nil)
	b.DeclareStatic("B", block.MatrixValue(numeric.NewMatrix(1, 1)), nil)
	b.DeclareStatic("C", block.MatrixValue(numeric.NewMatrix(1, 1)), nil)
	b.DeclareStatic("D", block.MatrixValue(numeric.NewMatrix(1, 1)), nil)
	b.DeclareStatic("x0", block.MatrixValue(numeric.NewMatrix(1, 1)), nil)
	return b
}

// ConnectInput wires the named input port's receive side.
func (b *Block) ConnectInput(tag string, in *port.Input) { b.DeclareInput(tag, in) }

// ConnectOutput wires the named output port's send side.
func (b *Block) ConnectOutput(tag string, out *port.Output) { b.DeclareOutput(tag, out) }

// Init validates every matrix-dimension cross-static invariant from spec
// §4.9/§6 and builds the state-space engine.
func (b *Block) Init(ctx context.Context) error {
	return b.BeginInit(func() error {
		aV, err := b.GetStatic("A")
		if err != nil {
			return err
		}
		bV, err := b.GetStatic("B")
		if err != nil {
			return err
		}
		cV, err := b.GetStatic("C")
		if err != nil {
			return err
		}
		dV, err := b.GetStatic("D")
		if err != nil {
			return err
		}
		x0V, err := b.GetStatic("x0")
		if err != nil {
			return err
		}
		a, bm, c, d, x0 := aV.AsMatrix(), bV.AsMatrix(), cV.AsMatrix(), dV.AsMatrix(), x0V.AsMatrix()

		if !a.IsSquare() {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "A", "A must be square", nil)
		}
		if a.Rows != bm.Rows {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "B", "B.rows must equal A.rows", nil)
		}
		if a.Cols != c.Cols {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "C", "C.cols must equal A.cols", nil)
		}
		if bm.Cols != d.Cols {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "D", "D.cols must equal B.cols", nil)
		}
		if c.Rows != d.Rows {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "D", "D.rows must equal C.rows", nil)
		}
		if x0.Rows != a.Rows || x0.Cols != 1 {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "x0", "x0 must be A.rows x 1", nil)
		}

		b.model = engine.New(a, bm, c, d, x0)
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
// transitions the block to Stopped and returns InvalidInput (spec
// §4.10).
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
		return streamprocerrors.NewInvalidInputError(b.Name(), "input", "input vector length does not match B's column count")
	}

	b.Lock()
	y := b.model.Step(u)
	b.Unlock()

	return b.SendOutput(ctx, "output", block.RealVec(y.ToColumnSlice()))
}

func init() {
	registry.Register(TypeName, func(instanceName string) block.Block { return New(instanceName) })
}
