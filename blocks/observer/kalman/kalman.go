// Package kalman implements a discrete-time linear Kalman filter block
// (spec §4.12), grounded on
// original_source/observer/src/kalman_filter.rs. The reference reads a
// single input vector and treats it as both the control input u and the
// measurement z (spec §9, item 4); this implementation instead declares
// two input ports, `control` and `measurement`, matching spec §4.12's
// corrected design.
package kalman

import (
	"context"

	"github.com/sofia-silvestri/SignalProcessing/internal/blockbase"
	"github.com/sofia-silvestri/SignalProcessing/internal/numeric"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/internal/registry"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

const TypeName = "KalmanFilter"

// Block is a Kalman filter instance.
type Block struct {
	*blockbase.Base
}

// New constructs a KalmanFilter block instance named name.
func New(name string) *Block {
	b := &Block{Base: blockbase.New(name, TypeName)}
	b.DeclareInput("control", nil)
	b.DeclareInput("measurement", nil)
	b.DeclareOutput("output", nil)
	b.DeclareStatic("A", block.MatrixValue(numeric.Identity(1)), nil)
	b.DeclareStatic("B", block.MatrixValue(numeric.Identity(1)), nil)
	b.DeclareStatic("H", block.MatrixValue(numeric.Identity(1)), nil)
	b.DeclareStatic("Q", block.MatrixValue(numeric.Identity(1)), nil)
	b.DeclareStatic("R", block.MatrixValue(numeric.Identity(1)), nil)
	b.DeclareStatic("P0", block.MatrixValue(numeric.Identity(1)), nil)
	b.DeclareStatic("initial_state", block.RealVec(nil), nil)
	b.DeclareState("state", block.RealVec(nil))
	b.DeclareState("P", block.MatrixValue(numeric.Identity(1)))
	return b
}

// ConnectInput wires the named input port's receive side ("control" or
// "measurement").
func (b *Block) ConnectInput(tag string, in *port.Input) { b.DeclareInput(tag, in) }

// ConnectOutput wires the named output port's send side.
func (b *Block) ConnectOutput(tag string, out *port.Output) { b.DeclareOutput(tag, out) }

// Init validates every matrix-dimension cross-static invariant from spec
// §4.12 and seeds state/P from initial_state/P0.
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
		hV, err := b.GetStatic("H")
		if err != nil {
			return err
		}
		qV, err := b.GetStatic("Q")
		if err != nil {
			return err
		}
		rV, err := b.GetStatic("R")
		if err != nil {
			return err
		}
		p0V, err := b.GetStatic("P0")
		if err != nil {
			return err
		}
		x0V, err := b.GetStatic("initial_state")
		if err != nil {
			return err
		}
		a, bm, h, q, r, p0 := aV.AsMatrix(), bV.AsMatrix(), hV.AsMatrix(), qV.AsMatrix(), rV.AsMatrix(), p0V.AsMatrix()
		x0 := x0V.AsRealVec()

		if !a.IsSquare() {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "A", "A must be square", nil)
		}
		n := a.Rows
		if bm.Rows != n {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "B", "B.rows must equal A.rows", nil)
		}
		if h.Cols != n {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "H", "H.cols must equal A.rows", nil)
		}
		if !q.IsSquare() || q.Rows != n {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "Q", "Q must be n x n", nil)
		}
		p := h.Rows
		if !r.IsSquare() || r.Rows != p {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "R", "R must be p x p", nil)
		}
		if !p0.IsSquare() || p0.Rows != n {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "P0", "P0 must be n x n", nil)
		}
		if len(x0) != n {
			return streamprocerrors.NewInvalidStaticsError(b.Name(), "initial_state", "len(initial_state) must equal A.rows", nil)
		}

		if err := b.SetState("state", block.RealVec(append([]float64(nil), x0...))); err != nil {
			return err
		}
		return b.SetState("P", block.MatrixValue(p0.Clone()))
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

// Process receives one control vector u and one measurement vector z,
// runs a single predict-correct Kalman step under the block mutex, and
// emits the posterior state estimate.
func (b *Block) Process(ctx context.Context) error {
	aV, err := b.GetStatic("A")
	if err != nil {
		return err
	}
	bV, err := b.GetStatic("B")
	if err != nil {
		return err
	}
	hV, err := b.GetStatic("H")
	if err != nil {
		return err
	}
	qV, err := b.GetStatic("Q")
	if err != nil {
		return err
	}
	rV, err := b.GetStatic("R")
	if err != nil {
		return err
	}
	a, bm, h, q, r := aV.AsMatrix(), bV.AsMatrix(), hV.AsMatrix(), qV.AsMatrix(), rV.AsMatrix()

	controlVal, err := b.RecvInput(ctx, "control")
	if err != nil {
		if streamprocerrors.IsChannelClosed(err) {
			b.StopOnFatal()
		}
		return err
	}
	measurementVal, err := b.RecvInput(ctx, "measurement")
	if err != nil {
		if streamprocerrors.IsChannelClosed(err) {
			b.StopOnFatal()
		}
		return err
	}
	u := numeric.ColumnVector(controlVal.AsRealVec())
	z := numeric.ColumnVector(measurementVal.AsRealVec())

	if u.Rows != bm.Cols {
		b.StopOnFatal()
		return streamprocerrors.NewInvalidInputError(b.Name(), "control", "control vector length does not match B's column count")
	}
	if z.Rows != h.Rows {
		b.StopOnFatal()
		return streamprocerrors.NewInvalidInputError(b.Name(), "measurement", "measurement vector length does not match H's row count")
	}

	b.Lock()
	defer b.Unlock()

	stateV, err := b.GetState("state")
	if err != nil {
		return err
	}
	pV, err := b.GetState("P")
	if err != nil {
		return err
	}
	x := numeric.ColumnVector(stateV.AsRealVec())
	p := pV.AsMatrix()

	// 1. Predict.
	xPrior := a.Mul(x).Add(bm.Mul(u))
	// 2. Covariance prediction.
	pPrior := a.Mul(p).Mul(a.Transpose()).Add(q)
	// 3. Innovation.
	innovation := z.Sub(h.Mul(xPrior))
	// 4. Innovation covariance.
	s := h.Mul(pPrior).Mul(h.Transpose()).Add(r)
	// 5. Kalman gain.
	k := pPrior.Mul(h.Transpose()).Mul(s.Inverse())
	// 6. Posterior state.
	xPost := xPrior.Add(k.Mul(innovation))
	// 7. Posterior covariance.
	pPost := numeric.Identity(k.Rows).Sub(k.Mul(h)).Mul(pPrior)

	if err := b.SetState("state", block.RealVec(xPost.ToColumnSlice())); err != nil {
		return err
	}
	if err := b.SetState("P", block.MatrixValue(pPost)); err != nil {
		return err
	}
	return b.SendOutput(ctx, "output", block.RealVec(xPost.ToColumnSlice()))
}

func init() {
	registry.Register(TypeName, func(instanceName string) block.Block { return New(instanceName) })
}
