// Package alphabetagamma implements an alpha-beta-gamma constant-
// acceleration tracker block (spec §4.11), grounded on
// original_source/observer/src/alpha_beta_gamma.rs. Delta-time is
// computed only inside the branch that runs after the first sample
// (spec §9, item 6), using time.Time's monotonic clock reading via
// time.Since/Sub rather than a wall-clock diff.
package alphabetagamma

import (
	"context"
	"time"

	"github.com/sofia-silvestri/SignalProcessing/internal/blockbase"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/internal/registry"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

const TypeName = "AlphaBetaGamma"

// Block is an alpha-beta-gamma tracker instance.
type Block struct {
	*blockbase.Base
}

// New constructs an AlphaBetaGamma block instance named name.
func New(name string) *Block {
	b := &Block{Base: blockbase.New(name, TypeName)}
	b.DeclareInput("input", nil)
	b.DeclareOutput("output", nil)
	b.DeclareStatic("alpha", block.Real(0.0), nil)
	b.DeclareStatic("beta", block.Real(0.0), nil)
	b.DeclareStatic("gamma", block.Real(0.0), nil)
	b.DeclareState("state", block.RealVec([]float64{0, 0, 0}))
	b.DeclareState("last_update", block.Timestamp(time.Time{}))
	b.DeclareState("init", block.Bool(false))
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

// Process consumes one scalar sample. On the first sample it seeds
// position from the measurement with zero velocity/acceleration; on
// every later sample it predicts forward by the elapsed time, corrects
// by alpha/beta/gamma times the innovation, and emits the corrected
// position.
func (b *Block) Process(ctx context.Context) error {
	alphaV, err := b.GetStatic("alpha")
	if err != nil {
		return err
	}
	betaV, err := b.GetStatic("beta")
	if err != nil {
		return err
	}
	gammaV, err := b.GetStatic("gamma")
	if err != nil {
		return err
	}
	alpha, beta, gamma := alphaV.AsReal(), betaV.AsReal(), gammaV.AsReal()

	input, err := b.RecvInput(ctx, "input")
	if err != nil {
		if streamprocerrors.IsChannelClosed(err) {
			b.StopOnFatal()
		}
		return err
	}
	measurement := input.AsReal()

	b.Lock()
	defer b.Unlock()

	stateV, err := b.GetState("state")
	if err != nil {
		return err
	}
	initV, err := b.GetState("init")
	if err != nil {
		return err
	}
	state := append([]float64(nil), stateV.AsRealVec()...)
	initialized := initV.AsBool()

	if initialized {
		lastV, err := b.GetState("last_update")
		if err != nil {
			return err
		}
		deltaTime := time.Since(lastV.AsTimestamp()).Seconds()

		state[0] = state[0] + state[1]*deltaTime + 0.5*deltaTime*deltaTime*state[2]
		errTerm := measurement - state[0]
		state[0] += alpha * errTerm
		state[1] += beta * errTerm
		state[2] += gamma * errTerm
	} else {
		state[0] = measurement
	}

	if err := b.SetState("last_update", block.Timestamp(time.Now())); err != nil {
		return err
	}
	if err := b.SetState("init", block.Bool(true)); err != nil {
		return err
	}
	if err := b.SetState("state", block.RealVec(state)); err != nil {
		return err
	}
	return b.SendOutput(ctx, "output", block.Real(state[0]))
}

func init() {
	registry.Register(TypeName, func(instanceName string) block.Block { return New(instanceName) })
}
