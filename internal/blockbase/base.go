// Package blockbase implements the lifecycle state machine and typed
// slot/port bookkeeping every block embeds (spec §4.1). It composes
// internal/memory's typed stores and internal/port's typed connectors,
// the way internal/engine combined config.ChannelPolicy and the DAG in
// the teacher repo — a small struct that owns shared bookkeeping so each
// algorithm package only has to implement its three numeric operations.
package blockbase

import (
	"context"
	"sync"

	"github.com/sofia-silvestri/SignalProcessing/internal/memory"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

// Validator rejects an out-of-range or otherwise invalid value before it
// is stored by SetStatic (spec §4.3 "validator callback").
type Validator func(block.Value) error

// Base is embedded by every concrete block algorithm. It is not itself a
// block.Block: algorithms implement Init/Run/Process/Stop themselves,
// calling Base's transition helpers to enforce the shared state machine,
// and use Base's Declare*/Get*/Set*/Recv*/Send* helpers for slot and port
// access.
type Base struct {
	name     string
	typeName string

	stateMu sync.RWMutex
	state   block.State

	// processMu is the scoped guard around the numeric kernel (spec §4.1
	// "every block owns a mutex; process acquires it around the numeric
	// kernel"). Exported via Lock/Unlock so each algorithm's Process can
	// `defer b.Unlock()` immediately after `b.Lock()`, guaranteeing release
	// on every exit path including error returns.
	processMu sync.Mutex

	statics    *memory.Store
	state_     *memory.Store
	parameters *memory.Store

	validators map[string]Validator

	inputs  map[string]*port.Input
	outputs map[string]*port.Output
}

// New creates a Base for a block instance. name is the instance's unique
// name; typeName is its registered block type (e.g. "Fir").
func New(name, typeName string) *Base {
	return &Base{
		name:       name,
		typeName:   typeName,
		state:      block.Null,
		statics:    memory.NewStore(name, "static"),
		state_:     memory.NewStore(name, "state"),
		parameters: memory.NewStore(name, "parameter"),
		validators: make(map[string]Validator),
		inputs:     make(map[string]*port.Input),
		outputs:    make(map[string]*port.Output),
	}
}

// Name returns the block instance's name.
func (b *Base) Name() string { return b.name }

// TypeName returns the block's registered type name.
func (b *Base) TypeName() string { return b.typeName }

// --- Declarations -----------------------------------------------------

// DeclareStatic registers a static configuration slot with its default
// value and an optional validator (nil means "no constraint").
func (b *Base) DeclareStatic(tag string, def block.Value, validator Validator) {
	b.statics.Declare(tag, def.Kind())
	_ = b.statics.Set(tag, def)
	if validator != nil {
		b.validators[tag] = validator
	}
}

// DeclareState registers a mutable state slot with its default value.
func (b *Base) DeclareState(tag string, def block.Value) {
	b.state_.Declare(tag, def.Kind())
	_ = b.state_.Set(tag, def)
}

// DeclareParameter registers a runtime-tunable parameter slot with its
// default value.
func (b *Base) DeclareParameter(tag string, def block.Value) {
	b.parameters.Declare(tag, def.Kind())
	_ = b.parameters.Set(tag, def)
}

// DeclareInput registers a named input port backed by in. A later call
// with the same tag replaces the connector; no element-type check is
// made on redeclaration.
func (b *Base) DeclareInput(tag string, in *port.Input) {
	b.inputs[tag] = in
}

// DeclareOutput registers a named output port backed by out.
func (b *Base) DeclareOutput(tag string, out *port.Output) {
	b.outputs[tag] = out
}

// --- Slot access --------------------------------------------------------

// GetStatic reads a static's current value.
func (b *Base) GetStatic(tag string) (block.Value, error) { return b.statics.Get(tag) }

// SetStatic validates (if a validator is registered) and stores a static
// value. Legal at any time; algorithm-specific cross-static checks are
// re-run by the algorithm's Init.
func (b *Base) SetStatic(tag string, value block.Value) error {
	if v, ok := b.validators[tag]; ok {
		if err := v(value); err != nil {
			return streamprocerrors.NewInvalidStaticsError(b.name, tag, err.Error(), err)
		}
	}
	return b.statics.Set(tag, value)
}

// GetState reads a state slot's current value.
func (b *Base) GetState(tag string) (block.Value, error) { return b.state_.Get(tag) }

// SetState stores a state slot's value. Only the owning block calls this
// (spec §5 "state slots are mutated only by the owning block").
func (b *Base) SetState(tag string, value block.Value) error { return b.state_.Set(tag, value) }

// GetParameter reads a parameter slot's current value.
func (b *Base) GetParameter(tag string) (block.Value, error) { return b.parameters.Get(tag) }

// SetParameter validates (if registered) and stores a parameter value.
// Legal while Running; the store is made under the block mutex, so it
// is serialized against Process. Callers must not already hold Lock.
func (b *Base) SetParameter(tag string, value block.Value) error {
	b.processMu.Lock()
	defer b.processMu.Unlock()
	if v, ok := b.validators[tag]; ok {
		if err := v(value); err != nil {
			return streamprocerrors.NewInvalidStaticsError(b.name, tag, err.Error(), err)
		}
	}
	return b.parameters.Set(tag, value)
}

// --- Port access --------------------------------------------------------

// RecvInput blocks until a value arrives on the named input port.
func (b *Base) RecvInput(ctx context.Context, tag string) (block.Value, error) {
	in, ok := b.inputs[tag]
	if !ok || in == nil {
		return block.Value{}, streamprocerrors.NewInvalidInputError(b.name, tag, "input port not connected")
	}
	return in.Recv(ctx)
}

// SendOutput blocks until the named output port accepts v.
func (b *Base) SendOutput(ctx context.Context, tag string, v block.Value) error {
	out, ok := b.outputs[tag]
	if !ok || out == nil {
		return streamprocerrors.NewInvalidInputError(b.name, tag, "output port not connected")
	}
	return out.Send(ctx, v)
}

// --- Lifecycle -----------------------------------------------------------

// CurrentState returns the block's current lifecycle state.
func (b *Base) CurrentState() block.State {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	return b.state
}

// CheckState reports whether the block currently occupies s.
func (b *Base) CheckState(s block.State) bool { return b.CurrentState() == s }

// IsInitialized reports whether every declared static has been assigned.
func (b *Base) IsInitialized() bool { return b.statics.AllFilled() }

// BeginInit enforces the init transition precondition (spec §3: "init is
// legal only from Null, Initial, or Stopped; forbidden from Running") and
// then runs the algorithm-specific validate callback, which typically
// performs cross-static shape/length checks and builds any derived
// engine/plan. On success it transitions the block to Initial; on
// failure the lifecycle state is left unchanged (spec §7 "pre-condition
// failures leave state unchanged").
func (b *Base) BeginInit(validate func() error) error {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	if b.state == block.Running {
		return streamprocerrors.NewInvalidStateTransitionError(b.name, "init", b.state.String())
	}
	if validate != nil {
		if err := validate(); err != nil {
			return err
		}
	}
	if !b.statics.AllFilled() {
		return streamprocerrors.NewInvalidStaticsError(b.name, "", "not all statics assigned", nil)
	}
	b.state = block.Initial
	return nil
}

// BeginRun enforces the run transition precondition (legal only from
// Initial) and transitions to Running.
func (b *Base) BeginRun() error {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()

	if b.state != block.Initial {
		return streamprocerrors.NewInvalidStateTransitionError(b.name, "run", b.state.String())
	}
	b.state = block.Running
	return nil
}

// Stop transitions the block to Stopped unconditionally. It is legal
// from any state and always succeeds (spec §3 "stop is legal from any
// state"; spec §8 invariant 3 "stop is idempotent and always returns
// success").
func (b *Base) Stop() error {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	b.state = block.Stopped
	return nil
}

// StopOnFatal transitions to Stopped as a side effect of a fatal
// per-run error (spec §7: "InvalidInput is fatal per run — the block
// transitions to Stopped"). It never returns an error of its own.
func (b *Base) StopOnFatal() {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	b.state = block.Stopped
}

// Lock acquires the scoped mutex guarding the numeric kernel. Callers
// must `defer b.Unlock()` immediately after a successful Lock so the
// mutex is released on every exit path, including error returns (spec §9
// "scoped acquisition").
func (b *Base) Lock() { b.processMu.Lock() }

// Unlock releases the scoped mutex acquired by Lock.
func (b *Base) Unlock() { b.processMu.Unlock() }
