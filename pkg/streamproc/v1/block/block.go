// Package block defines the block-polymorphic capability every stream
// block exposes (spec §4.1, §9 "Polymorphism over heterogeneous blocks"),
// the lifecycle state enumeration (spec §3), and a closed value variant
// used for heterogeneous slot element types (spec §9's recommendation to
// use a value-carrying variant rather than open generics at the
// polymorphic boundary — Go has generics, but the *boundary* between a
// host and an arbitrary loaded block still needs a concrete, comparable
// type to carry values of different element types through one API).
package block

import (
	"context"
	"time"

	"github.com/sofia-silvestri/SignalProcessing/internal/numeric"
)

// State is one of the four lifecycle states a block can occupy.
type State int

const (
	// Null is the state every block starts in.
	Null State = iota
	// Initial is reached after a successful Init.
	Initial
	// Running is reached after a successful Run and remains until Stop.
	Running
	// Stopped is terminal for the current instance; Init from Stopped
	// is legal and returns to Initial.
	Stopped
)

func (s State) String() string {
	switch s {
	case Null:
		return "Null"
	case Initial:
		return "Initial"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Kind identifies which variant a Value currently holds.
type Kind int

const (
	KindReal Kind = iota
	KindInt
	KindBool
	KindRealVec
	KindComplexVec
	KindMatrix
	KindTimestamp
)

// Value is the closed tagged variant every typed slot and port carries.
// Only the accessor matching Kind() returns the held value. The accessors
// do not check Kind(): one that does not match returns the zero value of
// its type, and no error is reported. The element type is checked only
// when a slot is written (memory.Store.Set).
type Value struct {
	kind       Kind
	real       float64
	integer    int
	boolean    bool
	realVec    []float64
	complexVec []complex128
	matrix     *numeric.Matrix
	timestamp  time.Time
}

func Real(v float64) Value                    { return Value{kind: KindReal, real: v} }
func Int(v int) Value                         { return Value{kind: KindInt, integer: v} }
func Bool(v bool) Value                       { return Value{kind: KindBool, boolean: v} }
func RealVec(v []float64) Value               { return Value{kind: KindRealVec, realVec: v} }
func ComplexVec(v []complex128) Value         { return Value{kind: KindComplexVec, complexVec: v} }
func MatrixValue(m *numeric.Matrix) Value     { return Value{kind: KindMatrix, matrix: m} }
func Timestamp(t time.Time) Value             { return Value{kind: KindTimestamp, timestamp: t} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsReal() float64            { return v.real }
func (v Value) AsInt() int                 { return v.integer }
func (v Value) AsBool() bool               { return v.boolean }
func (v Value) AsRealVec() []float64       { return v.realVec }
func (v Value) AsComplexVec() []complex128 { return v.complexVec }
func (v Value) AsMatrix() *numeric.Matrix  { return v.matrix }
func (v Value) AsTimestamp() time.Time     { return v.timestamp }

// Clone returns a deep copy of v so that slot reads can never be mutated
// by a caller holding a reference into the block's own memory (spec §4.3
// "typed, tag-keyed store").
func (v Value) Clone() Value {
	switch v.kind {
	case KindRealVec:
		cp := make([]float64, len(v.realVec))
		copy(cp, v.realVec)
		return RealVec(cp)
	case KindComplexVec:
		cp := make([]complex128, len(v.complexVec))
		copy(cp, v.complexVec)
		return ComplexVec(cp)
	case KindMatrix:
		if v.matrix == nil {
			return v
		}
		return MatrixValue(v.matrix.Clone())
	default:
		return v
	}
}

// Block is the dynamic-dispatch capability a host uses to hold a
// heterogeneous collection of blocks (spec §4.1 "Dynamic dispatch").
// Every block algorithm implements this, typically by embedding
// internal/blockbase.Base.
type Block interface {
	// Name returns the block's static instance name.
	Name() string
	// TypeName returns the block's static type name as registered in the
	// module/plugin registry (e.g. "Fir", "KalmanFilter").
	TypeName() string

	// SetStatic assigns a value to a previously declared static slot.
	// Legal at any time before Init is called against the state machine
	// (spec §3: "set once before init"). This method does not check the
	// lifecycle state: a value assigned after Init is stored, and the
	// block's cross-static checks see it only at the next Init.
	SetStatic(tag string, value Value) error
	// SetParameter assigns a value to a runtime-tunable parameter slot.
	// Legal while Running; the block mutex serializes it against Process.
	SetParameter(tag string, value Value) error
	// GetState reads a mutable state slot's current value.
	GetState(tag string) (Value, error)

	// Init, Run, Process, Stop implement the lifecycle state machine
	// from spec §4.1.
	Init(ctx context.Context) error
	Run(ctx context.Context) error
	Process(ctx context.Context) error
	Stop() error

	// IsInitialized reports whether every declared static has been
	// assigned a type-consistent value.
	IsInitialized() bool
	// CheckState reports whether the block currently occupies s.
	CheckState(s State) bool
}
