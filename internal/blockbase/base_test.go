package blockbase_test

import (
	"testing"

	"github.com/sofia-silvestri/SignalProcessing/internal/blockbase"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFilledBase returns a Base with a single static declared and assigned,
// so BeginInit's AllFilled check succeeds.
func newFilledBase(t *testing.T) *blockbase.Base {
	t.Helper()
	b := blockbase.New("inst", "TestType")
	b.DeclareStatic("order", block.Int(0), nil)
	require.NoError(t, b.SetStatic("order", block.Int(1)))
	return b
}

func TestBase_InitFromRunning_Rejected(t *testing.T) {
	b := newFilledBase(t)
	require.NoError(t, b.BeginInit(nil))
	require.NoError(t, b.BeginRun())

	err := b.BeginInit(nil)
	assert.True(t, streamprocerrors.IsInvalidStateTransition(err))
	assert.Equal(t, block.Running, b.CurrentState(), "a rejected init must not mutate lifecycle state")
}

func TestBase_InitSucceeds_SetsInitialAndIsInitialized(t *testing.T) {
	b := newFilledBase(t)
	require.NoError(t, b.BeginInit(nil))
	assert.True(t, b.IsInitialized())
	assert.Equal(t, block.Initial, b.CurrentState())
}

func TestBase_Stop_IdempotentFromAnyState(t *testing.T) {
	b := newFilledBase(t)
	assert.NoError(t, b.Stop())
	assert.Equal(t, block.Stopped, b.CurrentState())
	assert.NoError(t, b.Stop(), "Stop must be idempotent")
	assert.Equal(t, block.Stopped, b.CurrentState())

	require.NoError(t, b.BeginInit(nil))
	require.NoError(t, b.BeginRun())
	assert.NoError(t, b.Stop())
	assert.Equal(t, block.Stopped, b.CurrentState())
}

func TestBase_Run_OnlyLegalFromInitial(t *testing.T) {
	b := newFilledBase(t)

	err := b.BeginRun()
	assert.True(t, streamprocerrors.IsInvalidStateTransition(err), "run from Null must be rejected")

	require.NoError(t, b.BeginInit(nil))
	require.NoError(t, b.BeginRun())
	assert.Equal(t, block.Running, b.CurrentState())

	require.NoError(t, b.Stop())
	err = b.BeginRun()
	assert.True(t, streamprocerrors.IsInvalidStateTransition(err), "run from Stopped must be rejected")
}

func TestBase_Init_ReInitFromStopped(t *testing.T) {
	b := newFilledBase(t)
	require.NoError(t, b.BeginInit(nil))
	require.NoError(t, b.Stop())

	require.NoError(t, b.BeginInit(nil))
	assert.Equal(t, block.Initial, b.CurrentState())
}

func TestBase_Init_MissingStaticRejected(t *testing.T) {
	b := blockbase.New("inst", "TestType")
	b.DeclareStatic("order", block.Int(0), nil)

	err := b.BeginInit(nil)
	assert.True(t, streamprocerrors.IsInvalidStatics(err))
}

func TestBase_SetStatic_TypeMismatch(t *testing.T) {
	b := blockbase.New("inst", "TestType")
	b.DeclareStatic("order", block.Int(0), nil)

	err := b.SetStatic("order", block.Real(1.0))
	assert.True(t, streamprocerrors.IsInvalidStatics(err))
}

func TestBase_SetStatic_ValidatorRejection(t *testing.T) {
	b := blockbase.New("inst", "TestType")
	validator := func(v block.Value) error {
		if v.AsInt() < 0 {
			return assert.AnError
		}
		return nil
	}
	b.DeclareStatic("order", block.Int(0), validator)

	err := b.SetStatic("order", block.Int(-1))
	assert.True(t, streamprocerrors.IsInvalidStatics(err))

	assert.NoError(t, b.SetStatic("order", block.Int(2)))
}

func TestBase_CheckState(t *testing.T) {
	b := newFilledBase(t)
	assert.True(t, b.CheckState(block.Null))
	require.NoError(t, b.BeginInit(nil))
	assert.True(t, b.CheckState(block.Initial))
	assert.False(t, b.CheckState(block.Running))
}
