// Package errors defines the unified error kind set used across the
// stream-block runtime. Every public operation that can fail returns one
// of these kinds (or wraps one via errors.As), never a bare string error.
// The one exception is context cancellation: port Recv/Send return the
// context's own error (ctx.Err()).
package errors

import (
	"errors"
	"fmt"
)

// InvalidStateTransitionError indicates an operation was attempted from a
// lifecycle state that does not permit it (spec §4.1's state machine).
type InvalidStateTransitionError struct {
	BlockName string
	Operation string
	From      string
}

func NewInvalidStateTransitionError(blockName, operation, from string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{BlockName: blockName, Operation: operation, From: from}
}
func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("block '%s': %s is not permitted from state %s", e.BlockName, e.Operation, e.From)
}

// InvalidStaticsError indicates a missing static, a type mismatch on a
// slot accessor, a validator rejection, or a cross-static shape/length
// constraint violated during init.
type InvalidStaticsError struct {
	BlockName string
	Tag       string
	Reason    string
	Cause     error
}

func NewInvalidStaticsError(blockName, tag, reason string, cause error) *InvalidStaticsError {
	return &InvalidStaticsError{BlockName: blockName, Tag: tag, Reason: reason, Cause: cause}
}
func (e *InvalidStaticsError) Error() string {
	msg := fmt.Sprintf("block '%s': invalid statics", e.BlockName)
	if e.Tag != "" {
		msg += fmt.Sprintf(" (tag '%s')", e.Tag)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}
func (e *InvalidStaticsError) Unwrap() error { return e.Cause }

// InvalidInputError indicates a received input vector/matrix disagreed
// with the block's configured shape. Per spec §7, this is fatal per run:
// the block that returns it must also transition to Stopped.
type InvalidInputError struct {
	BlockName string
	Tag       string
	Reason    string
}

func NewInvalidInputError(blockName, tag, reason string) *InvalidInputError {
	return &InvalidInputError{BlockName: blockName, Tag: tag, Reason: reason}
}
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("block '%s': invalid input on port '%s': %s", e.BlockName, e.Tag, e.Reason)
}

// ChannelClosedError indicates a port recv/send observed its underlying
// transport closed. The block's run loop must terminate on this error.
type ChannelClosedError struct {
	BlockName string
	Tag       string
	Direction string // "input" or "output"
}

func NewChannelClosedError(blockName, tag, direction string) *ChannelClosedError {
	return &ChannelClosedError{BlockName: blockName, Tag: tag, Direction: direction}
}
func (e *ChannelClosedError) Error() string {
	return fmt.Sprintf("block '%s': %s port '%s' channel closed", e.BlockName, e.Direction, e.Tag)
}

// ModuleNotFoundError indicates a block type name was not found in a
// registry (static or dynamically loaded).
type ModuleNotFoundError struct {
	BlockType string
}

func NewModuleNotFoundError(blockType string) *ModuleNotFoundError {
	return &ModuleNotFoundError{BlockType: blockType}
}
func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("block type not found: %s", e.BlockType)
}

// ConfigError represents a failure loading or validating a module
// manifest or descriptor (YAML/JSON-Schema/semver gating).
type ConfigError struct {
	Message string
	Cause   error
}

func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{Message: message, Cause: cause}
}
func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}
func (e *ConfigError) Unwrap() error { return e.Cause }

// IsInvalidStateTransition reports whether err is an InvalidStateTransitionError.
func IsInvalidStateTransition(err error) bool {
	var e *InvalidStateTransitionError
	return errors.As(err, &e)
}

// IsInvalidStatics reports whether err is an InvalidStaticsError.
func IsInvalidStatics(err error) bool {
	var e *InvalidStaticsError
	return errors.As(err, &e)
}

// IsChannelClosed reports whether err is a ChannelClosedError.
func IsChannelClosed(err error) bool {
	var e *ChannelClosedError
	return errors.As(err, &e)
}
