// Package port implements the bounded-channel input/output connectors a
// block uses to exchange values with its neighbors (spec §4.2 "Ports").
// It is grounded on internal/engine/channel_manager.go's managedChannel:
// the same bounded-channel-plus-context-aware-send shape, narrowed here
// to a single typed element (block.Value) per port instead of a
// map[string]interface{} record, since spec §4.2 ports are single-typed
// named connectors rather than free-form task records.
package port

import (
	"context"

	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

// DefaultBufferSize is the channel capacity used when a caller doesn't
// specify one explicitly.
const DefaultBufferSize = 16

// Input is the receive-only side of a named input port.
type Input struct {
	blockName string
	tag       string
	ch        <-chan block.Value
}

// NewInput wraps a receive-only channel as a named input port.
func NewInput(blockName, tag string, ch <-chan block.Value) *Input {
	return &Input{blockName: blockName, tag: tag, ch: ch}
}

// Recv blocks until a value is available, ctx is done, or the channel is
// closed. A closed channel is reported as a ChannelClosedError so the
// block's run loop can tell "no more data" apart from an I/O error.
func (in *Input) Recv(ctx context.Context) (block.Value, error) {
	select {
	case v, ok := <-in.ch:
		if !ok {
			return block.Value{}, streamprocerrors.NewChannelClosedError(in.blockName, in.tag, "input")
		}
		return v, nil
	case <-ctx.Done():
		return block.Value{}, ctx.Err()
	}
}

// Tag returns the port's declared name.
func (in *Input) Tag() string { return in.tag }

// Output is the send-only side of a named output port.
type Output struct {
	blockName string
	tag       string
	ch        chan<- block.Value
}

// NewOutput wraps a send-only channel as a named output port.
func NewOutput(blockName, tag string, ch chan<- block.Value) *Output {
	return &Output{blockName: blockName, tag: tag, ch: ch}
}

// Send blocks until the value is delivered, ctx is done, or a panic
// recoverable as "send on closed channel" occurs (converted into a
// ChannelClosedError so callers never observe a raw runtime panic from a
// downstream consumer that has already torn down).
func (out *Output) Send(ctx context.Context, v block.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = streamprocerrors.NewChannelClosedError(out.blockName, out.tag, "output")
		}
	}()
	select {
	case out.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tag returns the port's declared name.
func (out *Output) Tag() string { return out.tag }

// NewChannelPair creates a buffered block.Value channel of the given
// capacity and returns its Output/Input wrappers for the named port
// (producer/consumer pair), matching channel_manager's "one physical
// channel per producer/consumer edge" topology (spec §5).
func NewChannelPair(producerName, consumerName, tag string, bufferSize int) (*Output, *Input) {
	if bufferSize < 0 {
		bufferSize = 0
	}
	ch := make(chan block.Value, bufferSize)
	return NewOutput(producerName, tag, ch), NewInput(consumerName, tag, ch)
}
