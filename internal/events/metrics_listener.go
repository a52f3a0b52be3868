package events

import (
	"context"

	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/events"
	gxolog "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/log"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsEventListener subscribes to a block-lifecycle event bus and
// updates a Prometheus counter for every FatalErrorOccurred event it
// receives. Nothing in this module publishes FatalErrorOccurred;
// blockbase.StopOnFatal changes the state without emitting an event.
type MetricsEventListener struct {
	bus               *ChannelEventBus
	log               gxolog.Logger
	fatalErrorCounter prometheus.Counter
}

// NewMetricsEventListener creates a new listener.
// It requires a ChannelEventBus to subscribe to, and the specific Prometheus
// counter it needs to increment.
func NewMetricsEventListener(bus *ChannelEventBus, fatalErrorCounter prometheus.Counter, log gxolog.Logger) *MetricsEventListener {
	if bus == nil || fatalErrorCounter == nil || log == nil {
		// A nil logger would cause a panic, so we check all dependencies.
		panic("MetricsEventListener requires a non-nil ChannelEventBus, Prometheus Counter, and Logger")
	}
	return &MetricsEventListener{
		bus:               bus,
		log:               log.With("component", "MetricsEventListener"),
		fatalErrorCounter: fatalErrorCounter,
	}
}

// Start listens for events on the bus in the caller's goroutine and
// returns when the bus channel is closed or ctx is done.
func (l *MetricsEventListener) Start(ctx context.Context) {
	l.log.Debugf("Starting metrics event listener...")
	// The listening loop will run until the bus channel is closed or the context is done.
	for {
		select {
		case event, ok := <-l.bus.GetChannel():
			if !ok {
				// Channel was closed, the listener should shut down.
				l.log.Debugf("Event bus channel closed, stopping listener.")
				return
			}
			// Process the received event.
			l.handleEvent(event)
		case <-ctx.Done():
			// The parent context was cancelled, signaling a shutdown.
			l.log.Debugf("Context cancelled, stopping metrics event listener.")
			return
		}
	}
}

// handleEvent processes a single event, incrementing metrics as needed.
func (l *MetricsEventListener) handleEvent(event events.Event) {
	// Use a switch to handle different event types.
	switch event.Type {
	case events.FatalErrorOccurred:
		// A fatal-error event was published on the bus: increment the
		// counter.
		if l.fatalErrorCounter != nil {
			l.fatalErrorCounter.Inc()
			l.log.Debugf("Incremented fatal-error counter for block %s", event.BlockName)
		}
	// Add cases for other events here if the listener needs to handle more metrics.
	// default:
	//   l.log.Debugf("Metrics listener received unhandled event type: %s", event.Type)
	}
}
