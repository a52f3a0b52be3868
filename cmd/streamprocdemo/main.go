// Command streamprocdemo wires a small, fixed two-node block graph —
// a synthetic sample generator feeding an FIR filter — over real
// bounded channels and runs it until interrupted. It is not a general
// graph executor: topology here is hand-wired in main, not read from a
// document (spec.md §1 rules a graph scheduler/dataflow executor out of
// scope). Grounded on cmd/gxo/main.go's flag parsing, logger/event-bus/
// metrics/tracing wiring, and SIGINT/SIGTERM graceful-shutdown idiom.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/sofia-silvestri/SignalProcessing/blocks/filters/fir"
	"github.com/sofia-silvestri/SignalProcessing/internal/events"
	"github.com/sofia-silvestri/SignalProcessing/internal/logger"
	"github.com/sofia-silvestri/SignalProcessing/internal/metrics"
	"github.com/sofia-silvestri/SignalProcessing/internal/port"
	"github.com/sofia-silvestri/SignalProcessing/internal/tracing"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocevents "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/events"
)

const (
	ExitSuccess = 0
	ExitFailure = 1

	DefaultLogLevel     = "info"
	DefaultLogFmt       = "text"
	DefaultEventBusSize = 256
	DefaultBufferSize   = port.DefaultBufferSize
)

var version = "dev"

func main() {
	if len(os.Args) == 2 && (os.Args[1] == "--version" || os.Args[1] == "-version") {
		printVersion()
		os.Exit(ExitSuccess)
	}
	os.Exit(run(os.Args[1:]))
}

func printVersion() {
	fmt.Printf("streamprocdemo version %s\n", version)
	fmt.Printf("go version: %s\n", runtime.Version())
	fmt.Printf("os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func run(args []string) int {
	flags := flag.NewFlagSet("streamprocdemo", flag.ExitOnError)
	logLevel := flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	logFormat := flags.String("log-format", DefaultLogFmt, "Log format (text, json)")
	sampleCount := flags.Int("samples", 64, "Number of synthetic samples to generate before shutting down")
	sampleRateHz := flags.Float64("sample-rate-hz", 32.0, "Sample rate of the synthetic sine-wave generator, in Hz")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags...]\n\nRuns a synthetic-signal-generator -> Fir demo pipeline.\n\nFlags:\n", os.Args[0])
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return ExitFailure
	}
	if *logFormat != "text" && *logFormat != "json" {
		fmt.Fprintln(os.Stderr, "Error: -log-format must be 'text' or 'json'")
		return ExitFailure
	}

	var logWriter io.Writer = os.Stderr
	log := logger.NewLogger(*logLevel, *logFormat, logWriter)
	log = log.With("streamproc_version", version)

	eventBus := events.NewChannelEventBus(DefaultEventBusSize, log)
	defer eventBus.Close()

	metricsProvider := metrics.NewPrometheusRegistryProvider()
	instruments := metrics.NewBlockInstruments(metricsProvider.Registry())
	fatalCounter := instruments.ErrorTotal.WithLabelValues("fir-demo", fir.TypeName, "fatal")

	tracerProvider, err := tracing.NewProviderFromEnv(context.Background())
	if err != nil {
		log.Warnf("Failed to initialize tracing from environment: %v. Using NoOp tracer.", err)
		tracerProvider, _ = tracing.NewNoOpProvider()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Error shutting down tracer provider: %v", err)
		}
	}()

	metricsListener := events.NewMetricsEventListener(eventBus, fatalCounter, log)

	filterBlock := fir.New("fir-demo")
	if err := filterBlock.SetStatic("order", block.Int(2)); err != nil {
		log.Errorf("Failed to set FIR order: %v", err)
		return ExitFailure
	}
	if err := filterBlock.SetStatic("coefficient", block.RealVec([]float64{0.25, 0.5, 0.25})); err != nil {
		log.Errorf("Failed to set FIR coefficient: %v", err)
		return ExitFailure
	}

	genOut, filterIn := port.NewChannelPair("generator", filterBlock.Name(), "input", DefaultBufferSize)
	filterBlock.ConnectInput("input", filterIn)

	filterOut, sinkIn := port.NewChannelPair(filterBlock.Name(), "sink", "output", DefaultBufferSize)
	filterBlock.ConnectOutput("output", filterOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case sig := <-sigChan:
			log.Warnf("Received signal: %v. Initiating graceful shutdown...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	defer wg.Wait()

	go metricsListener.Start(ctx)

	if err := filterBlock.Init(ctx); err != nil {
		log.Errorf("Failed to initialize FIR block: %v", err)
		return ExitFailure
	}
	eventBus.Emit(lifecycleEvent(streamprocevents.BlockInitialized, filterBlock.Name(), filterBlock.TypeName()))

	var filterErr error
	var filterWG sync.WaitGroup
	filterWG.Add(1)
	go func() {
		defer filterWG.Done()
		filterErr = filterBlock.Run(ctx)
	}()
	eventBus.Emit(lifecycleEvent(streamprocevents.BlockRunStarted, filterBlock.Name(), filterBlock.TypeName()))

	go generateSineWave(ctx, genOut, *sampleCount, *sampleRateHz, log)

	log.Infof("Running demo pipeline for up to %d samples...", *sampleCount)
	for i := 0; i < *sampleCount; i++ {
		v, err := sinkIn.Recv(ctx)
		if err != nil {
			break
		}
		log.Infof("output[%d] = %v", i, v.AsRealVec())
	}

	cancel()
	filterWG.Wait()
	if filterErr != nil && ctx.Err() == nil {
		log.Errorf("FIR block run loop exited with error: %v", filterErr)
		return ExitFailure
	}

	log.Infof("Demo pipeline shut down cleanly.")
	return ExitSuccess
}

// generateSineWave produces count synthetic real-valued samples of a
// unit-amplitude sine wave at sampleRateHz, sending each as a single-
// element RealVec on out. Ctrl-C cancellation via ctx is the only
// teardown path; the generator never closes out's underlying channel.
func generateSineWave(ctx context.Context, out *port.Output, count int, sampleRateHz float64, log interface {
	Warnf(string, ...interface{})
}) {
	const frequencyHz = 1.0
	for i := 0; i < count; i++ {
		t := float64(i) / sampleRateHz
		sample := math.Sin(2 * math.Pi * frequencyHz * t)
		if err := out.Send(ctx, block.RealVec([]float64{sample})); err != nil {
			log.Warnf("Synthetic generator stopped sending: %v", err)
			return
		}
	}
}

func lifecycleEvent(eventType streamprocevents.EventType, blockName, blockType string) streamprocevents.Event {
	return streamprocevents.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		BlockName: blockName,
		BlockType: blockType,
	}
}
