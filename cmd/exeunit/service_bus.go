package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/activity"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/agreement"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/batch"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/bus"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/cliconfig"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/cliout"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/counter"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/dispatcher"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/logging"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/proxy"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/runtime"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/signalmon"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/transfer"
)

func newServiceBusCmd(flags *cliconfig.Flags) *cobra.Command {
	var agreementPath, workDir, cacheDir, busAddr string

	cmd := &cobra.Command{
		Use:   "service-bus <service_id> <report_url>",
		Short: "Bind the exe-unit to the service bus and run until terminated",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServiceBus(flags, args[0], args[1], agreementPath, workDir, cacheDir, busAddr)
		},
	}

	cmd.Flags().StringVarP(&agreementPath, "agreement", "a", "", "agreement file path")
	cmd.Flags().StringVarP(&workDir, "work-dir", "w", ".", "working directory")
	cmd.Flags().StringVarP(&cacheDir, "cache-dir", "c", ".", "common cache directory")
	cmd.Flags().StringVar(&busAddr, "bus-addr", "127.0.0.1:7465", "address the bus HTTP+WebSocket server binds to")
	_ = cmd.MarkFlagRequired("agreement")

	return cmd
}

// runServiceBus wires every concrete component together for one activity's
// lifetime: loads the agreement, resolves the runtime adapter, binds the
// bus server, and races the activity loop against the first termination
// signal.
func runServiceBus(flags *cliconfig.Flags, serviceID, reportURL, agreementPath, workDir, cacheDir, busAddr string) error {
	logger := logging.Init(workDir+"/logs", false)
	defer logging.RecoverAndLog()

	adapter, cfg, err := flags.ResolveAdapter(logger)
	if err != nil {
		return err
	}

	descriptor, err := agreement.Load(agreementPath)
	if err != nil {
		return err
	}

	counterSet, err := counter.New(descriptor.Counters)
	if err != nil {
		return err
	}
	monitor := counter.NewMonitor(counterSet)
	cliout.RenderCounterSnapshot(os.Stderr, descriptor, counterSet.Current())

	controller := runtime.NewController(adapter)
	transferAdapter := transfer.New(cacheDir)
	reporter := bus.NewClient(reportURL, 30*time.Second)

	d := &dispatcher.Dispatcher{
		ActivityID: serviceID,
		Model:      descriptor.Model,
		Controller: controller,
		Transfer:   transferAdapter,
		Reporter:   reporter,
		Batches:    batch.NewStore(),
		Logger:     logger,
	}

	bridge := proxy.New(cfg.APIHost, cfg.APIPort, monitor)
	server := bus.NewServer(d, bridge, logger)

	ln, err := net.Listen("tcp", busAddr)
	if err != nil {
		return err
	}
	httpServer := &http.Server{Handler: server.Handler()}
	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("bus server stopped unexpectedly")
		}
	}()

	_ = reporter.SetState(context.Background(), serviceID, activity.State{Primary: activity.Initialized})

	loop := &activity.Loop{
		ActivityID: serviceID,
		Controller: controller,
		Counters:   counterSet,
		Reporter:   reporter,
		Logger:     logger,
		Cadence:    time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	watcher := signalmon.Watch()
	defer watcher.Stop()

	var runErr error
	select {
	case runErr = <-loopDone:
	case sig := <-watcher.Triggered():
		logger.Info().Str("signal", sig.String()).Msg("received termination signal")
		cancel()
		_ = controller.Stop(context.Background())
		_ = reporter.SetState(context.Background(), serviceID, activity.State{Primary: activity.Terminated})
		<-loopDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)

	return runErr
}
