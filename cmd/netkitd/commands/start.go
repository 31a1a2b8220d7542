package commands

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/netkitd/netkitd/internal/config"
	"github.com/netkitd/netkitd/internal/logger"
	"github.com/netkitd/netkitd/internal/metrics"
	metricsprom "github.com/netkitd/netkitd/internal/metrics/prometheus"
	"github.com/netkitd/netkitd/internal/nfs4/server"
	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/subnet"
	"github.com/netkitd/netkitd/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the netkitd server",
	Long: `Start the netkitd NFSv4 server and its companion subnet manager.

By default, the server runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/netkitd/config.yaml.

Examples:
  # Start in background (default)
  netkitd start

  # Start in foreground
  netkitd start --foreground

  # Start with custom config file
  netkitd start --config /etc/netkitd/config.yaml

  # Start with environment variable overrides
  NETKITD_LOGGING_LEVEL=DEBUG netkitd start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/netkitd/netkitd.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/netkitd/netkitd.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "netkitd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "netkitd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("netkitd - NFSv4 server with per-client subnet management")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}

	var nfsMetrics metrics.NFSMetrics
	var subnetMetrics metrics.SubnetMetrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics.InitRegistry(reg)
		nfsMetrics = metricsprom.NewNFSMetrics()
		subnetMetrics = metricsprom.NewSubnetMetrics()

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer := &http.Server{Addr: cfg.Metrics.BindAddress, Handler: metricsMux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			_ = metricsServer.Close()
		}()
		logger.Info("Metrics enabled", "address", cfg.Metrics.BindAddress)
	} else {
		logger.Info("Metrics collection disabled")
	}

	nfsServer, err := server.New(server.Config{
		BindAddress: cfg.NFS.BindAddress,
		Export: types.ExportConfig{
			RootPath:     cfg.NFS.ExportRoot,
			MaxReadSize:  clampUint32(uint64(cfg.NFS.MaxReadSize)),
			MaxWriteSize: clampUint32(uint64(cfg.NFS.MaxWriteSize)),
			ReadOnly:     cfg.NFS.ReadOnly,
		},
		Timeouts: server.Timeouts{
			Idle:  cfg.NFS.Timeouts.Idle,
			Read:  cfg.NFS.Timeouts.Read,
			Write: cfg.NFS.Timeouts.Write,
		},
		MaxRequestsPerConnection: cfg.NFS.MaxRequestsPerConnection,
	}, nfsMetrics)
	if err != nil {
		return fmt.Errorf("failed to create NFSv4 server: %w", err)
	}

	subnetManager := subnet.NewManager(subnetMetrics)

	subnetRouter := chi.NewRouter()
	subnet.NewHandler(subnetManager).Routes(subnetRouter)
	subnetServer := &http.Server{Addr: cfg.Subnet.BindAddress, Handler: subnetRouter}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	nfsDone := make(chan error, 1)
	go func() {
		nfsDone <- nfsServer.ListenAndServe(ctx)
	}()

	subnetDone := make(chan error, 1)
	go func() {
		err := subnetServer.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		subnetDone <- err
	}()

	logger.Info("NFSv4 server configured", "address", cfg.NFS.BindAddress, "export", cfg.NFS.ExportRoot)
	logger.Info("Subnet manager configured", "address", cfg.Subnet.BindAddress, "allowed_network", cfg.Subnet.AllowedNetwork)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	var runErr error
	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
	case runErr = <-nfsDone:
		signal.Stop(sigChan)
		if runErr != nil {
			logger.Error("NFSv4 server error", "error", runErr)
		}
	case runErr = <-subnetDone:
		signal.Stop(sigChan)
		if runErr != nil {
			logger.Error("Subnet manager HTTP server error", "error", runErr)
		}
	}

	cancel()
	nfsServer.Shutdown()
	_ = subnetServer.Shutdown(context.Background())
	subnetManager.TeardownAll()

	<-nfsDone
	<-subnetDone

	logger.Info("Server stopped")
	return runErr
}

// clampUint32 caps a bytesize.ByteSize (uint64) value to the uint32 range
// the NFSv4 export config accepts.
func clampUint32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// getConfigSource is defined in util.go.
