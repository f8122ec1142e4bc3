// Package main provides the CLI entry point for device-server, the
// generic, schema-driven device host every concrete device process runs:
// it loads an initial configuration, joins the broker fabric under an
// instance id, and serves reconfigure/getConfiguration/kill over the
// signal/slot bus until interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go.karabo.dev/control/device"
	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/internal/brokerconfig"
	"go.karabo.dev/control/internal/buildinfo"
	"go.karabo.dev/control/internal/hashyaml"
	"go.karabo.dev/control/internal/runtimeprofile"
	"go.karabo.dev/control/internal/xlog"
	"go.karabo.dev/control/messaging"
)

type config struct {
	instanceID        string
	configFile        string
	heartbeatInterval time.Duration

	broker  *brokerconfig.Config
	log     *xlog.Config
	profile *runtimeprofile.Config
}

func main() {
	cfg := &config{
		broker:  brokerconfig.NewConfig(),
		log:     xlog.NewConfig(),
		profile: runtimeprofile.NewConfig(),
	}

	rootCmd := &cobra.Command{
		Use:           "device-server --instance-id <id> [flags]",
		Short:         "Run the generic schema-driven device server harness",
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       buildinfo.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().StringVar(&cfg.instanceID, "instance-id", "", "instance id this device registers under (required)")
	rootCmd.Flags().StringVar(&cfg.configFile, "config", "", "YAML file with the initial configuration")
	rootCmd.Flags().DurationVar(&cfg.heartbeatInterval, "heartbeat-interval", 5*time.Second, "interval between heartbeat announcements")
	_ = rootCmd.MarkFlagRequired("instance-id")

	cfg.broker.RegisterFlags(rootCmd.Flags())
	cfg.log.RegisterFlags(rootCmd.Flags())
	cfg.profile.RegisterFlags(rootCmd.Flags())

	if err := cfg.log.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config) error {
	handler, err := cfg.log.NewHandler(os.Stderr)
	if err != nil {
		return fmt.Errorf("device-server: logging: %w", err)
	}

	logger := slog.New(handler)

	profiler := cfg.profile.NewProfiler()
	if err := profiler.Start(); err != nil {
		return fmt.Errorf("device-server: profiling: %w", err)
	}

	defer func() {
		if err := profiler.Stop(); err != nil {
			logger.Error("stopping profiler", "error", err)
		}
	}()

	initial, err := loadInitialConfig(cfg.configFile)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	broker, err := cfg.broker.Dial(ctx)
	if err != nil {
		return fmt.Errorf("device-server: %w", err)
	}

	defer func() {
		if err := broker.Close(); err != nil {
			logger.Error("closing broker", "error", err)
		}
	}()

	inst := messaging.NewInstance(cfg.instanceID, cfg.broker.Topic, broker)

	srv, err := device.NewServer(inst, device.NewDefaultSchema(cfg.instanceID), initial, cfg.heartbeatInterval)
	if err != nil {
		return fmt.Errorf("device-server: %w", err)
	}

	logger.Info("starting device server", "instanceId", cfg.instanceID, "topic", cfg.broker.Topic)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("device-server: %w", err)
	}

	logger.Info("device server stopped", "instanceId", cfg.instanceID)

	return nil
}

func loadInitialConfig(path string) (*hash.Hash, error) {
	if path == "" {
		return hash.New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("device-server: reading config %q: %w", path, err)
	}

	h, err := hashyaml.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("device-server: parsing config %q: %w", path, err)
	}

	return h, nil
}
