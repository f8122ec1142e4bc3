// Package main provides the CLI entry point for brokerrates, a passive
// broker traffic monitor that prints per-sender and per-receiver message
// rates, grounded on original_source/src/tools/brokerRates/brokerRates.cpp.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"go.karabo.dev/control/internal/brokerconfig"
	"go.karabo.dev/control/internal/buildinfo"
	"go.karabo.dev/control/observability/brokerrates"
)

func main() {
	broker := brokerconfig.NewConfig()
	cfg := brokerrates.NewConfig()

	rootCmd := &cobra.Command{
		Use:           "brokerrates [flags] [interval_seconds]",
		Short:         "Report per-sender and per-receiver message rates on the broker",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       buildinfo.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				seconds, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("brokerrates: invalid interval_seconds %q: %w", args[0], err)
				}

				cfg.IntervalSeconds = seconds
			}

			return run(cmd, broker, cfg)
		},
	}

	broker.RegisterFlags(rootCmd.Flags())
	cfg.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, brokerCfg *brokerconfig.Config, cfg *brokerrates.Config) error {
	ctx := cmd.Context()

	b, err := brokerCfg.Dial(ctx)
	if err != nil {
		return fmt.Errorf("brokerrates: %w", err)
	}
	defer b.Close()

	// --receiversServer/--sendersServer named a device-hosting server in
	// the original tool, which could run many devices per process; this
	// module's device-server is one instance per process, so the named
	// server id already names the single device of interest.
	if cfg.ReceiversServer != "" {
		cfg.Receivers = append(cfg.Receivers, cfg.ReceiversServer)
	}

	if cfg.SendersServer != "" {
		cfg.Senders = append(cfg.Senders, cfg.SendersServer)
	}

	mon := brokerrates.NewMonitor(b, cfg, os.Stdout)

	if err := mon.Run(ctx); err != nil {
		return fmt.Errorf("brokerrates: %w", err)
	}

	return nil
}
