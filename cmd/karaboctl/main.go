// Package main provides karaboctl, a client CLI that issues
// getConfiguration/reconfigure/kill calls against a device-server
// instance over the signal/slot bus and prints the result as YAML.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"go.karabo.dev/control/device"
	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/internal/brokerconfig"
	"go.karabo.dev/control/internal/buildinfo"
	"go.karabo.dev/control/internal/hashyaml"
	"go.karabo.dev/control/messaging"
)

type config struct {
	instanceID string
	target     string
	updateFile string
	timeout    time.Duration

	broker *brokerconfig.Config
}

func main() {
	cfg := &config{broker: brokerconfig.NewConfig()}

	rootCmd := &cobra.Command{
		Use:           "karaboctl",
		Short:         "Query and reconfigure device-server instances",
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       buildinfo.Version,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.instanceID, "instance-id", "karaboctl", "instance id this client registers under")
	rootCmd.PersistentFlags().StringVar(&cfg.target, "target", "", "target device instance id (required)")
	rootCmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", 15*time.Second, "call timeout")
	cfg.broker.RegisterFlags(rootCmd.PersistentFlags())
	_ = rootCmd.MarkPersistentFlagRequired("target")

	rootCmd.AddCommand(getConfigurationCmd(cfg), reconfigureCmd(cfg), killCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func getConfigurationCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "get-configuration",
		Short: "Print the target's current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reply, err := call(cmd.Context(), cfg, device.SlotGetConfiguration, hash.New())
			if err != nil {
				return err
			}

			return printConfiguration(reply)
		},
	}
}

func reconfigureCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconfigure",
		Short: "Apply a YAML update to the target's configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(cfg.updateFile)
			if err != nil {
				return fmt.Errorf("karaboctl: reading %q: %w", cfg.updateFile, err)
			}

			update, err := hashyaml.Decode(data)
			if err != nil {
				return fmt.Errorf("karaboctl: parsing %q: %w", cfg.updateFile, err)
			}

			args := hash.New()
			if err := args.Set("a1", update); err != nil {
				return fmt.Errorf("karaboctl: %w", err)
			}

			reply, err := call(cmd.Context(), cfg, device.SlotReconfigure, args)
			if err != nil {
				return err
			}

			return printConfiguration(reply)
		},
	}

	cmd.Flags().StringVar(&cfg.updateFile, "update", "", "YAML file with the leaves to change (required)")
	_ = cmd.MarkFlagRequired("update")

	return cmd
}

func killCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "kill",
		Short: "Ask the target instance to stop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := call(cmd.Context(), cfg, device.SlotKill, hash.New())
			return err
		},
	}
}

func call(ctx context.Context, cfg *config, slot string, args *hash.Hash) (*hash.Hash, error) {
	broker, err := cfg.broker.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("karaboctl: %w", err)
	}
	defer broker.Close()

	inst := messaging.NewInstance(cfg.instanceID, cfg.broker.Topic, broker)
	if err := inst.Start(ctx); err != nil {
		return nil, fmt.Errorf("karaboctl: starting instance: %w", err)
	}
	defer inst.Stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	reply, err := inst.Call(ctx, cfg.target, slot, args)
	if err != nil {
		return nil, fmt.Errorf("karaboctl: calling %s.%s: %w", cfg.target, slot, err)
	}

	return reply, nil
}

func printConfiguration(reply *hash.Hash) error {
	if reply == nil {
		reply = hash.New()
	}

	out, err := hashyaml.Encode(reply)
	if err != nil {
		return fmt.Errorf("karaboctl: %w", err)
	}

	_, err = os.Stdout.Write(out)

	return err
}
