/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carverauto/nicstat/pkg/agent"
	"github.com/carverauto/nicstat/pkg/config"
	"github.com/carverauto/nicstat/pkg/ethtool"
	"github.com/carverauto/nicstat/pkg/lifecycle"
	"github.com/carverauto/nicstat/pkg/logger"
	"github.com/carverauto/nicstat/pkg/tc"
	"github.com/carverauto/nicstat/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		log.Fatalf("nicstat: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nicstat",
		Short:         "NIC ethtool and qdisc statistics",
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newEthtoolCmd(), newTcCmd())

	return root
}

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample statistics and serve rates as Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var cfg agent.Config
			if err := config.NewConfig(nil).LoadAndValidate(ctx, configPath, &cfg); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := lifecycle.InitializeLogger(cfg.Logging); err != nil {
				return err
			}

			agentLogger, err := lifecycle.CreateComponentLogger("nicstat", cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			svc, err := agent.NewService(agentLogger, &cfg)
			if err != nil {
				return err
			}

			return svc.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to nicstat config file")

	return cmd
}

func newEthtoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ethtool <ifname>...",
		Short: "Print translated ethtool statistics as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := ethtool.NewReader(stderrLogger(), args)
			stats := &ethtool.Stats{NIC: make(map[string]*ethtool.NicStats, len(args))}

			for _, ifName := range args {
				nic, err := reader.ReadNicStats(ifName)
				if err != nil {
					return err
				}

				stats.NIC[ifName] = nic
			}

			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func newTcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tc",
		Short: "Print qdisc statistics for every interface as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := tc.NewReader(stderrLogger()).ReadStats(cmd.Context())
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
}

// stderrLogger keeps stdout clean for the JSON output of one-shot commands.
func stderrLogger() logger.Logger {
	l, err := lifecycle.CreateComponentLogger("nicstat", &logger.Config{Level: "warn", Output: "stderr"})
	if err != nil {
		return logger.NewTestLogger()
	}

	return l
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
