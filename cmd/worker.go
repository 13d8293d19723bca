// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var workerOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "worker sweeps the job outbox",
	Long:  `Run the job sweeper on its own, for deployments where serve runs with WORKER_ENABLED=false`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWorker(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	workerCmd.Flags().BoolVar(&workerOnce, "once", false, "Run a single sweep and exit")
	rootCmd.AddCommand(workerCmd)
}

func runWorker() error {
	specs, err := loadSpecs()
	if err != nil {
		return err
	}

	a, err := newApp(specs, !workerOnce)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker, err := a.newWorker()
	if err != nil {
		return err
	}

	if workerOnce {
		result, err := worker.Sweep(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("claimed=%d completed=%d retried=%d failed=%d abandoned=%d\n",
			result.Claimed, result.Completed, result.Retried, result.Failed, result.Abandoned)
		return nil
	}

	return worker.Run(ctx, specs.SweepInterval)
}
