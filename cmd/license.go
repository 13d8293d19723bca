// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	overrideReason string
	overrideActor  string
)

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Administrative license overrides",
}

var licenseSuspendCmd = &cobra.Command{
	Use:   "suspend <license-id>",
	Short: "Put a license on hold",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runOverride(args[0], func(a *app, ctx context.Context, id string) error {
			return a.licenses.Suspend(ctx, id, overrideActor, overrideReason)
		})
		fmt.Printf("license %s suspended\n", args[0])
	},
}

var licenseReactivateCmd = &cobra.Command{
	Use:   "reactivate <license-id>",
	Short: "Restore a license to active",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runOverride(args[0], func(a *app, ctx context.Context, id string) error {
			return a.licenses.Reactivate(ctx, id, overrideActor, overrideReason)
		})
		fmt.Printf("license %s reactivated\n", args[0])
	},
}

func runOverride(id string, apply func(*app, context.Context, string) error) {
	specs, err := loadSpecs()
	if err != nil {
		log.Fatal(err)
	}

	a, err := newApp(specs, false)
	if err != nil {
		log.Fatal(err)
	}
	defer a.close()

	if err := apply(a, context.Background(), id); err != nil {
		a.close()
		log.Fatalf("Failed to update license %s: %v", id, err)
	}
}

func init() {
	for _, c := range []*cobra.Command{licenseSuspendCmd, licenseReactivateCmd} {
		c.Flags().StringVar(&overrideReason, "reason", "", "Reason recorded in the audit trail")
		c.Flags().StringVar(&overrideActor, "actor", "cli", "Principal recorded as the author of the change")
		_ = c.MarkFlagRequired("reason")
		licenseCmd.AddCommand(c)
	}

	rootCmd.AddCommand(licenseCmd)
}
