// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/notifications"
	"github.com/canonical/tenant-access-service/pkg/tokens"
)

var (
	tokenTarget    string
	tokenExpiresIn time.Duration
	tokenMaxUses   int
	tokenBasePath  string
	tokenEmail     string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Capability token management",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <purpose>",
	Short: "Issue a capability token and print or email its link",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		purpose := types.TokenPurpose(args[0])
		if !tokens.ValidPurpose(purpose) {
			log.Fatalf("Unknown token purpose %q", args[0])
		}

		specs, err := loadSpecs()
		if err != nil {
			log.Fatal(err)
		}

		a, err := newApp(specs, false)
		if err != nil {
			log.Fatal(err)
		}
		defer a.close()

		ctx := context.Background()
		constraints := tokens.Constraints{ExpiresIn: tokenExpiresIn, MaxUses: tokenMaxUses}

		if tokenEmail != "" {
			jobID, ok := a.notifier.SendTokenLink(ctx, notifications.TokenLink{
				ToAddress:   tokenEmail,
				Purpose:     purpose,
				TargetID:    tokenTarget,
				BasePath:    tokenBasePath,
				Constraints: constraints,
			})
			if !ok {
				a.close()
				log.Fatalf("Failed to send %s token to %s", purpose, tokenEmail)
			}
			fmt.Printf("token link queued for %s (job %s)\n", tokenEmail, jobID)
			return
		}

		t, err := a.tokens.Issue(ctx, purpose, tokenTarget, constraints)
		if err != nil {
			a.close()
			log.Fatalf("Failed to issue token: %v", err)
		}

		base := tokenBasePath
		if strings.HasPrefix(base, "/") {
			base = strings.TrimSuffix(specs.PublicBaseURL, "/") + base
		}

		link, err := tokens.BuildURL(base, t.Token)
		if err != nil {
			a.close()
			log.Fatalf("Failed to build token link: %v", err)
		}

		fmt.Printf("%s\nexpires %s, %d use(s)\n", link, t.ExpiresAt.Format(time.RFC3339), t.MaxUses)
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenTarget, "target", "", "ID of the resource the token is scoped to")
	tokenIssueCmd.Flags().DurationVar(&tokenExpiresIn, "expires-in", 0, "Lifetime, defaults to the purpose policy")
	tokenIssueCmd.Flags().IntVar(&tokenMaxUses, "max-uses", 0, "Use budget, defaults to the purpose policy")
	tokenIssueCmd.Flags().StringVar(&tokenBasePath, "base-path", "", "Path or absolute URL the token is appended to")
	tokenIssueCmd.Flags().StringVar(&tokenEmail, "email", "", "Email the link instead of printing it")
	_ = tokenIssueCmd.MarkFlagRequired("base-path")

	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}
