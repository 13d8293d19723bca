// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-access-service/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down [version]|status|check]",
	Short: "Run database migrations",
	Long: `Apply or inspect the embedded schema migrations, "up" by default.
The DSN is read from --dsn or, when the flag is empty, from the DSN variable.`,
	Args: migrateArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrate(cmd, args); err != nil {
			cmd.PrintErrln(err)
			os.Exit(1)
		}
	},
}

func init() {
	migrateCmd.Flags().String("dsn", "", "PostgreSQL DSN connection string")
	migrateCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")

	rootCmd.AddCommand(migrateCmd)
}

func migrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "up", "status", "check":
		if len(args) > 1 {
			return fmt.Errorf("%q takes no version argument", args[0])
		}
	case "down":
		if len(args) == 2 {
			if v, err := strconv.Atoi(args[1]); err != nil || v < 0 {
				return fmt.Errorf("invalid version number: %q", args[1])
			}
		}
	default:
		return fmt.Errorf("invalid migrate command: %q", args[0])
	}

	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	version := int64(-1)
	if len(args) > 1 {
		version, _ = strconv.ParseInt(args[1], 10, 64)
	}

	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		dsn = os.Getenv("DSN")
	}
	if dsn == "" {
		return fmt.Errorf("no DSN provided, set --dsn or DSN")
	}
	format, _ := cmd.Flags().GetString("format")

	db, err := openMigrationDB(cmd.Context(), dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []goose.ProviderOption
	if format == "json" {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	out := migrationOutput{w: cmd.OutOrStdout(), json: format == "json"}
	ctx := cmd.Context()

	switch command {
	case "down":
		return migrateDown(ctx, provider, version, out)
	case "status":
		return migrationStatus(ctx, provider, out)
	case "check":
		return migrationCheck(ctx, provider, out)
	default:
		results, err := provider.Up(ctx)
		if err != nil {
			return err
		}
		return out.results(results)
	}
}

func openMigrationDB(ctx context.Context, dsn string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("DSN validation failed, shutting down, err: %v", err)
	}

	db := stdlib.OpenDB(*config)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB connection failed, shutting down, err: %v", err)
	}

	return db, nil
}

type migrationOutput struct {
	w    io.Writer
	json bool
}

func (o migrationOutput) encode(v any) error {
	return json.NewEncoder(o.w).Encode(v)
}

func (o migrationOutput) results(results []*goose.MigrationResult) error {
	if !o.json {
		for _, r := range results {
			fmt.Fprintf(o.w, "%-6s %s (%s)\n", r.Direction, r.Source.Path, r.Duration)
		}
		return nil
	}

	if results == nil {
		results = []*goose.MigrationResult{}
	}
	return o.encode(map[string]any{"applied": results})
}

func migrateDown(ctx context.Context, provider *goose.Provider, version int64, out migrationOutput) error {
	if version >= 0 {
		results, err := provider.DownTo(ctx, version)
		if err != nil {
			return err
		}
		return out.results(results)
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return err
	}
	return out.results([]*goose.MigrationResult{result})
}

func migrationStatus(ctx context.Context, provider *goose.Provider, out migrationOutput) error {
	statuses, err := provider.Status(ctx)
	if err != nil {
		return err
	}
	if out.json {
		return out.encode(statuses)
	}

	fmt.Fprintf(out.w, "%-26s %s\n", "Applied At", "Migration")
	for _, s := range statuses {
		appliedAt := "Pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(out.w, "%-26s %s\n", appliedAt, s.Source.Path)
	}
	return nil
}

// migrationCheck fails while migrations are pending, for use in deployment probes.
func migrationCheck(ctx context.Context, provider *goose.Provider, out migrationOutput) error {
	pending, err := provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database version: %w", err)
	}

	if out.json {
		status := "ok"
		if pending {
			status = "pending"
		}
		return out.encode(map[string]any{"status": status, "version": current})
	}

	if pending {
		return fmt.Errorf("migrations are pending: current version %d", current)
	}

	fmt.Fprintf(out.w, "Database is up to date (version %d)\n", current)
	return nil
}
