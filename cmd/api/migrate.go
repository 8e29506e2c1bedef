package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-tasks-api/internal/config"
	"github.com/redmonkez12/go-tasks-api/internal/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Args:  cobra.NoArgs,
		Short: "Database migration commands",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *bun.DB) error {
				applied, err := database.MigrateUp(ctx, db)
				if err != nil {
					return err
				}
				fmt.Printf("Applied %d migration(s)\n", applied)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *bun.DB) error {
				if err := database.MigrateDown(ctx, db); err != nil {
					return err
				}
				fmt.Println("Rolled back 1 migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *bun.DB) error {
				statuses, err := database.MigrationsStatus(ctx, db)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tSOURCE\tAPPLIED")
				for _, s := range statuses {
					fmt.Fprintf(tw, "%d\t%s\t%t\n", s.Version, s.Source, s.Applied)
				}
				return tw.Flush()
			}),
		},
	)

	return cmd
}

// withDB loads configuration and opens the database around fn.
func withDB(fn func(ctx context.Context, db *bun.DB) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		return fn(ctx, db)
	}
}
