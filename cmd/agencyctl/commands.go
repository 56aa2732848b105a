package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agency/backend/internal/bootstrap"
	"github.com/spf13/cobra"
)

// opener builds the application for one command run
type opener func(ctx context.Context, logLevel string) (*bootstrap.App, error)

type cli struct {
	open     opener
	logLevel string
	now      func() time.Time
}

func newRootCmd(open opener) *cobra.Command {
	c := &cli{open: open, now: time.Now}

	root := &cobra.Command{
		Use:   "agencyctl",
		Short: "Operate the agency backend stores from the command line",
		Long: `agencyctl loads the stores from the configured database, runs one
operation and waits for its remote writes before exiting.

Examples:
  # Push the settings aggregate
  agencyctl sync

  # Upload the analytics report
  agencyctl export --upload`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		c.syncCmd(),
		c.exportCmd(),
		c.activityCmd(),
	)
	return root
}

// run opens the application, runs fn and releases everything afterwards
func (c *cli) run(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := c.open(ctx, c.logLevel)
	if err != nil {
		return err
	}
	runErr := fn(ctx, app)
	if err := app.Close(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("close: %w", err)
	}
	return runErr
}

func (c *cli) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push the local settings aggregate to the remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				result, err := app.Coordinator.StartSync(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		output string
		upload bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the analytics report as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				now := c.now()
				if upload {
					result, err := app.Analytics.ExportToStorage(ctx, now)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), result)
				}
				if output == "" {
					return app.Analytics.Export(cmd.OutOrStdout(), now)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				if err := app.Analytics.Export(f, now); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the CSV to a file instead of stdout")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload to the export storage and print a download link")
	return cmd
}

func (c *cli) activityCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Print the most recent activity entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("limit cannot be negative")
			}
			return c.run(cmd, func(_ context.Context, app *bootstrap.App) error {
				return writeJSON(cmd.OutOrStdout(), app.Activity.Recent(limit))
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
