// Command report fetches NBA team game logs and writes summary reports.
//
// Usage:
//
//	team-gamelog teams
//	team-gamelog run GSW --retries 5 --backoff 1.5
//	team-gamelog warm ALL
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/team-gamelog/internal/app"
	"github.com/riskibarqy/team-gamelog/internal/config"
	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
	"github.com/spf13/cobra"
)

type fetchFlags struct {
	retries   int
	backoff   float64
	timeout   time.Duration
	cacheDir  string
	noCache   bool
	remoteURL string
	dataDir   string
}

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "team-gamelog",
		Short:         "NBA team game log reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(teamsCmd())
	root.AddCommand(runCmd())
	root.AddCommand(warmCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func teamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List the teams known to the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(nil, func(ctx context.Context, c *app.Container) error {
				teams, err := c.Teams.List(ctx)
				if err != nil {
					return err
				}
				last, _ := c.Teams.LastSelection(ctx)

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, t := range teams {
					marker := ""
					if t.Abbreviation == last.Abbreviation {
						marker = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Abbreviation, t.FullName, t.ID, marker)
				}
				return w.Flush()
			})
		},
	}
}

func runCmd() *cobra.Command {
	flags := &fetchFlags{}
	cmd := &cobra.Command{
		Use:   "run [ABBR]",
		Short: "Fetch a team's game log and write its summary and games files",
		Long:  "Fetch a team's game log and write its summary and games files. Without ABBR the last selected team is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abbr := ""
			if len(args) == 1 {
				abbr = args[0]
			}
			return withContainer(flags, func(ctx context.Context, c *app.Container) error {
				report, err := c.Reports.Run(ctx, abbr)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s) run=%s games=%d\n", report.Team.FullName, report.Team.Abbreviation, report.RunID, report.Games)
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, row := range report.Summary.Rows() {
					fmt.Fprintf(w, "  %s\t%s\n", row.Metric, row.Value)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				if report.SummaryPath != "" {
					fmt.Fprintf(out, "summary: %s\ngames:   %s\n", report.SummaryPath, report.GamesPath)
				}
				return nil
			})
		},
	}
	bindFetchFlags(cmd, flags)
	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "", "Directory for report files (default DATA_DIR)")
	return cmd
}

func warmCmd() *cobra.Command {
	flags := &fetchFlags{}
	cmd := &cobra.Command{
		Use:   "warm [ABBR...|ALL]",
		Short: "Pre-fetch game logs into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(flags, func(ctx context.Context, c *app.Container) error {
				result, err := c.NewWarmupService(args).Run(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "warmed %d/%d teams (%d failed) in %dms\n",
					result.Succeeded, result.Teams, result.Failed, result.Duration)
				return nil
			})
		},
	}
	bindFetchFlags(cmd, flags)
	return cmd
}

func bindFetchFlags(cmd *cobra.Command, flags *fetchFlags) {
	cmd.Flags().IntVar(&flags.retries, "retries", 0, "Live fetch attempts (default FETCH_RETRIES)")
	cmd.Flags().Float64Var(&flags.backoff, "backoff", 0, "Backoff base in seconds (default FETCH_BACKOFF_BASE)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Per-attempt timeout (default FETCH_TIMEOUT)")
	cmd.Flags().StringVar(&flags.cacheDir, "cache-dir", "", "Local cache directory (default CACHE_DIR)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Do not fall back to the local cache")
	cmd.Flags().StringVar(&flags.remoteURL, "remote-cache", "", "Remote cache base URL (default REMOTE_CACHE_BASE_URL)")
}

// apply overrides cfg with the flags that were set. Zero values keep the environment setting.
func (f *fetchFlags) apply(cfg *config.Config) error {
	if f == nil {
		return nil
	}
	if f.retries != 0 {
		if f.retries < 1 {
			return fmt.Errorf("--retries must be >= 1")
		}
		cfg.FetchRetries = f.retries
	}
	if f.backoff != 0 {
		if f.backoff < 0 {
			return fmt.Errorf("--backoff must be > 0")
		}
		cfg.FetchBackoffBase = f.backoff
	}
	if f.timeout != 0 {
		if f.timeout < 0 {
			return fmt.Errorf("--timeout must be > 0")
		}
		cfg.FetchTimeout = f.timeout
	}
	if f.cacheDir != "" {
		cfg.CacheDir = f.cacheDir
	}
	if f.noCache {
		cfg.UseCacheOnFailure = false
	}
	if f.remoteURL != "" {
		cfg.RemoteCacheBaseURL = f.remoteURL
	}
	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}
	return nil
}

// withContainer loads config, applies flag overrides and runs fn until interrupted.
func withContainer(flags *fetchFlags, fn func(ctx context.Context, c *app.Container) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := flags.apply(&cfg); err != nil {
		return err
	}

	logger := logging.NewJSONWriter(os.Stderr, cfg.LogLevel).With("service", "team-gamelog-cli")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	container, err := app.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	return fn(ctx, container)
}
