package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"salestracker/internal/config"
	"salestracker/internal/configutil"
	"salestracker/internal/telemetry"
	"salestracker/internal/tracker"

	"github.com/spf13/cobra"
)

const (
	serviceName       = "salestracker"
	defaultConfigPath = "config.json5"
)

var (
	configPath string
	dryRun     bool
	verbose    bool
	dumpDir    string
)

var RootCmd = &cobra.Command{
	Use:   "salestracker",
	Short: "Checks the latest sale round-up for items on your wish list.",
	Long: `salestracker reads your wish list from a document, scrapes the latest
sale round-up and reports (and optionally emails) every wish list item that is
currently on sale.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s session) error {
			result, err := tracker.Run(ctx, s.collaborators, s.config.TrackerOptions(), s.tel)
			if err != nil {
				return err
			}

			printMatches(result)
			if len(result.NearMisses) > 0 {
				printNearMisses(result.NearMisses)
			}
			if result.NotifyErr != nil {
				fmt.Fprintln(os.Stderr, "failed to send notification:", result.NotifyErr)
			} else if result.NotificationId != "" {
				fmt.Fprintln(os.Stderr, "notification sent:", result.NotificationId)
			}
			return nil
		})
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c", defaultConfigPath,
		"path to the configuration file, by default it is searched for from the working directory upwards",
	)
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug information")
	RootCmd.PersistentFlags().StringVar(&dumpDir, "dump-http", "", "write every scraped http exchange to this directory")
	RootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the notification instead of sending it")

	RootCmd.AddCommand(wishlistCmd)
	RootCmd.AddCommand(salesCmd)
}

type session struct {
	config        config.Config
	collaborators tracker.Collaborators
	tel           telemetry.API
}

// withSession reads the configuration, sets up tracing and runs fn under the
// configured timeout.
func withSession(ctx context.Context, fn func(ctx context.Context, s session) error) error {
	cfg, err := readConfig()
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no configuration found at %s", configPath)
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if dumpDir != "" {
		cfg.Catalog.DumpDir = dumpDir
	}
	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	tel := telemetry.SlogAPI{}

	shutdown, err := telemetry.SetupTracing(ctx, serviceName, cfg.Otlp)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		// the run context may already be canceled at this point
		err := shutdown(context.Background())
		if err != nil {
			tel.ReportWarning("tracing.shutdown", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	return fn(ctx, session{
		config:        cfg,
		collaborators: cfg.Collaborators(dryRun, os.Stdout, tel),
		tel:           tel,
	})
}

func readConfig() (config.Config, error) {
	if configPath == defaultConfigPath {
		return configutil.ReadRecursively[config.Config](configPath)
	}
	return configutil.ReadConfig[config.Config](configPath)
}
