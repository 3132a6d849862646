package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"bookcatalog/lib/report"
	"bookcatalog/lib/telemetry"
	"bookcatalog/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath string
	baseUrl    string
	delay      time.Duration
	missing    string
	timeout    time.Duration
	dumpDir    string
	verbose    bool

	tel telemetry.Telemetry
)

func init() {
	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&configPath, "config", "catalog.json5", "Config file, a missing file means defaults.")
	persistent.StringVar(&baseUrl, "base-url", "", "Base url of the catalog API, overrides the config.")
	persistent.DurationVar(&timeout, "timeout", 0, "Timeout of each request, 0 waits forever.")
	persistent.StringVar(&dumpDir, "dump-http", "", "Directory to write a dump of every http exchange to.")
	persistent.BoolVarP(&verbose, "verbose", "v", false, "Log at debug level.")

	flags := rootCmd.Flags()
	flags.DurationVar(&delay, "delay", time.Second, "Pause after formatting each book.")
	flags.StringVar(&missing, "missing", string(report.MissingEmpty), "How to render an unknown ID: empty or marker.")
}

var rootCmd = &cobra.Command{
	Use:   "book-client [--config catalog.json5] [--base-url <url>] [--delay 1s] [--missing empty|marker]",
	Short: "book-client prints the configured books from a catalog API.",
	Args:  cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
		var err error
		tel, err = telemetry.SetupOptional(cmd.Context(), "book-client")
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		tel.Shutdown(context.Background())
	},
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		err = report.Run(cmd.Context(), cfg, cmd.OutOrStdout())
		if err != nil {
			tel.Shutdown(context.Background())
			serviceutil.Fatal("failed to print books", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
