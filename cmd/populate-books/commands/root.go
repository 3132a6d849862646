package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"bookcatalog/lib/configutil"
	"bookcatalog/lib/populate"
	"bookcatalog/lib/telemetry"
	"bookcatalog/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath string
	baseUrl    string
	rps        float64
	timeout    time.Duration
	dumpDir    string
	verbose    bool
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "catalog.json5", "Config file, a missing file means defaults.")
	flags.StringVar(&baseUrl, "base-url", "", "Base url of the catalog API, overrides the config.")
	flags.Float64Var(&rps, "rps", 0, "Maximum book submissions per second, 0 is unpaced.")
	flags.DurationVar(&timeout, "timeout", 0, "Timeout of each request, 0 waits forever.")
	flags.StringVar(&dumpDir, "dump-http", "", "Directory to write a dump of every http exchange to.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log at debug level.")
}

type fileConfig struct {
	populate.Config
	TimeoutMs int `json:"timeout_ms"`
}

func loadConfig(cmd *cobra.Command) (populate.Config, error) {
	file, err := configutil.ReadWithDefaults(configPath, fileConfig{Config: populate.DefaultConfig()})
	if err != nil {
		return populate.Config{}, err
	}
	cfg := file.Config
	cfg.Timeout = time.Duration(file.TimeoutMs) * time.Millisecond

	if cmd.Flags().Changed("base-url") {
		cfg.BaseUrl = baseUrl
	}
	if cmd.Flags().Changed("rps") {
		cfg.RequestsPerSecond = rps
	}
	if cmd.Flags().Changed("dump-http") {
		cfg.DumpDir = dumpDir
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = timeout
	}
	return cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "populate-books [--config catalog.json5] [--base-url <url>] [--rps <n>]",
	Short: "populate-books submits the sample books to a catalog API.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
		tel, err := telemetry.SetupOptional(cmd.Context(), "populate-books")
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		defer tel.Shutdown(context.Background())

		cfg, err := loadConfig(cmd)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		err = populate.Run(cmd.Context(), cfg, cmd.OutOrStdout())
		if err != nil {
			tel.Shutdown(context.Background())
			serviceutil.Fatal("failed to populate books", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
