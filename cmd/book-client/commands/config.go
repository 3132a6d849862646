package commands

import (
	"time"

	"bookcatalog/lib/configutil"
	"bookcatalog/lib/report"

	"github.com/spf13/cobra"
)

type fileConfig struct {
	report.Config
	DelayMs   *int `json:"delay_ms"`
	TimeoutMs int  `json:"timeout_ms"`
}

func defaultFileConfig() fileConfig {
	defaults := report.DefaultConfig()
	delayMs := int(defaults.Delay / time.Millisecond)
	return fileConfig{
		Config:  defaults,
		DelayMs: &delayMs,
	}
}

func loadConfig(cmd *cobra.Command) (report.Config, error) {
	file, err := configutil.ReadWithDefaults(configPath, defaultFileConfig())
	if err != nil {
		return report.Config{}, err
	}
	cfg := file.Config
	cfg.Delay = time.Duration(*file.DelayMs) * time.Millisecond
	cfg.Timeout = time.Duration(file.TimeoutMs) * time.Millisecond

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseUrl = baseUrl
	}
	if flags.Changed("delay") {
		cfg.Delay = delay
	}
	if flags.Changed("dump-http") {
		cfg.DumpDir = dumpDir
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("missing") {
		cfg.Missing = report.MissingPolicy(missing)
	}
	cfg.Missing, err = report.ParseMissingPolicy(string(cfg.Missing))
	if err != nil {
		return report.Config{}, err
	}
	return cfg, nil
}
