package main

import (
	"github.com/augurhq/augur/internal/engine"
	"github.com/augurhq/augur/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:     "augur",
	Version: version,
	Short:   "Multi-language code quality analysis CLI",
	Long: `Augur analyzes codebases for structural smells, architecture violations,
error handling gaps, duplicated code, naming drift, and security issues,
and tracks quality over time against a saved baseline.

Supports: Go, Rust, Python, TypeScript, JavaScript, Java, C, C++, C#, Ruby, PHP`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
}

// loadConfig resolves the effective configuration. An explicitly passed
// config file that fails to load is fatal; implicit discovery falls
// back to defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, &engine.ConfigError{Msg: "failed to load config", Err: err}
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}
