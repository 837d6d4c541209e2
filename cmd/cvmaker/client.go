package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cvmaker/internal/config"
	"github.com/spf13/cobra"
)

// DefaultBaseURL is the server the client commands talk to when nothing else is set.
const DefaultBaseURL = "http://localhost:8080"

// clientFlags are shared by the commands that call a running server.
type clientFlags struct {
	configFile string
	baseURL    string
	token      string
	verbose    bool
}

func addClientFlags(cmd *cobra.Command, f *clientFlags) {
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to a JSON config file (base_url, token, template, output, mode)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Server base URL (env CVMAKER_BASE_URL, default "+DefaultBaseURL+")")
	cmd.Flags().StringVar(&f.token, "token", "", "Session token (env CVMAKER_TOKEN)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print a summary box")
}

// resolve merges flags over the config file over the environment and validates the result.
func (f *clientFlags) resolve(overrides config.Config) (config.Config, error) {
	fromFlags := overrides
	fromFlags.BaseURL = f.baseURL
	fromFlags.Token = f.token

	defaults := config.Config{
		BaseURL: os.Getenv("CVMAKER_BASE_URL"),
		Token:   os.Getenv("CVMAKER_TOKEN"),
	}
	if f.configFile != "" {
		fileCfg, err := config.LoadConfig(f.configFile)
		if err != nil {
			return config.Config{}, err
		}
		defaults = fileCfg.MergeWithDefaults(defaults)
	}
	if defaults.BaseURL == "" {
		defaults.BaseURL = DefaultBaseURL
	}

	cfg := fromFlags.MergeWithDefaults(defaults)
	cfg.Verbose = f.verbose
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if cfg.Token == "" {
		return config.Config{}, fmt.Errorf("a session token is required: use --token, CVMAKER_TOKEN or the config file")
	}
	return cfg, nil
}
