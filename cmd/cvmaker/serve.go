package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jonathan/cvmaker/internal/config"
	"github.com/jonathan/cvmaker/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start an HTTP server that hosts editor sessions, the live preview page,
the resume REST endpoints and the PDF export endpoints.

Configuration is read from the environment (and .env): PORT, DATABASE_URL,
JWT_SECRET, PREVIEW_URL, CHROME_PATH, STYLESHEET_URL, AUTH_COOKIE_NAME,
MARKER_TIMEOUT, NETWORK_IDLE_TIMEOUT, RENDER_TIMEOUT and VERBOSE.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("port") {
		if err := os.Setenv("PORT", strconv.Itoa(servePort)); err != nil {
			return fmt.Errorf("failed to apply --port: %w", err)
		}
	}

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
