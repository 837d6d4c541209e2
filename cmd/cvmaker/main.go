// Package main provides the cvmaker command: the HTTP server plus client commands
// for exporting, rendering and managing saved resumes.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cvmaker",
	Short: "Resume builder and PDF exporter",
	Long:  "cvmaker serves a resume editor API with a live preview, and exports the rendered resume as an A4 PDF.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
