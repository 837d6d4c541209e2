package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jonathan/cvmaker/internal/config"
	"github.com/jonathan/cvmaker/internal/export"
	"github.com/jonathan/cvmaker/internal/observability"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current resume of a session as PDF",
	Long: `Asks a running server to print the resume being edited in your session.

In snapshot mode the server prints its live preview page. In html mode the
preview markup is fetched and submitted to the HTML export endpoint instead.`,
	RunE: runExport,
}

var (
	exportClient clientFlags
	exportMode   string
	exportOutput string
	exportSave   bool
)

func init() {
	addClientFlags(exportCmd, &exportClient)
	exportCmd.Flags().StringVarP(&exportMode, "mode", "m", "", "Export mode: snapshot or html (default snapshot)")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file or directory (default ./resume.pdf)")
	exportCmd.Flags().BoolVar(&exportSave, "save", false, "Also save the session's resume on the server")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := exportClient.resolve(config.Config{Mode: exportMode, Output: exportOutput})
	if err != nil {
		return err
	}

	client, err := export.NewClient(cfg.BaseURL, cfg.Token, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := export.Run(ctx, client, export.Request{
		Mode:    cfg.Mode,
		Save:    exportSave,
		Output:  cfg.Output,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintExport(cfg.Mode, res.Path, res.Bytes, res.Saved)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved PDF to %s\n", res.Path)
	return nil
}
