package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jonathan/cvmaker/internal/document"
	"github.com/jonathan/cvmaker/internal/observability"
	"github.com/jonathan/cvmaker/internal/rendering"
	"github.com/jonathan/cvmaker/internal/types"
	"github.com/spf13/cobra"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Print a resume JSON file to PDF with a local Chrome",
	Long:  "Renders a ResumeData JSON file with the chosen layout and prints it on A4 using a headless Chrome on this machine. No server is involved.",
	RunE:  runPDF,
}

var (
	pdfInput      string
	pdfTemplate   string
	pdfOutput     string
	pdfChromePath string
	pdfStylesheet string
	pdfTimeout    time.Duration
	pdfVerbose    bool
)

func init() {
	pdfCmd.Flags().StringVarP(&pdfInput, "in", "i", "", "Path to ResumeData JSON file (required)")
	pdfCmd.Flags().StringVarP(&pdfTemplate, "template", "t", string(types.DefaultTemplate), "Layout: ui1, ui2, ui3, ui4 or ui5")
	pdfCmd.Flags().StringVarP(&pdfOutput, "out", "o", document.DefaultFilename, "Path to output PDF file")
	pdfCmd.Flags().StringVar(&pdfChromePath, "chrome", "", "Chrome binary (env CHROME_PATH, default lookup)")
	pdfCmd.Flags().StringVar(&pdfStylesheet, "stylesheet", rendering.DefaultStylesheetURL, "Stylesheet script URL loaded before printing")
	pdfCmd.Flags().DurationVar(&pdfTimeout, "timeout", document.DefaultRenderTimeout, "Maximum time for the whole render")
	pdfCmd.Flags().BoolVarP(&pdfVerbose, "verbose", "v", false, "Log render timings and print a summary box")

	_ = pdfCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, _ []string) error {
	data, err := loadResumeFile(pdfInput)
	if err != nil {
		return err
	}
	variant := types.ParseTemplateVariant(pdfTemplate)

	body, err := rendering.RenderString(data, variant)
	if err != nil {
		return fmt.Errorf("failed to render resume: %w", err)
	}

	chromePath := pdfChromePath
	if chromePath == "" {
		chromePath = os.Getenv("CHROME_PATH")
	}
	engine := &document.ChromeEngine{ExecPath: chromePath, Verbose: pdfVerbose}
	svc := document.NewService(engine, document.Config{
		RenderTimeout: pdfTimeout,
		StylesheetURL: pdfStylesheet,
		Verbose:       pdfVerbose,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	doc, err := svc.FromHTML(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	if err := writeOutput(pdfOutput, doc.Data); err != nil {
		return err
	}

	if pdfVerbose {
		p := observability.NewPrinter(cmd.OutOrStdout())
		p.PrintResume(data, variant)
		p.PrintExport("local", pdfOutput, len(doc.Data), false)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved PDF to %s\n", pdfOutput)
	return nil
}
