package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/cvmaker/internal/observability"
	"github.com/jonathan/cvmaker/internal/rendering"
	"github.com/jonathan/cvmaker/internal/schemas"
	"github.com/jonathan/cvmaker/internal/types"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume JSON file to HTML",
	Long:  "Validates a ResumeData JSON file against the resume schema and renders it with one of the ui1..ui5 layouts.",
	RunE:  runRender,
}

var (
	renderInput      string
	renderTemplate   string
	renderOutput     string
	renderStylesheet string
	renderFragment   bool
	renderVerbose    bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to ResumeData JSON file (required)")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", string(types.DefaultTemplate), "Layout: ui1, ui2, ui3, ui4 or ui5")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Path to output HTML file (default stdout)")
	renderCmd.Flags().StringVar(&renderStylesheet, "stylesheet", rendering.DefaultStylesheetURL, "Stylesheet script URL of the standalone document")
	renderCmd.Flags().BoolVar(&renderFragment, "fragment", false, "Write only the layout markup instead of a standalone document")
	renderCmd.Flags().BoolVarP(&renderVerbose, "verbose", "v", false, "Print a summary box to stderr")

	_ = renderCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(renderCmd)
}

// loadResumeFile reads, schema-validates and decodes a ResumeData JSON file.
func loadResumeFile(path string) (*types.ResumeData, error) {
	if err := schemas.ValidateResumeDataFile(path); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			return nil, fmt.Errorf("invalid resume file %s: %s", path, ve.Summary())
		}
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume file: %w", err)
	}
	data, err := types.Deserialize(string(content))
	if err != nil {
		return nil, fmt.Errorf("invalid resume file %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(path string, content []byte) error {
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func runRender(cmd *cobra.Command, _ []string) error {
	data, err := loadResumeFile(renderInput)
	if err != nil {
		return err
	}
	variant := types.ParseTemplateVariant(renderTemplate)

	var html string
	if renderFragment {
		html, err = rendering.RenderString(data, variant)
	} else {
		html, err = rendering.RenderDocument(data, variant, renderStylesheet)
	}
	if err != nil {
		return fmt.Errorf("failed to render resume: %w", err)
	}

	if renderVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintResume(data, variant)
	}

	if renderOutput == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), html)
		return err
	}
	if err := writeOutput(renderOutput, []byte(html)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s layout to %s\n", variant, renderOutput)
	return nil
}
