package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jonathan/cvmaker/internal/config"
	"github.com/jonathan/cvmaker/internal/observability"
	"github.com/jonathan/cvmaker/internal/resumesync"
	"github.com/jonathan/cvmaker/internal/types"
	"github.com/spf13/cobra"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "Manage the resumes saved on a server",
}

var resumesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved resumes, newest first",
	Args:  cobra.NoArgs,
	RunE:  runResumesList,
}

var resumesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a saved resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumesGet,
}

var resumesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumesDelete,
}

var resumesPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Save a local ResumeData JSON file as your resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumesPush,
}

var (
	resumesClient   clientFlags
	resumesJSON     bool
	resumesTemplate string
)

func init() {
	for _, sub := range []*cobra.Command{resumesListCmd, resumesGetCmd, resumesDeleteCmd, resumesPushCmd} {
		addClientFlags(sub, &resumesClient)
		sub.Flags().BoolVar(&resumesJSON, "json", false, "Print raw JSON")
		resumesCmd.AddCommand(sub)
	}
	resumesPushCmd.Flags().StringVarP(&resumesTemplate, "template", "t", string(types.DefaultTemplate), "Layout saved with the resume")

	rootCmd.AddCommand(resumesCmd)
}

func resumesBackend() (*resumesync.Client, config.Config, error) {
	cfg, err := resumesClient.resolve(config.Config{})
	if err != nil {
		return nil, cfg, err
	}
	return resumesync.NewClient(cfg.BaseURL, cfg.Token), cfg, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid resume id %q", arg)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runResumesList(cmd *cobra.Command, _ []string) error {
	client, _, err := resumesBackend()
	if err != nil {
		return err
	}

	records, err := client.List(context.Background())
	if err != nil {
		return err
	}
	if resumesJSON {
		return printJSON(cmd.OutOrStdout(), records)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRecords(records)
	return nil
}

func runResumesGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, _, err := resumesBackend()
	if err != nil {
		return err
	}

	record, err := client.Get(context.Background(), id)
	if err != nil {
		return err
	}
	if resumesJSON {
		return printJSON(cmd.OutOrStdout(), record)
	}

	data, err := types.Deserialize(record.Data)
	if err != nil {
		return fmt.Errorf("resume %d holds invalid data: %w", id, err)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintResume(data, record.Template())
	return nil
}

func runResumesDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, _, err := resumesBackend()
	if err != nil {
		return err
	}

	if err := client.Delete(context.Background(), id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted resume %d\n", id)
	return nil
}

func runResumesPush(cmd *cobra.Command, args []string) error {
	data, err := loadResumeFile(args[0])
	if err != nil {
		return err
	}
	serialized, err := types.Serialize(data)
	if err != nil {
		return err
	}
	client, _, err := resumesBackend()
	if err != nil {
		return err
	}

	record, err := client.Upsert(context.Background(), string(types.ParseTemplateVariant(resumesTemplate)), serialized)
	if err != nil {
		return err
	}
	if resumesJSON {
		return printJSON(cmd.OutOrStdout(), record)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved resume %d (%s)\n", record.ID, record.Template())
	return nil
}
