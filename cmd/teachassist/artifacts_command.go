package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newArtifactsCommand(ctx *commandContext) *cobra.Command {
	artifactsCmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect generated artifacts",
	}
	artifactsCmd.AddCommand(newArtifactsListCommand(ctx))
	artifactsCmd.AddCommand(newArtifactsShowCommand(ctx))
	return artifactsCmd
}

func newArtifactsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <request-id>",
		Short: "List a request's artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var listing artifactListing
			if err := client.getJSON("/api/requests/"+args[0]+"/artifacts", &listing); err != nil {
				return err
			}
			if len(listing.Artifacts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No artifacts yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderArtifactTable(listing.Artifacts))
			return nil
		},
	}
}

func newArtifactsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <artifact-id>",
		Short: "Print an artifact's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var artifact artifactModel
			if err := client.getJSON("/api/artifacts/"+args[0], &artifact); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), artifact.Content)
			return nil
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var medium string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <artifact-id>",
		Short: "Export an artifact to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			payload := map[string]string{}
			if trimmed := strings.TrimSpace(medium); trimmed != "" {
				payload["medium"] = trimmed
			}
			content, _, fileName, err := client.postDownload("/api/artifacts/"+args[0]+"/export", payload)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outPath)
			if target == "" {
				if fileName == "" {
					fileName = args[0] + ".out"
				}
				target = fileName
			}
			absolute, err := filepath.Abs(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if err := os.WriteFile(absolute, content, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(content), absolute)
			return nil
		},
	}

	cmd.Flags().StringVarP(&medium, "medium", "m", "", "Export medium (markdown, pdf, pptx, google_doc)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file path")
	return cmd
}
