package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRequestsCommand(ctx *commandContext) *cobra.Command {
	requestsCmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect submitted requests",
	}
	requestsCmd.AddCommand(newRequestsListCommand(ctx))
	requestsCmd.AddCommand(newRequestsShowCommand(ctx))
	return requestsCmd
}

func newRequestsListCommand(ctx *commandContext) *cobra.Command {
	var teacherID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			path := "/api/requests"
			if trimmed := strings.TrimSpace(teacherID); trimmed != "" {
				path += "?teacher_id=" + trimmed
			}
			var listing requestListing
			if err := client.getJSON(path, &listing); err != nil {
				return err
			}

			if len(listing.Requests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No requests found.")
				return nil
			}

			rows := make([][]string, 0, len(listing.Requests))
			for _, req := range listing.Requests {
				rows = append(rows, []string{
					req.ID,
					req.Intent,
					req.Status,
					req.TeacherID,
					req.CreatedAt.Local().Format("2006-01-02 15:04"),
					truncatePrompt(req.PromptText, 48),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "INTENT", "STATUS", "TEACHER", "CREATED", "PROMPT"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&teacherID, "teacher", "t", "", "Filter by teacher identifier")
	return cmd
}

func newRequestsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <request-id>",
		Short: "Show one request with its plan and artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			id := args[0]

			var req requestModel
			if err := client.getJSON("/api/requests/"+id, &req); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Request %s\n", req.ID)
			fmt.Fprintf(out, "  Teacher: %s\n", req.TeacherID)
			if req.ClassID != "" {
				fmt.Fprintf(out, "  Class:   %s\n", req.ClassID)
			}
			fmt.Fprintf(out, "  Intent:  %s\n", req.Intent)
			fmt.Fprintf(out, "  Status:  %s\n", req.Status)
			fmt.Fprintf(out, "  Prompt:  %s\n", truncatePrompt(req.PromptText, 120))

			var plan planModel
			if err := client.getJSON("/api/requests/"+id+"/plan", &plan); err == nil {
				fmt.Fprintf(out, "\nPlan %s\n", plan.ID)
				for _, node := range plan.TaskNodes {
					fmt.Fprintf(out, "  %-8s %-24s %s\n", node.NodeID, node.TaskType, node.Status)
				}
			}

			var listing artifactListing
			if err := client.getJSON("/api/requests/"+id+"/artifacts", &listing); err != nil {
				return err
			}
			if len(listing.Artifacts) == 0 {
				fmt.Fprintln(out, "\nNo artifacts yet.")
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderArtifactTable(listing.Artifacts))
			return nil
		},
	}
}

func renderArtifactTable(artifacts []artifactModel) string {
	rows := make([][]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		variant := artifact.Meta.Kind
		switch {
		case artifact.Meta.Tier != "":
			variant = fmt.Sprintf("%s (%s)", variant, artifact.Meta.Tier)
		case artifact.Meta.TargetLanguage != "":
			variant = fmt.Sprintf("%s (%s)", variant, artifact.Meta.TargetLanguage)
		}
		rows = append(rows, []string{
			artifact.ID,
			artifact.Meta.TaskType,
			variant,
			artifact.Language,
			fmt.Sprintf("%d", artifact.Version),
		})
	}
	return renderTable(
		[]string{"ID", "TASK", "VARIANT", "LANG", "VER"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func truncatePrompt(prompt string, limit int) string {
	prompt = strings.Join(strings.Fields(prompt), " ")
	if len(prompt) <= limit {
		return prompt
	}
	return prompt[:limit-3] + "..."
}
