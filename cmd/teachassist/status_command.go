package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	ansiBlue  = "\x1b[34m"
	ansiReset = "\x1b[0m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var status statusModel
			if err := client.getJSON("/api/status", &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, line := range statusHeading("TeachAssist Daemon", shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "Running:  %v\n", status.Running)
			fmt.Fprintf(out, "PID:      %d\n", status.PID)
			fmt.Fprintf(out, "Database: %s\n", status.DatabasePath)
			if !status.StartedAt.IsZero() {
				fmt.Fprintf(out, "Started:  %s\n", status.StartedAt.Local().Format("2006-01-02 15:04:05"))
			}

			if len(status.Jobs) == 0 {
				fmt.Fprintln(out, "Jobs:     none")
				return nil
			}
			states := make([]string, 0, len(status.Jobs))
			for state := range status.Jobs {
				states = append(states, state)
			}
			sort.Strings(states)
			parts := make([]string, 0, len(states))
			for _, state := range states {
				parts = append(parts, fmt.Sprintf("%d %s", status.Jobs[state], state))
			}
			fmt.Fprintf(out, "Jobs:     %s\n", strings.Join(parts, ", "))
			return nil
		},
	}
}

func statusHeading(title string, colorize bool) []string {
	rule := strings.Repeat("-", len(title))
	if colorize {
		title = ansiBlue + title + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{title, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
