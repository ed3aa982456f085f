package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type attachmentPayload struct {
	FileName    string `json:"file_name"`
	MimeType    string `json:"mime_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StoragePath string `json:"storage_path"`
}

type submitPayload struct {
	TeacherID   string              `json:"teacher_id"`
	ClassID     string              `json:"class_id,omitempty"`
	Prompt      string              `json:"prompt"`
	Attachments []attachmentPayload `json:"attachments,omitempty"`
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var teacherID string
	var classID string
	var attachPaths []string
	var wait bool

	cmd := &cobra.Command{
		Use:   "submit <prompt>",
		Short: "Submit a prompt for material generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			attachments := make([]attachmentPayload, 0, len(attachPaths))
			for _, path := range attachPaths {
				attachment, err := describeAttachment(path)
				if err != nil {
					return err
				}
				attachments = append(attachments, attachment)
			}

			var result submitResult
			err = client.postJSON("/api/requests", submitPayload{
				TeacherID:   teacherID,
				ClassID:     classID,
				Prompt:      args[0],
				Attachments: attachments,
			}, &result)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Request submitted\n")
			fmt.Fprintf(out, "  Request: %s\n", result.RequestID)
			fmt.Fprintf(out, "  Plan:    %s\n", result.PlanID)
			fmt.Fprintf(out, "  Job:     %s\n", result.JobID)
			fmt.Fprintf(out, "  Intent:  %s\n", result.Intent)

			if !wait {
				return nil
			}
			return waitForCompletion(cmd, client, result.RequestID)
		},
	}

	cmd.Flags().StringVarP(&teacherID, "teacher", "t", "", "Teacher identifier")
	cmd.Flags().StringVar(&classID, "class", "", "Class identifier")
	cmd.Flags().StringArrayVar(&attachPaths, "attach", nil, "Reference file to attach (repeatable)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for generation to finish")
	_ = cmd.MarkFlagRequired("teacher")

	return cmd
}

func describeAttachment(path string) (attachmentPayload, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return attachmentPayload{}, fmt.Errorf("resolve attachment path: %w", err)
	}
	info, err := os.Stat(absolute)
	if err != nil {
		return attachmentPayload{}, fmt.Errorf("stat attachment: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(absolute))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return attachmentPayload{
		FileName:    filepath.Base(absolute),
		MimeType:    mimeType,
		SizeBytes:   info.Size(),
		StoragePath: absolute,
	}, nil
}

func waitForCompletion(cmd *cobra.Command, client *apiClient, requestID string) error {
	out := cmd.OutOrStdout()
	deadline := time.Now().Add(5 * time.Minute)
	for {
		var req requestModel
		if err := client.getJSON("/api/requests/"+requestID, &req); err != nil {
			return err
		}
		switch req.Status {
		case "completed":
			fmt.Fprintf(out, "Generation complete\n")
			return nil
		case "failed":
			return fmt.Errorf("generation failed for request %s", requestID)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for request %s (last status %s)", requestID, req.Status)
		}
		time.Sleep(time.Second)
	}
}
