// Package intake validates incoming teacher requests, infers their
// intent, and persists them along with attachment metadata.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"teachassist/internal/config"
	"teachassist/internal/intent"
	"teachassist/internal/services"
	"teachassist/internal/store"
)

// AttachmentInput describes one uploaded file accompanying a request.
type AttachmentInput struct {
	FileName    string
	MimeType    string
	SizeBytes   int64
	StoragePath string
}

// SubmitInput is the payload for a new request.
type SubmitInput struct {
	TeacherID   string
	ClassID     string
	Prompt      string
	Attachments []AttachmentInput
}

// Service performs request intake.
type Service struct {
	store    *store.Store
	cfg      *config.Config
	logger   *slog.Logger
	classify func(string) intent.Intent
}

// NewService constructs the intake service.
func NewService(st *store.Store, cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		cfg:      cfg,
		logger:   logger.With("component", "intake"),
		classify: intent.Classify,
	}
}

// Submit validates the input, classifies the prompt, and persists the
// request together with its attachment rows.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*store.Request, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return nil, services.Wrap(services.ErrValidation, "intake", "submit", "prompt must not be empty", nil)
	}
	if strings.TrimSpace(input.TeacherID) == "" {
		return nil, services.Wrap(services.ErrValidation, "intake", "submit", "teacher id required", nil)
	}
	maxBytes := s.cfg.Generation.MaxAttachmentBytes
	for _, att := range input.Attachments {
		if maxBytes > 0 && att.SizeBytes > int64(maxBytes) {
			return nil, services.Wrap(services.ErrValidation, "intake", "submit",
				fmt.Sprintf("attachment %s exceeds %d bytes", att.FileName, maxBytes), nil)
		}
	}

	inferred := s.classify(prompt)
	req := &store.Request{
		TeacherID:  strings.TrimSpace(input.TeacherID),
		ClassID:    strings.TrimSpace(input.ClassID),
		PromptText: prompt,
		Intent:     inferred,
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, services.Wrap(services.ErrTransient, "intake", "submit", "persist request", err)
	}

	attachmentIDs := make([]string, 0, len(input.Attachments))
	for _, att := range input.Attachments {
		row := &store.Attachment{
			RequestID:   req.ID,
			FileName:    att.FileName,
			MimeType:    att.MimeType,
			SizeBytes:   att.SizeBytes,
			StoragePath: att.StoragePath,
		}
		if err := s.store.CreateAttachment(ctx, row); err != nil {
			return nil, services.Wrap(services.ErrTransient, "intake", "submit", "persist attachment", err)
		}
		attachmentIDs = append(attachmentIDs, row.ID)
	}
	if len(attachmentIDs) > 0 {
		if err := s.store.UpdateRequestAttachments(ctx, req.ID, attachmentIDs); err != nil {
			return nil, services.Wrap(services.ErrTransient, "intake", "submit", "record attachment ids", err)
		}
		req.AttachmentIDs = attachmentIDs
	}

	s.logger.Info("request submitted",
		"request_id", req.ID,
		"teacher_id", req.TeacherID,
		"intent", string(req.Intent),
		"attachments", len(attachmentIDs))
	return req, nil
}
