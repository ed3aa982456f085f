package intake_test

import (
	"context"
	"errors"
	"testing"

	"teachassist/internal/intake"
	"teachassist/internal/intent"
	"teachassist/internal/logging"
	"teachassist/internal/services"
	"teachassist/internal/testsupport"
)

func TestSubmitClassifiesAndPersists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := intake.NewService(st, cfg, logging.NewNop())
	ctx := context.Background()

	req, err := svc.Submit(ctx, intake.SubmitInput{
		TeacherID: "teacher-1",
		ClassID:   "class-1",
		Prompt:    "Create a lesson plan on photosynthesis for 7th grade",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if req.Intent != intent.LessonPlan {
		t.Fatalf("expected lesson_plan intent, got %s", req.Intent)
	}

	stored, err := st.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if stored == nil || stored.PromptText != req.PromptText {
		t.Fatalf("request not persisted: %+v", stored)
	}
}

func TestSubmitRejectsEmptyPrompt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := intake.NewService(st, cfg, logging.NewNop())

	_, err := svc.Submit(context.Background(), intake.SubmitInput{TeacherID: "teacher-1", Prompt: "   "})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitRejectsOversizedAttachment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Generation.MaxAttachmentBytes = 1024
	st := testsupport.MustOpenStore(t, cfg)
	svc := intake.NewService(st, cfg, logging.NewNop())

	_, err := svc.Submit(context.Background(), intake.SubmitInput{
		TeacherID: "teacher-1",
		Prompt:    "worksheet from this reading",
		Attachments: []intake.AttachmentInput{
			{FileName: "big.pdf", MimeType: "application/pdf", SizeBytes: 4096},
		},
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitRecordsAttachments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := intake.NewService(st, cfg, logging.NewNop())
	ctx := context.Background()

	req, err := svc.Submit(ctx, intake.SubmitInput{
		TeacherID: "teacher-1",
		Prompt:    "Make a worksheet from this reading passage",
		Attachments: []intake.AttachmentInput{
			{FileName: "reading.pdf", MimeType: "application/pdf", SizeBytes: 2048, StoragePath: "/tmp/reading.pdf"},
			{FileName: "notes.txt", MimeType: "text/plain", SizeBytes: 128, StoragePath: "/tmp/notes.txt"},
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(req.AttachmentIDs) != 2 {
		t.Fatalf("expected 2 attachment ids, got %v", req.AttachmentIDs)
	}

	rows, err := st.ListAttachmentsByRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("ListAttachmentsByRequest: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 attachment rows, got %d", len(rows))
	}

	stored, err := st.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if len(stored.AttachmentIDs) != 2 {
		t.Fatalf("attachment ids not recorded on request: %v", stored.AttachmentIDs)
	}
}

func TestSubmitIEPKeywordWinsOverLessonPlan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := intake.NewService(st, cfg, logging.NewNop())

	req, err := svc.Submit(context.Background(), intake.SubmitInput{
		TeacherID: "teacher-1",
		Prompt:    "Create a lesson plan with IEP accommodations for my 4th period",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if req.Intent != intent.IEPSupport {
		t.Fatalf("iep keywords should outrank lesson plan, got %s", req.Intent)
	}
}
