package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teachassist/internal/intent"
)

const requestColumns = `id, teacher_id, class_id, prompt_text, attachment_ids_json, intent, created_at`

// CreateRequest inserts a new classified request. A missing id or timestamp
// is filled in.
func (s *Store) CreateRequest(ctx context.Context, req *Request) error {
	if req == nil {
		return errors.New("create request: nil request")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	attachmentsJSON, err := marshalJSON(emptySlice(req.AttachmentIDs))
	if err != nil {
		return err
	}

	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO requests (`+requestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID,
		req.TeacherID,
		req.ClassID,
		req.PromptText,
		attachmentsJSON,
		string(req.Intent),
		formatTime(req.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// GetRequest returns the request with the given id, or nil when absent.
func (s *Store) GetRequest(ctx context.Context, id string) (*Request, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// ListRequests returns all requests, newest first.
func (s *Store) ListRequests(ctx context.Context) ([]*Request, error) {
	return s.queryRequests(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY created_at DESC`)
}

// ListRequestsByTeacher returns a teacher's requests, newest first.
func (s *Store) ListRequestsByTeacher(ctx context.Context, teacherID string) ([]*Request, error) {
	return s.queryRequests(ctx, `SELECT `+requestColumns+` FROM requests WHERE teacher_id = ? ORDER BY created_at DESC`, teacherID)
}

// UpdateRequestAttachments replaces the attachment id list recorded on a
// request. Used only during intake while attachments are being registered.
func (s *Store) UpdateRequestAttachments(ctx context.Context, requestID string, attachmentIDs []string) error {
	attachmentsJSON, err := marshalJSON(emptySlice(attachmentIDs))
	if err != nil {
		return err
	}
	res, err := s.execWithRetry(ctx, `UPDATE requests SET attachment_ids_json = ? WHERE id = ?`, attachmentsJSON, requestID)
	if err != nil {
		return fmt.Errorf("update request attachments: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request attachments: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update request attachments: request %s not found", requestID)
	}
	return nil
}

// DeleteRequest removes a request row. Administrative path; referential
// integrity will reject deletion while plans or artifacts reference it.
func (s *Store) DeleteRequest(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete request: rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]*Request, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var (
		req             Request
		attachmentsJSON string
		intentValue     string
		createdAt       string
	)
	if err := row.Scan(&req.ID, &req.TeacherID, &req.ClassID, &req.PromptText, &attachmentsJSON, &intentValue, &createdAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(attachmentsJSON, &req.AttachmentIDs); err != nil {
		return nil, err
	}
	parsed, ok := intent.Parse(intentValue)
	if !ok {
		parsed = intent.Other
	}
	req.Intent = parsed
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	req.CreatedAt = created
	return &req, nil
}

func emptySlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
