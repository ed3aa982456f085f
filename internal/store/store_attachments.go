package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const attachmentColumns = `id, request_id, file_name, mime_type, size_bytes, storage_path, parse_success, created_at`

// CreateAttachment records metadata for one uploaded file.
func (s *Store) CreateAttachment(ctx context.Context, att *Attachment) error {
	if att == nil {
		return errors.New("create attachment: nil attachment")
	}
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO attachments (`+attachmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		att.ID,
		att.RequestID,
		att.FileName,
		att.MimeType,
		att.SizeBytes,
		att.StoragePath,
		boolToInt(att.ParseSuccess),
		formatTime(att.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// GetAttachment returns the attachment with the given id, or nil when absent.
func (s *Store) GetAttachment(ctx context.Context, id string) (*Attachment, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+attachmentColumns+` FROM attachments WHERE id = ?`, id)
	att, err := scanAttachment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return att, nil
}

// ListAttachmentsByRequest returns a request's attachments in upload order.
func (s *Store) ListAttachmentsByRequest(ctx context.Context, requestID string) ([]*Attachment, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+attachmentColumns+` FROM attachments WHERE request_id = ? ORDER BY created_at ASC, id ASC`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	var out []*Attachment
	for rows.Next() {
		att, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, att)
	}
	return out, rows.Err()
}

// SetAttachmentParseResult records whether text extraction succeeded.
func (s *Store) SetAttachmentParseResult(ctx context.Context, id string, parseSuccess bool) error {
	res, err := s.execWithRetry(ctx, `UPDATE attachments SET parse_success = ? WHERE id = ?`, boolToInt(parseSuccess), id)
	if err != nil {
		return fmt.Errorf("update attachment parse result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attachment parse result: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update attachment parse result: attachment %s not found", id)
	}
	return nil
}

func scanAttachment(row rowScanner) (*Attachment, error) {
	var (
		att          Attachment
		parseSuccess int
		createdAt    string
	)
	if err := row.Scan(&att.ID, &att.RequestID, &att.FileName, &att.MimeType, &att.SizeBytes, &att.StoragePath, &parseSuccess, &createdAt); err != nil {
		return nil, err
	}
	att.ParseSuccess = parseSuccess != 0
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	att.CreatedAt = created
	return &att, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
