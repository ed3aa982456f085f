package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const teacherColumns = `id, email, display_name, subjects_json, grade_bands_json, created_at`

const classColumns = `id, teacher_id, name, grade, subject, period_length_minutes, created_at`

// CreateTeacherProfile inserts a teacher account row.
func (s *Store) CreateTeacherProfile(ctx context.Context, profile *TeacherProfile) error {
	if profile == nil {
		return errors.New("create teacher profile: nil profile")
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	subjectsJSON, err := marshalJSON(emptySlice(profile.Subjects))
	if err != nil {
		return err
	}
	gradeBands := profile.GradeBands
	if gradeBands == nil {
		gradeBands = []int{}
	}
	gradeBandsJSON, err := marshalJSON(gradeBands)
	if err != nil {
		return err
	}

	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO teacher_profiles (`+teacherColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.Email,
		profile.DisplayName,
		subjectsJSON,
		gradeBandsJSON,
		formatTime(profile.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert teacher profile: %w", err)
	}
	return nil
}

// GetTeacherProfile returns the teacher with the given id, or nil when absent.
func (s *Store) GetTeacherProfile(ctx context.Context, id string) (*TeacherProfile, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+teacherColumns+` FROM teacher_profiles WHERE id = ?`, id)
	profile, err := scanTeacherProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher profile: %w", err)
	}
	return profile, nil
}

// CreateClassProfile inserts a class row.
func (s *Store) CreateClassProfile(ctx context.Context, profile *ClassProfile) error {
	if profile == nil {
		return errors.New("create class profile: nil profile")
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO class_profiles (`+classColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.TeacherID,
		profile.Name,
		profile.Grade,
		profile.Subject,
		profile.PeriodLengthMinutes,
		formatTime(profile.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert class profile: %w", err)
	}
	return nil
}

// GetClassProfile returns the class with the given id, or nil when absent.
func (s *Store) GetClassProfile(ctx context.Context, id string) (*ClassProfile, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+classColumns+` FROM class_profiles WHERE id = ?`, id)
	profile, err := scanClassProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get class profile: %w", err)
	}
	return profile, nil
}

// ListClassProfilesByTeacher returns a teacher's classes in creation order.
func (s *Store) ListClassProfilesByTeacher(ctx context.Context, teacherID string) ([]*ClassProfile, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+classColumns+` FROM class_profiles WHERE teacher_id = ? ORDER BY created_at ASC, id ASC`,
		teacherID,
	)
	if err != nil {
		return nil, fmt.Errorf("query class profiles: %w", err)
	}
	defer rows.Close()

	var out []*ClassProfile
	for rows.Next() {
		profile, err := scanClassProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class profile: %w", err)
		}
		out = append(out, profile)
	}
	return out, rows.Err()
}

func scanTeacherProfile(row rowScanner) (*TeacherProfile, error) {
	var (
		profile        TeacherProfile
		subjectsJSON   string
		gradeBandsJSON string
		createdAt      string
	)
	if err := row.Scan(&profile.ID, &profile.Email, &profile.DisplayName, &subjectsJSON, &gradeBandsJSON, &createdAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(subjectsJSON, &profile.Subjects); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(gradeBandsJSON, &profile.GradeBands); err != nil {
		return nil, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	profile.CreatedAt = created
	return &profile, nil
}

func scanClassProfile(row rowScanner) (*ClassProfile, error) {
	var (
		profile   ClassProfile
		createdAt string
	)
	if err := row.Scan(&profile.ID, &profile.TeacherID, &profile.Name, &profile.Grade, &profile.Subject, &profile.PeriodLengthMinutes, &createdAt); err != nil {
		return nil, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	profile.CreatedAt = created
	return &profile, nil
}
