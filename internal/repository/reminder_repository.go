package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/smp-yps/assignment-api/internal/models"
)

// ReminderLogRepository persists reminder dedup markers.
type ReminderLogRepository struct {
	db *sqlx.DB
}

// NewReminderLogRepository constructs the repository.
func NewReminderLogRepository(db *sqlx.DB) *ReminderLogRepository {
	return &ReminderLogRepository{db: db}
}

// FindByAssignmentAndTeacher returns the reminder log for the pair, or
// sql.ErrNoRows when none was recorded.
func (r *ReminderLogRepository) FindByAssignmentAndTeacher(ctx context.Context, assignmentID, teacherID string) (*models.ReminderLog, error) {
	const query = `SELECT id, assignment_id, teacher_id, sent_at, message_sid, message_content, status, created_at
FROM reminder_logs WHERE assignment_id = $1 AND teacher_id = $2 LIMIT 1`
	var log models.ReminderLog
	if err := r.db.GetContext(ctx, &log, query, assignmentID, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find reminder log: %w", err)
	}
	return &log, nil
}

// Create records a reminder that reached the provider.
func (r *ReminderLogRepository) Create(ctx context.Context, log *models.ReminderLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO reminder_logs (id, assignment_id, teacher_id, sent_at, message_sid, message_content, status, created_at)
VALUES (:id, :assignment_id, :teacher_id, :sent_at, :message_sid, :message_content, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create reminder log: %w", err)
	}
	return nil
}
