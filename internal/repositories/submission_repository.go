package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
)

type SubmissionRepository interface {
	Store(ctx context.Context, sub *models.Submission) error
	FindByID(ctx context.Context, id int64) (*models.Submission, error)
	FindAll(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error)
	// CountActiveForUserTask counts pending+approved submissions a user has
	// for one task (the eligibility quota).
	CountActiveForUserTask(ctx context.Context, userID int, taskID int64) (int, error)
	// Approve freezes points onto a pending submission and bumps the user's
	// running total in the same transaction. ErrNotPending on terminal rows.
	Approve(ctx context.Context, id int64, pts int, comment string) (*models.Submission, error)
	// Reject closes a pending submission without points. ErrNotPending on
	// terminal rows.
	Reject(ctx context.Context, id int64, comment string) (*models.Submission, error)
	// DeletePending removes a still-pending submission owned by userID.
	DeletePending(ctx context.Context, id int64, userID int) error
	// ArchiveOlderThan flags terminal submissions last touched before cutoff.
	ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// SumApprovedPoints is the authoritative aggregate behind the leaderboard
	// conservation check.
	SumApprovedPoints(ctx context.Context) (int, error)
}

type submissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

const submissionColumns = `s.id, s.task_id, s.user_id, u.email, s.evidence, s.details,
       s.status, s.admin_comment, s.points, s.archived, s.created_at, s.updated_at`

func (r *submissionRepository) Store(ctx context.Context, sub *models.Submission) error {
	details, err := json.Marshal(sub.Details)
	if err != nil {
		return fmt.Errorf("submission details marshal: %w", err)
	}
	query := `
		INSERT INTO submissions (task_id, user_id, evidence, details, status, admin_comment, archived, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,'',FALSE,$6,$7)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		sub.TaskID, sub.UserID, sub.Evidence, details, sub.Status,
		sub.CreatedAt, sub.UpdatedAt,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (r *submissionRepository) FindByID(ctx context.Context, id int64) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM submissions s JOIN users u ON u.id = s.user_id
		WHERE s.id = $1`
	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *submissionRepository) FindAll(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	baseQuery := `SELECT ` + submissionColumns + `
		FROM submissions s JOIN users u ON u.id = s.user_id`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("s.user_id = $%d", argID))
		args = append(args, *filter.UserID)
		argID++
	}
	if filter.UserEmail != nil {
		conditions = append(conditions, fmt.Sprintf("u.email = $%d", argID))
		args = append(args, *filter.UserEmail)
		argID++
	}
	if filter.TaskID != nil {
		conditions = append(conditions, fmt.Sprintf("s.task_id = $%d", argID))
		args = append(args, *filter.TaskID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if !filter.IncludeArchived {
		conditions = append(conditions, "s.archived = FALSE")
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY s.created_at DESC, s.id DESC"
	baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.Limit, filter.Page*filter.Limit)

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func (r *submissionRepository) CountActiveForUserTask(ctx context.Context, userID int, taskID int64) (int, error) {
	var c int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM submissions
		WHERE user_id = $1 AND task_id = $2 AND status IN ('pending','approved')`,
		userID, taskID).Scan(&c)
	return c, err
}

// Approve serializes on the submission row (FOR UPDATE) and keeps the
// conditional status check inside the transaction, so a racing second approval
// always sees the terminal state and fails as a conflict.
func (r *submissionRepository) Approve(ctx context.Context, id int64, pts int, comment string) (*models.Submission, error) {
	return r.finalize(ctx, id, models.SubmissionApproved, &pts, comment)
}

func (r *submissionRepository) Reject(ctx context.Context, id int64, comment string) (*models.Submission, error) {
	return r.finalize(ctx, id, models.SubmissionRejected, nil, comment)
}

func (r *submissionRepository) finalize(ctx context.Context, id int64, to models.SubmissionStatus, pts *int, comment string) (*models.Submission, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM submissions WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if models.SubmissionStatus(status) != models.SubmissionPending {
		return nil, ErrNotPending
	}

	var userID int
	err = tx.QueryRowContext(ctx, `
		UPDATE submissions
		SET status=$1, points=$2, admin_comment=$3, updated_at=NOW()
		WHERE id=$4 AND status='pending'
		RETURNING user_id`,
		to, pts, comment, id).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotPending
		}
		return nil, err
	}

	if to == models.SubmissionApproved && pts != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET points = points + $1 WHERE id = $2`, *pts, userID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *submissionRepository) DeletePending(ctx context.Context, id int64, userID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM submissions WHERE id=$1 AND user_id=$2 AND status='pending'`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *submissionRepository) ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE submissions SET archived=TRUE
		WHERE archived=FALSE AND status IN ('approved','rejected') AND updated_at < $1`,
		cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *submissionRepository) SumApprovedPoints(ctx context.Context) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM submissions WHERE status='approved'`).Scan(&sum)
	return sum, err
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		s       models.Submission
		details []byte
	)
	if err := row.Scan(
		&s.ID, &s.TaskID, &s.UserID, &s.UserEmail, &s.Evidence, &details,
		&s.Status, &s.AdminComment, &s.Points, &s.Archived, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &s.Details); err != nil {
			return nil, fmt.Errorf("submission %d details: %w", s.ID, err)
		}
	}
	return &s, nil
}
