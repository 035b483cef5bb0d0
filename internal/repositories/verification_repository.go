package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
)

type VerificationRepository struct {
	DB *sql.DB
}

func NewVerificationRepository(db *sql.DB) *VerificationRepository {
	return &VerificationRepository{DB: db}
}

// Create stores one sent code; every send is a new row.
func (r *VerificationRepository) Create(ctx context.Context, userID int, codeHash string, sentAt, expiresAt time.Time) (int64, error) {
	const q = `
		INSERT INTO email_verifications (user_id, code_hash, sent_at, expires_at, confirmed, attempts)
		VALUES ($1, $2, $3, $4, FALSE, 0)
		RETURNING id
	`
	var id int64
	if err := r.DB.QueryRowContext(ctx, q, userID, codeHash, sentAt, expiresAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("email_verification create: %w", err)
	}
	return id, nil
}

func (r *VerificationRepository) GetLatestByUserID(ctx context.Context, userID int) (*models.EmailVerification, error) {
	const q = `
		SELECT id, user_id, code_hash, sent_at, expires_at, confirmed, attempts
		FROM email_verifications
		WHERE user_id = $1
		ORDER BY sent_at DESC
		LIMIT 1
	`
	row := r.DB.QueryRowContext(ctx, q, userID)
	var v models.EmailVerification
	if err := row.Scan(&v.ID, &v.UserID, &v.CodeHash, &v.SentAt, &v.ExpiresAt, &v.Confirmed, &v.Attempts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("email_verification latest: %w", err)
	}
	return &v, nil
}

// CountRecentSends backs the resend throttle.
func (r *VerificationRepository) CountRecentSends(ctx context.Context, userID int, since time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM email_verifications
		WHERE user_id = $1 AND sent_at >= $2
	`
	var c int
	if err := r.DB.QueryRowContext(ctx, q, userID, since).Scan(&c); err != nil {
		return 0, fmt.Errorf("email_verification count recent: %w", err)
	}
	return c, nil
}

// IncrementAttempts returns the new attempts value.
func (r *VerificationRepository) IncrementAttempts(ctx context.Context, id int64) (int, error) {
	const q = `
		UPDATE email_verifications
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`
	var attempts int
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("email_verification increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *VerificationRepository) MarkConfirmed(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE email_verifications SET confirmed=TRUE WHERE id=$1`, id)
	return err
}

// ExpireNow invalidates a code immediately (attempt limit exceeded).
func (r *VerificationRepository) ExpireNow(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE email_verifications SET expires_at = NOW() WHERE id=$1`, id)
	return err
}
