package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetVerified(ctx context.Context, id int) error
	UpdateRefresh(ctx context.Context, id int, token string, expiresAt time.Time) error
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)
	// Leaderboard returns verified users ordered by points descending.
	// Ties break on earlier account creation, then lower id.
	Leaderboard(ctx context.Context, offset, limit int) ([]models.LeaderboardRow, error)
	// SumVerifiedPoints mirrors SumApprovedPoints on the denormalized side.
	SumPoints(ctx context.Context) (int, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role_id, verified, points,
       created_at, refresh_token, refresh_expires_at, refresh_revoked`

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role_id, verified, points, created_at)
		VALUES ($1,$2,$3,$4,FALSE,0,NOW())
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.RoleID,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE refresh_token = $1`, token)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.Verified,
		&u.Points, &u.CreatedAt, &u.RefreshToken, &u.RefreshExpiresAt, &u.RefreshRevoked,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) SetVerified(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET verified=TRUE WHERE id=$1`, id)
	return err
}

func (r *userRepository) UpdateRefresh(ctx context.Context, id int, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3`, token, expiresAt, id)
	return err
}

func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx, `
		UPDATE users SET refresh_token=$1, refresh_expires_at=$2
		WHERE refresh_token=$3 AND NOT refresh_revoked
		RETURNING `+userColumns,
		newToken, expiresAt, oldToken).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.Verified,
		&u.Points, &u.CreatedAt, &u.RefreshToken, &u.RefreshExpiresAt, &u.RefreshRevoked,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rotate refresh: %w", err)
	}
	return u, nil
}

func (r *userRepository) Leaderboard(ctx context.Context, offset, limit int) ([]models.LeaderboardRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, points
		FROM users
		WHERE verified
		ORDER BY points DESC, created_at ASC, id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeaderboardRow
	for rows.Next() {
		var row models.LeaderboardRow
		if err := rows.Scan(&row.UserID, &row.Name, &row.Points); err != nil {
			return nil, err
		}
		row.Rank = offset + len(out) + 1
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *userRepository) SumPoints(ctx context.Context) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM users`).Scan(&sum)
	return sum, err
}
