package models

import "time"

type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	RoleID       int    `json:"role_id"`
	Verified     bool   `json:"verified"`
	// Points is the denormalized running total of approved submissions,
	// updated in the same transaction as every approval.
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`

	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LeaderboardRow is derived, never stored.
type LeaderboardRow struct {
	Rank   int    `json:"rank"` // 1-based global position, independent of the page
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// LeaderboardPage is one page of the ranking.
type LeaderboardPage struct {
	Items   []LeaderboardRow `json:"items"`
	HasMore bool             `json:"has_more"`
}
