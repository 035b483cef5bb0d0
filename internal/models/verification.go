package models

import "time"

// EmailVerification is one sent confirmation code. Each send is a new row;
// only the hash of the code is stored.
type EmailVerification struct {
	ID        int64
	UserID    int
	CodeHash  string
	SentAt    time.Time
	ExpiresAt time.Time
	Confirmed bool
	Attempts  int
}
