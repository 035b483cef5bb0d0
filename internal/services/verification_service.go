// internal/services/verification_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/repositories"
)

var (
	ErrResendThrottled = errors.New("resend throttled")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrCodeExpired     = errors.New("code expired")
	ErrCodeInvalid     = errors.New("code invalid")
)

const (
	maxResendsPerWindow    = 3
	resendWindow           = 10 * time.Minute
	maxConfirmAttempts     = 5
	defaultVerificationTTL = 15 * time.Minute
)

// VerificationService drives email confirmation of new accounts. Codes are
// stored bcrypt-hashed; only verified users ever reach the leaderboard.
type VerificationService struct {
	Repo    *repositories.VerificationRepository
	Users   UserService
	Emails  EmailService
	CodeTTL time.Duration
}

func NewVerificationService(repo *repositories.VerificationRepository, users UserService, emails EmailService) *VerificationService {
	return &VerificationService{
		Repo:    repo,
		Users:   users,
		Emails:  emails,
		CodeTTL: defaultVerificationTTL,
	}
}

func (s *VerificationService) generateCode() string {
	src := rand.NewSource(time.Now().UnixNano())
	rnd := rand.New(src)
	return fmt.Sprintf("%06d", rnd.Intn(1000000))
}

// SendCode mails a fresh code; every resend is a new code and a new row.
func (s *VerificationService) SendCode(ctx context.Context, userID int, email string) error {
	since := time.Now().Add(-resendWindow)
	cnt, err := s.Repo.CountRecentSends(ctx, userID, since)
	if err != nil {
		return err
	}
	if cnt >= maxResendsPerWindow {
		return ErrResendThrottled
	}

	code := s.generateCode()
	codeHashBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt generate: %w", err)
	}

	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}
	sentAt := time.Now()
	if _, err := s.Repo.Create(ctx, userID, string(codeHashBytes), sentAt, sentAt.Add(ttl)); err != nil {
		return err
	}

	if err := s.Emails.SendVerificationCode(email, code); err != nil {
		return err
	}
	log.Printf("[verify][send] user_id=%d email=%s", userID, email)
	return nil
}

// Confirm checks the latest code against its bcrypt hash, counting attempts
// and honoring the TTL. On success the user becomes verified.
func (s *VerificationService) Confirm(ctx context.Context, userID int, code string) (bool, error) {
	v, err := s.Repo.GetLatestByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	if v == nil || v.Confirmed {
		return false, ErrCodeInvalid
	}
	if time.Now().After(v.ExpiresAt) {
		return false, ErrCodeExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)); err != nil {
		attempts, incErr := s.Repo.IncrementAttempts(ctx, v.ID)
		if incErr != nil {
			return false, incErr
		}
		if attempts >= maxConfirmAttempts {
			_ = s.Repo.ExpireNow(ctx, v.ID)
			return false, ErrTooManyAttempts
		}
		return false, ErrCodeInvalid
	}

	if err := s.Repo.MarkConfirmed(ctx, v.ID); err != nil {
		return false, err
	}
	if err := s.Users.VerifyUser(ctx, userID); err != nil {
		return false, err
	}
	log.Printf("[verify][confirm] OK user_id=%d", userID)
	return true, nil
}
