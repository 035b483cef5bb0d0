package services

import (
	"context"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/pdf"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/repositories"
)

// ReportService produces admin PDF exports. Reports always read the
// authoritative store, never the cache.
type ReportService interface {
	LeaderboardPDF(ctx context.Context, limit int) (string, error)
	UserSubmissionsPDF(ctx context.Context, userEmail string) (string, error)
}

type reportService struct {
	users       repositories.UserRepository
	submissions repositories.SubmissionRepository
	gen         pdf.Generator
	timeout     time.Duration
}

func NewReportService(users repositories.UserRepository, submissions repositories.SubmissionRepository, gen pdf.Generator, timeout time.Duration) ReportService {
	return &reportService{users: users, submissions: submissions, gen: gen, timeout: timeout}
}

func (s *reportService) LeaderboardPDF(ctx context.Context, limit int) (string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rows, err := s.users.Leaderboard(ctx, 0, limit)
	if err != nil {
		return "", upstream(err)
	}
	return s.gen.GenerateLeaderboard(rows, time.Now())
}

func (s *reportService) UserSubmissionsPDF(ctx context.Context, userEmail string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	subs, err := s.submissions.FindAll(ctx, models.SubmissionFilter{
		UserEmail:       &userEmail,
		IncludeArchived: true,
		Page:            0,
		Limit:           500,
	})
	if err != nil {
		return "", upstream(err)
	}
	return s.gen.GenerateSubmissionLog(userEmail, subs, time.Now())
}
