package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
)

// Generator renders admin exports; an interface so handlers can be tested
// against a mock.
type Generator interface {
	GenerateLeaderboard(rows []models.LeaderboardRow, generatedAt time.Time) (string, error)
	GenerateSubmissionLog(userEmail string, subs []models.Submission, generatedAt time.Time) (string, error)
}

type ReportGenerator struct {
	RootDir string // storage root, e.g. "./files"
}

func NewReportGenerator(rootDir string) *ReportGenerator {
	return &ReportGenerator{RootDir: filepath.Clean(rootDir)}
}

func (g *ReportGenerator) GenerateLeaderboard(rows []models.LeaderboardRow, generatedAt time.Time) (string, error) {
	absPath, err := g.ensureTarget(fmt.Sprintf("leaderboard_%s.pdf", generatedAt.Format("20060102_150405")))
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sportpass Leaderboard", false)
	pdf.SetAuthor("Sportpass", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "LEADERBOARD", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "as of "+generatedAt.Format("02.01.2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(20, 8, "Rank", "B", 0, "L", false, 0, "")
	pdf.CellFormat(110, 8, "Name", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Points", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", row.Rank), "", 0, "L", false, 0, "")
		pdf.CellFormat(110, 7, row.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", row.Points), "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write leaderboard pdf: %w", err)
	}
	return absPath, nil
}

func (g *ReportGenerator) GenerateSubmissionLog(userEmail string, subs []models.Submission, generatedAt time.Time) (string, error) {
	absPath, err := g.ensureTarget(fmt.Sprintf("submissions_%s.pdf", generatedAt.Format("20060102_150405")))
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sportpass Submission Log", false)
	pdf.SetAuthor("Sportpass", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "SUBMISSIONS", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, userEmail, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(20, 8, "ID", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Task", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Status", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Points", "B", 0, "R", false, 0, "")
	pdf.CellFormat(50, 8, "Date", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, s := range subs {
		pts := "-"
		if s.Points != nil {
			pts = fmt.Sprintf("%d", *s.Points)
		}
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", s.ID), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", s.TaskID), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, string(s.Status), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, pts, "", 0, "R", false, 0, "")
		pdf.CellFormat(50, 7, s.CreatedAt.Format("02.01.2006"), "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write submission pdf: %w", err)
	}
	return absPath, nil
}

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	dir := filepath.Join(g.RootDir, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	return filepath.Join(dir, filepath.Base(filename)), nil
}
