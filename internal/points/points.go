// internal/points/points.go
package points

import (
	"fmt"
	"math"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
)

// Compute maps a task definition plus a submission payload to the awarded
// point value. It is pure: both the submission-time preview and the
// authoritative approval-time computation go through this one function.
func Compute(task *models.Task, details models.SubmissionDetails) (int, error) {
	switch r := task.Reward.(type) {
	case models.StaticReward:
		return r.Points, nil
	case models.DynamicReward:
		if details.Quantity <= 0 {
			return 0, fmt.Errorf("dynamic task %d requires a positive quantity, got %v", task.ID, details.Quantity)
		}
		return int(math.Round(details.Quantity * r.PointsPerUnit)), nil
	case models.CollectibleReward:
		return r.Points, nil
	default:
		return 0, fmt.Errorf("task %d has no reward attached", task.ID)
	}
}
