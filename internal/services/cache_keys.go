package services

import (
	"fmt"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
)

// Cache keys are deterministic functions of the logical query: identical
// requests always hit the same entry. Every segment ends in ':' so substring
// invalidation cannot confuse user=1 with user=12.

func taskKey(id int64) string {
	return fmt.Sprintf("tasks:id=%d:", id)
}

func taskListKey(f models.TaskFilter) string {
	category, status := "", ""
	if f.Category != nil {
		category = *f.Category
	}
	if f.Status != nil {
		status = string(*f.Status)
	}
	return fmt.Sprintf("tasks:list:category=%s:status=%s:hidden=%t:page=%d:limit=%d:",
		category, status, f.IncludeHidden, f.Page, f.Limit)
}

func submissionListKey(f models.SubmissionFilter) string {
	scope := "all"
	switch {
	case f.UserID != nil:
		scope = fmt.Sprintf("user=%d", *f.UserID)
	case f.UserEmail != nil:
		scope = fmt.Sprintf("email=%s", *f.UserEmail)
	}
	taskID := int64(0)
	if f.TaskID != nil {
		taskID = *f.TaskID
	}
	status := ""
	if f.Status != nil {
		status = string(*f.Status)
	}
	return fmt.Sprintf("submissions:%s:task=%d:status=%s:archived=%t:page=%d:limit=%d:",
		scope, taskID, status, f.IncludeArchived, f.Page, f.Limit)
}

func leaderboardKey(page, limit int) string {
	return fmt.Sprintf("leaderboard:page=%d:limit=%d:", page, limit)
}
