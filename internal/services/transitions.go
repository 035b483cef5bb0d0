package services

import "github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"

// Allowed submission status transitions. Terminal states have no exits;
// the points side effect of approve happens exactly once because a second
// attempt finds no allowed transition.
var SubmissionTransitions = map[models.SubmissionStatus]map[models.SubmissionStatus]bool{
	models.SubmissionPending:  {models.SubmissionApproved: true, models.SubmissionRejected: true},
	models.SubmissionApproved: {},
	models.SubmissionRejected: {},
}

func canTransition(current, to models.SubmissionStatus) bool {
	nexts, ok := SubmissionTransitions[current]
	if !ok {
		return false
	}
	return nexts[to]
}
