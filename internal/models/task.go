// internal/models/task.go
package models

import (
	"encoding/json"
	"time"
)

// RewardMode discriminates how a task pays out points.
type RewardMode string

const (
	RewardStatic      RewardMode = "static"
	RewardDynamic     RewardMode = "dynamic"
	RewardCollectible RewardMode = "collectible"
)

// TaskStatus is derived from hidden/expired, never stored.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type DynamicUnit string

const (
	UnitMinutes  DynamicUnit = "minutes"
	UnitDistance DynamicUnit = "distance"
)

// Reward is the tagged variant behind a task's payout. Exactly one concrete
// type is attached to a task; call sites type-switch instead of probing fields.
type Reward interface {
	Mode() RewardMode
}

// StaticReward pays a fixed amount.
type StaticReward struct {
	Points int
}

// DynamicReward scales with the quantity the user reports.
type DynamicReward struct {
	Unit          DynamicUnit
	PointsPerUnit float64
}

// CollectibleReward pays a fixed amount, claimable once per user and only on
// AvailableOn's calendar day.
type CollectibleReward struct {
	Points      int
	AvailableOn time.Time
}

func (StaticReward) Mode() RewardMode      { return RewardStatic }
func (DynamicReward) Mode() RewardMode     { return RewardDynamic }
func (CollectibleReward) Mode() RewardMode { return RewardCollectible }

// AvailableAt reports whether now falls on the reward's calendar day.
func (r CollectibleReward) AvailableAt(now time.Time) bool {
	y1, m1, d1 := r.AvailableOn.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Task describes an activity a user can claim credit for.
type Task struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Difficulty     int        `json:"difficulty"` // 1..3
	Reward         Reward     `json:"-"`
	Hidden         bool       `json:"hidden"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	MaxSubmissions *int       `json:"max_submissions,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Expired reports whether the task no longer accepts submissions because of
// time. A collectible expires after its availability day; other tasks only
// when expires_at has passed.
func (t *Task) Expired(now time.Time) bool {
	switch r := t.Reward.(type) {
	case CollectibleReward:
		end := r.AvailableOn.AddDate(0, 0, 1)
		dayEnd := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
		return !now.Before(dayEnd)
	default:
		return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
	}
}

// Status derives pending/completed: pending = visible and not expired.
func (t *Task) Status(now time.Time) TaskStatus {
	if t.Hidden || t.Expired(now) {
		return TaskCompleted
	}
	return TaskPending
}

// taskJSON flattens the reward variant for the wire.
type taskJSON struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Difficulty     int        `json:"difficulty"`
	RewardMode     RewardMode `json:"reward_mode"`
	Points         int        `json:"points,omitempty"`
	Unit           string     `json:"unit,omitempty"`
	PointsPerUnit  float64    `json:"points_per_unit,omitempty"`
	AvailableOn    string     `json:"available_on,omitempty"` // YYYY-MM-DD
	Hidden         bool       `json:"hidden"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	MaxSubmissions *int       `json:"max_submissions,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Category:       t.Category,
		Difficulty:     t.Difficulty,
		Hidden:         t.Hidden,
		ExpiresAt:      t.ExpiresAt,
		MaxSubmissions: t.MaxSubmissions,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	switch r := t.Reward.(type) {
	case StaticReward:
		out.RewardMode = RewardStatic
		out.Points = r.Points
	case DynamicReward:
		out.RewardMode = RewardDynamic
		out.Unit = string(r.Unit)
		out.PointsPerUnit = r.PointsPerUnit
	case CollectibleReward:
		out.RewardMode = RewardCollectible
		out.Points = r.Points
		out.AvailableOn = r.AvailableOn.Format("2006-01-02")
	}
	return json.Marshal(out)
}

// TaskFilter defines the available parameters for listing tasks.
type TaskFilter struct {
	Category *string
	Status   *TaskStatus
	// Hidden tasks are excluded unless an admin asks for them explicitly.
	IncludeHidden bool
	Page          int
	Limit         int
}

// TaskPage is one page of the catalog listing.
type TaskPage struct {
	Items   []Task `json:"items"`
	HasMore bool   `json:"has_more"`
}
