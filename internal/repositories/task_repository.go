package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter, now time.Time) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	SetHidden(ctx context.Context, id int64, hidden bool) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, description, category, difficulty, reward_mode,
       points, unit, points_per_unit, available_on, hidden, expires_at,
       max_submissions, created_at, updated_at`

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			title, description, category, difficulty, reward_mode,
			points, unit, points_per_unit, available_on, hidden,
			expires_at, max_submissions, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at`
	mode, pts, unit, perUnit, availableOn := rewardColumns(task.Reward)
	return r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Category, task.Difficulty, mode,
		pts, unit, perUnit, availableOn, task.Hidden,
		task.ExpiresAt, task.MaxSubmissions, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// FindAll applies the derived pending/completed filter in SQL so that it acts
// before pagination; a page boundary can never disagree with the total.
func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter, now time.Time) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if !filter.IncludeHidden {
		conditions = append(conditions, "hidden = FALSE")
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, *filter.Category)
		argID++
	}
	if filter.Status != nil {
		// completed = hidden OR expired; collectibles expire after their
		// availability day, others via expires_at.
		expired := fmt.Sprintf(`(
			(reward_mode = 'collectible' AND available_on < ($%d)::date)
			OR (reward_mode <> 'collectible' AND expires_at IS NOT NULL AND expires_at <= $%d)
		)`, argID, argID)
		args = append(args, now)
		argID++
		switch *filter.Status {
		case models.TaskCompleted:
			conditions = append(conditions, fmt.Sprintf("(hidden OR %s)", expired))
		default:
			conditions = append(conditions, fmt.Sprintf("(NOT hidden AND NOT %s)", expired))
		}
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC, id DESC"
	baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.Limit, filter.Page*filter.Limit)

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			title=$1, description=$2, category=$3, difficulty=$4, reward_mode=$5,
			points=$6, unit=$7, points_per_unit=$8, available_on=$9, hidden=$10,
			expires_at=$11, max_submissions=$12, updated_at=$13
		WHERE id=$14`
	mode, pts, unit, perUnit, availableOn := rewardColumns(task.Reward)
	_, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Category, task.Difficulty, mode,
		pts, unit, perUnit, availableOn, task.Hidden,
		task.ExpiresAt, task.MaxSubmissions, task.UpdatedAt, task.ID,
	)
	return err
}

// SetHidden soft-hides a task; tasks referenced by submissions are never deleted.
func (r *taskRepository) SetHidden(ctx context.Context, id int64, hidden bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET hidden=$1, updated_at=NOW() WHERE id=$2`, hidden, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t           models.Task
		mode        string
		pts         sql.NullInt64
		unit        sql.NullString
		perUnit     sql.NullFloat64
		availableOn sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Difficulty, &mode,
		&pts, &unit, &perUnit, &availableOn, &t.Hidden, &t.ExpiresAt,
		&t.MaxSubmissions, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	switch models.RewardMode(mode) {
	case models.RewardStatic:
		t.Reward = models.StaticReward{Points: int(pts.Int64)}
	case models.RewardDynamic:
		t.Reward = models.DynamicReward{
			Unit:          models.DynamicUnit(unit.String),
			PointsPerUnit: perUnit.Float64,
		}
	case models.RewardCollectible:
		t.Reward = models.CollectibleReward{
			Points:      int(pts.Int64),
			AvailableOn: availableOn.Time,
		}
	default:
		return nil, fmt.Errorf("task %d: unknown reward_mode %q", t.ID, mode)
	}
	return &t, nil
}

// rewardColumns splits the variant back into its storage columns. Columns of
// the inactive modes stay NULL, which is what keeps "exactly one mode" honest
// at the storage level too.
func rewardColumns(r models.Reward) (mode string, pts sql.NullInt64, unit sql.NullString, perUnit sql.NullFloat64, availableOn sql.NullTime) {
	switch v := r.(type) {
	case models.StaticReward:
		mode = string(models.RewardStatic)
		pts = sql.NullInt64{Int64: int64(v.Points), Valid: true}
	case models.DynamicReward:
		mode = string(models.RewardDynamic)
		unit = sql.NullString{String: string(v.Unit), Valid: true}
		perUnit = sql.NullFloat64{Float64: v.PointsPerUnit, Valid: true}
	case models.CollectibleReward:
		mode = string(models.RewardCollectible)
		pts = sql.NullInt64{Int64: int64(v.Points), Valid: true}
		availableOn = sql.NullTime{Time: v.AvailableOn, Valid: true}
	}
	return
}
