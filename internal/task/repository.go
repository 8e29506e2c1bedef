package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-tasks-api/internal/database"
)

var ErrNotFound = errors.New("task not found")

// Store is the task persistence the service depends on. Every method that
// addresses a single task is scoped to its owner.
type Store interface {
	List(ctx context.Context, f Filter, offset, limit int) ([]*Task, error)
	Count(ctx context.Context, f Filter) (int, error)
	GetByID(ctx context.Context, owner, id uuid.UUID) (*Task, error)
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, owner, id uuid.UUID, ch Changes) (*Task, error)
	Toggle(ctx context.Context, owner, id uuid.UUID, at time.Time) (*Task, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

// Repository handles task data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of the owner's tasks, newest first.
func (r *Repository) List(ctx context.Context, f Filter, offset, limit int) ([]*Task, error) {
	var rows []database.Task
	err := applyFilter(r.db.NewSelect().Model(&rows), f).
		OrderExpr("t.created_at DESC, t.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, mapDBTaskToModel(&rows[i]))
	}
	return tasks, nil
}

// Count returns how many of the owner's tasks match f.
func (r *Repository) Count(ctx context.Context, f Filter) (int, error) {
	n, err := applyFilter(r.db.NewSelect().Model((*database.Task)(nil)), f).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

// GetByID retrieves a task by ID if it belongs to owner
func (r *Repository) GetByID(ctx context.Context, owner, id uuid.UUID) (*Task, error) {
	return getByID(ctx, r.db, owner, id)
}

func getByID(ctx context.Context, db bun.IDB, owner, id uuid.UUID) (*Task, error) {
	row := new(database.Task)
	err := db.NewSelect().
		Model(row).
		Where("t.id = ?", id).
		Where("t.user_id = ?", owner).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return mapDBTaskToModel(row), nil
}

// Create inserts a new task. ID, owner and timestamps must already be set.
func (r *Repository) Create(ctx context.Context, t *Task) error {
	_, err := r.db.NewInsert().
		Model(mapModelToDBTask(t)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Update sets only the columns present in ch, plus updated_at, and returns
// the stored row. A task owned by someone else is reported as ErrNotFound.
func (r *Repository) Update(ctx context.Context, owner, id uuid.UUID, ch Changes) (*Task, error) {
	return r.updateRow(ctx, owner, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		if ch.Title != nil {
			q = q.Set("title = ?", *ch.Title)
		}
		if ch.Description != nil {
			q = q.Set("description = ?", emptyToNil(ch.Description))
		}
		if ch.Status != nil {
			q = q.Set("status = ?", string(*ch.Status))
		}
		return q.Set("updated_at = ?", ch.UpdatedAt)
	})
}

// Toggle advances the stored status one step in the cycle within the UPDATE
// itself.
func (r *Repository) Toggle(ctx context.Context, owner, id uuid.UUID, at time.Time) (*Task, error) {
	return r.updateRow(ctx, owner, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("status = CASE status WHEN ? THEN ? WHEN ? THEN ? ELSE ? END",
				string(StatusPending), string(StatusPending.Next()),
				string(StatusInProgress), string(StatusInProgress.Next()),
				string(StatusCompleted.Next())).
			Set("updated_at = ?", at)
	})
}

func (r *Repository) updateRow(ctx context.Context, owner, id uuid.UUID, set func(*bun.UpdateQuery) *bun.UpdateQuery) (*Task, error) {
	var updated *Task
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := set(tx.NewUpdate().Model((*database.Task)(nil))).
			Where("id = ?", id).
			Where("user_id = ?", owner).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if err := expectOneRow(res); err != nil {
			return err
		}

		updated, err = getByID(ctx, tx, owner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the task if it belongs to owner
func (r *Repository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*database.Task)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", owner).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectOneRow(res)
}

func applyFilter(q *bun.SelectQuery, f Filter) *bun.SelectQuery {
	q = q.Where("t.user_id = ?", f.Owner)
	if f.Status != "" {
		q = q.Where("t.status = ?", string(f.Status))
	}
	if f.Search != "" {
		q = q.Where("t.title LIKE ? ESCAPE '!'", "%"+escapeLike(f.Search)+"%")
	}
	return q
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes s match literally inside a LIKE pattern using '!' as the
// escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// mapDBTaskToModel converts database model to domain model
func mapDBTaskToModel(row *database.Task) *Task {
	return &Task{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		Status:      Status(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func mapModelToDBTask(t *Task) *database.Task {
	return &database.Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
