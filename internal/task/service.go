package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/redmonkez12/go-tasks-api/internal/logging"
)

var ErrInvalidStatus = errors.New("invalid status")

// Service implements task operations on behalf of an authenticated owner.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns one page of the owner's tasks and the pagination summary.
// The page and the total are fetched concurrently.
func (s *Service) List(ctx context.Context, owner uuid.UUID, params ListParams) (*Page, error) {
	filter, page, limit := params.resolve(owner)

	var (
		tasks = []*Task{}
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	if offset, ok := pageOffset(page, limit); ok {
		g.Go(func() error {
			var err error
			tasks, err = s.store.List(gctx, filter, offset, limit)
			return err
		})
	}
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Page{
		Tasks: tasks,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages(total, limit),
		},
	}, nil
}

func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*Task, error) {
	return s.store.GetByID(ctx, owner, id)
}

// Create stores a new pending task owned by owner.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, in CreateInput) (*Task, error) {
	now := s.now().UTC()
	t := &Task{
		ID:          uuid.New(),
		UserID:      owner,
		Title:       in.Title,
		Description: emptyToNil(in.Description),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	logging.GetLoggerFromContext(ctx).Info("task created", "task_id", t.ID)
	return t, nil
}

// Update writes only the provided fields. A foreign or missing task is
// reported as ErrNotFound ahead of ErrInvalidStatus.
func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, in UpdateInput) (*Task, error) {
	if in.Status != nil && !in.Status.Valid() {
		if _, err := s.store.GetByID(ctx, owner, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidStatus
	}

	return s.store.Update(ctx, owner, id, Changes{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		UpdatedAt:   s.now().UTC(),
	})
}

func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.store.Delete(ctx, owner, id); err != nil {
		return err
	}
	logging.GetLoggerFromContext(ctx).Info("task deleted", "task_id", id)
	return nil
}

// Toggle advances the task to the next status in the cycle.
func (s *Service) Toggle(ctx context.Context, owner, id uuid.UUID) (*Task, error) {
	return s.store.Toggle(ctx, owner, id, s.now().UTC())
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
