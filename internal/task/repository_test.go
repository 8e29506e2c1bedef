package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-tasks-api/internal/database/dbtest"
)

func newTask(owner uuid.UUID, title string, status Status, createdAt time.Time) *Task {
	return &Task{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     title,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRepository_CreateGetOwnerScoped(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	desc := "milk, eggs"
	task := newTask(alice, "Groceries", StatusPending, time.Now().UTC().Truncate(time.Microsecond))
	task.Description = &desc
	require.NoError(t, repo.Create(ctx, task))

	got, err := repo.GetByID(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, alice, got.UserID)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.True(t, task.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetByID(ctx, bob, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_UpdateAndDeleteAreOwnerScoped(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	task := newTask(alice, "Write report", StatusPending, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, task))

	_, err := repo.Update(ctx, bob, task.ID, Changes{Title: strPtr("Hijacked"), UpdatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Toggle(ctx, bob, task.ID, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, bob, task.ID), ErrNotFound)

	got, err := repo.GetByID(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, StatusPending, got.Status)

	done := StatusCompleted
	updated, err := repo.Update(ctx, alice, task.ID, Changes{
		Title:     strPtr("Write final report"),
		Status:    &done,
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Write final report", updated.Title)
	assert.Equal(t, StatusCompleted, updated.Status)

	got, err = repo.GetByID(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write final report", got.Title)
	assert.Equal(t, StatusCompleted, got.Status)

	require.NoError(t, repo.Delete(ctx, alice, task.ID))
	_, err = repo.GetByID(ctx, alice, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, alice, task.ID), ErrNotFound)
}

func TestRepository_UpdateWritesOnlyProvidedColumns(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	ctx := context.Background()
	owner := uuid.New()

	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	task := newTask(owner, "Keep title", StatusPending, created)
	task.Description = strPtr("keep description")
	require.NoError(t, repo.Create(ctx, task))

	at := created.Add(30 * time.Minute)
	done := StatusCompleted
	updated, err := repo.Update(ctx, owner, task.ID, Changes{Status: &done, UpdatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, "Keep title", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "keep description", *updated.Description)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.True(t, at.Equal(updated.UpdatedAt))
	assert.True(t, created.Equal(updated.CreatedAt))

	updated, err = repo.Update(ctx, owner, task.ID, Changes{Description: strPtr(""), UpdatedAt: at})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "Keep title", updated.Title)
}

func TestRepository_ToggleCyclesStoredStatus(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	ctx := context.Background()
	owner := uuid.New()

	task := newTask(owner, "Cycle", StatusPending, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, task))

	for _, want := range []Status{StatusInProgress, StatusCompleted, StatusPending} {
		toggled, err := repo.Toggle(ctx, owner, task.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, want, toggled.Status)
		assert.Equal(t, "Cycle", toggled.Title)
	}
}

func TestRepository_ListFiltersAndOrder(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	fixtures := []*Task{
		newTask(alice, "Buy milk", StatusPending, base),
		newTask(alice, "Buy bread", StatusCompleted, base.Add(time.Minute)),
		newTask(alice, "Call mom", StatusPending, base.Add(2*time.Minute)),
		newTask(alice, "100% done", StatusInProgress, base.Add(3*time.Minute)),
		newTask(bob, "Buy milk", StatusPending, base.Add(4*time.Minute)),
	}
	for _, f := range fixtures {
		require.NoError(t, repo.Create(ctx, f))
	}

	tasks, err := repo.List(ctx, Filter{Owner: alice}, 0, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	assert.Equal(t, "100% done", tasks[0].Title)
	assert.Equal(t, "Buy milk", tasks[3].Title)

	tasks, err = repo.List(ctx, Filter{Owner: alice, Search: "Buy"}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = repo.List(ctx, Filter{Owner: alice, Search: "Buy", Status: StatusPending}, 0, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, fixtures[0].ID, tasks[0].ID)

	// wildcard characters in the search term match literally
	tasks, err = repo.List(ctx, Filter{Owner: alice, Search: "%"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "100% done", tasks[0].Title)

	tasks, err = repo.List(ctx, Filter{Owner: alice, Search: "_"}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	n, err := repo.Count(ctx, Filter{Owner: alice})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = repo.Count(ctx, Filter{Owner: bob})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tasks, err = repo.List(ctx, Filter{Owner: alice}, 3, 2)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "50!% off!!", escapeLike("50% off!"))
	assert.Equal(t, "a!_b", escapeLike("a_b"))
	assert.Equal(t, "plain", escapeLike("plain"))
}
