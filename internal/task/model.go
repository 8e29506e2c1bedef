package task

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the status that follows s in the toggle cycle
// pending -> in_progress -> completed -> pending. Unknown statuses reset to pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

type Task struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput is the body of a create request.
type CreateInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
}

func (in *CreateInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
}

// UpdateInput is the body of a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Status      *Status `json:"status"`
}

func (in *UpdateInput) Normalize() {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
}

// Changes is a partial write against a stored task. Nil fields keep their
// stored value and a non-nil empty Description clears it.
type Changes struct {
	Title       *string
	Description *string
	Status      *Status
	UpdatedAt   time.Time
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams are the raw list query parameters.
type ListParams struct {
	Page   string
	Limit  string
	Status string
	Search string
}

// Filter narrows a list query. Owner is always applied.
type Filter struct {
	Owner  uuid.UUID
	Status Status
	Search string
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type Page struct {
	Tasks      []*Task    `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

// resolve turns raw parameters into a filter plus page and limit.
func (p ListParams) resolve(owner uuid.UUID) (f Filter, page, limit int) {
	page = positiveOr(p.Page, DefaultPage)
	limit = positiveOr(p.Limit, DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}

	f = Filter{Owner: owner, Search: p.Search}
	if s := Status(p.Status); s.Valid() {
		f.Status = s
	}
	return f, page, limit
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// pageOffset returns the number of rows before page. It reports false when
// the offset does not fit in an int, which can only be past the last row.
func pageOffset(page, limit int) (int, bool) {
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
