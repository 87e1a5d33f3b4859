package model

import "time"

// Status is the lifecycle state of a todo.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the statuses the API accepts.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Toggled is the status a checkbox flip asks for: completed goes back to
// pending, everything else becomes completed. in_progress is never a target.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Todo mirrors the server's todo payload. The client never owns it; it is
// replaced wholesale by whatever the server returns.
type Todo struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Done is shorthand for Status == completed.
func (t Todo) Done() bool { return t.Status == StatusCompleted }

// TodoPatch is a partial create/update body. Nil fields are not sent.
type TodoPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(s Status) TodoPatch {
	return TodoPatch{Status: &s}
}

// PageMeta is the pagination block that accompanies a list of todos.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// Consistent checks total_pages == ceil(total_items / page_size).
func (m PageMeta) Consistent() bool {
	return m.TotalPages == PageCount(m.TotalItems, m.PageSize)
}

// PageCount returns ceil(total / size), or 0 for a non-positive size.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// TodoPage is one page of todos. On the wire the list sits under "data",
// inside an envelope whose payload is also "data"; here it is Items so the
// two levels read as env.Data.Items.
type TodoPage struct {
	Items []Todo   `json:"data"`
	Meta  PageMeta `json:"meta"`
}
