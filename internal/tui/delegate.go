package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/form"
	"github.com/Makepad-fr/tada/internal/model"
)

// todoItem adapts model.Todo to list.Item.
type todoItem struct{ todo model.Todo }

func (i todoItem) Title() string       { return i.todo.Title }
func (i todoItem) Description() string { return i.todo.Description }
func (i todoItem) FilterValue() string { return i.todo.Title + " " + i.todo.Description }

func toItems(ts []model.Todo) []list.Item {
	out := make([]list.Item, 0, len(ts))
	for _, t := range ts {
		out = append(out, todoItem{todo: t})
	}
	return out
}

// itemDelegate renders one todo per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}
	t := it.todo

	box := mutedStyle.Render(boxUnchecked)
	text := t.Title
	switch t.Status {
	case model.StatusCompleted:
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	case model.StatusInProgress:
		box = inProgressStyle.Render(boxInProgress)
	}

	line := fmt.Sprintf("%s %s", box, text)
	if t.DueDate != nil {
		line += "  " + pendingStyle.Render("due "+t.DueDate.Format(form.DateLayout))
	}
	if t.Description != "" {
		line += "  " + mutedStyle.Render(t.Description)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprint(w, prefix+line)
}
