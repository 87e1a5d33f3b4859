package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todos"
)

var (
	t1 = model.Todo{ID: 1, Title: "one", Status: model.StatusPending}
	t2 = model.Todo{ID: 2, Title: "two", Status: model.StatusCompleted}
	t3 = model.Todo{ID: 3, Title: "three", Status: model.StatusInProgress}
)

// loaded returns a dashboard that has already shown ft's first page.
func loaded(t *testing.T, ft *fakeTodos, fa *fakeAuth) DashboardPage {
	t.Helper()
	m := NewDashboardPage(context.Background(), ft, fa, 10, nil)
	t.Cleanup(m.Close)
	m, cmd := m.Start()
	msg, ok := find[todosLoadedMsg](drain(cmd))
	require.True(t, ok)
	m, _ = m.Update(msg)
	return m
}

func ids(ts []model.Todo) []uint {
	out := make([]uint, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestDashboard_InitialLoad(t *testing.T) {
	ft := newFakeTodos(t1, t2)
	m := NewDashboardPage(context.Background(), ft, newFakeAuth(nil), 10, nil)
	defer m.Close()

	m, cmd := m.Start()
	assert.True(t, m.Loading())

	msg, ok := find[todosLoadedMsg](drain(cmd))
	require.True(t, ok)
	m, _ = m.Update(msg)

	assert.False(t, m.Loading())
	assert.Equal(t, []model.Todo{t1, t2}, m.Todos())
	require.Len(t, ft.queries, 1)
	assert.Equal(t, todos.ListQuery{Page: 1, PageSize: 10}, ft.queries[0])
}

func TestDashboard_LoadFailureKeepsList(t *testing.T) {
	ft := newFakeTodos(t1)
	m := loaded(t, ft, newFakeAuth(nil))

	ft.listErr = errBoom
	m, cmd := m.Update(keyPress("r"))
	assert.True(t, m.Loading())
	msg, ok := find[todosLoadedMsg](drain(cmd))
	require.True(t, ok)

	m, _ = m.Update(msg)
	assert.False(t, m.Loading())
	assert.Equal(t, []uint{1}, ids(m.Todos()))
}

func TestDashboard_AddTodo(t *testing.T) {
	ft := newFakeTodos(t1, t2)
	m := loaded(t, ft, newFakeAuth(nil))

	m, _ = m.Update(keyPress("a"))
	require.True(t, m.AddFormVisible())
	assert.True(t, m.Capturing())

	// too short: nothing is sent
	m.inputs[fieldTitle].SetValue("ab")
	m, cmd := m.Update(keyPress("enter"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.addErrs, "Title")
	assert.Empty(t, ft.creates)

	m.inputs[fieldTitle].SetValue("Buy milk")
	m.inputs[fieldDueDate].SetValue("2026-11-02")
	m, cmd = m.Update(keyPress("enter"))
	created, ok := find[todoCreatedMsg](drain(cmd))
	require.True(t, ok)
	require.Len(t, ft.creates, 1)
	assert.Equal(t, "Buy milk", *ft.creates[0].Title)
	require.NotNil(t, ft.creates[0].DueDate)

	m, _ = m.Update(created)
	assert.Equal(t, []uint{100, 1, 2}, ids(m.Todos()))
	assert.False(t, m.AddFormVisible())
	assert.Equal(t, "", m.AddForm().Title)
	assert.Equal(t, "", m.AddForm().DueDate)
}

func TestDashboard_AddFailureKeepsForm(t *testing.T) {
	ft := newFakeTodos(t1)
	ft.createErr = errBoom
	m := loaded(t, ft, newFakeAuth(nil))

	m, _ = m.Update(keyPress("a"))
	m.inputs[fieldTitle].SetValue("Buy milk")
	m, cmd := m.Update(keyPress("enter"))
	created, ok := find[todoCreatedMsg](drain(cmd))
	require.True(t, ok)

	m, _ = m.Update(created)
	assert.Equal(t, []uint{1}, ids(m.Todos()))
	assert.True(t, m.AddFormVisible())
	assert.Equal(t, "Buy milk", m.AddForm().Title)
}

func TestDashboard_AddCancel(t *testing.T) {
	m := loaded(t, newFakeTodos(), newFakeAuth(nil))
	m, _ = m.Update(keyPress("a"))
	m.inputs[fieldTitle].SetValue("half typed")
	m, _ = m.Update(keyPress("esc"))
	assert.False(t, m.AddFormVisible())
	assert.Empty(t, m.AddForm().Title)
}

func TestDashboard_ToggleStatus(t *testing.T) {
	tests := []struct {
		name string
		todo model.Todo
		want model.Status
	}{
		{"completed goes back to pending", t2, model.StatusPending},
		{"pending completes", t1, model.StatusCompleted},
		{"in progress completes", t3, model.StatusCompleted},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ft := newFakeTodos(t1, t2, t3)
			m := loaded(t, ft, newFakeAuth(nil))

			updated, ok := find[todoUpdatedMsg](drain(m.Toggle(tc.todo)))
			require.True(t, ok)
			require.Contains(t, ft.updates, tc.todo.ID)
			assert.Equal(t, model.StatusPatch(tc.want), ft.updates[tc.todo.ID])

			m, _ = m.Update(updated)
			assert.Equal(t, []uint{1, 2, 3}, ids(m.Todos()))
			for _, got := range m.Todos() {
				if got.ID == tc.todo.ID {
					assert.Equal(t, tc.want, got.Status)
					assert.Equal(t, "from server", got.Title, "replaced by the server's copy")
				}
			}
		})
	}
}

func TestDashboard_ToggleSelectedWithSpace(t *testing.T) {
	ft := newFakeTodos(t1, t2)
	m := loaded(t, ft, newFakeAuth(nil))

	_, cmd := m.Update(keyPress(" "))
	_, ok := find[todoUpdatedMsg](drain(cmd))
	require.True(t, ok)
	assert.Equal(t, model.StatusPatch(model.StatusCompleted), ft.updates[1])
}

func TestDashboard_ToggleFailureLeavesItem(t *testing.T) {
	ft := newFakeTodos(t1)
	ft.updateErr = errBoom
	m := loaded(t, ft, newFakeAuth(nil))

	updated, ok := find[todoUpdatedMsg](drain(m.Toggle(t1)))
	require.True(t, ok)
	m, _ = m.Update(updated)
	assert.Equal(t, []model.Todo{t1}, m.Todos())
}

func TestDashboard_DeleteNeedsConfirmation(t *testing.T) {
	ft := newFakeTodos(t1, t2, t3)
	m := loaded(t, ft, newFakeAuth(nil))

	m, _ = m.Update(keyPress("d"))
	assert.True(t, m.Capturing())
	m, cmd := m.Update(keyPress("n"))
	assert.Nil(t, cmd)
	assert.False(t, m.Capturing())
	assert.Empty(t, ft.deletes)

	m, _ = m.Update(keyPress("d"))
	m, cmd = m.Update(keyPress("y"))
	deleted, ok := find[todoDeletedMsg](drain(cmd))
	require.True(t, ok)
	assert.Equal(t, []uint{1}, ft.deletes, "the selected (first) todo")

	m, _ = m.Update(deleted)
	assert.Equal(t, []uint{2, 3}, ids(m.Todos()))
}

func TestDashboard_DeleteRemovesOnlyThatID(t *testing.T) {
	ft := newFakeTodos(t1, t2, t3)
	m := loaded(t, ft, newFakeAuth(nil))

	m, _ = m.Update(todoDeletedMsg{id: 2})
	assert.Equal(t, []model.Todo{t1, t3}, m.Todos())

	m, _ = m.Update(todoDeletedMsg{id: 3, err: errBoom})
	assert.Equal(t, []model.Todo{t1, t3}, m.Todos(), "failed delete changes nothing")
}

func TestDashboard_Logout(t *testing.T) {
	fa := newFakeAuth(&model.User{ID: 1, Name: "Ada"})
	m := loaded(t, newFakeTodos(t1), fa)

	m, _ = m.Update(keyPress("L"))
	assert.Equal(t, 1, fa.logouts)
	assert.Nil(t, fa.CurrentUser().Get())
}

func TestDashboard_ReadsCurrentUser(t *testing.T) {
	fa := newFakeAuth(&model.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	m := loaded(t, newFakeTodos(), fa)
	require.NotNil(t, m.User())
	assert.Contains(t, m.View(), "Ada")

	fa.users.Set(&model.User{ID: 1, Name: "Ada L.", Email: "ada@example.com"})
	msg, ok := find[userMsg](drain(m.watchUser()))
	require.True(t, ok)
	m, _ = m.Update(msg)
	assert.Equal(t, "Ada L.", m.User().Name)
}
