package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/session"
	"github.com/Makepad-fr/tada/internal/todos"
)

// late receives results of commands drain gave up on, e.g. a router wait
// that only fires after a later Navigate.
var late = make(chan tea.Msg, 64)

// drain runs cmd and every batch inside it, collecting the messages that come
// back within a short window. Blocking commands are handed to late.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(200 * time.Millisecond):
		go func() { late <- <-done }()
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// find returns the first message of type T.
func find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// nextRoute returns the next navigation, whether a pending router wait or
// the router queue itself sees it first.
func nextRoute(t *testing.T, r *Router) routeMsg {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case m := <-late:
			if rm, ok := m.(routeMsg); ok {
				return rm
			}
		case to := <-r.ch:
			return routeMsg(to)
		case <-timeout:
			t.Fatal("no navigation")
			return ""
		}
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type fakeAuth struct {
	mu       sync.Mutex
	users    *session.Stream[*model.User]
	nav      auth.Navigator
	loginErr error
	logins   []model.Credentials
	logouts  int
	envToken bool
}

func newFakeAuth(u *model.User) *fakeAuth {
	return &fakeAuth{users: session.NewStream(u), nav: auth.NopNavigator{}}
}

func (f *fakeAuth) Login(_ context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	f.mu.Lock()
	f.logins = append(f.logins, creds)
	err := f.loginErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	u := model.User{ID: 1, Name: "Ada", Email: creds.Email}
	f.users.Set(&u)
	f.nav.Navigate(auth.RouteDashboard)
	return &model.AuthResponse{User: u}, nil
}

func (f *fakeAuth) Logout() error {
	f.mu.Lock()
	f.logouts++
	f.mu.Unlock()
	f.users.Set(nil)
	f.nav.Navigate(auth.RouteLogin)
	return nil
}

func (f *fakeAuth) CurrentUser() *session.Stream[*model.User] { return f.users }

func (f *fakeAuth) LoggedIn() bool { return f.envToken || f.users.Get() != nil }

type fakeTodos struct {
	mu        sync.Mutex
	page      *model.TodoPage
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	nextID    uint

	queries []todos.ListQuery
	creates []model.TodoPatch
	updates map[uint]model.TodoPatch
	deletes []uint
}

func newFakeTodos(items ...model.Todo) *fakeTodos {
	return &fakeTodos{
		page:    &model.TodoPage{Items: items, Meta: model.PageMeta{CurrentPage: 1, PageSize: 10, TotalItems: len(items), TotalPages: model.PageCount(len(items), 10)}},
		nextID:  100,
		updates: map[uint]model.TodoPatch{},
	}
}

func (f *fakeTodos) GetAll(_ context.Context, q todos.ListQuery) (*model.TodoPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.page, nil
}

func (f *fakeTodos) Create(_ context.Context, p model.TodoPatch) (*model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, p)
	if f.createErr != nil {
		return nil, f.createErr
	}
	t := model.Todo{ID: f.nextID, Title: *p.Title, Status: model.StatusPending}
	f.nextID++
	return &t, nil
}

func (f *fakeTodos) Update(_ context.Context, id uint, p model.TodoPatch) (*model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = p
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	t := model.Todo{ID: id, Title: "from server"}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return &t, nil
}

func (f *fakeTodos) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

var errBoom = errors.New("boom")
