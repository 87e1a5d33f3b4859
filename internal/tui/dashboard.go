package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/form"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todos"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
)

type (
	todosLoadedMsg struct {
		page *model.TodoPage
		err  error
	}
	todoCreatedMsg struct {
		todo *model.Todo
		err  error
	}
	todoUpdatedMsg struct {
		id   uint
		todo *model.Todo
		err  error
	}
	todoDeletedMsg struct {
		id  uint
		err error
	}
	userMsg struct {
		user *model.User
		ok   bool
	}
)

var (
	addBind     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind  = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	reloadBind  = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	logoutBind  = key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout"))
	dashboardKB = []key.Binding{addBind, toggleBind, deleteBind, reloadBind, logoutBind}
)

// DashboardPage shows the first page of todos and lets the user add, toggle
// and delete them. Local state only changes after the server confirms.
type DashboardPage struct {
	ctx      context.Context
	todos    TodoService
	auth     Authenticator
	pageSize int
	log      *zap.Logger

	items   []model.Todo
	list    list.Model
	loading bool
	spinner spinner.Model

	showAdd bool
	inputs  []textinput.Model
	focus   int
	addErrs form.Errors

	confirming bool
	confirmID  uint

	user   *model.User
	userCh <-chan *model.User
	unsub  func()
}

// NewDashboardPage subscribes to the current-user stream. Call Close when
// the page goes away.
func NewDashboardPage(ctx context.Context, ts TodoService, a Authenticator, pageSize int, log *zap.Logger) DashboardPage {
	if pageSize <= 0 {
		pageSize = todos.DefaultPageSize
	}
	if log == nil {
		log = zap.NewNop()
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = "Todos"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = func() []key.Binding { return dashboardKB }
	l.AdditionalFullHelpKeys = func() []key.Binding { return dashboardKB }
	// d and space are ours
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown", "f")
	l.KeyMap.Quit.SetEnabled(false)

	title := textinput.New()
	title.Prompt = "Title       > "
	title.Placeholder = "at least 3 characters"
	title.CharLimit = 200
	desc := textinput.New()
	desc.Prompt = "Description > "
	desc.Placeholder = "optional"
	desc.CharLimit = 1000
	due := textinput.New()
	due.Prompt = "Due date    > "
	due.Placeholder = "YYYY-MM-DD, optional"
	due.CharLimit = len(form.DateLayout)

	ch, unsub := a.CurrentUser().Subscribe()
	return DashboardPage{
		ctx:      ctx,
		todos:    ts,
		auth:     a,
		pageSize: pageSize,
		log:      log,
		list:     l,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		inputs:   []textinput.Model{title, desc, due},
		user:     a.CurrentUser().Get(),
		userCh:   ch,
		unsub:    unsub,
	}
}

// Close drops the current-user subscription.
func (m DashboardPage) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// Todos returns the displayed todos in order.
func (m DashboardPage) Todos() []model.Todo { return m.items }

// Loading reports whether the list is being fetched.
func (m DashboardPage) Loading() bool { return m.loading }

// AddFormVisible reports whether the add form is open.
func (m DashboardPage) AddFormVisible() bool { return m.showAdd }

// AddForm returns the add form's current values.
func (m DashboardPage) AddForm() form.Todo {
	return form.Todo{
		Title:       m.inputs[fieldTitle].Value(),
		Description: strings.TrimSpace(m.inputs[fieldDescription].Value()),
		DueDate:     strings.TrimSpace(m.inputs[fieldDueDate].Value()),
	}
}

// User is the signed-in user as last seen on the stream.
func (m DashboardPage) User() *model.User { return m.user }

// Capturing reports whether keystrokes are going into a text field.
func (m DashboardPage) Capturing() bool {
	return m.showAdd || m.confirming || m.list.SettingFilter()
}

// Filtered reports whether a list filter is applied; esc clears it.
func (m DashboardPage) Filtered() bool {
	return m.list.FilterState() == list.FilterApplied
}

// Start begins watching the current user and loads page 1.
func (m DashboardPage) Start() (DashboardPage, tea.Cmd) {
	m, load := m.Load()
	return m, tea.Batch(m.watchUser(), load)
}

// Load marks the page as loading and returns the fetch of page 1.
func (m DashboardPage) Load() (DashboardPage, tea.Cmd) {
	m.loading = true
	return m, tea.Batch(m.loadCmd(), m.spinner.Tick)
}

func (m DashboardPage) loadCmd() tea.Cmd {
	ctx, ts, q := m.ctx, m.todos, todos.ListQuery{Page: 1, PageSize: m.pageSize}
	return func() tea.Msg {
		page, err := ts.GetAll(ctx, q)
		return todosLoadedMsg{page: page, err: err}
	}
}

func (m DashboardPage) watchUser() tea.Cmd {
	ch := m.userCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		return userMsg{user: u, ok: ok}
	}
}

func (m DashboardPage) setItems(ts []model.Todo) (DashboardPage, tea.Cmd) {
	m.items = ts
	return m, m.list.SetItems(toItems(ts))
}

func (m DashboardPage) Update(msg tea.Msg) (DashboardPage, tea.Cmd) {
	switch msg := msg.(type) {
	case userMsg:
		if !msg.ok {
			return m, nil
		}
		m.user = msg.user
		return m, m.watchUser()

	case todosLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.log.Warn("load todos", zap.Error(msg.err))
			return m, nil
		}
		if msg.page == nil {
			return m, nil
		}
		return m.setItems(append([]model.Todo(nil), msg.page.Items...))

	case todoCreatedMsg:
		if msg.err != nil || msg.todo == nil {
			m.log.Warn("create todo", zap.Error(msg.err))
			return m, nil
		}
		items := append([]model.Todo{*msg.todo}, m.items...)
		m = m.resetAddForm()
		m.showAdd = false
		var cmd tea.Cmd
		m, cmd = m.setItems(items)
		m.list.Select(0)
		return m, cmd

	case todoUpdatedMsg:
		if msg.err != nil || msg.todo == nil {
			m.log.Warn("update todo", zap.Uint("id", msg.id), zap.Error(msg.err))
			return m, nil
		}
		items := make([]model.Todo, len(m.items))
		for i, t := range m.items {
			if t.ID == msg.id {
				t = *msg.todo
			}
			items[i] = t
		}
		return m.setItems(items)

	case todoDeletedMsg:
		if msg.err != nil {
			m.log.Warn("delete todo", zap.Uint("id", msg.id), zap.Error(msg.err))
			return m, nil
		}
		items := make([]model.Todo, 0, len(m.items))
		for _, t := range m.items {
			if t.ID != msg.id {
				items = append(items, t)
			}
		}
		return m.setItems(items)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		h := msg.Height - 6
		if m.showAdd {
			h -= 5
		}
		m.list.SetSize(msg.Width-4, max(h, 3))
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.confirming:
			return m.updateConfirm(msg)
		case m.showAdd:
			return m.updateAdd(msg)
		case m.list.SettingFilter():
			// fall through to the list
		default:
			switch msg.String() {
			case "a":
				m.showAdd = true
				m.addErrs = nil
				return m.focusField(fieldTitle), textinput.Blink
			case " ":
				return m.toggleSelected()
			case "d":
				if t, ok := m.selected(); ok {
					m.confirming = true
					m.confirmID = t.ID
				}
				return m, nil
			case "r":
				return m.Load()
			case "L":
				if err := m.auth.Logout(); err != nil {
					m.log.Error("logout", zap.Error(err))
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m DashboardPage) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

// Toggle asks the server to flip t between completed and pending.
func (m DashboardPage) Toggle(t model.Todo) tea.Cmd {
	ctx, ts, id, patch := m.ctx, m.todos, t.ID, model.StatusPatch(t.Status.Toggled())
	return func() tea.Msg {
		updated, err := ts.Update(ctx, id, patch)
		return todoUpdatedMsg{id: id, todo: updated, err: err}
	}
}

func (m DashboardPage) toggleSelected() (DashboardPage, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}
	return m, m.Toggle(t)
}

// Delete removes id on the server. Confirmation happens before this.
func (m DashboardPage) Delete(id uint) tea.Cmd {
	ctx, ts := m.ctx, m.todos
	return func() tea.Msg {
		return todoDeletedMsg{id: id, err: ts.Delete(ctx, id)}
	}
}

func (m DashboardPage) updateConfirm(msg tea.KeyMsg) (DashboardPage, tea.Cmd) {
	id := m.confirmID
	m.confirming = false
	m.confirmID = 0
	switch msg.String() {
	case "y", "Y":
		return m, m.Delete(id)
	}
	return m, nil
}

func (m DashboardPage) updateAdd(msg tea.KeyMsg) (DashboardPage, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.resetAddForm()
		m.showAdd = false
		return m, nil
	case "tab", "down":
		return m.focusField((m.focus + 1) % len(m.inputs)), nil
	case "shift+tab", "up":
		return m.focusField((m.focus + len(m.inputs) - 1) % len(m.inputs)), nil
	case "enter":
		return m.submitAdd()
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m DashboardPage) submitAdd() (DashboardPage, tea.Cmd) {
	f := m.AddForm()
	m.addErrs = form.Validate(f)
	if m.addErrs != nil {
		return m, nil
	}
	patch, err := f.Patch()
	if err != nil {
		m.addErrs = form.Errors{"DueDate": err.Error()}
		return m, nil
	}
	ctx, ts := m.ctx, m.todos
	return m, func() tea.Msg {
		created, err := ts.Create(ctx, patch)
		return todoCreatedMsg{todo: created, err: err}
	}
}

func (m DashboardPage) focusField(i int) DashboardPage {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
	return m
}

func (m DashboardPage) resetAddForm() DashboardPage {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldTitle
	m.addErrs = nil
	return m
}

func (m DashboardPage) header() string {
	var done, pending int
	for _, t := range m.items {
		if t.Done() {
			done++
		} else {
			pending++
		}
	}
	who := mutedStyle.Render("not signed in")
	if m.user != nil {
		who = accentStyle.Render(m.user.Name) + " " + mutedStyle.Render("<"+m.user.Email+">")
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d   %s",
		titleStyle.Render("Dashboard"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Shown"), len(m.items),
		who,
	)
}

func (m DashboardPage) View() string {
	var b strings.Builder
	b.WriteString(m.header() + "\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " loading todos...\n")
	} else {
		b.WriteString(m.list.View())
	}

	if m.confirming {
		b.WriteString("\n" + panelString(errorStyle.Render("Are you sure?")+" "+helpStyle.Render("y delete • any other key cancels")))
	}

	if m.showAdd {
		names := []string{"Title", "Description", "DueDate"}
		var in strings.Builder
		in.WriteString(titleStyle.Render("Add new todo") + "\n")
		for i, ti := range m.inputs {
			in.WriteString(ti.View())
			if e, ok := m.addErrs[names[i]]; ok {
				in.WriteString("  " + errorStyle.Render(e))
			}
			if i < len(m.inputs)-1 {
				in.WriteString("\n")
			}
		}
		in.WriteString("\n" + helpStyle.Render("tab next field • enter save • esc cancel"))
		b.WriteString("\n" + panelString(in.String()))
	}
	return b.String()
}
