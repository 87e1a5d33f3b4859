package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/auth"
)

// Deps is what the TUI is built from. Router must be the navigator the auth
// client was created with.
type Deps struct {
	Auth     Authenticator
	Todos    TodoService
	Router   *Router
	PageSize int
	Log      *zap.Logger
}

// App is the root model: it owns the two pages and switches between them
// when the auth client navigates.
type App struct {
	ctx  context.Context
	deps Deps

	route     auth.Route
	login     LoginPage
	dashboard DashboardPage
	width     int
	height    int
}

// NewApp starts on the dashboard when a user was restored from storage or a
// token is available (TADA_TOKEN), otherwise on the login page.
func NewApp(ctx context.Context, deps Deps) App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	a := App{ctx: ctx, deps: deps, route: auth.RouteLogin}
	if deps.Auth.CurrentUser().Get() != nil || deps.Auth.LoggedIn() {
		a.route = auth.RouteDashboard
	}
	return a
}

// Route is the page being shown.
func (a App) Route() auth.Route { return a.route }

func (a App) Init() tea.Cmd {
	return tea.Batch(a.deps.Router.wait(), func() tea.Msg { return startMsg{} })
}

// enter builds a fresh page for route. Pages never outlive a visit.
func (a App) enter(route auth.Route) (App, tea.Cmd) {
	if a.route == auth.RouteDashboard {
		a.dashboard.Close()
	}
	a.route = route
	a.deps.Log.Debug("navigate", zap.String("route", string(route)))

	var cmd tea.Cmd
	switch route {
	case auth.RouteDashboard:
		a.dashboard = NewDashboardPage(a.ctx, a.deps.Todos, a.deps.Auth, a.deps.PageSize, a.deps.Log)
		a.dashboard, cmd = a.dashboard.Start()
	default:
		a.route = auth.RouteLogin
		a.login = NewLoginPage(a.ctx, a.deps.Auth)
		cmd = a.login.Init()
	}
	if a.width > 0 {
		var sizeCmd tea.Cmd
		a, sizeCmd = a.forward(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		cmd = tea.Batch(cmd, sizeCmd)
	}
	return a, cmd
}

// Start enters the initial page.
func (a App) Start() (App, tea.Cmd) {
	return a.enter(a.route)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		return a.Start()

	case routeMsg:
		var cmd tea.Cmd
		a, cmd = a.enter(auth.Route(msg))
		return a, tea.Batch(a.deps.Router.wait(), cmd)

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.dashboard.Close()
			return a, tea.Quit
		case "q", "esc":
			if a.route != auth.RouteDashboard || a.dashboard.Capturing() {
				break
			}
			if msg.String() == "esc" && a.dashboard.Filtered() {
				break
			}
			a.dashboard.Close()
			return a, tea.Quit
		}
	}
	return a.forward(msg)
}

func (a App) forward(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.route {
	case auth.RouteDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	default:
		a.login, cmd = a.login.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.route == auth.RouteDashboard {
		return panelString(a.dashboard.View())
	}
	return panelString(a.login.View())
}

type startMsg struct{}

// Run shows the TUI until the user quits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewApp(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
