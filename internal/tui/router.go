package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/auth"
)

// routeMsg tells the app to show another page.
type routeMsg auth.Route

// Router turns auth.Navigator calls, which may come from any goroutine,
// into Bubble Tea messages.
type Router struct {
	ch chan auth.Route
}

// NewRouter returns a router ready to hand to auth.WithNavigator.
func NewRouter() *Router {
	return &Router{ch: make(chan auth.Route, 4)}
}

// Navigate queues a page switch. If the queue is full the oldest request is
// dropped; only the latest destination matters.
func (r *Router) Navigate(to auth.Route) {
	for {
		select {
		case r.ch <- to:
			return
		default:
		}
		select {
		case <-r.ch:
		default:
		}
	}
}

func (r *Router) wait() tea.Cmd {
	return func() tea.Msg {
		return routeMsg(<-r.ch)
	}
}
