package auth

// Route names a page the client can send the user to.
type Route string

const (
	RouteLogin     Route = "login"
	RouteDashboard Route = "dashboard"
)

// Navigator switches the visible page.
type Navigator interface {
	Navigate(Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }

// NopNavigator ignores navigation; used outside the TUI.
type NopNavigator struct{}

func (NopNavigator) Navigate(Route) {}
