package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/form"
)

const loginFallbackError = "Login failed. Please check your credentials."

const (
	fieldEmail = iota
	fieldPassword
)

type loginDoneMsg struct{ err error }

// LoginPage is the sign-in form. Navigation on success is done by the auth
// client, not by the page.
type LoginPage struct {
	ctx  context.Context
	auth Authenticator

	inputs    []textinput.Model
	focus     int
	fieldErrs form.Errors

	loading bool
	err     string
	spinner spinner.Model
}

// NewLoginPage builds an empty form with the email field focused.
func NewLoginPage(ctx context.Context, a Authenticator) LoginPage {
	email := textinput.New()
	email.Prompt = "Email    > "
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	pw := textinput.New()
	pw.Prompt = "Password > "
	pw.Placeholder = "at least 6 characters"
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.CharLimit = 128

	m := LoginPage{
		ctx:     ctx,
		auth:    a,
		inputs:  []textinput.Model{email, pw},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.inputs[fieldEmail].Focus()
	return m
}

// Form returns the current input values.
func (m LoginPage) Form() form.Login {
	return form.Login{
		Email:    strings.TrimSpace(m.inputs[fieldEmail].Value()),
		Password: m.inputs[fieldPassword].Value(),
	}
}

// Loading reports whether a sign-in request is in flight.
func (m LoginPage) Loading() bool { return m.loading }

// Error is the message shown after a failed sign-in.
func (m LoginPage) Error() string { return m.err }

func (m LoginPage) Init() tea.Cmd { return textinput.Blink }

func (m LoginPage) Update(msg tea.Msg) (LoginPage, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = api.MessageOf(msg.err)
			if m.err == "" {
				m.err = loginFallbackError
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m.focusField((m.focus + 1) % len(m.inputs)), nil
		case "shift+tab", "up":
			return m.focusField((m.focus + len(m.inputs) - 1) % len(m.inputs)), nil
		case "enter":
			if m.focus == fieldEmail {
				return m.focusField(fieldPassword), nil
			}
			return m.submit()
		case "ctrl+s":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m LoginPage) focusField(i int) LoginPage {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
	return m
}

// submit does nothing for an invalid form. A second submit while one is in
// flight is not blocked.
func (m LoginPage) submit() (LoginPage, tea.Cmd) {
	f := m.Form()
	m.fieldErrs = form.Validate(f)
	if m.fieldErrs != nil {
		return m, nil
	}
	m.loading = true
	m.err = ""

	ctx, a, creds := m.ctx, m.auth, f.Credentials()
	login := func() tea.Msg {
		_, err := a.Login(ctx, creds)
		return loginDoneMsg{err: err}
	}
	return m, tea.Batch(login, m.spinner.Tick)
}

func (m LoginPage) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in") + "\n\n")

	names := []string{"Email", "Password"}
	for i, in := range m.inputs {
		b.WriteString(in.View() + "\n")
		if e, ok := m.fieldErrs[names[i]]; ok {
			b.WriteString("  " + errorStyle.Render(e) + "\n")
		}
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " signing in...\n")
	case m.err != "":
		b.WriteString(errorStyle.Render("✖ "+m.err) + "\n")
	}
	b.WriteString(helpStyle.Render("tab next field • enter submit • ctrl+c quit"))
	return b.String()
}
