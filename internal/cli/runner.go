package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/form"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/todos"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Options carries what main resolved: config, logger and I/O.
type Options struct {
	Config  *config.Config
	Log     *zap.Logger
	Printer *ui.Printer
	In      io.Reader
}

// session wires the clients for one command.
type session struct {
	opt   Options
	p     *ui.Printer
	in    *bufio.Reader
	auth  *auth.Client
	todos *todos.Client
}

func newSession(opt Options, nav auth.Navigator) *session {
	cfg := opt.Config
	transport := api.New(cfg.API.URL, api.WithTimeout(cfg.API.Timeout), api.WithLogger(opt.Log))
	ac := auth.New(transport, jsonstore.Open(cfg.SessionPath()),
		auth.WithNavigator(nav),
		auth.WithLogger(opt.Log),
		auth.WithEnvToken(cfg.Token),
	)
	return &session{
		opt:   opt,
		p:     opt.Printer,
		in:    bufio.NewReader(opt.In),
		auth:  ac,
		todos: todos.New(transport),
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	p := opt.Printer
	if len(args) == 0 {
		PrintHelp(p.Out)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(p.Out)
		return 0

	case "ui":
		router := tui.NewRouter()
		s := newSession(opt, router)
		if err := tui.Run(ctx, tui.Deps{
			Auth:     s.auth,
			Todos:    s.todos,
			Router:   router,
			PageSize: opt.Config.API.PageSize,
			Log:      opt.Log,
		}); err != nil {
			p.Fail("tui: " + err.Error())
			return 1
		}
		return 0

	case "ls":
		return newSession(opt, auth.NopNavigator{}).doList(ctx, a)

	case "show":
		id, code := parseID(p, "show", a)
		if code != 0 {
			return code
		}
		return newSession(opt, auth.NopNavigator{}).doShow(ctx, id)

	case "add":
		return newSession(opt, auth.NopNavigator{}).doAdd(ctx, a)

	case "done":
		id, code := parseID(p, "done", a)
		if code != 0 {
			return code
		}
		return newSession(opt, auth.NopNavigator{}).doToggle(ctx, id)

	case "rm":
		id, code := parseID(p, "rm", a)
		if code != 0 {
			return code
		}
		return newSession(opt, auth.NopNavigator{}).doRemove(ctx, id)

	case "auth":
		if len(a) == 0 {
			p.Fail("usage: tada auth <login|register|logout|status|whoami|refresh>")
			return 2
		}
		s := newSession(opt, auth.NopNavigator{})
		switch a[0] {
		case "login":
			return s.doAuthLogin(ctx, a[1:])
		case "register":
			return s.doAuthRegister(ctx, a[1:])
		case "logout":
			return s.doAuthLogout()
		case "status":
			return s.doAuthStatus()
		case "whoami":
			return s.doAuthWhoAmI(ctx, a[1:])
		case "refresh":
			return s.doAuthRefresh(ctx)
		default:
			p.Fail("usage: tada auth <login|register|logout|status|whoami|refresh>")
			return 2
		}
	}

	p.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(p.Err)
	PrintHelp(p.Err)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `tada - terminal client for the todo API

Usage:
  tada [-api URL] [-theme classic|neon|mono] <subcommand> [args]

Subcommands:
  ui                               Interactive login + dashboard
  ls [-page N] [-size N] [-status S]   List todos (S: pending, in_progress, completed)
  show <id>                        Show one todo
  add [-d text] [-due YYYY-MM-DD] <title...>   Add a todo
  done <id>                        Toggle completed/pending
  rm <id>                          Delete a todo
  auth login [email]               Sign in (password is read from stdin)
  auth register <name> <email>     Create an account and sign in
  auth logout                      Forget the local session
  auth status                      Show the local session
  auth whoami [-remote]            Show the signed-in user
  auth refresh                     Trade the refresh token for a new pair

Environment:
  TADA_API_URL, TADA_TOKEN, TADA_HOME_DIR, TADA_THEME, TADA_LOG_FILE

Examples:
  tada auth login ada@example.com
  tada add -due 2026-11-01 "Buy milk"
  tada ls -status pending
  tada done 12
`)
}

func parseID(p *ui.Printer, cmd string, a []string) (uint, int) {
	if len(a) != 1 {
		p.Fail("usage: tada " + cmd + " <id>")
		return 0, 2
	}
	n, err := strconv.ParseUint(a[0], 10, 32)
	if err != nil || n == 0 {
		p.Fail(cmd + ": not a todo id: " + a[0])
		return 0, 2
	}
	return uint(n), 0
}

func newFlagSet(p *ui.Printer, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(p.Err)
	return fs
}

// failErr prints err the way the server phrased it when it can.
func (s *session) failErr(what string, err error) int {
	msg := api.MessageOf(err)
	if msg == "" {
		msg = err.Error()
	}
	s.p.Fail(what + ": " + msg)
	if api.IsUnauthorized(err) {
		s.p.Hint("Hint: your session may have expired; run `tada auth refresh` or `tada auth login`")
	}
	return 1
}

// Require a token for networked commands.
func (s *session) ensureAuth() int {
	if !s.auth.LoggedIn() {
		s.p.Fail("not logged in. Set TADA_TOKEN or run `tada auth login`")
		return 2
	}
	return 0
}

func (s *session) readLine(prompt string) (string, error) {
	fmt.Fprint(s.p.Out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo when In is a terminal.
func (s *session) readPassword(prompt string) (string, error) {
	f, ok := s.opt.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return s.readLine(prompt)
	}
	fmt.Fprint(s.p.Out, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(s.p.Out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func printFieldErrors(p *ui.Printer, errs form.Errors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		p.Fail(errs[f])
	}
}

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func (s *session) doAuthLogin(ctx context.Context, a []string) int {
	var email string
	if len(a) > 0 {
		email = a[0]
	} else {
		v, err := s.readLine("Email: ")
		if err != nil {
			s.p.Fail("read email: " + err.Error())
			return 1
		}
		email = v
	}
	pw, err := s.readPassword("Password: ")
	if err != nil {
		s.p.Fail("read password: " + err.Error())
		return 1
	}

	f := form.Login{Email: strings.TrimSpace(email), Password: pw}
	if errs := form.Validate(f); errs != nil {
		printFieldErrors(s.p, errs)
		return 2
	}
	res, err := s.auth.Login(ctx, f.Credentials())
	if err != nil {
		return s.failErr("login", err)
	}
	s.p.OK("logged in as " + res.User.Name + " <" + res.User.Email + ">")
	return 0
}

func (s *session) doAuthRegister(ctx context.Context, a []string) int {
	if len(a) != 2 {
		s.p.Fail("usage: tada auth register <name> <email>")
		return 2
	}
	pw, err := s.readPassword("Password: ")
	if err != nil {
		s.p.Fail("read password: " + err.Error())
		return 1
	}
	f := form.Register{Name: a[0], Email: a[1], Password: pw}
	if errs := form.Validate(f); errs != nil {
		printFieldErrors(s.p, errs)
		return 2
	}
	res, err := s.auth.Register(ctx, f.Request())
	if err != nil {
		return s.failErr("register", err)
	}
	s.p.OK(fmt.Sprintf("registered %s (id %d)", res.User.Email, res.User.ID))
	return 0
}

func (s *session) doAuthLogout() int {
	if s.auth.TokenFromEnv() {
		s.p.OK("token is provided by TADA_TOKEN env var (clearing the stored session anyway)")
	}
	if err := s.auth.Logout(); err != nil {
		s.p.Fail("logout: " + err.Error())
		return 1
	}
	s.p.OK("logged out")
	return 0
}

func (s *session) doAuthStatus() int {
	if !s.auth.LoggedIn() {
		s.p.Muted("not logged in")
		s.p.Println("Run: tada auth login")
		return 0
	}
	source := "file"
	if s.auth.TokenFromEnv() {
		source = "env"
	}
	s.p.Printf("api: %s\n", s.opt.Config.API.URL)
	s.p.Printf("source: %s\n", source)
	if u := s.auth.CurrentUser().Get(); u != nil {
		s.p.Printf("user: %s <%s>\n", u.Name, u.Email)
	}
	if exp, ok := s.auth.ExpiresAt(); ok {
		state := "valid"
		if time.Now().After(exp) {
			state = "expired"
		}
		s.p.Printf("expires: %s (%s)\n", exp.UTC().Format(time.RFC3339), state)
	} else {
		s.p.Println("expires: (unknown)")
	}
	return 0
}

// whoami prints the stored user and the token's claims; -remote asks the server.
func (s *session) doAuthWhoAmI(ctx context.Context, a []string) int {
	fs := newFlagSet(s.p, "whoami")
	remote := fs.Bool("remote", false, "ask the server")
	if err := fs.Parse(a); err != nil {
		return 2
	}
	if code := s.ensureAuth(); code != 0 {
		return code
	}

	user := s.auth.CurrentUser().Get()
	if *remote {
		u, err := s.auth.Profile(ctx)
		if err != nil {
			return s.failErr("whoami", err)
		}
		user = u
	}

	var lines []string
	if user != nil {
		lines = append(lines,
			fmt.Sprintf("name:    %s", user.Name),
			fmt.Sprintf("email:   %s", user.Email),
			fmt.Sprintf("id:      %d", user.ID),
		)
	}
	claims, err := s.auth.Claims()
	if err != nil {
		lines = append(lines, "token:   opaque (cannot introspect locally)")
	} else {
		keys := make([]string, 0, len(claims))
		for k := range claims {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("claim %s: %v", k, claims[k]))
		}
	}
	s.p.Panel(lines)
	return 0
}

func (s *session) doAuthRefresh(ctx context.Context) int {
	if _, err := s.auth.Refresh(ctx); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			s.p.Fail("no refresh token stored. Run `tada auth login`")
			return 2
		}
		return s.failErr("refresh", err)
	}
	s.p.OK("tokens refreshed")
	return 0
}

// ---------------------------------------------------
// Todo subcommands
// ---------------------------------------------------

func (s *session) doList(ctx context.Context, a []string) int {
	fs := newFlagSet(s.p, "ls")
	page := fs.Int("page", todos.DefaultPage, "page number")
	size := fs.Int("size", s.opt.Config.API.PageSize, "page size")
	status := fs.String("status", "", "pending, in_progress or completed")
	if err := fs.Parse(a); err != nil {
		return 2
	}
	st := model.Status(*status)
	if st != "" && !st.Valid() {
		s.p.Fail("ls: unknown status " + *status)
		return 2
	}
	if code := s.ensureAuth(); code != 0 {
		return code
	}

	res, err := s.todos.GetAll(ctx, todos.ListQuery{Page: *page, PageSize: *size, Status: st})
	if err != nil {
		return s.failErr("ls", err)
	}
	if len(res.Items) == 0 {
		s.p.Muted("no todos")
		return 0
	}
	done := 0
	for _, t := range res.Items {
		if t.Done() {
			done++
		}
		s.p.Println(s.p.TodoLine(t))
	}
	m := res.Meta
	s.p.Println()
	s.p.Println(ui.ProgressBar(done, len(res.Items), 20))
	s.p.Muted(fmt.Sprintf("page %d/%d, %d todos", m.CurrentPage, m.TotalPages, m.TotalItems))
	return 0
}

func (s *session) doShow(ctx context.Context, id uint) int {
	if code := s.ensureAuth(); code != 0 {
		return code
	}
	t, err := s.todos.Get(ctx, id)
	if err != nil {
		return s.failErr("show", err)
	}
	lines := []string{
		s.p.TodoLine(*t),
		"status:  " + string(t.Status),
		"created: " + t.CreatedAt.Local().Format(time.DateTime),
		"updated: " + t.UpdatedAt.Local().Format(time.DateTime),
	}
	s.p.Panel(lines)
	return 0
}

func (s *session) doAdd(ctx context.Context, a []string) int {
	fs := newFlagSet(s.p, "add")
	desc := fs.String("d", "", "description")
	due := fs.String("due", "", "due date, YYYY-MM-DD")
	if err := fs.Parse(a); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		s.p.Fail("usage: tada add [-d text] [-due YYYY-MM-DD] <title...>")
		return 2
	}
	f := form.Todo{
		Title:       strings.TrimSpace(strings.Join(fs.Args(), " ")),
		Description: *desc,
		DueDate:     *due,
	}
	if errs := form.Validate(f); errs != nil {
		printFieldErrors(s.p, errs)
		return 2
	}
	patch, err := f.Patch()
	if err != nil {
		s.p.Fail("add: " + err.Error())
		return 2
	}
	if code := s.ensureAuth(); code != 0 {
		return code
	}
	t, err := s.todos.Create(ctx, patch)
	if err != nil {
		return s.failErr("add", err)
	}
	s.p.OK(fmt.Sprintf("added #%d", t.ID))
	return 0
}

func (s *session) doToggle(ctx context.Context, id uint) int {
	if code := s.ensureAuth(); code != 0 {
		return code
	}
	t, err := s.todos.Get(ctx, id)
	if err != nil {
		return s.failErr("done", err)
	}
	updated, err := s.todos.Update(ctx, id, model.StatusPatch(t.Status.Toggled()))
	if err != nil {
		return s.failErr("done", err)
	}
	s.p.OK(fmt.Sprintf("#%d is now %s", updated.ID, updated.Status))
	return 0
}

func (s *session) doRemove(ctx context.Context, id uint) int {
	if code := s.ensureAuth(); code != 0 {
		return code
	}
	if err := s.todos.Delete(ctx, id); err != nil {
		return s.failErr("rm", err)
	}
	s.p.OK("removed")
	return 0
}
