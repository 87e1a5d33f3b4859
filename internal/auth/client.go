package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/session"
)

// Keys in durable storage. All three present means a session; none means logged out.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// ErrNotLoggedIn is returned by operations that need a stored session.
var ErrNotLoggedIn = errors.New("not logged in")

// Store is the durable key-value storage the client persists its session in.
type Store interface {
	Get(key string) (string, bool, error)
	SetMany(pairs map[string]string) error
	Delete(keys ...string) error
}

// Client wraps the auth endpoints and owns the local session: tokens, the
// persisted user and the current-user stream. It is the stream's only writer.
type Client struct {
	api      *api.Client
	store    Store
	users    *session.Stream[*model.User]
	nav      Navigator
	envToken string
	log      *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithNavigator sets where Login/Register/Logout send the user.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.nav = n }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithEnvToken overrides the stored access token (TADA_TOKEN).
func WithEnvToken(tok string) Option {
	return func(c *Client) { c.envToken = stripBearer(strings.TrimSpace(tok)) }
}

// New builds the client, registers it as the transport's token source and
// hydrates the current user from storage. Hydration is best effort: the
// token is not checked for expiry and a corrupt user entry is ignored.
func New(apiClient *api.Client, store Store, opts ...Option) *Client {
	c := &Client{
		api:   apiClient,
		store: store,
		users: session.NewStream[*model.User](nil),
		nav:   NopNavigator{},
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	apiClient.SetTokenSource(c.Token)
	c.hydrate()
	return c
}

func (c *Client) hydrate() {
	tok, okTok, err := c.store.Get(KeyAccessToken)
	if err != nil {
		c.log.Warn("read stored session", zap.Error(err))
		return
	}
	raw, okUser, err := c.store.Get(KeyUser)
	if err != nil || !okTok || !okUser || tok == "" {
		return
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		c.log.Warn("ignoring corrupt stored user", zap.Error(err))
		return
	}
	c.users.Set(&u)
}

// CurrentUser is the stream pages read the signed-in user from (nil when logged out).
func (c *Client) CurrentUser() *session.Stream[*model.User] { return c.users }

// Token returns the access token, or "" when there is none.
func (c *Client) Token() string {
	if c.envToken != "" {
		return c.envToken
	}
	tok, _, err := c.store.Get(KeyAccessToken)
	if err != nil {
		c.log.Warn("read access token", zap.Error(err))
		return ""
	}
	return tok
}

// TokenFromEnv reports whether Token comes from the environment override.
func (c *Client) TokenFromEnv() bool { return c.envToken != "" }

// LoggedIn reports whether an access token is available.
func (c *Client) LoggedIn() bool { return c.Token() != "" }

// Login authenticates, persists the session and navigates to the dashboard.
// Server errors are returned as they come (see api.MessageOf).
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/login", creds)
}

// Register creates an account and then behaves like Login.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/register", req)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*model.AuthResponse, error) {
	env, err := api.Do[model.AuthResponse](ctx, c.api, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	res, err := api.Payload(env)
	if err != nil {
		return nil, err
	}
	if err := c.persist(res); err != nil {
		return nil, err
	}
	c.log.Info("signed in", zap.Uint("user_id", res.User.ID), zap.String("email", res.User.Email))
	c.nav.Navigate(RouteDashboard)
	return res, nil
}

func (c *Client) persist(res *model.AuthResponse) error {
	u, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := c.store.SetMany(map[string]string{
		KeyAccessToken:  res.Tokens.AccessToken,
		KeyRefreshToken: res.Tokens.RefreshToken,
		KeyUser:         string(u),
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	user := res.User
	c.users.Set(&user)
	return nil
}

// Logout forgets the local session and navigates to the login page. It never
// calls the server and succeeds whether or not anyone was signed in. The
// stream is reset and navigation happens even if storage fails.
func (c *Client) Logout() error {
	err := c.store.Delete(KeyAccessToken, KeyRefreshToken, KeyUser)
	if err != nil {
		c.log.Error("clear stored session", zap.Error(err))
		err = fmt.Errorf("clear session: %w", err)
	}
	c.users.Set(nil)
	c.log.Info("signed out")
	c.nav.Navigate(RouteLogin)
	return err
}

// Refresh trades the stored refresh token for a new pair and stores it.
func (c *Client) Refresh(ctx context.Context) (*model.Tokens, error) {
	rt, ok, err := c.store.Get(KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("read refresh token: %w", err)
	}
	if !ok || rt == "" {
		return nil, ErrNotLoggedIn
	}

	env, err := api.Do[model.Tokens](ctx, c.api, http.MethodPost, "/api/auth/refresh", nil,
		map[string]string{"refresh_token": rt})
	if err != nil {
		return nil, err
	}
	tokens, err := api.Payload(env)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetMany(map[string]string{
		KeyAccessToken:  tokens.AccessToken,
		KeyRefreshToken: tokens.RefreshToken,
	}); err != nil {
		return nil, fmt.Errorf("save tokens: %w", err)
	}
	c.log.Info("tokens refreshed")
	return tokens, nil
}

// Profile asks the server who the current token belongs to.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	if !c.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	env, err := api.Do[model.User](ctx, c.api, http.MethodGet, "/api/profile", nil, nil)
	if err != nil {
		return nil, err
	}
	return api.Payload(env)
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
