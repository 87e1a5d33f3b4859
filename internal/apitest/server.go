// Package apitest runs an in-memory stand-in for the to-do API, for tests.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tada/internal/model"
)

var signingKey = []byte("apitest")

// Request is one call the server received.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
	Auth   string
}

type account struct {
	user     model.User
	password string
}

type ownedTodo struct {
	owner uint
	todo  model.Todo
}

type failure struct {
	status  int
	message string
}

// Server mimics the API's envelope, auth and todo endpoints.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account // by email
	access   map[string]uint
	refresh  map[string]uint
	todos    []ownedTodo
	nextUser uint
	nextTodo uint
	fail     map[string]failure // "METHOD path" -> one-shot failure
	requests []Request
}

// New starts a server. Close it when done.
func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		accounts: map[string]*account{},
		access:   map[string]uint{},
		refresh:  map[string]uint{},
		fail:     map[string]failure{},
		nextUser: 1,
		nextTodo: 1,
	}

	r := gin.New()
	r.Use(s.record, s.injectFailure)

	api := r.Group("/api")
	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)
	api.POST("/auth/refresh", s.refreshTokens)

	protected := api.Group("/", s.requireAuth)
	protected.GET("profile", s.profile)
	protected.GET("todos", s.listTodos)
	protected.GET("todos/:id", s.getTodo)
	protected.POST("todos", s.createTodo)
	protected.PUT("todos/:id", s.updateTodo)
	protected.DELETE("todos/:id", s.deleteTodo)

	s.Server = httptest.NewServer(r)
	return s
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password)
}

func (s *Server) addUserLocked(name, email, password string) model.User {
	u := model.User{ID: s.nextUser, Name: name, Email: email, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	s.nextUser++
	s.accounts[strings.ToLower(email)] = &account{user: u, password: password}
	return u
}

// AddTodo stores a todo owned by userID and returns it with its id.
func (s *Server) AddTodo(userID uint, title string, status model.Status) model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTodoLocked(userID, model.Todo{Title: title, Status: status})
}

func (s *Server) addTodoLocked(userID uint, t model.Todo) model.Todo {
	now := time.Now().UTC().Truncate(time.Second)
	t.ID = s.nextTodo
	s.nextTodo++
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	t.CreatedAt, t.UpdatedAt = now, now
	s.todos = append(s.todos, ownedTodo{owner: userID, todo: t})
	return t
}

// Todos returns userID's todos in storage order.
func (s *Server) Todos(userID uint) []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Todo
	for _, ot := range s.todos {
		if ot.owner == userID {
			out = append(out, ot.todo)
		}
	}
	return out
}

// IssueToken mints an access token for userID without a login call.
func (s *Server) IssueToken(userID uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID).AccessToken
}

// FailNext makes the next METHOD path request fail with status and message.
// path is the request path, e.g. "/api/todos/3".
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method+" "+path] = failure{status: status, message: message}
}

// Requests returns everything received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request, or a zero Request.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

func (s *Server) record(c *gin.Context) {
	body, _ := c.GetRawData()
	c.Request.Body = newBody(body)
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Body:   string(body),
		Auth:   c.GetHeader("Authorization"),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) injectFailure(c *gin.Context) {
	key := c.Request.Method + " " + c.Request.URL.Path
	s.mu.Lock()
	f, ok := s.fail[key]
	delete(s.fail, key)
	s.mu.Unlock()
	if ok {
		errorResponse(c, f.status, f.message)
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) requireAuth(c *gin.Context) {
	h := c.GetHeader("Authorization")
	tok := strings.TrimPrefix(h, "Bearer ")
	s.mu.Lock()
	uid, ok := s.access[tok]
	s.mu.Unlock()
	if h == "" || !ok {
		errorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
		c.Abort()
		return
	}
	c.Set("userID", uid)
	c.Next()
}

func (s *Server) issueLocked(userID uint) model.Tokens {
	claims := jwt.MapClaims{
		"sub":     strconv.FormatUint(uint64(userID), 10),
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"jti":     uuid.NewString(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	refresh := uuid.NewString()
	s.access[access] = userID
	s.refresh[refresh] = userID
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresIn: 3600}
}

func (s *Server) register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		errorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[strings.ToLower(req.Email)]; exists {
		errorResponse(c, http.StatusConflict, "Email already registered")
		return
	}
	u := s.addUserLocked(req.Name, req.Email, req.Password)
	successResponse(c, http.StatusCreated, "User registered successfully",
		model.AuthResponse{User: u, Tokens: s.issueLocked(u.ID)})
}

func (s *Server) login(c *gin.Context) {
	var req model.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || acc.password != req.Password {
		errorResponse(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	successResponse(c, http.StatusOK, "Login successful",
		model.AuthResponse{User: acc.user, Tokens: s.issueLocked(acc.user.ID)})
}

func (s *Server) refreshTokens(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		errorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.refresh[req.RefreshToken]
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(s.refresh, req.RefreshToken)
	successResponse(c, http.StatusOK, "Token refreshed", s.issueLocked(uid))
}

func (s *Server) profile(c *gin.Context) {
	uid := c.GetUint("userID")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == uid {
			successResponse(c, http.StatusOK, "Profile retrieved", acc.user)
			return
		}
	}
	errorResponse(c, http.StatusNotFound, "User not found")
}

func (s *Server) listTodos(c *gin.Context) {
	uid := c.GetUint("userID")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	status := model.Status(c.Query("status"))

	s.mu.Lock()
	var mine []model.Todo
	for _, ot := range s.todos {
		if ot.owner == uid && (status == "" || ot.todo.Status == status) {
			mine = append(mine, ot.todo)
		}
	}
	s.mu.Unlock()

	// newest first
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })

	total := len(mine)
	start := min((page-1)*size, total)
	end := min(start+size, total)
	successResponse(c, http.StatusOK, "Todos retrieved", model.TodoPage{
		Items: append([]model.Todo{}, mine[start:end]...),
		Meta: model.PageMeta{
			CurrentPage: page,
			PageSize:    size,
			TotalItems:  total,
			TotalPages:  model.PageCount(total, size),
		},
	})
}

func (s *Server) findLocked(c *gin.Context) (int, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid todo ID")
		return 0, false
	}
	uid := c.GetUint("userID")
	for i, ot := range s.todos {
		if ot.owner == uid && ot.todo.ID == uint(id) {
			return i, true
		}
	}
	errorResponse(c, http.StatusNotFound, "Todo not found")
	return 0, false
}

func (s *Server) getTodo(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.findLocked(c); ok {
		successResponse(c, http.StatusOK, "Todo retrieved", s.todos[i].todo)
	}
}

func (s *Server) createTodo(c *gin.Context) {
	var p model.TodoPatch
	if err := c.ShouldBindJSON(&p); err != nil || p.Title == nil || *p.Title == "" {
		errorResponse(c, http.StatusBadRequest, "Invalid input: title is required")
		return
	}
	t := model.Todo{Title: *p.Title, DueDate: p.DueDate}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, http.StatusCreated, "Todo created", s.addTodoLocked(c.GetUint("userID"), t))
}

func (s *Server) updateTodo(c *gin.Context) {
	var p model.TodoPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.findLocked(c)
	if !ok {
		return
	}
	t := &s.todos[i].todo
	if p.Title != nil && *p.Title != "" {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	t.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	successResponse(c, http.StatusOK, "Todo updated", *t)
}

func (s *Server) deleteTodo(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.findLocked(c)
	if !ok {
		return
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	successResponse(c, http.StatusOK, "Todo deleted", nil)
}
