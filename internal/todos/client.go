package todos

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/model"
)

// Default paging used when a ListQuery leaves it zero.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

const basePath = "/api/todos"

// ListQuery selects one page of todos. Empty Status means all.
type ListQuery struct {
	Page     int
	PageSize int
	Status   model.Status
}

// Values builds the query string: page, page_size and, only when set, status.
func (q ListQuery) Values() url.Values {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	return v
}

// Client proxies the todo resource. No caching and no retries; every call
// returns what the server said.
type Client struct {
	api *api.Client
}

// New returns a todo client on top of the shared transport.
func New(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// GetAll fetches one page.
func (c *Client) GetAll(ctx context.Context, q ListQuery) (*model.TodoPage, error) {
	env, err := api.Do[model.TodoPage](ctx, c.api, http.MethodGet, basePath, q.Values(), nil)
	if err != nil {
		return nil, err
	}
	return api.Payload(env)
}

// Get fetches a single todo.
func (c *Client) Get(ctx context.Context, id uint) (*model.Todo, error) {
	env, err := api.Do[model.Todo](ctx, c.api, http.MethodGet, itemPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return api.Payload(env)
}

// Create posts a new todo and returns the server's copy.
func (c *Client) Create(ctx context.Context, p model.TodoPatch) (*model.Todo, error) {
	env, err := api.Do[model.Todo](ctx, c.api, http.MethodPost, basePath, nil, p)
	if err != nil {
		return nil, err
	}
	return api.Payload(env)
}

// Update sends a partial update and returns the updated todo.
func (c *Client) Update(ctx context.Context, id uint, p model.TodoPatch) (*model.Todo, error) {
	env, err := api.Do[model.Todo](ctx, c.api, http.MethodPut, itemPath(id), nil, p)
	if err != nil {
		return nil, err
	}
	return api.Payload(env)
}

// Delete removes a todo. The response carries no payload.
func (c *Client) Delete(ctx context.Context, id uint) error {
	_, err := api.Do[struct{}](ctx, c.api, http.MethodDelete, itemPath(id), nil, nil)
	return err
}

func itemPath(id uint) string {
	return fmt.Sprintf("%s/%d", basePath, id)
}
