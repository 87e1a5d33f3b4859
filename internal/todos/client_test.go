package todos

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/apitest"
	"github.com/Makepad-fr/tada/internal/model"
)

func setup(t *testing.T) (*apitest.Server, *Client, model.User) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	u := srv.AddUser("Ada", "ada@example.com", "secret1")
	tok := srv.IssueToken(u.ID)
	a := api.New(srv.URL)
	a.SetTokenSource(func() string { return tok })
	return srv, New(a), u
}

func ptr[T any](v T) *T { return &v }

func TestListQuery_Values(t *testing.T) {
	assert.Equal(t, "page=1&page_size=10", ListQuery{}.Values().Encode())
	assert.Equal(t, "page=3&page_size=5&status=completed",
		ListQuery{Page: 3, PageSize: 5, Status: model.StatusCompleted}.Values().Encode())
}

func TestGetAll_PageOrderAndMeta(t *testing.T) {
	srv, c, u := setup(t)
	t1 := srv.AddTodo(u.ID, "first", model.StatusPending)
	t2 := srv.AddTodo(u.ID, "second", model.StatusCompleted)

	page, err := c.GetAll(context.Background(), ListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, t2.ID, page.Items[0].ID, "server order is newest first")
	assert.Equal(t, t1.ID, page.Items[1].ID)
	assert.Equal(t, model.PageMeta{CurrentPage: 1, PageSize: 10, TotalItems: 2, TotalPages: 1}, page.Meta)
	assert.Equal(t, "page=1&page_size=10", srv.LastRequest().Query)
}

func TestGetAll_StatusFilterAndPaging(t *testing.T) {
	srv, c, u := setup(t)
	for i := 0; i < 5; i++ {
		srv.AddTodo(u.ID, "done", model.StatusCompleted)
	}
	srv.AddTodo(u.ID, "open", model.StatusPending)

	page, err := c.GetAll(context.Background(), ListQuery{Page: 2, PageSize: 2, Status: model.StatusCompleted})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.Meta.TotalItems)
	assert.Equal(t, 3, page.Meta.TotalPages)
	assert.True(t, page.Meta.Consistent())
	assert.Contains(t, srv.LastRequest().Query, "status=completed")
}

func TestCreateUpdateDelete(t *testing.T) {
	srv, c, u := setup(t)
	ctx := context.Background()
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	created, err := c.Create(ctx, model.TodoPatch{Title: ptr("Write tests"), Description: ptr("all of them"), DueDate: &due})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, model.StatusPending, created.Status)
	require.NotNil(t, created.DueDate)
	assert.True(t, due.Equal(*created.DueDate))

	updated, err := c.Update(ctx, created.ID, model.StatusPatch(model.StatusCompleted))
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, "Write tests", updated.Title)
	assert.JSONEq(t, `{"status":"completed"}`, srv.LastRequest().Body)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)

	require.NoError(t, c.Delete(ctx, created.ID))
	assert.Empty(t, srv.Todos(u.ID))

	err = c.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, "Todo not found", api.MessageOf(err))
}

func TestCreate_Rejected(t *testing.T) {
	srv, c, _ := setup(t)
	srv.FailNext(http.MethodPost, "/api/todos", http.StatusInternalServerError, "Failed to create todo")

	_, err := c.Create(context.Background(), model.TodoPatch{Title: ptr("x")})
	require.Error(t, err)
	assert.Equal(t, "Failed to create todo", api.MessageOf(err))
}

func TestUnauthorized(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	c := New(api.New(srv.URL))

	_, err := c.GetAll(context.Background(), ListQuery{})
	assert.True(t, api.IsUnauthorized(err))
}
