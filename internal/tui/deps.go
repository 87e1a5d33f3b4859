package tui

import (
	"context"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/session"
	"github.com/Makepad-fr/tada/internal/todos"
)

// Authenticator is what the pages need from the auth client.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
	Logout() error
	LoggedIn() bool
	CurrentUser() *session.Stream[*model.User]
}

// TodoService is what the dashboard needs from the todo client.
type TodoService interface {
	GetAll(ctx context.Context, q todos.ListQuery) (*model.TodoPage, error)
	Create(ctx context.Context, p model.TodoPatch) (*model.Todo, error)
	Update(ctx context.Context, id uint, p model.TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, id uint) error
}
