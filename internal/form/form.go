// Package form holds the input forms of the login and dashboard pages and
// their validation rules.
package form

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Makepad-fr/tada/internal/model"
)

// DateLayout is the due date input format.
const DateLayout = "2006-01-02"

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Errors maps a field name to its first failed rule, in human terms.
type Errors map[string]string

// Validate checks f against its struct tags. A nil result means valid.
func Validate(f any) Errors {
	err := instance().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": err.Error()}
	}
	out := Errors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = describe(fe)
		}
	}
	return out
}

func describe(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "enter a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "datetime":
		return name + " must look like YYYY-MM-DD"
	}
	return name + " is invalid"
}

// Login is the sign-in form.
type Login struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Valid reports whether the form can be submitted.
func (f Login) Valid() bool { return Validate(f) == nil }

// Credentials converts the form into the login body.
func (f Login) Credentials() model.Credentials {
	return model.Credentials{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

// Register is the sign-up form used by the CLI.
type Register struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Valid reports whether the form can be submitted.
func (f Register) Valid() bool { return Validate(f) == nil }

// Request converts the form into the registration body.
func (f Register) Request() model.RegisterRequest {
	return model.RegisterRequest{Name: strings.TrimSpace(f.Name), Email: strings.TrimSpace(f.Email), Password: f.Password}
}

// Todo is the new-todo form.
type Todo struct {
	Title       string `validate:"required,min=3"`
	Description string
	DueDate     string `validate:"omitempty,datetime=2006-01-02"`
}

// Valid reports whether the form can be submitted.
func (f Todo) Valid() bool { return Validate(f) == nil }

// Patch converts the form into a create body. Empty optional fields are left out.
func (f Todo) Patch() (model.TodoPatch, error) {
	title := f.Title
	p := model.TodoPatch{Title: &title}
	if f.Description != "" {
		desc := f.Description
		p.Description = &desc
	}
	if f.DueDate != "" {
		due, err := time.Parse(DateLayout, f.DueDate)
		if err != nil {
			return model.TodoPatch{}, fmt.Errorf("due date: %w", err)
		}
		p.DueDate = &due
	}
	return p, nil
}
