// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage provides the implementation.
package repository

import (
	"context"

	"devboards/internal/model"
)

// ListOptions controls pin listing. AuthorID narrows the list to one
// author's pins; an empty string means no filter.
type ListOptions struct {
	Limit    int
	Offset   int
	AuthorID string
}

type UserRepository interface {
	// CreateUser inserts a new account. A duplicate email yields ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser inserts or updates an account keyed by its GitHub ID.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
}

type PinRepository interface {
	CreatePin(ctx context.Context, pin *model.Pin) error
	// GetPinByID returns the pin with its author summary and full savedBy set.
	GetPinByID(ctx context.Context, id string) (*model.Pin, error)
	// ListPins returns pins newest-first, decorated like GetPinByID.
	ListPins(ctx context.Context, opts ListOptions) ([]model.Pin, error)
	CountPins(ctx context.Context) (int, error)
	UpdatePin(ctx context.Context, pin *model.Pin) error
	DeletePin(ctx context.Context, id string) error
}

type SavedPinRepository interface {
	// SavePin inserts the (userID, pinID) row. A duplicate pair yields
	// ErrConflict; the returned row embeds the pin with its author.
	SavePin(ctx context.Context, userID, pinID string) (*model.SavedPin, error)
	// UnsavePin removes the pair's row, or returns ErrNotFound if absent.
	UnsavePin(ctx context.Context, userID, pinID string) error
	// ListSavedPins returns the user's saved pins, most recently saved first.
	ListSavedPins(ctx context.Context, userID string, limit int) ([]model.Pin, error)
}
