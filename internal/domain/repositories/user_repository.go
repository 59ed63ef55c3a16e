package repositories

import (
	"context"
	"errors"

	"account-service/internal/domain/entities"
)

// ErrDuplicateEmail is returned when a write collides with the unique email index.
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository is the credential store. Lookups return (nil, nil) when no
// record matches.
type UserRepository interface {
	Create(ctx context.Context, user *entities.ValidatedUser) (*entities.User, error)
	FindAll(ctx context.Context) ([]*entities.User, error)
	FindById(ctx context.Context, id string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	// Update saves the whole record, including cleared OTP fields.
	Update(ctx context.Context, user *entities.User) (*entities.User, error)
	// UpdateProfile sets the non-nil fields and returns the post-update record.
	UpdateProfile(ctx context.Context, id string, name, email *string) (*entities.User, error)
	// Delete removes the record and returns what was deleted.
	Delete(ctx context.Context, id string) (*entities.User, error)
	Ping(ctx context.Context) error
}
