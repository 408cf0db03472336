package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
)

var (
	// ErrUserNotFound is returned by a UserStore for an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrBadCredentials is returned when username/password don't match.
	ErrBadCredentials = errors.New("incorrect username or password")
)

// UserStore resolves credential records by username.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

// UserSeed is a plaintext credential used to populate an InMemoryUserStore.
type UserSeed struct {
	Username string
	Password string
	Role     string
}

// InMemoryUserStore is a fixed credential table, read-only after construction.
type InMemoryUserStore struct {
	users map[string]model.User
}

var _ UserStore = (*InMemoryUserStore)(nil)

// NewInMemoryUserStore hashes every seed password and builds the table.
func NewInMemoryUserStore(seeds ...UserSeed) (*InMemoryUserStore, error) {
	users := make(map[string]model.User, len(seeds))
	for _, s := range seeds {
		if s.Username == "" {
			return nil, errors.New("seed user has empty username")
		}
		if s.Role != model.RoleAdmin && s.Role != model.RoleUser {
			return nil, fmt.Errorf("seed user %q has unknown role %q", s.Username, s.Role)
		}
		hashed, err := HashPassword(s.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %q: %w", s.Username, err)
		}
		users[s.Username] = model.User{
			Username:       s.Username,
			HashedPassword: hashed,
			Role:           s.Role,
		}
	}
	return &InMemoryUserStore{users: users}, nil
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	u, ok := s.users[username]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

// Authenticator checks a username/password pair against a UserStore.
type Authenticator struct {
	users UserStore
}

func NewAuthenticator(users UserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate returns the matching user, or ErrBadCredentials when the
// username is unknown or the password does not match its hash.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	u, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return model.User{}, ErrBadCredentials
		}
		return model.User{}, err
	}
	if !CheckPassword(u.HashedPassword, password) {
		return model.User{}, ErrBadCredentials
	}
	return u, nil
}
