package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendico/apiserver/internal/auth"
	"github.com/sendico/apiserver/internal/logger"
	"github.com/sendico/apiserver/internal/store"
	"github.com/sendico/apiserver/types"
)

const invalidCredentials = "Username or password is incorrect"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, username string) error
}

// MediaOwner lists the stored media referenced by resources of one owner.
type MediaOwner interface {
	MediaByOwner(ctx context.Context, owner string) ([]string, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(username string, isAdmin bool) (string, error)
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=100,ne=current"`
	Password string `json:"password" validate:"required,min=6,max=20"`
	Name     string `json:"name" validate:"required,min=1,max=20"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=100"`
}

// UpdateUserInput carries the fields a user may change on their own
// account. Nil fields are left unchanged.
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=20"`
	Password *string `json:"password" validate:"omitnil,min=6,max=20"`
}

// LoginResult is the authenticated user and a freshly issued token.
type LoginResult struct {
	User  types.User
	Token string
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo       UserRepository
	tokens     TokenIssuer
	bcryptCost int
	media      MediaStore
	owners     []MediaOwner
	events     *Events
}

func NewUserService(repo UserRepository, tokens TokenIssuer, bcryptCost int, media MediaStore, events *Events, owners ...MediaOwner) *UserService {
	return &UserService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		media:      media,
		owners:     owners,
		events:     events,
	}
}

// Register creates a non-admin account. An existing username is a conflict
// and leaves the stored record untouched.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	if err := validateInput(input); err != nil {
		return types.User{}, err
	}

	_, err := s.repo.GetByUsername(ctx, input.Username)
	if err == nil {
		return types.User{}, newError(ErrConflict, "Username already registered")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fromStore(err, "user")
	}

	digest, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     input.Username,
		Name:         input.Name,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, newError(ErrConflict, "Username already registered")
		}
		return types.User{}, fromStore(err, "user")
	}

	s.events.Emit(ctx, types.EventUserRegistered, user.Username, user.Username)
	return user, nil
}

// Login verifies credentials and issues a token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	if err := validateInput(input); err != nil {
		return LoginResult{}, err
	}

	user, err := s.repo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, newError(ErrUnauthenticated, invalidCredentials)
		}
		return LoginResult{}, fromStore(err, "user")
	}
	if !auth.VerifyPassword(user.PasswordHash, input.Password) {
		return LoginResult{}, newError(ErrUnauthenticated, invalidCredentials)
	}

	token, err := s.tokens.Issue(user.Username, user.IsAdmin)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{User: user, Token: token}, nil
}

// Current returns the account of the authenticated caller.
func (s *UserService) Current(ctx context.Context, id auth.Identity) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, id.Username)
	if err != nil {
		return types.User{}, fromStore(err, "user")
	}
	return user, nil
}

// Update changes the caller's own name and/or password.
func (s *UserService) Update(ctx context.Context, id auth.Identity, input UpdateUserInput) (types.User, error) {
	if err := validateInput(input); err != nil {
		return types.User{}, err
	}

	user, err := s.repo.GetByUsername(ctx, id.Username)
	if err != nil {
		return types.User{}, fromStore(err, "user")
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		digest, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return types.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = digest
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, fromStore(err, "user")
	}
	s.events.Emit(ctx, types.EventUserUpdated, updated.Username, id.Username)
	return updated, nil
}

// Logout has no server-side effect; issued tokens stay valid until expiry.
func (s *UserService) Logout(ctx context.Context, id auth.Identity) error {
	logger.Infof("user %s logged out", id.Username)
	return nil
}

// List returns every account. Only admins may list users.
func (s *UserService) List(ctx context.Context, id auth.Identity) ([]types.User, error) {
	if !id.IsAdmin {
		return nil, newError(ErrForbidden, "Forbidden")
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fromStore(err, "user")
	}
	return users, nil
}

// Delete removes an account together with its postings and blogs, then
// best-effort deletes every image they referenced.
func (s *UserService) Delete(ctx context.Context, id auth.Identity, username string) error {
	if _, err := s.repo.GetByUsername(ctx, username); err != nil {
		return fromStore(err, "user")
	}
	if !auth.CanModify(id, username) {
		return newError(ErrForbidden, "Forbidden")
	}

	var media []string
	for _, owner := range s.owners {
		urls, err := owner.MediaByOwner(ctx, username)
		if err != nil {
			return fmt.Errorf("collect media of %s: %w", username, err)
		}
		media = append(media, urls...)
	}

	if err := s.repo.Delete(ctx, username); err != nil {
		return fromStore(err, "user")
	}
	if s.media != nil {
		s.media.DeleteAll(ctx, media)
	}
	s.events.Emit(ctx, types.EventUserDeleted, username, id.Username)
	return nil
}

// Promote grants or revokes the admin role.
func (s *UserService) Promote(ctx context.Context, username string, isAdmin bool) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return types.User{}, fromStore(err, "user")
	}
	user.IsAdmin = isAdmin
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, fromStore(err, "user")
	}
	s.events.Emit(ctx, types.EventUserUpdated, updated.Username, "cli")
	return updated, nil
}
