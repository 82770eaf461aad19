package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devboards/internal/apperror"
	"devboards/internal/auth"
	"devboards/internal/model"
	"devboards/internal/repository"
)

const MinPasswordLength = 8

// AuthService handles registration and login. It never touches HTTP: the
// handler sets cookies from the AuthResult it returns.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user with their freshly issued
// session token so the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput carries the fields accepted at registration. Role defaults
// to explorer when empty.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Bio      string
}

// Register creates a credentials account and logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if !strings.Contains(email[1:], "@") {
		return nil, apperror.ValidationFailed("email", "invalid email address")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	role := in.Role
	if role == "" {
		role = model.RoleExplorer
	}
	if !model.ValidRole(role) {
		return nil, apperror.ValidationFailed("role", "role must be creator or explorer")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password is too long")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Bio:          strings.TrimSpace(in.Bio),
	}

	// A duplicate email comes back from the repository as ErrConflict.
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userId", user.ID),
		slog.String("role", user.Role),
	)

	return s.issue(user)
}

// Login verifies credentials and issues a session. Wrong email and wrong
// password produce the same message so the endpoint doesn't reveal which
// addresses are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	// OAuth-only accounts have no password hash to check against.
	if user.PasswordHash == "" {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	s.logger.Info("user logged in", slog.String("userId", user.ID))

	return s.issue(user)
}

// LoginOrRegisterGitHub completes the GitHub OAuth callback: upsert the
// account keyed by GitHub ID, then issue a session.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}
	user := &model.User{
		Name:     name,
		Email:    ghUser.Email,
		Image:    ghUser.AvatarURL,
		GitHubID: ghUser.ID,
	}

	if err := s.users.UpsertGitHubUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userId", user.ID),
		slog.String("login", ghUser.Login),
	)

	return s.issue(user)
}

// GetUser returns the account for id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetUserByID(ctx, id)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
