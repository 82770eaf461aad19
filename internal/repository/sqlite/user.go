package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"devboards/internal/apperror"
	"devboards/internal/model"
	"devboards/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// userColumns is the SELECT list shared by every user query; scanUser must
// match its order.
const userColumns = `id, name, COALESCE(email, ''), password_hash, role, image, bio,
	COALESCE(github_id, 0), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Image, &u.Bio, &u.GitHubID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new credentials account. The email column is UNIQUE, so
// registering an address twice surfaces as ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, image, bio, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Image,
		user.Bio,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("an account with this email already exists")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a single user by their ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by their unique email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

// nullableEmail maps an empty email to NULL. GitHub hides the public email
// on most accounts, and two empty strings would collide under the UNIQUE
// constraint where two NULLs do not.
func nullableEmail(email string) any {
	if email == "" {
		return nil
	}
	return email
}

// UpsertGitHubUser inserts or updates an account keyed by its GitHub ID.
//
// First OAuth login inserts a fresh account; later logins keep the internal
// ID and refresh name/email/avatar in case they changed on GitHub.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, email = ?, image = ?, updated_at = ?
			 WHERE id = ?`,
			user.Name,
			nullableEmail(user.Email),
			user.Image,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	user.ID = xid.New().String()
	if user.Role == "" {
		user.Role = model.RoleExplorer
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, role, image, bio, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		nullableEmail(user.Email),
		user.Role,
		user.Image,
		user.Bio,
		user.GitHubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("an account with this email already exists")
		}
		return fmt.Errorf("sqlite: inserting github user: %w", err)
	}

	return nil
}
