// Package model defines the data structures used throughout the application.
package model

import "time"

// User roles. Creators publish pins, explorers mostly browse and save.
// The role is stored and validated at registration but does not currently
// gate any server-side operation.
const (
	RoleCreator  = "creator"
	RoleExplorer = "explorer"
)

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	return role == RoleCreator || role == RoleExplorer
}

// User represents a registered account.
//
// PasswordHash holds the bcrypt hash for credentials accounts and is never
// serialized. Accounts created through GitHub OAuth have an empty hash and a
// non-zero GitHubID instead; one account can hold both once linked.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	Role         string    `json:"role"      db:"role"`
	Image        string    `json:"image"     db:"image"` // avatar URL, may be empty
	Bio          string    `json:"bio"       db:"bio"`
	GitHubID     int64     `json:"-"         db:"github_id"` // 0 unless the account came from GitHub OAuth
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// AuthorSummary is the slice of a User that rides along with pins:
// just enough to render an attribution line without exposing the account.
type AuthorSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Summary returns the public author view of the user.
func (u *User) Summary() *AuthorSummary {
	return &AuthorSummary{ID: u.ID, Name: u.Name, Image: u.Image}
}
