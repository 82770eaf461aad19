package sqlite

import (
	"context"
	"errors"
	"testing"

	"devboards/internal/apperror"
	"devboards/internal/model"
)

// newTestDB opens a fresh in-memory database for one test. t.Cleanup closes
// it when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a credentials account and fails the test on error.
func createTestUser(t *testing.T, db *DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         model.RoleCreator,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Name:         "Ana Developer",
		Email:        "ana@devboards.test",
		PasswordHash: "hash",
		Role:         model.RoleCreator,
		Bio:          "I collect sorting algorithms",
	}

	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Email != user.Email {
		t.Errorf("Email = %q, want %q", found.Email, user.Email)
	}
	if found.Bio != user.Bio {
		t.Errorf("Bio = %q, want %q", found.Bio, user.Bio)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "First", "shared@devboards.test")

	second := &model.User{
		Name:         "Second",
		Email:        "shared@devboards.test",
		PasswordHash: "hash",
		Role:         model.RoleExplorer,
	}
	err := db.CreateUser(context.Background(), second)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() error = %v, want ErrConflict", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "does-not-exist")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)

	created := createTestUser(t, db, "Ana", "ana@devboards.test")

	found, err := db.GetUserByEmail(context.Background(), "ana@devboards.test")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	if _, err := db.GetUserByEmail(context.Background(), "missing@devboards.test"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestUpsertGitHubUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Name:     "anadev",
		Email:    "ana@devboards.test",
		GitHubID: 424242,
		Image:    "http://avatars.test/old.png",
	}
	if err := db.UpsertGitHubUser(context.Background(), user); err != nil {
		t.Fatalf("UpsertGitHubUser() insert error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("UpsertGitHubUser() did not set user.ID")
	}
	if user.Role != model.RoleExplorer {
		t.Errorf("Role = %q, want explorer default", user.Role)
	}
	firstID := user.ID

	// Second login with a changed avatar updates in place.
	again := &model.User{
		Name:     "anadev",
		Email:    "ana@devboards.test",
		GitHubID: 424242,
		Image:    "http://avatars.test/new.png",
	}
	if err := db.UpsertGitHubUser(context.Background(), again); err != nil {
		t.Fatalf("UpsertGitHubUser() update error = %v", err)
	}
	if again.ID != firstID {
		t.Errorf("second upsert created a new account: %q vs %q", again.ID, firstID)
	}

	found, err := db.GetUserByID(context.Background(), firstID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Image != "http://avatars.test/new.png" {
		t.Errorf("Image = %q, want refreshed avatar", found.Image)
	}
	if found.GitHubID != 424242 {
		t.Errorf("GitHubID = %d, want 424242", found.GitHubID)
	}
}

func TestUpsertGitHubUser_HiddenEmails(t *testing.T) {
	db := newTestDB(t)

	// GitHub hides the public email on most accounts, so two distinct users
	// both arrive with an empty email. Both must get their own account.
	first := &model.User{Name: "anadev", GitHubID: 1111}
	if err := db.UpsertGitHubUser(context.Background(), first); err != nil {
		t.Fatalf("first hidden-email upsert error = %v", err)
	}

	second := &model.User{Name: "bendev", GitHubID: 2222}
	if err := db.UpsertGitHubUser(context.Background(), second); err != nil {
		t.Fatalf("second hidden-email upsert error = %v", err)
	}

	if first.ID == second.ID {
		t.Errorf("both users got ID %q, want distinct accounts", first.ID)
	}

	found, err := db.GetUserByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Email != "" {
		t.Errorf("Email = %q, want empty", found.Email)
	}
	if found.GitHubID != 2222 {
		t.Errorf("GitHubID = %d, want 2222", found.GitHubID)
	}
}
