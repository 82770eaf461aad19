package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"devboards/internal/auth"
	"devboards/internal/handler"
	"devboards/internal/model"
	"devboards/internal/repository/sqlite"
	"devboards/internal/service"
)

// testEnv wires real services over an in-memory database so handler tests
// exercise the whole request path below the router.
type testEnv struct {
	auths *handler.AuthHandler
	pins  *handler.PinHandler
	saves *handler.SaveHandler
	users *handler.UserHandler

	authSvc *service.AuthService
	pinSvc  *service.PinService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	authSvc := service.NewAuthService(db, tokens, passwords, logger)
	pinSvc := service.NewPinService(db, logger)
	saveSvc := service.NewSaveService(db, db, logger)

	return &testEnv{
		auths:   handler.NewAuthHandler(authSvc, nil, logger),
		pins:    handler.NewPinHandler(pinSvc, logger),
		saves:   handler.NewSaveHandler(saveSvc),
		users:   handler.NewUserHandler(authSvc, pinSvc),
		authSvc: authSvc,
		pinSvc:  pinSvc,
	}
}

// registerUser creates an account directly through the service and returns
// its ID.
func (env *testEnv) registerUser(t *testing.T, email string) string {
	t.Helper()
	res, err := env.authSvc.Register(t.Context(), service.RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
		Role:     model.RoleCreator,
	})
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	return res.User.ID
}

// createPin creates a pin directly through the service and returns it.
func (env *testEnv) createPin(t *testing.T, authorID, title string) *model.Pin {
	t.Helper()
	pin, err := env.pinSvc.Create(t.Context(), authorID, service.CreatePinInput{
		Title:    title,
		ImageURL: "http://images.test/" + title + ".png",
		Language: "go",
	})
	if err != nil {
		t.Fatalf("failed to create pin: %v", err)
	}
	return pin
}

// newRequest builds a request carrying userID in its context, the way the
// auth middleware would after validating a session cookie.
func newRequest(method, target, body, userID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	}
	return req
}

func TestAuthHandler_Register(t *testing.T) {
	env := newTestEnv(t)

	t.Run("creates account and session", func(t *testing.T) {
		body := `{"name":"Ana","email":"ana@devboards.test","password":"password123","role":"creator"}`
		req := newRequest(http.MethodPost, "/api/auth/register", body, "")
		rr := httptest.NewRecorder()

		env.auths.HandleRegister(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var user model.User
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&user))
		assert.Equal(t, "Ana", user.Name)
		assert.Equal(t, model.RoleCreator, user.Role)
		assert.Empty(t, user.PasswordHash)

		cookies := rr.Result().Cookies()
		if assert.Len(t, cookies, 1) {
			assert.Equal(t, auth.CookieName, cookies[0].Name)
			assert.NotEmpty(t, cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := `{"name":"Ana Again","email":"ana@devboards.test","password":"password123"}`
		req := newRequest(http.MethodPost, "/api/auth/register", body, "")
		rr := httptest.NewRecorder()

		env.auths.HandleRegister(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var errRes handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
		assert.Equal(t, "conflict", errRes.Error)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := newRequest(http.MethodPost, "/api/auth/register", `{"name":`, "")
		rr := httptest.NewRecorder()

		env.auths.HandleRegister(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ana@devboards.test")

	t.Run("valid credentials", func(t *testing.T) {
		body := `{"email":"ana@devboards.test","password":"password123"}`
		req := newRequest(http.MethodPost, "/api/auth/login", body, "")
		rr := httptest.NewRecorder()

		env.auths.HandleLogin(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		cookies := rr.Result().Cookies()
		if assert.Len(t, cookies, 1) {
			assert.NotEmpty(t, cookies[0].Value)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		body := `{"email":"ana@devboards.test","password":"wrong-password"}`
		req := newRequest(http.MethodPost, "/api/auth/login", body, "")
		rr := httptest.NewRecorder()

		env.auths.HandleLogin(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t)

	req := newRequest(http.MethodPost, "/api/auth/logout", "", "")
	rr := httptest.NewRecorder()

	env.auths.HandleLogout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.Less(t, cookies[0].MaxAge, 0)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "ana@devboards.test")

	req := newRequest(http.MethodGet, "/api/me", "", userID)
	rr := httptest.NewRecorder()

	env.auths.HandleMe(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var user model.User
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&user))
	assert.Equal(t, userID, user.ID)
}

func TestPinHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "ana@devboards.test")

	t.Run("valid pin", func(t *testing.T) {
		body := `{"title":"Binary search","imageUrl":"http://images.test/b.png","codeSnippet":"sort.Search(...)","language":"go"}`
		req := newRequest(http.MethodPost, "/api/pins", body, userID)
		rr := httptest.NewRecorder()

		env.pins.HandleCreate(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var pin model.Pin
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&pin))
		assert.NotEmpty(t, pin.ID)
		assert.Equal(t, userID, pin.AuthorID)
		if assert.NotNil(t, pin.Author) {
			assert.Equal(t, "Test User", pin.Author.Name)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		body := `{"imageUrl":"http://images.test/b.png"}`
		req := newRequest(http.MethodPost, "/api/pins", body, userID)
		rr := httptest.NewRecorder()

		env.pins.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing image", func(t *testing.T) {
		body := `{"title":"no image"}`
		req := newRequest(http.MethodPost, "/api/pins", body, userID)
		rr := httptest.NewRecorder()

		env.pins.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := newRequest(http.MethodPost, "/api/pins", `{"title":`, userID)
		rr := httptest.NewRecorder()

		env.pins.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var errRes handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
		assert.Equal(t, "validation_error", errRes.Error)
	})
}

func TestPinHandler_GetByID(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "ana@devboards.test")
	pin := env.createPin(t, userID, "quicksort")

	t.Run("existing pin", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/pins/"+pin.ID, "", "")
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.pins.HandleGetByID(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got model.Pin
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, "quicksort", got.Title)
	})

	t.Run("missing pin", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/pins/missing", "", "")
		req.SetPathValue("id", "missing")
		rr := httptest.NewRecorder()

		env.pins.HandleGetByID(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestPinHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerUser(t, "ana@devboards.test")
	other := env.registerUser(t, "ben@devboards.test")
	pin := env.createPin(t, author, "before")

	t.Run("author updates a field", func(t *testing.T) {
		req := newRequest(http.MethodPut, "/api/pins/"+pin.ID, `{"title":"after"}`, author)
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.pins.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got model.Pin
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, "after", got.Title)
		// Absent fields keep their stored values.
		assert.Equal(t, "go", got.Language)
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		req := newRequest(http.MethodPut, "/api/pins/"+pin.ID, `{"title":"hijacked"}`, other)
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.pins.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := newRequest(http.MethodPut, "/api/pins/"+pin.ID, `{"title":`, author)
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.pins.HandleUpdate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPinHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerUser(t, "ana@devboards.test")
	other := env.registerUser(t, "ben@devboards.test")
	pin := env.createPin(t, author, "doomed")

	t.Run("non-author is rejected", func(t *testing.T) {
		req := newRequest(http.MethodDelete, "/api/pins/"+pin.ID, "", other)
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.pins.HandleDelete(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("author deletes", func(t *testing.T) {
		req := newRequest(http.MethodDelete, "/api/pins/"+pin.ID, "", author)
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.pins.HandleDelete(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res map[string]string
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Contains(t, res["message"], "deleted")
	})
}

func TestPinHandler_List(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerUser(t, "ana@devboards.test")
	env.createPin(t, author, "one")
	env.createPin(t, author, "two")

	t.Run("default feed", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/pins", "", "")
		rr := httptest.NewRecorder()

		env.pins.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var pins []model.Pin
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&pins))
		assert.Len(t, pins, 2)
	})

	t.Run("author filter", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/pins?userId="+author, "", "")
		rr := httptest.NewRecorder()

		env.pins.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var pins []model.Pin
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&pins))
		assert.Len(t, pins, 2)
	})

	t.Run("sampled feed returns same set", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/pins?random=true", "", "")
		rr := httptest.NewRecorder()

		env.pins.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var pins []model.Pin
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&pins))
		assert.Len(t, pins, 2)
	})
}

func TestSaveHandler_SaveAndUnsave(t *testing.T) {
	env := newTestEnv(t)
	author := env.registerUser(t, "ana@devboards.test")
	saver := env.registerUser(t, "ben@devboards.test")
	pin := env.createPin(t, author, "keeper")

	t.Run("save", func(t *testing.T) {
		req := newRequest(http.MethodPost, "/api/pins/"+pin.ID+"/save", "", saver)
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.saves.HandleSave(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var saved model.SavedPin
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&saved))
		assert.Equal(t, saver, saved.UserID)
		if assert.NotNil(t, saved.Pin) {
			assert.Equal(t, pin.ID, saved.Pin.ID)
		}
	})

	t.Run("saving twice is rejected", func(t *testing.T) {
		req := newRequest(http.MethodPost, "/api/pins/"+pin.ID+"/save", "", saver)
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.saves.HandleSave(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var errRes handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
		assert.Equal(t, "conflict", errRes.Error)
	})

	t.Run("saving a missing pin", func(t *testing.T) {
		req := newRequest(http.MethodPost, "/api/pins/missing/save", "", saver)
		req.SetPathValue("id", "missing")
		rr := httptest.NewRecorder()

		env.saves.HandleSave(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("list saved", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/pins/saved", "", saver)
		rr := httptest.NewRecorder()

		env.saves.HandleListSaved(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var pins []model.Pin
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&pins))
		assert.Len(t, pins, 1)
	})

	t.Run("unsave", func(t *testing.T) {
		req := newRequest(http.MethodDelete, "/api/pins/"+pin.ID+"/save", "", saver)
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.saves.HandleUnsave(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unsaving a pin never saved", func(t *testing.T) {
		req := newRequest(http.MethodDelete, "/api/pins/"+pin.ID+"/save", "", saver)
		req.SetPathValue("id", pin.ID)
		rr := httptest.NewRecorder()

		env.saves.HandleUnsave(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestUserHandler_GetProfile(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "ana@devboards.test")
	env.createPin(t, userID, "profile-pin")

	t.Run("existing user", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/users/"+userID, "", "")
		req.SetPathValue("id", userID)
		rr := httptest.NewRecorder()

		env.users.HandleGetProfile(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var profile struct {
			ID    string      `json:"id"`
			Name  string      `json:"name"`
			Email string      `json:"email"`
			Pins  []model.Pin `json:"pins"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&profile))
		assert.Equal(t, userID, profile.ID)
		assert.Empty(t, profile.Email)
		assert.Len(t, profile.Pins, 1)
	})

	t.Run("missing user", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/users/missing", "", "")
		req.SetPathValue("id", "missing")
		rr := httptest.NewRecorder()

		env.users.HandleGetProfile(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
