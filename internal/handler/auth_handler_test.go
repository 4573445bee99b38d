package handler_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "socialbook/internal/errors"
	"socialbook/internal/handler"
)

func TestLoginRegister_GetRendersBothForms(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/login-register")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="submit_login"`)
	assert.Contains(t, rec.Body.String(), `name="submit_register"`)
}

func TestRegister_Scenario(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm("/login-register", registerForm("alice", "alice@x.com"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/alice", rec.Header().Get("Location"))

	tests := []struct {
		name         string
		username     string
		email        string
		wantStatus   int
		wantLocation string
		wantBody     string
	}{
		{"username taken", "alice", "other@x.com", http.StatusUnprocessableEntity, "", apperrors.ErrUsernameTaken.Error()},
		{"email taken", "bob", "alice@x.com", http.StatusUnprocessableEntity, "", apperrors.ErrEmailTaken.Error()},
		{"username taken ignoring case", "ALICE", "alice2@x.com", http.StatusUnprocessableEntity, "", apperrors.ErrUsernameTaken.Error()},
		{"fresh user", "bob", "bob@x.com", http.StatusFound, "/profile/bob", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.postForm("/login-register", registerForm(tt.username, tt.email))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
				session := findCookie(rec, handler.SessionCookie)
				require.NotNil(t, session)
				assert.True(t, session.HttpOnly)
				assert.Positive(t, session.MaxAge)
			} else {
				assert.Nil(t, findCookie(rec, handler.SessionCookie))
			}
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}

	users, err := app.users.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRegister_ValidationKeepsEnteredValues(t *testing.T) {
	app := newTestApp(t)
	form := registerForm("abc", "carol@x.com")
	form.Set("firstname", "Carol")

	rec := app.postForm("/login-register", form)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Field must be at least 4 characters long.")
	assert.Contains(t, body, `value="carol@x.com"`)
	assert.Contains(t, body, `value="Carol"`)
	assert.NotContains(t, body, "password123")
}

func TestLogin_FailuresDoNotRevealWhetherUserExists(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	wrongPassword := app.postForm("/login-register", loginForm("alice", "not-the-password"))
	unknownUser := app.postForm("/login-register", loginForm("mallory", "not-the-password"))

	assert.Equal(t, http.StatusUnprocessableEntity, wrongPassword.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, unknownUser.Code)
	assert.Contains(t, wrongPassword.Body.String(), apperrors.ErrInvalidCredentials.Error())
	assert.Equal(t, wrongPassword.Body.String(), strings.ReplaceAll(unknownUser.Body.String(), "mallory", "alice"))
	assert.Nil(t, findCookie(wrongPassword, handler.SessionCookie))
	assert.Nil(t, findCookie(unknownUser, handler.SessionCookie))
}

func TestLogin_Success(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	t.Run("browser session cookie", func(t *testing.T) {
		rec := app.postForm("/login-register", loginForm("Alice", "password123"))

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile/alice", rec.Header().Get("Location"))
		session := findCookie(rec, handler.SessionCookie)
		require.NotNil(t, session)
		assert.Zero(t, session.MaxAge)
		last := findCookie(rec, "last_username")
		require.NotNil(t, last)
		assert.Equal(t, "alice", last.Value)
	})

	t.Run("remembered session cookie", func(t *testing.T) {
		form := loginForm("alice", "password123")
		form.Set("remember", "true")

		rec := app.postForm("/login-register", form)

		require.Equal(t, http.StatusFound, rec.Code)
		session := findCookie(rec, handler.SessionCookie)
		require.NotNil(t, session)
		assert.Positive(t, session.MaxAge)
	})

	t.Run("last username pre-fills the form", func(t *testing.T) {
		rec := app.get("/login-register", &http.Cookie{Name: "last_username", Value: "alice"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="username" value="alice"`)
	})
}

func TestLogin_NextRedirect(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	tests := []struct {
		name         string
		next         string
		wantStatus   int
		wantLocation string
	}{
		{"relative path", "/profile/bob", http.StatusFound, "/profile/bob"},
		{"same host", "http://example.com/", http.StatusFound, "http://example.com/"},
		{"foreign host", "http://evil.com/", http.StatusBadRequest, ""},
		{"scheme relative", "//evil.com/", http.StatusBadRequest, ""},
		{"javascript", "javascript:alert(1)", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := loginForm("alice", "password123")
			form.Set("next", tt.next)

			rec := app.postForm("/login-register", form)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
				assert.NotNil(t, findCookie(rec, handler.SessionCookie))
			} else {
				assert.Nil(t, findCookie(rec, handler.SessionCookie))
			}
		})
	}
}

func TestGuard_RedirectsToLoginWithNext(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		path         string
		wantLocation string
	}{
		{"/", "/login-register?next=" + url.QueryEscape("/")},
		{"/profile/alice", "/login-register?next=" + url.QueryEscape("/profile/alice")},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := app.get(tt.path)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
		})
	}

	rec := app.get("/", &http.Cookie{Name: handler.SessionCookie, Value: "forged"})
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	app := newTestApp(t)
	session := app.register(t, "alice")

	require.Equal(t, http.StatusOK, app.get("/", session).Code)

	rec := app.get("/logout", session)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login-register", rec.Header().Get("Location"))
	cleared := findCookie(rec, handler.SessionCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	rec = app.get("/", session)
	assert.Equal(t, http.StatusFound, rec.Code)

	// Logging out without a session still lands on the login page.
	rec = app.get("/logout")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestLoginRegister_CSRF(t *testing.T) {
	app := newTestApp(t)

	t.Run("page carries the token", func(t *testing.T) {
		rec := app.get("/login-register")

		require.Equal(t, http.StatusOK, rec.Code)
		token := findCookie(rec, "_csrf")
		require.NotNil(t, token)
		require.NotEmpty(t, token.Value)
		assert.True(t, token.HttpOnly)
		assert.Equal(t, 2, strings.Count(rec.Body.String(), `name="csrf" value="`+token.Value+`"`))
	})

	t.Run("token from the page is accepted", func(t *testing.T) {
		page := app.get("/login-register")
		token := findCookie(page, "_csrf")
		require.NotNil(t, token)

		form := registerForm("carol", "carol@x.com")
		form.Set("csrf", token.Value)
		rec := app.postRawForm("/login-register", form, token)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.NotNil(t, findCookie(rec, handler.SessionCookie))
	})

	t.Run("missing token", func(t *testing.T) {
		rec := app.postRawForm("/login-register", registerForm("alice", "alice@x.com"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, findCookie(rec, handler.SessionCookie))
		user, err := app.users.FindByUsername(t.Context(), "alice")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("token not matching the cookie", func(t *testing.T) {
		form := loginForm("carol", "password123")
		form.Set("csrf", "forged")
		rec := app.postRawForm("/login-register", form, &http.Cookie{Name: "_csrf", Value: "issued"})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Nil(t, findCookie(rec, handler.SessionCookie))
	})

	t.Run("json api is exempt", func(t *testing.T) {
		rec := app.postJSON("/api/v1/posts/", `{"body": "no token here", "author_id": 999}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
