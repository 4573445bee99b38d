package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"socialbook/internal/auth"
	"socialbook/internal/db"
	"socialbook/internal/handler"
	"socialbook/internal/model"
	"socialbook/internal/repository"
	"socialbook/internal/router"
	"socialbook/internal/service"
	"socialbook/internal/validation"
	"socialbook/internal/view"
)

// memoryRevocations stands in for the Redis-backed store.
type memoryRevocations struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (m *memoryRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[tokenID] = true
	return nil
}

func (m *memoryRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[tokenID], nil
}

type testApp struct {
	e       *echo.Echo
	users   repository.UserRepository
	posts   repository.PostRepository
	follows repository.FollowRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gormDB, err := db.Open(db.DriverSQLite, ":memory:", db.Options{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	users := repository.NewUserRepository(gormDB)
	posts := repository.NewPostRepository(gormDB)
	follows := repository.NewFollowRepository(gormDB)
	v := validation.New()
	sessions := auth.NewSessionService("test-secret", time.Hour)
	authService := service.NewAuthService(users, sessions, &memoryRevocations{ids: map[string]bool{}}, v)
	userService := service.NewUserService(users, posts, follows)
	postService := service.NewPostService(posts, v, 0)

	renderer, err := view.New()
	require.NoError(t, err)
	e := echo.New()
	e.Renderer = renderer
	cookies := handler.CookieConfig{}
	router.Register(e, authService, router.Handlers{
		Auth:  handler.NewAuthHandler(authService, cookies),
		Home:  handler.NewHomeHandler(userService, postService, cookies),
		Users: handler.NewUserHandler(userService),
		Posts: handler.NewPostHandler(postService),
	}, router.Options{})
	return &testApp{e: e, users: users, posts: posts, follows: follows}
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

const testCSRFToken = "test-csrf-token"

// postForm submits form the way a browser would after loading the page:
// with the CSRF cookie and the matching hidden field.
func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	withToken := url.Values{"csrf": {testCSRFToken}}
	for k, v := range form {
		withToken[k] = v
	}
	cookies = append(cookies, &http.Cookie{Name: "_csrf", Value: testCSRFToken})
	return a.postRawForm(path, withToken, cookies...)
}

// postRawForm submits form exactly as given.
func (a *testApp) postRawForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return a.do(req, cookies...)
}

func (a *testApp) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return a.do(req)
}

func registerForm(username, email string) url.Values {
	return url.Values{
		"username":        {username},
		"password":        {"password123"},
		"email":           {email},
		"firstname":       {"First"},
		"lastname":        {"Last"},
		"submit_register": {"Register"},
	}
}

func loginForm(username, password string) url.Values {
	return url.Values{
		"username":     {username},
		"password":     {password},
		"submit_login": {"Login"},
	}
}

// register signs a user up through the form and returns their session cookie.
func (a *testApp) register(t *testing.T, username string) *http.Cookie {
	t.Helper()
	rec := a.postForm("/login-register", registerForm(username, username+"@x.com"))
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	session := findCookie(rec, handler.SessionCookie)
	require.NotNil(t, session)
	return session
}

// createUser stores a user directly, skipping the password hash.
func (a *testApp) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:  username,
		Email:     username + "@x.com",
		Password:  "unused",
		Firstname: "First",
		Lastname:  "Last",
	}
	require.NoError(t, a.users.Create(context.Background(), u))
	return u
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
