package router

import (
	"net/http"
	"net/url"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"socialbook/internal/handler"
	"socialbook/internal/service"
)

// Handlers groups everything the route table dispatches to.
type Handlers struct {
	Auth  *handler.AuthHandler
	Home  *handler.HomeHandler
	Users *handler.UserHandler
	Posts *handler.PostHandler
}

// Options tunes the HTML side of the route table.
type Options struct {
	CookieSecure bool
}

// Register wires routes and middleware.
func Register(e *echo.Echo, authService service.AuthService, h Handlers, opts Options) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Form pages carry a CSRF token; the JSON API does not.
	csrf := csrfProtection(opts.CookieSecure)

	// Public pages
	e.GET("/login-register", h.Auth.LoginRegister, csrf)
	e.POST("/login-register", h.Auth.LoginRegister, csrf)
	e.GET("/logout", h.Auth.Logout)

	// Pages that require a session
	guard := requireSession(authService)
	e.GET("/", h.Home.Home, guard, csrf)
	e.POST("/", h.Home.CreatePost, guard, csrf)
	e.GET("/profile/", h.Home.OwnProfile, guard)
	e.GET("/profile/:username", h.Home.Profile, guard)

	api := e.Group("/api/v1")
	api.GET("/users/", h.Users.ListUsers)
	api.GET("/users/post-counts", h.Users.ListPostCounts)
	api.GET("/users/latest-posts", h.Users.ListLatestPosts)
	api.GET("/users/:id", h.Users.GetUser)
	api.GET("/posts/", h.Posts.ListPosts)
	api.POST("/posts/", h.Posts.CreatePost)
	api.GET("/posts/:id", h.Posts.GetPost)
}

// requireSession lets a request through only with a valid, unrevoked session cookie.
// Anyone else is sent to the login page with the requested path as next.
func requireSession(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + handler.SessionCookie,
		ContextKey:  handler.SessionContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			target := "/login-register"
			if c.Request().Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
			}
			return c.Redirect(http.StatusFound, target)
		},
	})
}

// csrfProtection issues a token cookie on every form page and checks the
// hidden csrf field against it on POST.
func csrfProtection(secure bool) echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + handler.CSRFField,
		ContextKey:     handler.CSRFContextKey,
		CookiePath:     "/",
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}
