package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	apperrors "socialbook/internal/errors"
	"socialbook/internal/model"
	"socialbook/internal/service"
	"socialbook/internal/view"
)

// HomeHandler serves the timeline and profile pages. Every route requires a session.
type HomeHandler struct {
	userService service.UserService
	postService service.PostService
	cookies     CookieConfig
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(userService service.UserService, postService service.PostService, cookies CookieConfig) *HomeHandler {
	return &HomeHandler{userService: userService, postService: postService, cookies: cookies}
}

type homeData struct {
	Body  string
	Posts []model.Post
}

type postForm struct {
	Body string `form:"body"`
}

// Home handles GET /.
func (h *HomeHandler) Home(c echo.Context) error {
	return h.renderHome(c, http.StatusOK, &homeData{}, nil, h.cookies.popFlashes(c))
}

// CreatePost handles POST /. A stored post is followed by a redirect back to the timeline.
func (h *HomeHandler) CreatePost(c echo.Context) error {
	var form postForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	claims := CurrentSession(c)
	if claims == nil {
		return c.Redirect(http.StatusFound, "/login-register")
	}

	_, err := h.postService.CreatePost(c.Request().Context(), service.CreatePostInput{
		Body:     form.Body,
		AuthorID: &claims.UserID,
	})
	if err != nil {
		data := &homeData{Body: form.Body}
		var verr *apperrors.ValidationError
		switch {
		case errors.As(err, &verr):
			return h.renderHome(c, http.StatusUnprocessableEntity, data, verr.Fields, nil)
		case errors.Is(err, apperrors.ErrUnknownAuthor):
			// The account behind this session no longer exists.
			h.cookies.clearSession(c)
			return c.Redirect(http.StatusFound, "/login-register")
		default:
			c.Logger().Errorf("create post for %d: %v", claims.UserID, err)
			return h.renderHome(c, http.StatusInternalServerError, data, nil,
				[]view.Flash{{Category: flashDanger, Message: genericFailure}})
		}
	}

	h.cookies.setFlash(c, flashSuccess, "Your post is now live!")
	return c.Redirect(http.StatusFound, "/")
}

func (h *HomeHandler) renderHome(c echo.Context, status int, data *homeData, fieldErrors map[string][]string, flashes []view.Flash) error {
	posts, err := h.postService.Timeline(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("timeline: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, genericFailure)
	}
	data.Posts = posts
	return c.Render(status, view.PageHome, view.Page{
		Title:       "Home",
		CurrentUser: currentUsername(c),
		Flashes:     flashes,
		Errors:      fieldErrors,
		CSRF:        csrfToken(c),
		Data:        data,
	})
}

// Profile handles GET /profile/:username.
func (h *HomeHandler) Profile(c echo.Context) error {
	// Params come from the decoded URL path unless the request kept a raw one.
	username := c.Param("username")
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(username)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, apperrors.ErrUserNotFound.Error())
		}
		username = unescaped
	}
	profile, err := h.userService.GetProfile(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		c.Logger().Errorf("profile %q: %v", username, err)
		return echo.NewHTTPError(http.StatusInternalServerError, genericFailure)
	}
	return c.Render(http.StatusOK, view.PageProfile, view.Page{
		Title:       profile.User.Username,
		CurrentUser: currentUsername(c),
		Flashes:     h.cookies.popFlashes(c),
		Data:        profile,
	})
}

// OwnProfile handles GET /profile/ by redirecting to the signed-in user's profile.
func (h *HomeHandler) OwnProfile(c echo.Context) error {
	username := currentUsername(c)
	if username == "" {
		return c.Redirect(http.StatusFound, "/login-register")
	}
	return c.Redirect(http.StatusFound, "/profile/"+url.PathEscape(username))
}
