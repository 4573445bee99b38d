package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"socialbook/internal/auth"
	apperrors "socialbook/internal/errors"
	"socialbook/internal/service"
	"socialbook/internal/view"
)

// AuthHandler serves the combined login / registration page and logout.
type AuthHandler struct {
	authService service.AuthService
	cookies     CookieConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type loginRegisterData struct {
	Next           string
	Login          service.LoginInput
	LoginErrors    map[string][]string
	Register       service.RegisterInput
	RegisterErrors map[string][]string
}

// LoginRegister handles GET and POST /login-register. The submit button name
// tells the two forms apart.
func (h *AuthHandler) LoginRegister(c echo.Context) error {
	next := c.FormValue("next")
	if next == "" {
		next = c.QueryParam("next")
	}
	data := &loginRegisterData{
		Next:  next,
		Login: service.LoginInput{Username: lastUsername(c)},
	}
	if c.Request().Method != http.MethodPost {
		return h.render(c, http.StatusOK, data, h.cookies.popFlashes(c))
	}
	if next != "" && !auth.IsSafeRedirect(next, c.Request().Host) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid redirect target")
	}

	switch {
	case c.FormValue("submit_login") != "":
		return h.login(c, data)
	case c.FormValue("submit_register") != "":
		return h.register(c, data)
	default:
		return h.render(c, http.StatusOK, data, nil)
	}
}

func (h *AuthHandler) login(c echo.Context, data *loginRegisterData) error {
	var in service.LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	in.Remember = c.FormValue("remember") != ""
	data.Login = service.LoginInput{Username: in.Username, Remember: in.Remember}

	user, err := h.authService.Login(c.Request().Context(), in)
	if err != nil {
		var verr *apperrors.ValidationError
		switch {
		case errors.As(err, &verr):
			data.LoginErrors = verr.Fields
			return h.render(c, http.StatusUnprocessableEntity, data, nil)
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			return h.render(c, http.StatusUnprocessableEntity, data,
				[]view.Flash{{Category: flashWarning, Message: err.Error()}})
		default:
			c.Logger().Errorf("login %q: %v", in.Username, err)
			return h.render(c, http.StatusInternalServerError, data,
				[]view.Flash{{Category: flashDanger, Message: genericFailure}})
		}
	}

	session, err := h.authService.StartSession(user)
	if err != nil {
		c.Logger().Errorf("start session for %d: %v", user.ID, err)
		return h.render(c, http.StatusInternalServerError, data,
			[]view.Flash{{Category: flashDanger, Message: genericFailure}})
	}
	h.cookies.setSession(c, session, in.Remember)
	h.cookies.setLastUsername(c, user.Username)

	if data.Next != "" {
		return c.Redirect(http.StatusFound, data.Next)
	}
	return c.Redirect(http.StatusFound, "/profile/"+url.PathEscape(user.Username))
}

func (h *AuthHandler) register(c echo.Context, data *loginRegisterData) error {
	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	data.Register = in
	data.Register.Password = ""

	user, err := h.authService.Register(c.Request().Context(), in)
	if err != nil {
		var verr *apperrors.ValidationError
		switch {
		case errors.As(err, &verr):
			data.RegisterErrors = verr.Fields
		case errors.Is(err, apperrors.ErrUsernameTaken):
			data.RegisterErrors = map[string][]string{"username": {err.Error()}}
		case errors.Is(err, apperrors.ErrEmailTaken):
			data.RegisterErrors = map[string][]string{"email": {err.Error()}}
		default:
			c.Logger().Errorf("register %q: %v", in.Username, err)
			return h.render(c, http.StatusInternalServerError, data,
				[]view.Flash{{Category: flashDanger, Message: genericFailure}})
		}
		return h.render(c, http.StatusUnprocessableEntity, data, nil)
	}

	session, err := h.authService.StartSession(user)
	if err != nil {
		// The account exists; the user can still log in normally.
		c.Logger().Errorf("start session for %d: %v", user.ID, err)
		h.cookies.setFlash(c, flashSuccess, "Registration successful! Please log in.")
		return c.Redirect(http.StatusFound, "/login-register")
	}
	h.cookies.setSession(c, session, true)
	h.cookies.setLastUsername(c, user.Username)
	h.cookies.setFlash(c, flashSuccess, "Registration successful!")
	return c.Redirect(http.StatusFound, "/profile/"+url.PathEscape(user.Username))
}

// Logout handles GET /logout. It always clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		if err := h.authService.Logout(c.Request().Context(), cookie.Value); err != nil {
			c.Logger().Errorf("logout: %v", err)
		}
	}
	h.cookies.clearSession(c)
	h.cookies.setFlash(c, flashSuccess, "You have been logged out.")
	return c.Redirect(http.StatusFound, "/login-register")
}

func (h *AuthHandler) render(c echo.Context, status int, data *loginRegisterData, flashes []view.Flash) error {
	return c.Render(status, view.PageLoginRegister, view.Page{
		Title:   "Login / Register",
		Flashes: flashes,
		CSRF:    csrfToken(c),
		Data:    data,
	})
}
