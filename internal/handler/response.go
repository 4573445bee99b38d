package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "socialbook/internal/errors"
	"socialbook/internal/model"
)

// UserResponse is the public projection of a user. It never carries the password hash.
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// UserDetailResponse is a user with their posts, newest first.
type UserDetailResponse struct {
	UserResponse
	Posts []PostResponse `json:"posts"`
}

// UserPostCountResponse is a user with how many posts they wrote.
type UserPostCountResponse struct {
	UserResponse
	PostCount int64 `json:"post_count"`
}

// UserLatestPostResponse is a user with their newest post, or null.
type UserLatestPostResponse struct {
	UserResponse
	LatestPost *PostResponse `json:"latest_post"`
}

// PostResponse is the public projection of a post.
type PostResponse struct {
	ID        uint          `json:"id"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"created_at"`
	AuthorID  uint          `json:"author_id"`
	Author    *UserResponse `json:"author,omitempty"`
}

// PostCreatedResponse is returned by POST /posts/.
type PostCreatedResponse struct {
	Message string       `json:"message"`
	Post    PostResponse `json:"post"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
	}
}

func newPostResponse(p *model.Post) PostResponse {
	resp := PostResponse{
		ID:        p.ID,
		Body:      p.Body,
		CreatedAt: p.CreatedAt.UTC(),
		AuthorID:  p.AuthorID,
	}
	if p.Author != nil {
		author := newUserResponse(p.Author)
		resp.Author = &author
	}
	return resp
}

func newPostResponses(posts []model.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, newPostResponse(&posts[i]))
	}
	return out
}

// parseID reads a positive integer path parameter. Anything else is reported as notFound.
func parseID(c echo.Context, notFound error) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, notFound
	}
	return uint(id), nil
}

// apiError maps a service error onto an Echo HTTP error. Unexpected errors are
// logged and answered with a generic 500.
func apiError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	if httpErr.Fields != nil {
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.Message)
}
