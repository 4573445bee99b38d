package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "socialbook/internal/errors"
	"socialbook/internal/service"
)

// UserHandler serves the read-only user API.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} UserResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/ [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, newUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetUser godoc
// @Summary Get user by id with their posts
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserDetailResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, apperrors.ErrUserNotFound)
	if err != nil {
		return apiError(c, err)
	}
	user, posts, err := h.svc.GetUserWithPosts(c.Request().Context(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, UserDetailResponse{
		UserResponse: newUserResponse(user),
		Posts:        newPostResponses(posts),
	})
}

// ListPostCounts godoc
// @Summary List users with their post counts
// @Description Users without posts are included with a count of zero.
// @Tags users
// @Produce json
// @Success 200 {array} UserPostCountResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/post-counts [get]
func (h *UserHandler) ListPostCounts(c echo.Context) error {
	rows, err := h.svc.ListWithPostCount(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	resp := make([]UserPostCountResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, UserPostCountResponse{
			UserResponse: newUserResponse(&rows[i].User),
			PostCount:    rows[i].PostCount,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// ListLatestPosts godoc
// @Summary List users with their latest post
// @Description latest_post is null for users without posts.
// @Tags users
// @Produce json
// @Success 200 {array} UserLatestPostResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/latest-posts [get]
func (h *UserHandler) ListLatestPosts(c echo.Context) error {
	rows, err := h.svc.ListWithLatestPost(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	resp := make([]UserLatestPostResponse, 0, len(rows))
	for i := range rows {
		item := UserLatestPostResponse{UserResponse: newUserResponse(&rows[i].User)}
		if rows[i].LatestPost != nil {
			post := newPostResponse(rows[i].LatestPost)
			item.LatestPost = &post
		}
		resp = append(resp, item)
	}
	return c.JSON(http.StatusOK, resp)
}
