package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	apperrors "socialbook/internal/errors"
	"socialbook/internal/service"
)

const maxPostPayload = 64 << 10

// PostHandler serves the post API.
type PostHandler struct {
	svc service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(svc service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePostRequest is the JSON body of POST /posts/.
type CreatePostRequest struct {
	Body     string `json:"body" example:"Hello world"`
	AuthorID *uint  `json:"author_id" example:"1"`
}

// ListPosts godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Success 200 {array} PostResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/ [get]
func (h *PostHandler) ListPosts(c echo.Context) error {
	posts, err := h.svc.ListPosts(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, newPostResponses(posts))
}

// GetPost godoc
// @Summary Get post by id
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, apperrors.ErrPostNotFound)
	if err != nil {
		return apiError(c, err)
	}
	post, err := h.svc.GetPost(c.Request().Context(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, newPostResponse(post))
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post data"
// @Success 201 {object} PostCreatedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/ [post]
func (h *PostHandler) CreatePost(c echo.Context) error {
	req, err := decodeCreatePost(c.Request().Body)
	if err != nil {
		return apiError(c, err)
	}
	post, err := h.svc.CreatePost(c.Request().Context(), service.CreatePostInput{
		Body:     req.Body,
		AuthorID: req.AuthorID,
	})
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusCreated, PostCreatedResponse{
		Message: "Post created",
		Post:    newPostResponse(post),
	})
}

var errNoInput = apperrors.NewHTTPError(http.StatusBadRequest, "No input data provided")

// decodeCreatePost reads the payload by hand so an absent body, null and {} can be
// told apart from a body with the wrong shape.
func decodeCreatePost(body io.Reader) (*CreatePostRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxPostPayload))
	if err != nil {
		return nil, errNoInput
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errNoInput
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, apperrors.NewValidationError("_schema", "Invalid input type.")
		}
		return nil, apperrors.NewHTTPError(http.StatusBadRequest, "Malformed JSON body")
	}
	if len(fields) == 0 {
		return nil, errNoInput
	}

	verr := &apperrors.ValidationError{Fields: map[string][]string{}}
	var unknown []string
	for name := range fields {
		if name != "body" && name != "author_id" {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		verr.Fields[name] = []string{"Unknown field."}
	}

	var req CreatePostRequest
	if v, ok := fields["body"]; ok && !bytes.Equal(v, []byte("null")) {
		if err := json.Unmarshal(v, &req.Body); err != nil {
			verr.Fields["body"] = []string{"Not a valid string."}
		}
	}
	if v, ok := fields["author_id"]; ok && !bytes.Equal(v, []byte("null")) {
		var id uint
		if err := json.Unmarshal(v, &id); err != nil {
			verr.Fields["author_id"] = []string{"Not a valid integer."}
		} else {
			req.AuthorID = &id
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return &req, nil
}
