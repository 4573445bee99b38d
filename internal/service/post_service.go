package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "socialbook/internal/errors"
	"socialbook/internal/model"
	"socialbook/internal/repository"
	"socialbook/internal/validation"
)

// DefaultTimelineSize is how many posts the home timeline shows.
const DefaultTimelineSize = 30

// CreatePostInput is a new post submission.
type CreatePostInput struct {
	Body     string `form:"body" json:"body" validate:"required,min=3,max=160"`
	AuthorID *uint  `form:"-" json:"author_id" validate:"required"`
}

// PostService handles the timeline and post creation.
type PostService interface {
	Timeline(ctx context.Context) ([]model.Post, error)
	CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error)
	GetPost(ctx context.Context, id uint) (*model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
}

type postService struct {
	posts        repository.PostRepository
	validator    *validation.Validator
	timelineSize int
	now          func() time.Time
}

// NewPostService creates a post service. A non-positive timelineSize uses DefaultTimelineSize.
func NewPostService(posts repository.PostRepository, v *validation.Validator, timelineSize int) PostService {
	if timelineSize <= 0 {
		timelineSize = DefaultTimelineSize
	}
	return &postService{
		posts:        posts,
		validator:    v,
		timelineSize: timelineSize,
		now:          time.Now,
	}
}

// Timeline returns the newest posts with their authors.
func (s *postService) Timeline(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.ListByTime(ctx, true, s.timelineSize)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	return posts, nil
}

// CreatePost validates and stores a post stamped with the current time, then reloads it
// with its author. Nothing is written when validation fails or the author is unknown.
func (s *postService) CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	in.Body = strings.TrimSpace(in.Body)
	if err := s.validator.Check(&in); err != nil {
		return nil, err
	}

	post := &model.Post{
		Body:      in.Body,
		AuthorID:  *in.AuthorID,
		CreatedAt: s.now().UTC(),
	}
	var created *model.Post
	err := s.posts.WithTransaction(ctx, func(ctx context.Context, repo repository.PostRepository) error {
		if err := repo.Create(ctx, post); err != nil {
			if errors.Is(err, apperrors.ErrForeignKeyViolation) {
				return apperrors.ErrUnknownAuthor
			}
			return fmt.Errorf("create post: %w", err)
		}
		var err error
		created, err = repo.FindByID(ctx, post.ID)
		if err != nil {
			return fmt.Errorf("reload post: %w", err)
		}
		if created == nil {
			return fmt.Errorf("reload post %d: not visible after insert", post.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *postService) GetPost(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return nil, apperrors.ErrPostNotFound
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context) ([]model.Post, error) {
	return s.posts.List(ctx)
}
