package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "socialbook/internal/errors"
	"socialbook/internal/model"
	"socialbook/internal/repository"
)

// Profile is everything the profile page shows about one user.
type Profile struct {
	User      *model.User
	Posts     []model.Post
	Followers int64
	Following int64
}

// UserService exposes user queries and follower graph operations.
type UserService interface {
	GetProfile(ctx context.Context, username string) (*Profile, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserWithPosts(ctx context.Context, id uint) (*model.User, []model.Post, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListWithPostCount(ctx context.Context) ([]model.UserPostCount, error)
	ListWithLatestPost(ctx context.Context) ([]model.UserLatestPost, error)
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	follows repository.FollowRepository
}

// NewUserService creates a user service.
func NewUserService(users repository.UserRepository, posts repository.PostRepository, follows repository.FollowRepository) UserService {
	return &userService{users: users, posts: posts, follows: follows}
}

func (s *userService) GetProfile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.users.FindByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	posts, err := s.posts.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	followers, err := s.follows.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	following, err := s.follows.CountFollowees(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count followees: %w", err)
	}
	return &Profile{User: user, Posts: posts, Followers: followers, Following: following}, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (s *userService) GetUserWithPosts(ctx context.Context, id uint) (*model.User, []model.Post, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.posts.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list posts: %w", err)
	}
	return user, posts, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// ListWithPostCount pairs every user with their post count. Users without posts count zero.
func (s *userService) ListWithPostCount(ctx context.Context) ([]model.UserPostCount, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	counts, err := s.posts.CountByAuthor(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	byAuthor := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byAuthor[c.AuthorID] = c.PostCount
	}
	out := make([]model.UserPostCount, 0, len(users))
	for _, u := range users {
		out = append(out, model.UserPostCount{User: u, PostCount: byAuthor[u.ID]})
	}
	return out, nil
}

func (s *userService) ListWithLatestPost(ctx context.Context) ([]model.UserLatestPost, error) {
	return s.users.ListWithLatestPost(ctx)
}

// Follow makes followerID follow followeeID. Self-follows are rejected.
func (s *userService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return apperrors.ErrSelfFollow
	}
	if err := s.follows.Follow(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, apperrors.ErrForeignKeyViolation) {
			return apperrors.ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.follows.Unfollow(ctx, followerID, followeeID)
}

// DeleteUser removes a user and everything that references them.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	return s.users.Delete(ctx, id)
}
