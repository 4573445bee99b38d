package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "socialbook/internal/errors"
	"socialbook/internal/model"
)

// UserRepository defines persistence operations for users.
// Find methods return a nil user and nil error when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) ([]model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListWithLatestPost(ctx context.Context) ([]model.UserLatestPost, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user. Username or email collisions yield ErrUniqueViolation.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// Delete removes a user; posts, comments and follow edges go with it through ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// DeleteAll removes every user and, by cascade, everything they own.
func (r *userRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.User{})
	return res.RowsAffected, res.Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameOrEmail checks both unique fields in one query.
func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

type userLatestPostRow struct {
	model.User
	PostID        *uint
	PostBody      *string
	PostCreatedAt *time.Time
}

// ListWithLatestPost returns every user with their most recent post.
// The latest post is picked by id through a correlated subquery, so users without posts
// still appear and two posts sharing a timestamp never duplicate a user.
func (r *userRepository) ListWithLatestPost(ctx context.Context) ([]model.UserLatestPost, error) {
	var rows []userLatestPostRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*, posts.id AS post_id, posts.body AS post_body, posts.created_at AS post_created_at").
		Joins(`LEFT JOIN posts ON posts.id = (
			SELECT p2.id FROM posts p2
			WHERE p2.author_id = users.id
			ORDER BY p2.created_at DESC, p2.id DESC
			LIMIT 1)`).
		Order("users.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]model.UserLatestPost, 0, len(rows))
	for _, row := range rows {
		item := model.UserLatestPost{User: row.User}
		if row.PostID != nil {
			item.LatestPost = &model.Post{
				ID:       *row.PostID,
				Body:     deref(row.PostBody),
				AuthorID: row.User.ID,
			}
			if row.PostCreatedAt != nil {
				item.LatestPost.CreatedAt = *row.PostCreatedAt
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// WithTransaction executes a function within a database transaction.
func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &userRepository{db: tx})
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
