package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"socialbook/internal/model"
)

// PostRepository defines post persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	ListByTime(ctx context.Context, descending bool, limit int) ([]model.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]model.Post, error)
	CountByAuthor(ctx context.Context) ([]model.AuthorPostCount, error)
	LatestTimestampByAuthor(ctx context.Context) ([]model.AuthorLatestTimestamp, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PostRepository) error) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a post. A missing author yields ErrForeignKeyViolation.
// CreatedAt is kept as given when set.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

// FindByID loads one post with its author through a join.
func (r *postRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Joins("Author").Where("posts.id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns every post by id, authors batch-loaded.
func (r *postRepository) List(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := r.db.WithContext(ctx).Preload("Author").Order("id").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByTime returns posts ordered by creation time. A limit <= 0 means no limit.
// Authors are loaded with one extra IN query for the whole page.
func (r *postRepository) ListByTime(ctx context.Context, descending bool, limit int) ([]model.Post, error) {
	q := r.db.WithContext(ctx).Preload("Author").
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "created_at"}, Desc: descending},
			{Column: clause.Column{Name: "id"}, Desc: descending},
		}})
	if limit > 0 {
		q = q.Limit(limit)
	}

	var posts []model.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAuthor returns an author's posts, newest first.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByAuthor groups posts by author. Authors without posts are absent.
func (r *postRepository) CountByAuthor(ctx context.Context) ([]model.AuthorPostCount, error) {
	var rows []model.AuthorPostCount
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Select("author_id, COUNT(id) AS post_count").
		Group("author_id").
		Order("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestTimestampByAuthor returns the creation time of each author's newest post.
// The newest row is selected rather than aggregated with MAX so the column keeps its
// declared type on every dialect.
func (r *postRepository) LatestTimestampByAuthor(ctx context.Context) ([]model.AuthorLatestTimestamp, error) {
	var rows []model.AuthorLatestTimestamp
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.author_id, posts.created_at").
		Where(`posts.id = (
			SELECT p2.id FROM posts p2
			WHERE p2.author_id = posts.author_id
			ORDER BY p2.created_at DESC, p2.id DESC
			LIMIT 1)`).
		Order("posts.author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// WithTransaction executes a function within a database transaction.
func (r *postRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PostRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &postRepository{db: tx})
	})
}
