package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "socialbook/internal/errors"
	"socialbook/internal/model"
)

// FollowRepository manages the directed follower graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	ListFollowers(ctx context.Context, userID uint) ([]model.User, error)
	ListFollowees(ctx context.Context, userID uint) ([]model.User, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowees(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow adds the edge follower -> followee. Adding an existing edge is a no-op.
func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return apperrors.ErrSelfFollow
	}
	edge := model.Followership{FollowerID: followerID, FolloweeID: followeeID}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
	return translate(err)
}

// Unfollow removes the edge if present.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Followership{}).Error
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Followership{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// ListFollowers returns the users following userID, by username.
func (r *followRepository) ListFollowers(ctx context.Context, userID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN followerships ON followerships.follower_id = users.id").
		Where("followerships.followee_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListFollowees returns the users userID follows, by username.
func (r *followRepository) ListFollowees(ctx context.Context, userID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN followerships ON followerships.followee_id = users.id").
		Where("followerships.follower_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Followership{}).Where("followee_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowees(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Followership{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}
