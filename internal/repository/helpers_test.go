package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"socialbook/internal/db"
	"socialbook/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open(db.DriverSQLite, ":memory:", db.Options{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

func createUser(t *testing.T, repo UserRepository, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hash",
		Firstname: "First " + username,
		Lastname:  "Last " + username,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func createPost(t *testing.T, repo PostRepository, author *model.User, body string, at time.Time) *model.Post {
	t.Helper()
	post := &model.Post{Body: body, AuthorID: author.ID, CreatedAt: at}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}
