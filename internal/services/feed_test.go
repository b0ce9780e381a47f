package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/AlexandrBurak/hw05-final/internal/db"
	"github.com/AlexandrBurak/hw05-final/internal/models"
	"github.com/AlexandrBurak/hw05-final/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	db.DB = conn
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		sqlDB.Close()
	})
	return conn
}

func createUser(t *testing.T, conn *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Password: "x"}
	require.NoError(t, conn.Create(&user).Error)
	return user
}

func createPostAt(t *testing.T, conn *gorm.DB, author models.User, text string, at time.Time) models.Post {
	t.Helper()
	post := models.Post{Text: text, AuthorID: author.ID, CreatedAt: at}
	require.NoError(t, conn.Create(&post).Error)
	return post
}

func TestFollowingPostsEmptyWithoutFollows(t *testing.T) {
	conn := setupTestDB(t)

	reader := createUser(t, conn, "reader")
	author := createUser(t, conn, "author")
	createPostAt(t, conn, author, "чужая запись", time.Now())

	posts, err := services.FollowingPosts(reader.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFollowingPostsOnlyFollowedAuthors(t *testing.T) {
	conn := setupTestDB(t)

	reader := createUser(t, conn, "reader")
	followed := createUser(t, conn, "followed")
	other := createUser(t, conn, "other")

	createPostAt(t, conn, followed, "запись подписки", time.Now())
	createPostAt(t, conn, other, "посторонняя запись", time.Now())

	require.NoError(t, services.FollowAuthor(reader.ID, followed.ID))

	posts, err := services.FollowingPosts(reader.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "запись подписки", posts[0].Text)
}

func TestFollowingPostsMergedNewestFirst(t *testing.T) {
	conn := setupTestDB(t)

	reader := createUser(t, conn, "reader")
	first := createUser(t, conn, "first")
	second := createUser(t, conn, "second")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createPostAt(t, conn, first, "старая", base)
	createPostAt(t, conn, second, "средняя", base.Add(time.Hour))
	createPostAt(t, conn, first, "новая", base.Add(2*time.Hour))

	require.NoError(t, services.FollowAuthor(reader.ID, first.ID))
	require.NoError(t, services.FollowAuthor(reader.ID, second.ID))

	posts, err := services.FollowingPosts(reader.ID)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	// Interleaved across followees by recency, not grouped per author
	assert.Equal(t, "новая", posts[0].Text)
	assert.Equal(t, "средняя", posts[1].Text)
	assert.Equal(t, "старая", posts[2].Text)
}

func TestFollowAuthorIdempotent(t *testing.T) {
	conn := setupTestDB(t)

	reader := createUser(t, conn, "reader")
	author := createUser(t, conn, "author")

	require.NoError(t, services.FollowAuthor(reader.ID, author.ID))
	require.NoError(t, services.FollowAuthor(reader.ID, author.ID))

	var count int64
	conn.Model(&models.Follow{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestFollowAuthorSelfIsNoop(t *testing.T) {
	conn := setupTestDB(t)

	reader := createUser(t, conn, "reader")
	require.NoError(t, services.FollowAuthor(reader.ID, reader.ID))

	var count int64
	conn.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count)
}

func TestUnfollowRemovesExactlyOneEdge(t *testing.T) {
	conn := setupTestDB(t)

	reader := createUser(t, conn, "reader")
	author := createUser(t, conn, "author")
	bystander := createUser(t, conn, "bystander")

	require.NoError(t, services.FollowAuthor(reader.ID, author.ID))
	require.NoError(t, services.FollowAuthor(reader.ID, bystander.ID))

	require.NoError(t, services.UnfollowAuthor(reader.ID, author.ID))

	assert.False(t, services.IsFollowing(reader.ID, author.ID))
	assert.True(t, services.IsFollowing(reader.ID, bystander.ID))

	// Repeated unfollow is a no-op
	require.NoError(t, services.UnfollowAuthor(reader.ID, author.ID))
}
