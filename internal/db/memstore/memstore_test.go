package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"connectsphere/internal/db/queries"
	"connectsphere/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStoreTest создает хранилище с часами, которые идут на секунду за вызов
func setupStoreTest(t *testing.T) *queries.Store {
	t.Helper()
	db := NewDB()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var (
		mu   sync.Mutex
		tick int
	)
	db.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return newStore(db)
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	store := setupStoreTest(t)

	alice, err := store.Users.CreateUser(ctx, &models.User{Name: "Alice", Email: "alice@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Len(t, alice.ID, 24)
	assert.Equal(t, models.RoleUser, alice.Role)
	assert.True(t, alice.ProfilePic.IsDefault())

	t.Run("Повторный email", func(t *testing.T) {
		_, err := store.Users.CreateUser(ctx, &models.User{Name: "Other", Email: "ALICE@x.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, models.ErrDuplicate)
	})

	t.Run("Поиск по email и идентификатору", func(t *testing.T) {
		byEmail, err := store.Users.GetUserByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		byID, err := store.Users.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, byEmail, byID)

		_, err = store.Users.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Изменение возвращенной копии не меняет хранилище", func(t *testing.T) {
		u, err := store.Users.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		u.Name = "Mallory"

		again, err := store.Users.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", again.Name)
	})

	t.Run("Блокировка и подсчет", func(t *testing.T) {
		_, err := store.Users.CreateUser(ctx, &models.User{Name: "Bob", Email: "bob@x.com", PasswordHash: "h"})
		require.NoError(t, err)

		blocked, err := store.Users.SetBlocked(ctx, alice.ID, true)
		require.NoError(t, err)
		assert.True(t, blocked.IsBlocked)

		yes, no := true, false
		total, _ := store.Users.CountUsers(ctx, models.UserFilter{})
		nBlocked, _ := store.Users.CountUsers(ctx, models.UserFilter{Blocked: &yes})
		nActive, _ := store.Users.CountUsers(ctx, models.UserFilter{Blocked: &no})
		assert.Equal(t, int64(2), total)
		assert.Equal(t, int64(1), nBlocked)
		assert.Equal(t, int64(1), nActive)
	})

	t.Run("Частичное обновление профиля", func(t *testing.T) {
		bio := "hello"
		u, err := store.Users.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Bio: &bio})
		require.NoError(t, err)
		assert.Equal(t, "Alice", u.Name)
		assert.Equal(t, "hello", u.Bio)
	})

	t.Run("Список новых первыми", func(t *testing.T) {
		users, err := store.Users.ListUsers(ctx, models.NewPage(1, 10))
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "bob@x.com", users[0].Email)

		users, err = store.Users.ListUsers(ctx, models.NewPage(3, 10))
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestPostStoreLikes(t *testing.T) {
	ctx := context.Background()
	store := setupStoreTest(t)

	post, err := store.Posts.CreatePost(ctx, &models.Post{UserID: "u1", Content: "hi", LikesCount: 9})
	require.NoError(t, err)
	assert.Equal(t, 0, post.LikesCount)

	testCases := []struct {
		name          string
		userID        string
		expectedLiked bool
		expectedCount int
	}{
		{name: "Первый лайк", userID: "u2", expectedLiked: true, expectedCount: 1},
		{name: "Второй пользователь", userID: "u3", expectedLiked: true, expectedCount: 2},
		{name: "Повтор снимает лайк", userID: "u2", expectedLiked: false, expectedCount: 1},
		{name: "Снова ставит", userID: "u2", expectedLiked: true, expectedCount: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			liked, count, err := store.Posts.ToggleLike(ctx, post.ID, tc.userID)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedLiked, liked)
			assert.Equal(t, tc.expectedCount, count)
		})
	}

	t.Run("Пост не найден", func(t *testing.T) {
		_, _, err := store.Posts.ToggleLike(ctx, "missing", "u2")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestToggleLikeConcurrent(t *testing.T) {
	ctx := context.Background()
	store := setupStoreTest(t)

	post, err := store.Posts.CreatePost(ctx, &models.Post{UserID: "u1", Content: "hi"})
	require.NoError(t, err)

	// Четное число переключений одного пользователя возвращает счетчик к нулю
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.Posts.ToggleLike(ctx, post.ID, "u2")
		}()
	}
	wg.Wait()

	got, err := store.Posts.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)
}

func TestPostsAndComments(t *testing.T) {
	ctx := context.Background()
	store := setupStoreTest(t)

	first, _ := store.Posts.CreatePost(ctx, &models.Post{UserID: "u1", Content: "first"})
	second, _ := store.Posts.CreatePost(ctx, &models.Post{UserID: "u2", Content: "second"})

	for _, text := range []string{"a", "b", "c"} {
		_, err := store.Comments.CreateComment(ctx, &models.Comment{PostID: first.ID, UserID: "u2", Text: text})
		require.NoError(t, err)
	}

	t.Run("Фильтр по автору", func(t *testing.T) {
		posts, err := store.Posts.ListPosts(ctx, models.PostFilter{UserID: "u1"}, models.NewPage(1, 10))
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, first.ID, posts[0].ID)

		n, _ := store.Posts.CountPosts(ctx, models.PostFilter{})
		assert.Equal(t, int64(2), n)
	})

	t.Run("Комментарии новыми первыми", func(t *testing.T) {
		comments, err := store.Comments.ListComments(ctx, first.ID, models.NewPage(1, 2))
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "c", comments[0].Text)
		assert.Equal(t, "b", comments[1].Text)
	})

	t.Run("Подсчет комментариев", func(t *testing.T) {
		counts, err := store.Comments.CountCommentsByPosts(ctx, []string{first.ID, second.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), counts[first.ID])
		assert.Equal(t, int64(0), counts[second.ID])

		total, _ := store.Comments.CountComments(ctx, "")
		assert.Equal(t, int64(3), total)
	})

	t.Run("Удаление поста и его комментариев", func(t *testing.T) {
		n, err := store.Comments.DeleteCommentsByPost(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		require.NoError(t, store.Posts.DeletePost(ctx, first.ID))

		_, err = store.Posts.GetPostByID(ctx, first.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, store.Posts.DeletePost(ctx, first.ID), models.ErrNotFound)
	})
}
