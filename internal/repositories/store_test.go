package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"blogapi/internal/models"
	"blogapi/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteStore opens a private in-memory SQLite database per test.
func newSQLiteStore(t *testing.T) repositories.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := repositories.NewGORMStore(db)
	require.NoError(t, store.AutoMigrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newMemoryStore(t *testing.T) repositories.Store {
	return repositories.NewMemoryStore()
}

var backends = map[string]func(t *testing.T) repositories.Store{
	"sqlite": newSQLiteStore,
	"memory": newMemoryStore,
}

func TestUserRepository(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			users := newStore(t).Users()

			user := &models.User{Email: "jane@example.com", Password: "hash", FirstName: "Janet", LastName: "Doeson"}
			require.NoError(t, users.Create(ctx, user))
			assert.NotEmpty(t, user.ID)
			assert.False(t, user.CreatedAt.IsZero())

			dup := &models.User{Email: "jane@example.com", Password: "hash2"}
			err := users.Create(ctx, dup)
			assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

			byEmail, err := users.GetByEmail(ctx, "jane@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)
			assert.Equal(t, "hash", byEmail.Password)

			byID, err := users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "Janet", byID.FirstName)

			_, err = users.GetByID(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = users.GetByEmail(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			found, err := users.GetByIDs(ctx, []string{user.ID, "missing", user.ID})
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, user.ID, found[0].ID)
		})
	}
}

func TestPostRepository(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			posts := newStore(t).Posts()

			titles := []string{"hello world", "Say HELLO", "goodbye", "100%_literal"}
			created := make([]models.Post, 0, len(titles))
			for _, title := range titles {
				p := &models.Post{Title: title, Excerpt: "excerpt", Content: "content", UserID: "user-1"}
				require.NoError(t, posts.Create(ctx, p))
				created = append(created, *p)
			}

			all, err := posts.GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, len(titles))
			for i, p := range all {
				assert.Equal(t, titles[i], p.Title, "insertion order")
			}

			hits, err := posts.SearchByTitle(ctx, "Hello")
			require.NoError(t, err)
			assert.Equal(t, []string{"hello world", "Say HELLO"}, postTitles(hits))

			everything, err := posts.SearchByTitle(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, postTitles(all), postTitles(everything))

			// Wildcard characters are matched literally.
			literal, err := posts.SearchByTitle(ctx, "%_")
			require.NoError(t, err)
			assert.Equal(t, []string{"100%_literal"}, postTitles(literal))

			target := created[0]
			target.Title = "hello again"
			target.UserID = "someone-else"
			require.NoError(t, posts.Update(ctx, &target))
			updated, err := posts.GetByID(ctx, target.ID)
			require.NoError(t, err)
			assert.Equal(t, "hello again", updated.Title)
			assert.Equal(t, "user-1", updated.UserID, "author is immutable")
			assert.True(t, created[0].CreatedAt.Equal(updated.CreatedAt), "creation time is immutable")

			missing := models.Post{ID: "missing", Title: "x", Excerpt: "x", Content: "x"}
			assert.ErrorIs(t, posts.Update(ctx, &missing), repositories.ErrNotFound)

			require.NoError(t, posts.Delete(ctx, target.ID))
			_, err = posts.GetByID(ctx, target.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			assert.ErrorIs(t, posts.Delete(ctx, target.ID), repositories.ErrNotFound)
		})
	}
}

func TestCommentRepository(t *testing.T) {
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			comments := newStore(t).Comments()

			for _, c := range []models.Comment{
				{PostID: "p1", UserID: "u1", Text: "first"},
				{PostID: "p1", UserID: "u2", Text: "second"},
				{PostID: "p2", UserID: "u1", Text: "other"},
			} {
				c := c
				require.NoError(t, comments.Create(ctx, &c))
				assert.NotEmpty(t, c.ID)
			}

			p1, err := comments.ListByPost(ctx, "p1")
			require.NoError(t, err)
			require.Len(t, p1, 2)
			assert.Equal(t, "first", p1[0].Text)
			assert.Equal(t, "second", p1[1].Text)

			removed, err := comments.DeleteByPost(ctx, "p1")
			require.NoError(t, err)
			assert.EqualValues(t, 2, removed)

			p1, err = comments.ListByPost(ctx, "p1")
			require.NoError(t, err)
			assert.Empty(t, p1)

			p2, err := comments.ListByPost(ctx, "p2")
			require.NoError(t, err)
			assert.Len(t, p2, 1)
		})
	}
}

func TestGORMStore_AtomicRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	post := &models.Post{Title: "t", Excerpt: "e", Content: "c", UserID: "u"}
	require.NoError(t, store.Posts().Create(ctx, post))
	require.NoError(t, store.Comments().Create(ctx, &models.Comment{PostID: post.ID, UserID: "u", Text: "hi"}))

	boom := errors.New("boom")
	err := store.Atomic(ctx, func(tx repositories.Store) error {
		if _, err := tx.Comments().DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	comments, err := store.Comments().ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1, "comment deletion rolled back")
}

func postTitles(posts []models.Post) []string {
	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	return titles
}
