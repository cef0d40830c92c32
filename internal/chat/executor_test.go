package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"linkstash/internal/models"
)

type fakeStore struct {
	reading []models.Bookmark
	recent  []models.Bookmark
	found   []models.Bookmark
	err     error

	added       []models.Bookmark
	searchQuery string
	recentLimit int64
	searchLimit int64
}

func (f *fakeStore) ListReading(ctx context.Context, userID primitive.ObjectID) ([]models.Bookmark, error) {
	return f.reading, f.err
}

func (f *fakeStore) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Bookmark, error) {
	f.recentLimit = limit
	return f.recent, f.err
}

func (f *fakeStore) Search(ctx context.Context, userID primitive.ObjectID, query string, limit int64) ([]models.Bookmark, error) {
	f.searchQuery = query
	f.searchLimit = limit
	return f.found, f.err
}

func (f *fakeStore) QuickAdd(ctx context.Context, userID primitive.ObjectID, url, title string, tags []string, description string) (*models.Bookmark, error) {
	if f.err != nil {
		return nil, f.err
	}
	bm := models.Bookmark{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		URL:         url,
		Title:       title,
		Tags:        tags,
		Description: description,
		CreatedAt:   time.Now(),
	}
	f.added = append(f.added, bm)
	return &bm, nil
}

func TestExecuteListReading(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("empty reading list yields fixed message", func(t *testing.T) {
		store := &fakeStore{}
		e := NewExecutor(store)

		reply := e.Execute(context.Background(), Command{Kind: KindListReading}, userID)

		assert.Equal(t, "📚 Your reading list is empty.", reply)
	})

	t.Run("renders numbered list with description and tags", func(t *testing.T) {
		store := &fakeStore{reading: []models.Bookmark{
			{Title: "go blog", URL: "https://go.dev/blog", Description: "official blog", Tags: []string{"go", "news"}},
			{Title: "mongo docs", URL: "https://mongodb.com/docs"},
		}}
		e := NewExecutor(store)

		reply := e.Execute(context.Background(), Command{Kind: KindListReading}, userID)

		assert.Contains(t, reply, "1. *go blog*")
		assert.Contains(t, reply, "🔗 https://go.dev/blog")
		assert.Contains(t, reply, "📝 official blog")
		assert.Contains(t, reply, "🏷️ go, news")
		assert.Contains(t, reply, "2. *mongo docs*")
	})

	t.Run("store failure becomes in-chat error string", func(t *testing.T) {
		store := &fakeStore{err: errors.New("connection reset")}
		e := NewExecutor(store)

		reply := e.Execute(context.Background(), Command{Kind: KindListReading}, userID)

		assert.Contains(t, reply, "❌ Error fetching reading list")
		assert.Contains(t, reply, "connection reset")
	})
}

func TestExecuteListAll(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("caps at ten records", func(t *testing.T) {
		store := &fakeStore{}
		e := NewExecutor(store)

		reply := e.Execute(context.Background(), Command{Kind: KindListAll}, userID)

		assert.Equal(t, int64(10), store.recentLimit)
		assert.Equal(t, "📑 You have no bookmarks yet.", reply)
	})

	t.Run("no description line on the all list", func(t *testing.T) {
		store := &fakeStore{recent: []models.Bookmark{
			{Title: "a", URL: "https://a.com", Description: "hidden", Tags: []string{"x"}},
		}}
		e := NewExecutor(store)

		reply := e.Execute(context.Background(), Command{Kind: KindListAll}, userID)

		assert.NotContains(t, reply, "hidden")
		assert.Contains(t, reply, "🏷️ x")
	})
}

func TestExecuteAdd(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("malformed add returns usage with literal example", func(t *testing.T) {
		store := &fakeStore{}
		e := NewExecutor(store)

		reply := e.Execute(context.Background(), Command{Kind: KindAdd, Invalid: true}, userID)

		assert.Contains(t, reply, "add https://example.com | Example Site | tech,tutorial")
		assert.Empty(t, store.added)
	})

	t.Run("success echoes title url and tags", func(t *testing.T) {
		store := &fakeStore{}
		e := NewExecutor(store)

		cmd := Command{Kind: KindAdd, URL: "https://x.com", Title: "site", Tags: []string{"tech", "tutorial"}}
		reply := e.Execute(context.Background(), cmd, userID)

		assert.Contains(t, reply, "✅ Bookmark added successfully!")
		assert.Contains(t, reply, "*site*")
		assert.Contains(t, reply, "https://x.com")
		assert.Contains(t, reply, "tech, tutorial")
		assert.Len(t, store.added, 1)
	})

	t.Run("two identical adds create two records", func(t *testing.T) {
		store := &fakeStore{}
		e := NewExecutor(store)

		cmd := Command{Kind: KindAdd, URL: "https://x.com", Title: "site", Tags: []string{"general"}}
		e.Execute(context.Background(), cmd, userID)
		e.Execute(context.Background(), cmd, userID)

		assert.Len(t, store.added, 2)
		assert.NotEqual(t, store.added[0].ID, store.added[1].ID)
	})

	t.Run("store failure becomes in-chat error string", func(t *testing.T) {
		store := &fakeStore{err: errors.New("duplicate key")}
		e := NewExecutor(store)

		cmd := Command{Kind: KindAdd, URL: "https://x.com", Title: "site", Tags: []string{"general"}}
		reply := e.Execute(context.Background(), cmd, userID)

		assert.Contains(t, reply, "❌ Error adding bookmark")
		assert.Contains(t, reply, "duplicate key")
	})
}

func TestExecuteSearch(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("no matches echoes the query", func(t *testing.T) {
		store := &fakeStore{}
		e := NewExecutor(store)

		reply := e.Execute(context.Background(), Command{Kind: KindSearch, Query: "zzz-no-match"}, userID)

		assert.Contains(t, reply, "zzz-no-match")
		assert.Contains(t, reply, "🔍 No bookmarks found")
		assert.Equal(t, int64(5), store.searchLimit)
	})

	t.Run("results are numbered without descriptions", func(t *testing.T) {
		store := &fakeStore{found: []models.Bookmark{
			{Title: "hit", URL: "https://hit.com", Description: "hidden", Tags: []string{"t"}},
		}}
		e := NewExecutor(store)

		reply := e.Execute(context.Background(), Command{Kind: KindSearch, Query: "hit"}, userID)

		assert.Contains(t, reply, "1. *hit*")
		assert.NotContains(t, reply, "hidden")
	})
}

func TestExecuteUnrecognizedReturnsHelp(t *testing.T) {
	e := NewExecutor(&fakeStore{})

	reply := e.Execute(context.Background(), Command{Kind: KindUnrecognized, Raw: "gibberish"}, primitive.NewObjectID())

	assert.Equal(t, HelpMessage, reply)
	assert.Contains(t, reply, "*Available Commands:*")
}
