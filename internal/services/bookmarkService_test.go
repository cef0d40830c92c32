package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"linkstash/internal/models"
)

type fakeBookmarkRepo struct {
	created    []*models.Bookmark
	findResult []models.Bookmark
	lastFilter bson.M
	lastOpts   *options.FindOptions
	err        error
}

func (f *fakeBookmarkRepo) Create(ctx context.Context, bm *models.Bookmark) (*models.Bookmark, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, bm)
	return bm, nil
}

func (f *fakeBookmarkRepo) Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Bookmark, error) {
	f.lastFilter = filter
	f.lastOpts = opts
	return f.findResult, f.err
}

func (f *fakeBookmarkRepo) FindOne(ctx context.Context, filter bson.M) (*models.Bookmark, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	if len(f.findResult) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &f.findResult[0], nil
}

func (f *fakeBookmarkRepo) UpdateOne(ctx context.Context, filter bson.M, update bson.M) (*mongo.UpdateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeBookmarkRepo) DeleteOne(ctx context.Context, filter bson.M) (*mongo.DeleteResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func TestQuickAdd(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("defaults tags to general", func(t *testing.T) {
		repo := &fakeBookmarkRepo{}
		svc := NewBookmarkService(repo)

		bm, err := svc.QuickAdd(context.Background(), userID, "https://go.dev", "go", nil, "")

		require.NoError(t, err)
		assert.Equal(t, []string{"general"}, bm.Tags)
		assert.False(t, bm.Reading)
		require.Len(t, repo.created, 1)
	})

	t.Run("normalizes and deduplicates tags", func(t *testing.T) {
		repo := &fakeBookmarkRepo{}
		svc := NewBookmarkService(repo)

		bm, err := svc.QuickAdd(context.Background(), userID, "https://go.dev", "go", []string{"Tech", " tech ", "Tutorial"}, "")

		require.NoError(t, err)
		assert.Equal(t, []string{"tech", "tutorial"}, bm.Tags)
	})

	t.Run("rejects relative URLs", func(t *testing.T) {
		repo := &fakeBookmarkRepo{}
		svc := NewBookmarkService(repo)

		_, err := svc.QuickAdd(context.Background(), userID, "not-a-url", "title", nil, "")

		require.Error(t, err)
		assert.Empty(t, repo.created)
	})

	t.Run("requires url and title", func(t *testing.T) {
		svc := NewBookmarkService(&fakeBookmarkRepo{})

		_, err := svc.QuickAdd(context.Background(), userID, "", "title", nil, "")
		assert.Error(t, err)

		_, err = svc.QuickAdd(context.Background(), userID, "https://go.dev", "", nil, "")
		assert.Error(t, err)
	})
}

func TestListReading(t *testing.T) {
	userID := primitive.NewObjectID()
	repo := &fakeBookmarkRepo{}
	svc := NewBookmarkService(repo)

	_, err := svc.ListReading(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, bson.M{"user_id": userID, "reading": true}, repo.lastFilter)
	require.NotNil(t, repo.lastOpts)
	assert.Equal(t, newestFirst, repo.lastOpts.Sort)
}

func TestListRecentAppliesLimit(t *testing.T) {
	userID := primitive.NewObjectID()
	repo := &fakeBookmarkRepo{}
	svc := NewBookmarkService(repo)

	_, err := svc.ListRecent(context.Background(), userID, 10)

	require.NoError(t, err)
	require.NotNil(t, repo.lastOpts)
	require.NotNil(t, repo.lastOpts.Limit)
	assert.Equal(t, int64(10), *repo.lastOpts.Limit)
}

func TestSearchFilterShape(t *testing.T) {
	userID := primitive.NewObjectID()
	repo := &fakeBookmarkRepo{}
	svc := NewBookmarkService(repo)

	_, err := svc.Search(context.Background(), userID, "c++ (notes)", 5)

	require.NoError(t, err)
	assert.Equal(t, userID, repo.lastFilter["user_id"])

	or, ok := repo.lastFilter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)

	// Regex metacharacters in the query must be quoted, not interpreted.
	pattern, ok := or[0]["title"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `c\+\+ \(notes\)`, pattern.Pattern)
	assert.Equal(t, "i", pattern.Options)
}

func TestAddBookmarkValidation(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("requires at least one tag", func(t *testing.T) {
		svc := NewBookmarkService(&fakeBookmarkRepo{})

		_, err := svc.AddBookmark(context.Background(), userID, models.AddBookmarkRequestBody{
			URL:   "https://go.dev",
			Title: "go",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "tag")
	})

	t.Run("accepts a complete request", func(t *testing.T) {
		repo := &fakeBookmarkRepo{}
		svc := NewBookmarkService(repo)

		bm, err := svc.AddBookmark(context.Background(), userID, models.AddBookmarkRequestBody{
			URL:   "https://go.dev",
			Title: "go",
			Tags:  []string{"Lang"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"lang"}, bm.Tags)
		assert.False(t, bm.CreatedAt.IsZero())
	})
}
