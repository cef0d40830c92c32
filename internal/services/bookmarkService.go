package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"linkstash/internal/models"
	"linkstash/internal/repositories"
)

type BookmarkService interface {
	GetBookmarks(ctx context.Context, userID primitive.ObjectID, r *http.Request) ([]models.Bookmark, error)
	AddBookmark(ctx context.Context, userID primitive.ObjectID, reqBody models.AddBookmarkRequestBody) (*models.Bookmark, error)
	GetBookmarkByID(ctx context.Context, userID, bookmarkID primitive.ObjectID) (*models.Bookmark, error)
	DeleteBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID) (bool, error)
	UpdateBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID, updatePayload models.UpdateBookmarkRequestBody) (*models.Bookmark, error)

	// Bot-facing queries, consumed by the chat command executor.
	ListReading(ctx context.Context, userID primitive.ObjectID) ([]models.Bookmark, error)
	ListRecent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Bookmark, error)
	Search(ctx context.Context, userID primitive.ObjectID, query string, limit int64) ([]models.Bookmark, error)
	QuickAdd(ctx context.Context, userID primitive.ObjectID, url, title string, tags []string, description string) (*models.Bookmark, error)
}

type bookmarkServiceImpl struct {
	bookmarkRepo repositories.BookmarkRepository
}

func NewBookmarkService(bookmarkRepo repositories.BookmarkRepository) BookmarkService {
	return &bookmarkServiceImpl{bookmarkRepo: bookmarkRepo}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

// normalizeTags lowercases and deduplicates tags, preserving first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func validateBookmarkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("URL must be absolute: %s", rawURL)
	}
	return nil
}

func (s *bookmarkServiceImpl) buildBookmarkFilter(r *http.Request, userID primitive.ObjectID) (bson.M, error) {
	log.Debug().Str("userID", userID.Hex()).Msg("Building bookmark filter")
	filter := bson.M{"user_id": userID}

	for param, field := range map[string]string{
		"reading":    "reading",
		"isFav":      "is_favorite",
		"isArchived": "is_archived",
	} {
		value := r.URL.Query().Get(param)
		if value == "" {
			continue
		}
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			log.Warn().Err(err).Str("param", param).Str("value", value).Msg("Invalid boolean filter")
			return nil, fmt.Errorf("invalid %s format. Must be 'true' or 'false'.", param)
		}
		filter[field] = parsed
	}

	if tagsParam := r.URL.Query().Get("tags"); tagsParam != "" {
		tags := normalizeTags(strings.Split(tagsParam, ","))
		if len(tags) > 0 {
			filter["tags"] = bson.M{"$all": tags}
		}
	}

	if folder := r.URL.Query().Get("folder"); folder != "" {
		filter["folder"] = folder
	}

	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	log.Debug().Str("userID", userID.Hex()).Interface("filter", filter).Msg("Bookmark filter built successfully")
	return filter, nil
}

func (s *bookmarkServiceImpl) GetBookmarks(ctx context.Context, userID primitive.ObjectID, r *http.Request) ([]models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Msg("Attempting to retrieve bookmarks")
	filter, err := s.buildBookmarkFilter(r, userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Msg("Failed to build bookmark filter")
		return nil, err
	}

	var limit int64 = 20
	page := int64(1)
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		p, err := strconv.Atoi(pageParam)
		if err != nil || p < 1 {
			log.Warn().Str("page", pageParam).Msg("Page query should be a positive integer")
			return nil, fmt.Errorf("page query should be a positive integer")
		}
		page = int64(p)
	}

	opts := options.Find().SetSort(newestFirst).SetLimit(limit).SetSkip((page - 1) * limit)
	bookmarks, err := s.bookmarkRepo.Find(ctx, filter, opts)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Interface("filter", filter).Msg("Error finding bookmarks")
		return nil, err
	}

	log.Debug().Str("userID", userID.Hex()).Int("count", len(bookmarks)).Msg("Successfully retrieved bookmarks")
	return bookmarks, nil
}

func (s *bookmarkServiceImpl) AddBookmark(ctx context.Context, userID primitive.ObjectID, reqBody models.AddBookmarkRequestBody) (*models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Interface("reqBody", reqBody).Msg("Attempting to add bookmark")
	if reqBody.URL == "" || reqBody.Title == "" {
		log.Warn().Str("userID", userID.Hex()).Msg("URL and Title are required for adding bookmark")
		return nil, fmt.Errorf("URL and Title are required")
	}

	if err := validateBookmarkURL(reqBody.URL); err != nil {
		log.Warn().Err(err).Str("userID", userID.Hex()).Str("url", reqBody.URL).Msg("Invalid URL during AddBookmark")
		return nil, err
	}

	tags := normalizeTags(reqBody.Tags)
	if len(tags) == 0 {
		// The interactive form requires at least one tag; the bot path
		// (QuickAdd) defaults missing tags instead.
		log.Warn().Str("userID", userID.Hex()).Msg("At least one tag is required for adding bookmark")
		return nil, fmt.Errorf("at least one tag is required")
	}

	now := time.Now()
	bm := models.Bookmark{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Title:       reqBody.Title,
		URL:         reqBody.URL,
		Description: reqBody.Description,
		Tags:        tags,
		Reading:     reqBody.Reading,
		IsFavorite:  reqBody.IsFavorite,
		Category:    reqBody.Category,
		Folder:      reqBody.Folder,
		Notes:       reqBody.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	createdBookmark, err := s.bookmarkRepo.Create(ctx, &bm)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Msg("Error inserting bookmark")
		return nil, err
	}

	log.Info().Str("userID", userID.Hex()).Str("bookmarkID", createdBookmark.ID.Hex()).Msg("Bookmark added successfully")
	return createdBookmark, nil
}

func (s *bookmarkServiceImpl) GetBookmarkByID(ctx context.Context, userID, bookmarkID primitive.ObjectID) (*models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Attempting to retrieve bookmark by ID")
	filter := bson.M{"_id": bookmarkID, "user_id": userID}

	bm, err := s.bookmarkRepo.FindOne(ctx, filter)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Warn().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Bookmark not found")
			return nil, fmt.Errorf("bookmark not found")
		}
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Error finding bookmark by ID")
		return nil, fmt.Errorf("failed to retrieve bookmark")
	}
	return bm, nil
}

func (s *bookmarkServiceImpl) DeleteBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID) (bool, error) {
	log.Debug().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Attempting to delete bookmark")
	filter := bson.M{"_id": bookmarkID, "user_id": userID}

	deleteResult, err := s.bookmarkRepo.DeleteOne(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Error deleting bookmark")
		return false, err
	}

	if deleteResult.DeletedCount == 0 {
		log.Warn().Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Bookmark not found or not authorized to delete")
		return false, fmt.Errorf("bookmark not found or not authorized to delete")
	}
	log.Info().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Bookmark deleted successfully")
	return true, nil
}

func (s *bookmarkServiceImpl) buildUpdateFields(updatePayload models.UpdateBookmarkRequestBody) (bson.M, error) {
	updateFields := bson.M{}

	if updatePayload.URL != nil {
		if err := validateBookmarkURL(*updatePayload.URL); err != nil {
			return nil, err
		}
		updateFields["url"] = *updatePayload.URL
	}
	if updatePayload.Title != nil {
		if *updatePayload.Title == "" {
			return nil, fmt.Errorf("title must not be empty")
		}
		updateFields["title"] = *updatePayload.Title
	}
	if updatePayload.Description != nil {
		updateFields["description"] = *updatePayload.Description
	}
	if updatePayload.Tags != nil {
		tags := normalizeTags(*updatePayload.Tags)
		if len(tags) == 0 {
			return nil, fmt.Errorf("at least one tag is required")
		}
		updateFields["tags"] = tags
	}
	if updatePayload.Reading != nil {
		updateFields["reading"] = *updatePayload.Reading
	}
	if updatePayload.IsFavorite != nil {
		updateFields["is_favorite"] = *updatePayload.IsFavorite
	}
	if updatePayload.IsArchived != nil {
		updateFields["is_archived"] = *updatePayload.IsArchived
	}
	if updatePayload.Category != nil {
		updateFields["category"] = *updatePayload.Category
	}
	if updatePayload.Folder != nil {
		updateFields["folder"] = *updatePayload.Folder
	}
	if updatePayload.Notes != nil {
		updateFields["notes"] = *updatePayload.Notes
	}
	return updateFields, nil
}

func (s *bookmarkServiceImpl) UpdateBookmark(ctx context.Context, userID, bookmarkID primitive.ObjectID, updatePayload models.UpdateBookmarkRequestBody) (*models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Interface("updatePayload", updatePayload).Msg("Attempting to update bookmark")
	updateFields, err := s.buildUpdateFields(updatePayload)
	if err != nil {
		log.Warn().Err(err).Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Failed to build update fields for bookmark")
		return nil, err
	}

	if len(updateFields) == 0 {
		log.Warn().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("No valid fields provided for bookmark update")
		return nil, fmt.Errorf("no valid fields provided for update")
	}
	updateFields["updated_at"] = time.Now()

	filter := bson.M{"_id": bookmarkID, "user_id": userID}
	update := bson.M{"$set": updateFields}

	result, err := s.bookmarkRepo.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Error updating bookmark")
		return nil, err
	}

	if result.MatchedCount == 0 {
		log.Warn().Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Bookmark not found or not authorized to update")
		return nil, fmt.Errorf("bookmark not found or not authorized to update")
	}

	updatedBookmark, err := s.bookmarkRepo.FindOne(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Str("userID", userID.Hex()).Msg("Error fetching updated bookmark")
		return nil, fmt.Errorf("failed to retrieve updated bookmark")
	}
	log.Info().Str("userID", userID.Hex()).Str("bookmarkID", bookmarkID.Hex()).Msg("Bookmark updated successfully")
	return updatedBookmark, nil
}

func (s *bookmarkServiceImpl) ListReading(ctx context.Context, userID primitive.ObjectID) ([]models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Msg("Listing reading-list bookmarks")
	filter := bson.M{"user_id": userID, "reading": true}
	opts := options.Find().SetSort(newestFirst)
	return s.bookmarkRepo.Find(ctx, filter, opts)
}

func (s *bookmarkServiceImpl) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Int64("limit", limit).Msg("Listing recent bookmarks")
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(newestFirst).SetLimit(limit)
	return s.bookmarkRepo.Find(ctx, filter, opts)
}

func (s *bookmarkServiceImpl) Search(ctx context.Context, userID primitive.ObjectID, query string, limit int64) ([]models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Str("query", query).Msg("Searching bookmarks")
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"user_id": userID,
		"$or": []bson.M{
			{"title": pattern},
			{"description": pattern},
		},
	}
	opts := options.Find().SetSort(newestFirst).SetLimit(limit)
	return s.bookmarkRepo.Find(ctx, filter, opts)
}

func (s *bookmarkServiceImpl) QuickAdd(ctx context.Context, userID primitive.ObjectID, rawURL, title string, tags []string, description string) (*models.Bookmark, error) {
	log.Debug().Str("userID", userID.Hex()).Str("url", rawURL).Str("title", title).Msg("Quick-adding bookmark from chat")
	if rawURL == "" || title == "" {
		return nil, fmt.Errorf("URL and Title are required")
	}
	if err := validateBookmarkURL(rawURL); err != nil {
		return nil, err
	}

	normalized := normalizeTags(tags)
	if len(normalized) == 0 {
		normalized = []string{"general"}
	}

	now := time.Now()
	bm := models.Bookmark{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Title:       title,
		URL:         rawURL,
		Description: description,
		Tags:        normalized,
		Reading:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	createdBookmark, err := s.bookmarkRepo.Create(ctx, &bm)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Msg("Error inserting bookmark from chat")
		return nil, err
	}

	log.Info().Str("userID", userID.Hex()).Str("bookmarkID", createdBookmark.ID.Hex()).Msg("Bookmark quick-added from chat")
	return createdBookmark, nil
}
