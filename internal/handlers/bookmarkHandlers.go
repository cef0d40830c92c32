package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"linkstash/internal/models"
	"linkstash/internal/services"
	"linkstash/internal/utils"
)

type BookmarkHandler struct {
	service services.BookmarkService
}

func NewBookmarksHandler(service services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{service: service}
}

func (h *BookmarkHandler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	bookmarks, err := h.service.GetBookmarks(r.Context(), userID, r)
	if err != nil {
		log.Error().Err(err).Msg("Error getting bookmarks from service")
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "positive integer") {
			statusCode = http.StatusBadRequest
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bookmarks)
}

func (h *BookmarkHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	var reqBody models.AddBookmarkRequestBody
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		log.Error().Err(err).Msg("Error decoding request body for AddBookmark")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	log.Debug().Interface("request_body", reqBody).Msg("Received bookmark request")

	bm, err := h.service.AddBookmark(r.Context(), userID, reqBody)
	if err != nil {
		log.Error().Err(err).Msg("Error adding bookmark via service")
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "invalid URL") ||
			strings.Contains(err.Error(), "must be absolute") {
			statusCode = http.StatusBadRequest
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	log.Info().Str("bookmark_id", bm.ID.Hex()).Msg("Successfully created bookmark")
	utils.RespondWithJSON(w, http.StatusCreated, bm)
}

func (h *BookmarkHandler) GetBookmarkByID(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	bookmarkID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	bm, err := h.service.GetBookmarkByID(r.Context(), userID, bookmarkID)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Msg("Error getting bookmark by ID from service")
		if strings.Contains(err.Error(), "not found") {
			utils.SendJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bm)
}

func (h *BookmarkHandler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	bookmarkID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	deleted, err := h.service.DeleteBookmark(r.Context(), userID, bookmarkID)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Msg("Error deleting bookmark via service")
		if strings.Contains(err.Error(), "not found") {
			utils.SendJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if deleted {
		log.Info().Str("bookmark_id", bookmarkID.Hex()).Msg("Bookmark deleted successfully")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *BookmarkHandler) UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	bookmarkID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var updatePayload models.UpdateBookmarkRequestBody
	if err := json.NewDecoder(r.Body).Decode(&updatePayload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON for UpdateBookmark")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	updatedBookmark, err := h.service.UpdateBookmark(r.Context(), userID, bookmarkID, updatePayload)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Msg("Error updating bookmark via service")
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "no valid fields") || strings.Contains(err.Error(), "invalid URL") ||
			strings.Contains(err.Error(), "must be absolute") || strings.Contains(err.Error(), "must not be empty") ||
			strings.Contains(err.Error(), "at least one tag") {
			statusCode = http.StatusBadRequest
		} else if strings.Contains(err.Error(), "not found") {
			statusCode = http.StatusNotFound
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	log.Info().Str("bookmark_id", bookmarkID.Hex()).Msg("Bookmark updated successfully")
	utils.RespondWithJSON(w, http.StatusOK, updatedBookmark)
}
