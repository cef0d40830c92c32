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

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (u *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User

	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Error().Err(err).Msg("Invalid user data input for Register")
		utils.SendJSONError(w, "Invalid user data input: "+err.Error(), http.StatusBadRequest)
		return
	}

	registeredUser, err := u.userService.RegisterUser(r.Context(), &user)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "invalid") {
			statusCode = http.StatusBadRequest
		} else if strings.Contains(err.Error(), "already exists") {
			statusCode = http.StatusConflict
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, registeredUser)
}

func (u *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Login

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Error().Err(err).Msg("Invalid request body for Login")
		utils.SendJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	token, err := u.userService.LoginUser(r.Context(), &creds)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "invalid credentials") {
			statusCode = http.StatusUnauthorized
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (u *UserHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	user, err := u.userService.GetUserProfile(r.Context(), userID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			statusCode = http.StatusNotFound
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func (u *UserHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	var updatePayload models.UserProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&updatePayload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON for UpdateMyProfile")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	updatedUser, err := u.userService.UpdateUserProfile(r.Context(), userID, &updatePayload)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "no valid fields") || strings.Contains(err.Error(), "already in use") {
			statusCode = http.StatusBadRequest
		} else if strings.Contains(err.Error(), "not found") {
			statusCode = http.StatusNotFound
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updatedUser)
}

func (u *UserHandler) DeleteMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	if err := u.userService.DeleteUser(r.Context(), userID); err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			statusCode = http.StatusNotFound
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LinkTelegram attaches a Telegram user id to the authenticated account so
// the bot can reach it. At most one telegram_id per account.
func (u *UserHandler) LinkTelegram(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	var reqBody models.LinkTelegramRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		log.Error().Err(err).Msg("Invalid JSON for LinkTelegram")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := u.userService.LinkTelegram(r.Context(), userID, reqBody.TelegramID); err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "required") {
			statusCode = http.StatusBadRequest
		} else if strings.Contains(err.Error(), "already linked") {
			statusCode = http.StatusConflict
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Telegram account linked"})
}

// LinkPhone attaches a WhatsApp phone number to the authenticated account.
func (u *UserHandler) LinkPhone(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	var reqBody models.LinkPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		log.Error().Err(err).Msg("Invalid JSON for LinkPhone")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := u.userService.LinkPhone(r.Context(), userID, reqBody.PhoneNumber); err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "required") {
			statusCode = http.StatusBadRequest
		} else if strings.Contains(err.Error(), "already linked") {
			statusCode = http.StatusConflict
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Phone number linked"})
}
