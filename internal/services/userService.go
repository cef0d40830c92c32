package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"linkstash/internal/models"
	"linkstash/internal/repositories"
	"linkstash/internal/utils"
)

// ErrNotLinked reports that no account carries the given chat identity.
// It is an expected condition, not a failure: the webhook dispatcher replies
// with a linking prompt and finishes the request successfully.
var ErrNotLinked = errors.New("chat identity not linked to any account")

// UserService defines the interface for user-related business logic,
// including the chat identity linker used by the webhook handlers.
type UserService interface {
	RegisterUser(ctx context.Context, user *models.User) (*models.User, error)
	LoginUser(ctx context.Context, creds *models.Login) (string, error)
	GetUserProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID primitive.ObjectID, updatePayload *models.UserProfileUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, userID primitive.ObjectID) error

	LinkTelegram(ctx context.Context, userID primitive.ObjectID, telegramID string) error
	LinkPhone(ctx context.Context, userID primitive.ObjectID, phoneNumber string) error
	ResolveTelegram(ctx context.Context, telegramID string) (primitive.ObjectID, error)
	ResolveWhatsApp(ctx context.Context, phoneNumber string) (primitive.ObjectID, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) RegisterUser(ctx context.Context, user *models.User) (*models.User, error) {
	log.Debug().Str("email", user.Email).Msg("Attempting to register user")
	if user.Username == "" || user.Email == "" || user.Password == "" {
		log.Warn().Msg("Username, email, and password are required for registration")
		return nil, fmt.Errorf("username, email, and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), 8)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password during registration")
		return nil, fmt.Errorf("failed to hash password")
	}

	user.Password = string(hashedPassword)
	user.ID = primitive.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	createdUser, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn().Str("email", user.Email).Msg("Email already exists during user insertion")
			return nil, fmt.Errorf("email already exists")
		}
		return nil, err
	}

	createdUser.Password = "" // Clear password before returning
	log.Info().Str("user_id", createdUser.ID.Hex()).Str("email", createdUser.Email).Msg("User registered successfully")
	return createdUser, nil
}

func (s *userService) LoginUser(ctx context.Context, creds *models.Login) (string, error) {
	log.Debug().Str("email", creds.Email).Msg("Attempting user login")
	user, err := s.userRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Warn().Str("email", creds.Email).Msg("Invalid credentials during login attempt")
			return "", fmt.Errorf("invalid credentials")
		}
		log.Error().Err(err).Str("email", creds.Email).Msg("Error finding user for login")
		return "", fmt.Errorf("internal server error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		log.Warn().Str("email", creds.Email).Msg("Invalid credentials (password mismatch) during login attempt")
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := utils.GenerateJWT(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Could not generate token for user")
		return "", fmt.Errorf("could not generate token")
	}

	log.Info().Str("user_id", user.ID.Hex()).Msg("User logged in successfully")
	return token, nil
}

func (s *userService) GetUserProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	log.Debug().Str("userID", userID.Hex()).Msg("Attempting to retrieve user profile")
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Warn().Str("user_id", userID.Hex()).Msg("User not found for GetUserProfile")
			return nil, fmt.Errorf("user not found")
		}
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Failed to fetch user profile")
		return nil, fmt.Errorf("failed to fetch user profile")
	}

	user.Password = "" // Clear password before returning
	return user, nil
}

func (s *userService) UpdateUserProfile(ctx context.Context, userID primitive.ObjectID, updatePayload *models.UserProfileUpdate) (*models.User, error) {
	log.Debug().Str("userID", userID.Hex()).Interface("updatePayload", updatePayload).Msg("Attempting to update user profile")
	updateFields := bson.M{}
	if updatePayload.Username != "" {
		updateFields["username"] = updatePayload.Username
	}
	if updatePayload.Email != nil {
		currentUser, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Failed to verify current user data for profile update")
			return nil, fmt.Errorf("failed to verify current user data: %w", err)
		}

		if currentUser.Email != *updatePayload.Email {
			existingUser, err := s.userRepo.FindByEmail(ctx, *updatePayload.Email)
			if err == nil && existingUser != nil {
				log.Warn().Str("email", *updatePayload.Email).Msg("Email already in use by another account during profile update")
				return nil, fmt.Errorf("email already in use by another account")
			} else if err != mongo.ErrNoDocuments {
				log.Error().Err(err).Str("email", *updatePayload.Email).Msg("Failed to check email availability during profile update")
				return nil, fmt.Errorf("failed to check email availability: %w", err)
			}
		}
		updateFields["email"] = *updatePayload.Email
	}
	if updatePayload.Password != nil && *updatePayload.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*updatePayload.Password), 8)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Failed to hash new password for profile update")
			return nil, fmt.Errorf("failed to hash new password: %w", err)
		}
		updateFields["password"] = string(hashedPassword)
	}

	if len(updateFields) == 0 {
		log.Warn().Str("userID", userID.Hex()).Msg("No valid fields provided for user profile update")
		return nil, fmt.Errorf("no valid fields provided for update")
	}

	result, err := s.userRepo.Update(ctx, userID, updateFields)
	if err != nil {
		return nil, err
	}

	if result.MatchedCount == 0 {
		log.Warn().Str("user_id", userID.Hex()).Msg("User not found or not authorized to update profile")
		return nil, fmt.Errorf("user not found or not authorized to update")
	}

	updatedUser, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Error fetching updated user profile")
		return nil, fmt.Errorf("failed to retrieve updated user profile")
	}
	updatedUser.Password = ""

	log.Info().Str("user_id", userID.Hex()).Msg("User profile updated successfully")
	return updatedUser, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	log.Debug().Str("userID", userID.Hex()).Msg("Attempting to delete user account")
	result, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		log.Warn().Str("user_id", userID.Hex()).Msg("User account not found or not authorized to delete")
		return fmt.Errorf("user account not found or not authorized to delete")
	}

	log.Info().Str("user_id", userID.Hex()).Msg("User account deleted successfully")
	return nil
}

func (s *userService) LinkTelegram(ctx context.Context, userID primitive.ObjectID, telegramID string) error {
	log.Debug().Str("userID", userID.Hex()).Str("telegram_id", telegramID).Msg("Attempting to link Telegram identity")
	if telegramID == "" {
		return fmt.Errorf("telegram_id is required")
	}

	existing, err := s.userRepo.FindByTelegramID(ctx, telegramID)
	if err == nil && existing != nil && existing.ID != userID {
		log.Warn().Str("telegram_id", telegramID).Msg("Telegram identity already linked to another account")
		return fmt.Errorf("telegram identity already linked to another account")
	} else if err != nil && err != mongo.ErrNoDocuments {
		log.Error().Err(err).Str("telegram_id", telegramID).Msg("Failed to check telegram identity availability")
		return fmt.Errorf("failed to check telegram identity availability: %w", err)
	}

	result, err := s.userRepo.Update(ctx, userID, bson.M{"telegram_id": telegramID})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}

	log.Info().Str("user_id", userID.Hex()).Str("telegram_id", telegramID).Msg("Telegram identity linked successfully")
	return nil
}

func (s *userService) LinkPhone(ctx context.Context, userID primitive.ObjectID, phoneNumber string) error {
	log.Debug().Str("userID", userID.Hex()).Str("phone_number", phoneNumber).Msg("Attempting to link phone number")
	if phoneNumber == "" {
		return fmt.Errorf("phone_number is required")
	}

	existing, err := s.userRepo.FindByPhoneNumber(ctx, phoneNumber)
	if err == nil && existing != nil && existing.ID != userID {
		log.Warn().Str("phone_number", phoneNumber).Msg("Phone number already linked to another account")
		return fmt.Errorf("phone number already linked to another account")
	} else if err != nil && err != mongo.ErrNoDocuments {
		log.Error().Err(err).Str("phone_number", phoneNumber).Msg("Failed to check phone number availability")
		return fmt.Errorf("failed to check phone number availability: %w", err)
	}

	result, err := s.userRepo.Update(ctx, userID, bson.M{"phone_number": phoneNumber})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}

	log.Info().Str("user_id", userID.Hex()).Str("phone_number", phoneNumber).Msg("Phone number linked successfully")
	return nil
}

func (s *userService) ResolveTelegram(ctx context.Context, telegramID string) (primitive.ObjectID, error) {
	user, err := s.userRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Debug().Str("telegram_id", telegramID).Msg("Telegram identity not linked")
			return primitive.NilObjectID, ErrNotLinked
		}
		log.Error().Err(err).Str("telegram_id", telegramID).Msg("Error resolving telegram identity")
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (s *userService) ResolveWhatsApp(ctx context.Context, phoneNumber string) (primitive.ObjectID, error) {
	user, err := s.userRepo.FindByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.Debug().Str("phone_number", phoneNumber).Msg("Phone number not linked")
			return primitive.NilObjectID, ErrNotLinked
		}
		log.Error().Err(err).Str("phone_number", phoneNumber).Msg("Error resolving whatsapp identity")
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}
