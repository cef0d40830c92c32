package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Username    string             `json:"username" bson:"username"`
	Email       string             `json:"email" bson:"email"`
	Password    string             `json:"password,omitempty" bson:"password"`
	TelegramID  string             `json:"telegram_id,omitempty" bson:"telegram_id,omitempty"`
	PhoneNumber string             `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserProfileUpdate struct {
	Username string  `json:"username,omitempty" bson:"username,omitempty"`
	Email    *string `json:"email,omitempty" bson:"email,omitempty"`
	Password *string `json:"password,omitempty" bson:"password,omitempty"`
}

type LinkTelegramRequest struct {
	TelegramID string `json:"telegram_id"`
}

type LinkPhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}
