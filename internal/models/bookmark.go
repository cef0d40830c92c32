package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Bookmark struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title       string             `bson:"title" json:"title"`
	URL         string             `bson:"url" json:"url"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string           `bson:"tags" json:"tags"`
	Reading     bool               `bson:"reading" json:"reading"`
	IsFavorite  bool               `bson:"is_favorite" json:"is_favorite"`
	IsArchived  bool               `bson:"is_archived" json:"is_archived"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Folder      string             `bson:"folder,omitempty" json:"folder,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type AddBookmarkRequestBody struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
	Reading     bool     `json:"reading"`
	IsFavorite  bool     `json:"is_favorite"`
	Category    string   `json:"category,omitempty"`
	Folder      string   `json:"folder,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

type UpdateBookmarkRequestBody struct {
	URL         *string   `json:"url,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Reading     *bool     `json:"reading,omitempty"`
	IsFavorite  *bool     `json:"is_favorite,omitempty"`
	IsArchived  *bool     `json:"is_archived,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Folder      *string   `json:"folder,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
}
