package models

import "github.com/google/uuid"

// EmotionLog is a free-form emotion event. It is unrelated to trading and only searched.
type EmotionLog struct {
	ID      uuid.UUID `json:"id"`
	UserID  string    `json:"userId" validate:"required"`
	Type    string    `json:"type" validate:"required"`
	Message string    `json:"message"`
}
