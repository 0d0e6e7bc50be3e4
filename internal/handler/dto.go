package handler

import (
	"encoding/json"

	"github.com/google/uuid"
)

type recordTurnRequest struct {
	SessionID       string `json:"sessionId" binding:"required"`
	StartedAt       string `json:"started_at" binding:"required"`
	EndedAt         string `json:"ended_at" binding:"required"`
	RiskLevel       *int   `json:"risk_level" binding:"required"`
	CurrentPoint    *int   `json:"current_point" binding:"required"`
	BeforeValue     *int   `json:"before_value" binding:"required"`
	CurrentValue    *int   `json:"current_value" binding:"required"`
	InitialValue    *int   `json:"initial_value" binding:"required"`
	NumberOfShares  *int   `json:"number_of_shares" binding:"required"`
	Income          *int   `json:"income" binding:"required"`
	TransactionType string `json:"transaction_type" binding:"required"`
	PlusClick       *int   `json:"plus_click" binding:"required"`
	MinusClick      *int   `json:"minus_click" binding:"required"`
}

type recordTurnResponse struct {
	Message   string    `json:"message"`
	HistoryID uuid.UUID `json:"historyId"`
}

type clearChapterRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Success   *bool  `json:"success" binding:"required"`
	Profit    *int   `json:"profit" binding:"required"`
}

type clearChapterResponse struct {
	Message   string    `json:"message"`
	SessionID uuid.UUID `json:"sessionId"`
}

type scenarioRequest struct {
	Story    string `json:"story" binding:"required"`
	IsCustom *bool  `json:"isCustom" binding:"required"`
}

type scenarioResponse struct {
	Message    string    `json:"message"`
	ScenarioID uuid.UUID `json:"scenarioId"`
}

type chapterResponse struct {
	SessionID uuid.UUID       `json:"sessionId"`
	Story     json.RawMessage `json:"story"`
}

type emotionLogRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Type    string `json:"type" binding:"required"`
	Message string `json:"message"`
}

type emotionLogResponse struct {
	Message string    `json:"message"`
	LogID   uuid.UUID `json:"logId"`
}

// storyJSON emits a stored story verbatim when it already is JSON, otherwise as a JSON string.
func storyJSON(story string) json.RawMessage {
	if json.Valid([]byte(story)) {
		return json.RawMessage(story)
	}
	quoted, _ := json.Marshal(story)
	return quoted
}
