package models

import (
	"time"

	"github.com/google/uuid"
)

// InvestHistory is one logged trading action within a session. The gameplay fields are opaque
// client values and are stored as received.
type InvestHistory struct {
	ID              uuid.UUID `json:"id" bson:"_id" validate:"required"`
	SessionID       uuid.UUID `json:"session_id" bson:"session_id" validate:"required"`
	ChapterID       uuid.UUID `json:"chapter_id" bson:"chapter_id" validate:"required"`
	ChildID         uuid.UUID `json:"child_id" bson:"child_id" validate:"required"`
	Turn            int       `json:"turn" bson:"turn" validate:"min=1"`
	RiskLevel       int       `json:"risk_level" bson:"risk_level"`
	CurrentPoint    int       `json:"current_point" bson:"current_point"`
	BeforeValue     int       `json:"before_value" bson:"before_value"`
	CurrentValue    int       `json:"current_value" bson:"current_value"`
	InitialValue    int       `json:"initial_value" bson:"initial_value"`
	NumberOfShares  int       `json:"number_of_shares" bson:"number_of_shares"`
	Income          int       `json:"income" bson:"income"`
	TransactionType string    `json:"transaction_type" bson:"transaction_type" validate:"required"`
	PlusClick       int       `json:"plus_click" bson:"plus_click"`
	MinusClick      int       `json:"minus_click" bson:"minus_click"`
	StartedAt       time.Time `json:"started_at" bson:"started_at" validate:"required"`
	EndedAt         time.Time `json:"ended_at" bson:"ended_at" validate:"required"`
}

// HistoryTimePrecision is the coarsest precision of the supported history stores (BSON dates).
const HistoryTimePrecision = time.Millisecond
