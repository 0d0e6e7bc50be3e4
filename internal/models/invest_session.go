package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is derived from EndedAt, it is not stored.
type SessionState string

const (
	SessionStateOpen   SessionState = "OPEN"
	SessionStateClosed SessionState = "CLOSED"
)

// InvestSession is one play-through of a chapter by a child.
type InvestSession struct {
	SessionID  uuid.UUID  `db:"session_id" json:"sessionId"`
	ChildID    uuid.UUID  `db:"child_id" json:"childId"`
	ChapterID  uuid.UUID  `db:"chapter_id" json:"chapterId"`
	ScenarioID uuid.UUID  `db:"scenario_id" json:"scenarioId"`
	StartedAt  time.Time  `db:"started_at" json:"startedAt"`
	EndedAt    *time.Time `db:"ended_at" json:"endedAt,omitempty"`
	Success    *bool      `db:"success" json:"success,omitempty"`
	Profit     *int       `db:"profit" json:"profit,omitempty"`
}

func (s *InvestSession) State() SessionState {
	if s.EndedAt == nil {
		return SessionStateOpen
	}
	return SessionStateClosed
}

// SessionOutcome carries what the client reports when a chapter is cleared or abandoned.
type SessionOutcome struct {
	Success bool
	Profit  int
}
