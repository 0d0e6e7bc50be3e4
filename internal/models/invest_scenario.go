package models

import (
	"time"

	"github.com/google/uuid"
)

// InvestScenario is a story draft for a chapter, usually produced by the ML content generator.
// UpdatedAt stays nil until the rotation endpoint rewrites the draft.
type InvestScenario struct {
	ScenarioID uuid.UUID  `db:"scenario_id" json:"scenarioId"`
	ChildID    uuid.UUID  `db:"child_id" json:"childId"`
	ChapterID  *uuid.UUID `db:"chapter_id" json:"chapterId,omitempty"`
	Story      string     `db:"story" json:"story"`
	IsCustom   bool       `db:"is_custom" json:"isCustom"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// IsUpdated reports whether the scenario has already been rotated once.
func (s *InvestScenario) IsUpdated() bool {
	return s.UpdatedAt != nil
}
