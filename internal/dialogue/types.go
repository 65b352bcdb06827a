package dialogue

import (
	"time"

	"github.com/akozyrev/profvibe/internal/profile"
)

// Stage is the session's position in the clarification state machine.
type Stage string

const (
	StageProfessionCheck Stage = "profession_check"
	StageAlternatives    Stage = "profession_alternatives"
	StageDetails         Stage = "profession_details"
	StageVibe            Stage = "vibe_question"
	StageCompleted       Stage = "completed"
)

// Status is the coarse terminal flag. Kept separate from Stage so terminal
// detection stays cheap and unambiguous.
type Status string

const (
	StatusWaitingAnswer Status = "waiting_answer"
	StatusCompleted     Status = "completed"
)

// Session is the unit of conversation state, one record per dialogue.
type Session struct {
	ID                   string           `json:"session_id"`
	UserID               string           `json:"user_id,omitempty"`
	Stage                Stage            `json:"stage"`
	Status               Status           `json:"status"`
	InitialMessage       string           `json:"initial_message"`
	IdentifiedProfession string           `json:"identified_profession,omitempty"`
	Alternatives         []string         `json:"alternatives,omitempty"`
	History              []profile.QA     `json:"history"`
	Result               *profile.Profile `json:"result,omitempty"`
	Revision             int64            `json:"revision"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate a working copy and commit
// it with a single Save.
func (s *Session) Clone() *Session {
	c := *s
	if s.Alternatives != nil {
		c.Alternatives = append([]string(nil), s.Alternatives...)
	}
	if s.History != nil {
		c.History = append([]profile.QA(nil), s.History...)
	}
	if s.Result != nil {
		r := *s.Result
		c.Result = &r
	}
	return &c
}
