package models

import "time"

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchCancelled  MatchStatus = "cancelled"
)

func (s MatchStatus) Resolved() bool {
	return s == MatchCompleted || s == MatchCancelled
}

// Match is a pairing inside a stage. Participants holds two positional slots;
// an empty string means the slot is not determined yet.
type Match struct {
	ID              string      `json:"id" bson:"id"`
	Round           int         `json:"round" bson:"round"`
	MatchNumber     int         `json:"matchNumber" bson:"matchNumber"`
	Participants    [2]string   `json:"participants" bson:"participants"`
	Scores          []int       `json:"scores,omitempty" bson:"scores,omitempty"`
	Winner          string      `json:"winner,omitempty" bson:"winner,omitempty"`
	Status          MatchStatus `json:"status" bson:"status"`
	Bye             bool        `json:"bye,omitempty" bson:"bye,omitempty"`
	NextMatchID     string      `json:"nextMatchId,omitempty" bson:"nextMatchId,omitempty"`
	PreviousMatches []string    `json:"previousMatches,omitempty" bson:"previousMatches,omitempty"`
	StartedAt       *time.Time  `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt     *time.Time  `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// MatchArena holds a stage's matches keyed by id. Links between matches are ids resolved here.
type MatchArena map[string]*Match

func (m *Match) Filled() bool {
	return m.Participants[0] != "" && m.Participants[1] != ""
}

func (m *Match) Occupies(participantID string) bool {
	return participantID != "" && (m.Participants[0] == participantID || m.Participants[1] == participantID)
}

// Loser returns the other occupant of a decided match, or "" for draws, byes and open matches.
func (m *Match) Loser() string {
	if m.Status != MatchCompleted || m.Winner == "" || m.Bye {
		return ""
	}
	if m.Participants[0] == m.Winner {
		return m.Participants[1]
	}
	return m.Participants[0]
}

func (m *Match) Draw() bool {
	return m.Status == MatchCompleted && !m.Bye && m.Winner == ""
}

// FeedSlot is the slot of the next match this match's winner moves into.
func (m *Match) FeedSlot() int {
	if m.MatchNumber%2 == 1 {
		return 0
	}
	return 1
}
