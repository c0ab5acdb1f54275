package models

import "time"

type ParticipantStatus string

const (
	ParticipantRegistered   ParticipantStatus = "registered"
	ParticipantCheckedIn    ParticipantStatus = "checked_in"
	ParticipantActive       ParticipantStatus = "active"
	ParticipantEliminated   ParticipantStatus = "eliminated"
	ParticipantWinner       ParticipantStatus = "winner"
	ParticipantDisqualified ParticipantStatus = "disqualified"
)

// ParticipantStats are running totals maintained as results are applied.
type ParticipantStats struct {
	Wins         int `json:"wins" bson:"wins"`
	Losses       int `json:"losses" bson:"losses"`
	Draws        int `json:"draws" bson:"draws"`
	GoalsFor     int `json:"goalsFor" bson:"goalsFor"`
	GoalsAgainst int `json:"goalsAgainst" bson:"goalsAgainst"`
}

type Participant struct {
	ID           string            `json:"id" bson:"id"`
	Name         string            `json:"name" bson:"name"`
	TeamID       string            `json:"teamId,omitempty" bson:"teamId,omitempty"`
	Seed         int               `json:"seed,omitempty" bson:"seed,omitempty"` // 0 = unseeded
	Status       ParticipantStatus `json:"status" bson:"status"`
	Stats        ParticipantStats  `json:"stats" bson:"stats"`
	RegisteredAt time.Time         `json:"registeredAt" bson:"registeredAt"`
}
