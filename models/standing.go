package models

// Standing is a derived ranking row. It is never persisted on its own.
type Standing struct {
	ParticipantID  string `json:"participantId"`
	Rank           int    `json:"rank"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

// ScoringTable assigns standings points per outcome.
type ScoringTable struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

var DefaultScoring = ScoringTable{Win: 3, Draw: 1, Loss: 0}
