package models

import "time"

type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
)

// StageSettings carries the per-stage knobs of the format strategies.
type StageSettings struct {
	// Legs is 1 for a single round robin, 2 for home and away.
	Legs int `json:"legs,omitempty" bson:"legs,omitempty"`
	// AllowDraws overrides the format default when set.
	AllowDraws *bool `json:"allowDraws,omitempty" bson:"allowDraws,omitempty"`
}

type Stage struct {
	ID                 string        `json:"id" bson:"id"`
	Name               string        `json:"name,omitempty" bson:"name,omitempty"`
	Format             Format        `json:"format" bson:"format"`
	Order              int           `json:"order" bson:"order"`
	Status             StageStatus   `json:"status" bson:"status"`
	QualificationCount int           `json:"qualificationCount" bson:"qualificationCount"`
	Settings           StageSettings `json:"settings" bson:"settings"`
	RNGSeed            int64         `json:"rngSeed,omitempty" bson:"rngSeed,omitempty"`
	Entrants           []string      `json:"entrants,omitempty" bson:"entrants,omitempty"`
	Qualifiers         []string      `json:"qualifiers,omitempty" bson:"qualifiers,omitempty"`
	Matches            []*Match      `json:"matches" bson:"matches"`
	StartedAt          *time.Time    `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt        *time.Time    `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// Terminal reports whether the stage decides the tournament instead of feeding another stage.
func (s *Stage) Terminal() bool {
	return s.QualificationCount == 0
}

func (s *Stage) DrawsAllowed() bool {
	if s.Settings.AllowDraws != nil {
		return *s.Settings.AllowDraws
	}
	return s.Format.DrawsByDefault()
}

// Arena indexes the stage's matches by id.
func (s *Stage) Arena() MatchArena {
	arena := make(MatchArena, len(s.Matches))
	for _, m := range s.Matches {
		arena[m.ID] = m
	}
	return arena
}

// Resolved reports whether every match is completed or cancelled.
func (s *Stage) Resolved() bool {
	for _, m := range s.Matches {
		if !m.Status.Resolved() {
			return false
		}
	}
	return true
}

// Rounds returns the highest round number among the stage's matches.
func (s *Stage) Rounds() int {
	rounds := 0
	for _, m := range s.Matches {
		rounds = max(rounds, m.Round)
	}
	return rounds
}

func (s *Stage) MatchesInRound(round int) []*Match {
	var out []*Match
	for _, m := range s.Matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}
