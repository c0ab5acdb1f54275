package models

import (
	"sort"
	"time"
)

// TournamentStatus is the lifecycle state of a tournament.
type TournamentStatus string

const (
	StatusDraft        TournamentStatus = "draft"
	StatusRegistration TournamentStatus = "registration"
	StatusUpcoming     TournamentStatus = "upcoming"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCancelled    TournamentStatus = "cancelled"
)

func (s TournamentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Tournament is the aggregate root. Everything the engine touches hangs off it.
type Tournament struct {
	ID                   string           `json:"id" bson:"_id"`
	Name                 string           `json:"name" bson:"name"`
	Format               Format           `json:"format" bson:"format"`
	Status               TournamentStatus `json:"status" bson:"status"`
	Participants         []*Participant   `json:"participants" bson:"participants"`
	Stages               []*Stage         `json:"stages" bson:"stages"`
	MinParticipants      int              `json:"minParticipants" bson:"minParticipants"`
	MaxParticipants      int              `json:"maxParticipants" bson:"maxParticipants"`
	Winner               string           `json:"winner,omitempty" bson:"winner,omitempty"`
	RegistrationClosesAt *time.Time       `json:"registrationClosesAt,omitempty" bson:"registrationClosesAt,omitempty"`
	Version              int64            `json:"version" bson:"version"`
	CreatedAt            time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt" bson:"updatedAt"`
}

func (t *Tournament) Participant(id string) *Participant {
	for _, p := range t.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ParticipantIndex maps participant ids to the pool entries.
func (t *Tournament) ParticipantIndex() map[string]*Participant {
	idx := make(map[string]*Participant, len(t.Participants))
	for _, p := range t.Participants {
		idx[p.ID] = p
	}
	return idx
}

func (t *Tournament) ParticipantsWithStatus(status ParticipantStatus) []*Participant {
	var out []*Participant
	for _, p := range t.Participants {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// SortStages keeps Stages ordered by ascending Order.
func (t *Tournament) SortStages() {
	sort.SliceStable(t.Stages, func(i, j int) bool {
		return t.Stages[i].Order < t.Stages[j].Order
	})
}

func (t *Tournament) StageByOrder(order int) *Stage {
	for _, s := range t.Stages {
		if s.Order == order {
			return s
		}
	}
	return nil
}

func (t *Tournament) StageByID(id string) *Stage {
	for _, s := range t.Stages {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (t *Tournament) ActiveStage() *Stage {
	for _, s := range t.Stages {
		if s.Status == StageStatusActive {
			return s
		}
	}
	return nil
}

// LastStage returns the stage with the highest order, or nil.
func (t *Tournament) LastStage() *Stage {
	var last *Stage
	for _, s := range t.Stages {
		if last == nil || s.Order > last.Order {
			last = s
		}
	}
	return last
}

// NextStage returns the stage that follows s in order, or nil if s is the last one.
func (t *Tournament) NextStage(s *Stage) *Stage {
	var next *Stage
	for _, candidate := range t.Stages {
		if candidate.Order <= s.Order {
			continue
		}
		if next == nil || candidate.Order < next.Order {
			next = candidate
		}
	}
	return next
}

// MatchByID searches every stage for the match.
func (t *Tournament) MatchByID(id string) (*Stage, *Match) {
	for _, s := range t.Stages {
		for _, m := range s.Matches {
			if m.ID == id {
				return s, m
			}
		}
	}
	return nil, nil
}
