// Package standings ranks participants from completed matches.
package standings

import (
	"sort"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

type Calculator struct {
	scoring models.ScoringTable
}

func NewCalculator(scoring models.ScoringTable) *Calculator {
	return &Calculator{scoring: scoring}
}

// Calculate ranks participantIDs by points, goal difference, goals for and then the
// head-to-head record among those still level. Ties left after that keep input order.
// Only completed, non-bye matches between two known participants count.
func (c *Calculator) Calculate(participantIDs []string, matches []*models.Match) []models.Standing {
	rows := make(map[string]*models.Standing, len(participantIDs))
	table := make([]*models.Standing, 0, len(participantIDs))
	for _, id := range participantIDs {
		if _, dup := rows[id]; dup {
			continue
		}
		row := &models.Standing{ParticipantID: id}
		rows[id] = row
		table = append(table, row)
	}

	counted := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if !countable(m) {
			continue
		}
		home, away := rows[m.Participants[0]], rows[m.Participants[1]]
		if home == nil || away == nil {
			continue
		}
		counted = append(counted, m)
		c.record(home, m.Scores[0], m.Scores[1], outcomeFor(m, home.ParticipantID))
		c.record(away, m.Scores[1], m.Scores[0], outcomeFor(m, away.ParticipantID))
	}

	sort.SliceStable(table, func(i, j int) bool {
		return compareTotals(table[i], table[j]) < 0
	})
	breakTies(table, counted)

	out := make([]models.Standing, len(table))
	for i, row := range table {
		row.Rank = i + 1
		out[i] = *row
	}
	return out
}

type outcome int

const (
	lost outcome = iota
	drew
	won
)

func countable(m *models.Match) bool {
	return m.Status == models.MatchCompleted && !m.Bye && m.Filled() && len(m.Scores) == 2
}

func outcomeFor(m *models.Match, id string) outcome {
	switch m.Winner {
	case "":
		return drew
	case id:
		return won
	}
	return lost
}

func (c *Calculator) record(row *models.Standing, scored, conceded int, o outcome) {
	row.Played++
	row.GoalsFor += scored
	row.GoalsAgainst += conceded
	row.GoalDifference = row.GoalsFor - row.GoalsAgainst
	switch o {
	case won:
		row.Won++
		row.Points += c.scoring.Win
	case drew:
		row.Drawn++
		row.Points += c.scoring.Draw
	default:
		row.Lost++
		row.Points += c.scoring.Loss
	}
}

// compareTotals orders a before b when it returns a negative number.
func compareTotals(a, b *models.Standing) int {
	if a.Points != b.Points {
		return b.Points - a.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return b.GoalDifference - a.GoalDifference
	}
	return b.GoalsFor - a.GoalsFor
}

// breakTies walks groups of rows level on totals and orders each group by the
// wins-minus-losses record of its members in matches against each other.
func breakTies(table []*models.Standing, matches []*models.Match) {
	for start := 0; start < len(table); {
		end := start + 1
		for end < len(table) && compareTotals(table[start], table[end]) == 0 {
			end++
		}
		if end-start > 1 {
			group := table[start:end]
			record := headToHead(group, matches)
			sort.SliceStable(group, func(i, j int) bool {
				return record[group[i].ParticipantID] > record[group[j].ParticipantID]
			})
		}
		start = end
	}
}

func headToHead(group []*models.Standing, matches []*models.Match) map[string]int {
	members := make(map[string]struct{}, len(group))
	for _, row := range group {
		members[row.ParticipantID] = struct{}{}
	}
	record := make(map[string]int, len(group))
	for _, m := range matches {
		_, inHome := members[m.Participants[0]]
		_, inAway := members[m.Participants[1]]
		if !inHome || !inAway || m.Winner == "" {
			continue
		}
		record[m.Winner]++
		record[m.Loser()]--
	}
	return record
}
