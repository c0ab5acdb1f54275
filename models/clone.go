package models

import "time"

// Clone returns a deep copy of the aggregate. Engine operations work on a clone
// and only hand it back on success.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.RegistrationClosesAt = cloneTime(t.RegistrationClosesAt)
	if t.Participants != nil {
		c.Participants = make([]*Participant, len(t.Participants))
		for i, p := range t.Participants {
			cp := *p
			c.Participants[i] = &cp
		}
	}
	if t.Stages != nil {
		c.Stages = make([]*Stage, len(t.Stages))
		for i, s := range t.Stages {
			c.Stages[i] = s.Clone()
		}
	}
	return &c
}

func (s *Stage) Clone() *Stage {
	c := *s
	if s.Settings.AllowDraws != nil {
		v := *s.Settings.AllowDraws
		c.Settings.AllowDraws = &v
	}
	c.Entrants = cloneStrings(s.Entrants)
	c.Qualifiers = cloneStrings(s.Qualifiers)
	c.StartedAt = cloneTime(s.StartedAt)
	c.CompletedAt = cloneTime(s.CompletedAt)
	if s.Matches != nil {
		c.Matches = make([]*Match, len(s.Matches))
		for i, m := range s.Matches {
			c.Matches[i] = m.Clone()
		}
	}
	return &c
}

func (m *Match) Clone() *Match {
	c := *m
	if m.Scores != nil {
		c.Scores = append([]int(nil), m.Scores...)
	}
	c.PreviousMatches = cloneStrings(m.PreviousMatches)
	c.StartedAt = cloneTime(m.StartedAt)
	c.CompletedAt = cloneTime(m.CompletedAt)
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
