package learner

import "time"

// Snapshot is a point-in-time copy of a profile for display.
type Snapshot struct {
	ID               string          `json:"id"`
	DisplayName      string          `json:"display_name"`
	Location         string          `json:"location"`
	Background       string          `json:"background"`
	Language         string          `json:"language"`
	MasteryScore     int             `json:"mastery_score"`
	MasteryIncrement int             `json:"mastery_increment"`
	Revisions        []RevisionEntry `json:"revisions"`

	// PendingConcept names the concept of an unanswered question.
	// The expected answer is deliberately left out.
	PendingConcept string `json:"pending_concept,omitempty"`
	AwaitingAnswer bool   `json:"awaiting_answer"`
}

// RevisionEntry is the study history of one concept, oldest first.
type RevisionEntry struct {
	Concept string      `json:"concept"`
	Studied []time.Time `json:"studied"`
}

// Last returns the most recent study time.
func (e RevisionEntry) Last() time.Time {
	if len(e.Studied) == 0 {
		return time.Time{}
	}
	return e.Studied[len(e.Studied)-1]
}

// Snapshot copies the profile. Revisions are listed in first-study order.
func (p *Profile) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{
		ID:               p.id,
		DisplayName:      p.name,
		Location:         p.location,
		Background:       p.background,
		Language:         p.language,
		MasteryScore:     p.masteryScore,
		MasteryIncrement: p.masteryIncrement,
		Revisions:        make([]RevisionEntry, 0, len(p.conceptOrder)),
	}
	for _, c := range p.conceptOrder {
		studied := make([]time.Time, len(p.revisions[c]))
		copy(studied, p.revisions[c])
		snap.Revisions = append(snap.Revisions, RevisionEntry{Concept: c, Studied: studied})
	}
	if p.pending != nil {
		snap.AwaitingAnswer = true
		snap.PendingConcept = p.pending.Concept
	}
	return snap
}
