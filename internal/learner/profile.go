// Package learner holds learner profiles and their in-memory progress:
// mastery, revision history and the question awaiting an answer.
package learner

import (
	"strings"
	"sync"
	"time"
)

const (
	// MaxMasteryScore caps the overall mastery level.
	MaxMasteryScore = 5

	// LevelUpThreshold is the progress needed for one mastery level.
	LevelUpThreshold = 3
)

// PendingAnswer is the expected answer to the question a profile was
// last asked. The answer is never shown to the learner.
type PendingAnswer struct {
	Concept        string
	ExpectedAnswer string
}

// Valid reports whether both fields are present.
func (p PendingAnswer) Valid() bool {
	return strings.TrimSpace(p.Concept) != "" && strings.TrimSpace(p.ExpectedAnswer) != ""
}

// Profile is one learner. Descriptive fields are fixed at creation;
// progress fields change only through the methods below, each of which
// holds the profile lock for its whole read-modify-write.
type Profile struct {
	id         string
	name       string
	location   string
	background string
	language   string

	mu               sync.Mutex
	masteryScore     int
	masteryIncrement int
	revisions        map[string][]time.Time
	conceptOrder     []string
	pending          *PendingAnswer
}

func newProfile(seed Seed) *Profile {
	return &Profile{
		id:           seed.ID,
		name:         seed.Name,
		location:     seed.Location,
		background:   seed.Background,
		language:     seed.Language,
		masteryScore: clamp(seed.MasteryScore, 0, MaxMasteryScore),
		revisions:    make(map[string][]time.Time),
	}
}

func (p *Profile) ID() string          { return p.id }
func (p *Profile) DisplayName() string { return p.name }
func (p *Profile) Location() string    { return p.location }
func (p *Profile) Background() string  { return p.background }
func (p *Profile) Language() string    { return p.language }

// Mastery returns the current score and the progress toward the next level.
func (p *Profile) Mastery() (score, increment int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.masteryScore, p.masteryIncrement
}

// ApplyMasteryIncrement adds delta to the running increment. Once the
// increment reaches LevelUpThreshold it resets to zero and the score goes
// up by one, unless the score is already at MaxMasteryScore. Negative
// deltas count as zero. It reports whether the score went up.
func (p *Profile) ApplyMasteryIncrement(delta int) bool {
	if delta < 0 {
		delta = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.masteryIncrement += delta
	if p.masteryIncrement < LevelUpThreshold {
		return false
	}
	p.masteryIncrement = 0
	if p.masteryScore >= MaxMasteryScore {
		return false
	}
	p.masteryScore++
	return true
}

// AppendRevision records that concept was studied at t. The concept key
// is kept exactly as given.
func (p *Profile) AppendRevision(concept string, t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.revisions[concept]; !ok {
		p.conceptOrder = append(p.conceptOrder, concept)
	}
	p.revisions[concept] = append(p.revisions[concept], t)
}

// SetPendingAnswer replaces any pending answer.
func (p *Profile) SetPendingAnswer(concept, expected string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = &PendingAnswer{Concept: concept, ExpectedAnswer: expected}
}

// ClearPendingAnswer drops the pending answer, if any.
func (p *Profile) ClearPendingAnswer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
}

// PendingAnswer returns a copy of the pending answer.
func (p *Profile) PendingAnswer() (PendingAnswer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return PendingAnswer{}, false
	}
	return *p.pending, true
}

// TakePendingAnswer returns the pending answer and clears it in one step,
// so two concurrent replies cannot both be graded against it.
func (p *Profile) TakePendingAnswer() (PendingAnswer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return PendingAnswer{}, false
	}
	pa := *p.pending
	p.pending = nil
	return pa, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
