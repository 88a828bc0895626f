package learner

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Seed describes a profile to create at start-up.
type Seed struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Location     string `yaml:"location"`
	Background   string `yaml:"background"`
	Language     string `yaml:"language"`
	MasteryScore int    `yaml:"mastery_score"`
}

// DefaultSeeds returns the built-in learner profiles.
func DefaultSeeds() []Seed {
	return []Seed{
		{
			ID:           "urban-bengaluru",
			Name:         "Urban Service Worker",
			Location:     "Bengaluru, Karnataka",
			Background:   "Retail/Service Industry",
			Language:     "Kannada",
			MasteryScore: 1,
		},
		{
			ID:           "rural-maharashtra",
			Name:         "Rural Farmer",
			Location:     "Pune, Maharashtra",
			Background:   "Agriculture/Farming",
			Language:     "Marathi",
			MasteryScore: 3,
		},
	}
}

// Store owns every profile and remembers which one each session uses.
// Nothing is persisted; progress is lost when the process exits.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	order    []string
	sessions map[string]string
}

// NewStore creates a store from seeds. The first seed is the default
// profile for sessions that never selected one.
func NewStore(seeds []Seed) (*Store, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("at least one learner profile is required")
	}
	for i, s := range seeds {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("profile %d: id is required", i)
		}
	}
	if dups := lo.FindDuplicatesBy(seeds, func(s Seed) string { return s.ID }); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate profile id %q", dups[0].ID)
	}

	st := &Store{
		profiles: make(map[string]*Profile, len(seeds)),
		sessions: make(map[string]string),
	}
	for _, seed := range seeds {
		st.profiles[seed.ID] = newProfile(seed)
		st.order = append(st.order, seed.ID)
	}
	return st, nil
}

// DefaultID returns the ID of the default profile.
func (s *Store) DefaultID() string {
	return s.order[0]
}

// Get looks up a profile by ID.
func (s *Store) Get(id string) (*Profile, bool) {
	p, ok := s.profiles[id]
	return p, ok
}

// Profiles returns all profiles in configuration order.
func (s *Store) Profiles() []*Profile {
	return lo.Map(s.order, func(id string, _ int) *Profile {
		return s.profiles[id]
	})
}

// IDs returns all profile IDs in configuration order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.order...)
}

// ActiveID returns the profile ID selected by sessionID.
func (s *Store) ActiveID(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.sessions[sessionID]; ok {
		return id
	}
	return s.DefaultID()
}

// Active returns the profile selected by sessionID. Callers mutate the
// returned profile in place.
func (s *Store) Active(sessionID string) *Profile {
	return s.profiles[s.ActiveID(sessionID)]
}

// SetActive selects profileID for sessionID. An unknown profile ID leaves
// the current selection untouched and reports false.
func (s *Store) SetActive(sessionID, profileID string) bool {
	if _, ok := s.profiles[profileID]; !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = profileID
	return true
}

// EndSession forgets the selection of sessionID.
func (s *Store) EndSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// UnknownProfileError reports a profile ID that is not configured.
type UnknownProfileError struct {
	ID          string
	Suggestions []string
	Available   []string
}

func (e *UnknownProfileError) Error() string {
	if len(e.Suggestions) > 0 && len(e.Suggestions) < len(e.Available) {
		return fmt.Sprintf("unknown profile %q, did you mean %s?", e.ID, strings.Join(e.Suggestions, " or "))
	}
	return fmt.Sprintf("unknown profile %q (available: %s)", e.ID, strings.Join(e.Available, ", "))
}

// Lookup returns the profile with id, or an *UnknownProfileError naming
// the closest configured IDs.
func (s *Store) Lookup(id string) (*Profile, error) {
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, &UnknownProfileError{ID: id, Suggestions: s.Suggest(id), Available: s.IDs()}
}

// Suggest returns the profile IDs closest to a mistyped one, best first.
func (s *Store) Suggest(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return s.IDs()
	}
	ranks := fuzzy.RankFindNormalizedFold(input, s.order)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return lo.Map(ranks, func(r fuzzy.Rank, _ int) string { return r.Target })
	}

	// Fall back to any ID sharing a word with the input.
	words := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	return lo.Filter(s.order, func(id string, _ int) bool {
		return lo.SomeBy(words, func(w string) bool { return strings.Contains(id, w) })
	})
}
