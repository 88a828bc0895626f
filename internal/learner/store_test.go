package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		seeds   []Seed
		wantErr string
	}{
		{"defaults", DefaultSeeds(), ""},
		{"empty", nil, "at least one"},
		{"missing id", []Seed{{Name: "x"}}, "id is required"},
		{"duplicate id", []Seed{{ID: "a"}, {ID: "b"}, {ID: "a"}}, `duplicate profile id "a"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStore(tt.seeds)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultSeeds(t *testing.T) {
	st, err := NewStore(DefaultSeeds())
	require.NoError(t, err)

	assert.Equal(t, []string{"urban-bengaluru", "rural-maharashtra"}, st.IDs())
	farmer, ok := st.Get("rural-maharashtra")
	require.True(t, ok)
	assert.Equal(t, "Marathi", farmer.Language())
	assert.Equal(t, "Pune, Maharashtra", farmer.Location())
	score, inc := farmer.Mastery()
	assert.Equal(t, 3, score)
	assert.Equal(t, 0, inc)
}

func TestActiveProfilePerSession(t *testing.T) {
	st, err := NewStore(DefaultSeeds())
	require.NoError(t, err)

	assert.Equal(t, "urban-bengaluru", st.Active("s1").ID(), "unselected session uses the default")

	require.True(t, st.SetActive("s1", "rural-maharashtra"))
	assert.Equal(t, "rural-maharashtra", st.Active("s1").ID())
	assert.Equal(t, "urban-bengaluru", st.Active("s2").ID(), "sessions are independent")

	assert.False(t, st.SetActive("s1", "nobody"))
	assert.Equal(t, "rural-maharashtra", st.ActiveID("s1"), "unknown id keeps the selection")

	// Mutations through the handle are visible on later reads.
	st.Active("s1").SetPendingAnswer("soil", "nutrients")
	_, ok := st.Active("s1").PendingAnswer()
	assert.True(t, ok)

	st.EndSession("s1")
	assert.Equal(t, "urban-bengaluru", st.ActiveID("s1"))
}

func TestProfilesOrder(t *testing.T) {
	st, err := NewStore([]Seed{{ID: "b"}, {ID: "a"}, {ID: "c"}})
	require.NoError(t, err)

	var ids []string
	for _, p := range st.Profiles() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Equal(t, "b", st.DefaultID())
}

func TestSuggest(t *testing.T) {
	st, err := NewStore(DefaultSeeds())
	require.NoError(t, err)

	tests := []struct {
		input string
		want  []string
	}{
		{"rural", []string{"rural-maharashtra"}},
		{"rual", []string{"rural-maharashtra"}},
		{"URBAN", []string{"urban-bengaluru"}},
		{"maharashtra farmer", []string{"rural-maharashtra"}},
		{"", []string{"urban-bengaluru", "rural-maharashtra"}},
		{"xyz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, st.Suggest(tt.input))
		})
	}
}

func TestLookup(t *testing.T) {
	st, err := NewStore(DefaultSeeds())
	require.NoError(t, err)

	p, err := st.Lookup("rural-maharashtra")
	require.NoError(t, err)
	assert.Equal(t, "Rural Farmer", p.DisplayName())

	_, err = st.Lookup("rural")
	var unknown *UnknownProfileError
	require.ErrorAs(t, err, &unknown)
	assert.EqualError(t, err, `unknown profile "rural", did you mean rural-maharashtra?`)

	_, err = st.Lookup("xyz")
	assert.EqualError(t, err, `unknown profile "xyz" (available: urban-bengaluru, rural-maharashtra)`)
}
