package agents

// Config holds generation settings shared by the agents.
type Config struct {
	// MaxTokens caps free-text replies (explanations, analogies, plans).
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for free-text replies.
	Temperature float64 `yaml:"temperature"`

	// StructuredMaxTokens caps JSON replies (questions, grades).
	StructuredMaxTokens int `yaml:"structured_max_tokens"`

	// StructuredTemperature for JSON replies. Kept low so grading is stable.
	StructuredTemperature float64 `yaml:"structured_temperature"`
}

// DefaultConfig returns sensible defaults for the tutor agents.
func DefaultConfig() Config {
	return Config{
		MaxTokens:             1024,
		Temperature:           0.7,
		StructuredMaxTokens:   512,
		StructuredTemperature: 0.2,
	}
}
