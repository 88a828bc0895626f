package dispatch

import "strings"

// IntentKind names what the learner asked for.
type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentExplain
	IntentRevise
	IntentTestMe
)

func (k IntentKind) String() string {
	switch k {
	case IntentExplain:
		return "explain"
	case IntentRevise:
		return "revise"
	case IntentTestMe:
		return "test"
	default:
		return "unknown"
	}
}

// Intent is a classified query. Topic is set for Explain and TestMe only,
// and may be empty when the learner named no topic.
type Intent struct {
	Kind  IntentKind
	Topic string
}

type rule struct {
	kind     IntentKind
	keywords []string
	topic    bool
}

// rules are checked in order and the first keyword found wins. Within a
// rule the longer "test me on" is listed before "test me".
var rules = []rule{
	{IntentExplain, []string{"explain", "teach"}, true},
	{IntentRevise, []string{"revise", "study next", "schedule"}, false},
	{IntentTestMe, []string{"test me on", "quiz on", "test me"}, true},
}

// Classify matches query against the keyword rules, ignoring case. The
// topic is whatever follows the first occurrence of the matched keyword in
// the lowercased query, trimmed.
func Classify(query string) Intent {
	q := strings.ToLower(query)
	for _, r := range rules {
		for _, kw := range r.keywords {
			idx := strings.Index(q, kw)
			if idx < 0 {
				continue
			}
			in := Intent{Kind: r.kind}
			if r.topic {
				in.Topic = strings.TrimSpace(q[idx+len(kw):])
			}
			return in
		}
	}
	return Intent{Kind: IntentUnknown}
}
