package llm

import "context"

type contextKey string

const purposeKey contextKey = "eduindia_llm_purpose"

// Purposes used by the tutor agents. They label event-log rows and let
// ScriptedProvider pick a reply without relying on call order.
const (
	PurposeExplain   = "explain"
	PurposeLocalize  = "localize"
	PurposeQuestion  = "question"
	PurposeGrade     = "grade"
	PurposeSchedule  = "schedule"
	purposeUndefined = "unknown"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return purposeUndefined
}
