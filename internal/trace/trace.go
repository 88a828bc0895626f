// Package trace records the ordered progress events of one tutoring turn.
//
// A Recorder travels on the context so agents deep in the call tree can
// report what they are doing without knowing who is listening. The
// dispatcher returns the collected events with its response.
package trace

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stages reported during a turn.
const (
	StageDispatch = "dispatch"
	StageLesson   = "lesson"
	StageExplain  = "explain"
	StageLocalize = "localize"
	StageQuestion = "question"
	StageGrade    = "grade"
	StageSchedule = "schedule"
	StageState    = "state"
)

// Event is one trace line.
type Event struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Recorder collects events in the order they were added. Safe for
// concurrent use; the lesson turn reports from two goroutines.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a Recorder that mirrors each event to logger at
// debug level. logger may be nil.
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger, now: time.Now}
}

// Add appends an event.
func (r *Recorder) Add(stage, message string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, Event{Stage: stage, Message: message, At: r.now()})
	r.mu.Unlock()

	r.logger.Debug(message, zap.String("stage", stage))
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

type contextKey struct{}

// WithRecorder attaches r to ctx.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// From returns the Recorder on ctx, or nil.
func From(ctx context.Context) *Recorder {
	r, _ := ctx.Value(contextKey{}).(*Recorder)
	return r
}

// Add records an event on the context's Recorder. A context without a
// Recorder drops the event.
func Add(ctx context.Context, stage, message string) {
	From(ctx).Add(stage, message)
}
