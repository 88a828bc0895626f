// Package dispatch is the tutor's entry point. It decides what each
// incoming message means for the session's learner and routes it to the
// lesson, revision, question or grading path.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/agents"
	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/lesson"
	"github.com/abhisek/eduindia/internal/revision"
	"github.com/abhisek/eduindia/internal/trace"
)

// DefaultTopic is taught when the learner asks for a lesson without
// naming a topic.
const DefaultTopic = "Cloud Computing"

// Fixed replies.
const (
	HelpText         = "I can help you! Ask me to 'explain <topic>', 'study next', or 'test me on <topic>'."
	MissingTopicText = "Please specify a topic for the test, e.g., 'test me on Photosynthesis'."
	CorruptStateText = "There was an issue processing your test answer. Let's restart the test or ask me to explain a concept."
	UnhandledText    = "An unhandled error occurred while processing your request. Please try again."
)

// Intent labels reported in Result.Intent besides IntentKind names.
const (
	IntentLabelAnswer  = "answer"
	IntentLabelCorrupt = "corrupt-state"
	IntentLabelError   = "error"
)

// Result is the outcome of one turn.
type Result struct {
	Response string        `json:"response"`
	Trace    []trace.Event `json:"trace"`
	Intent   string        `json:"intent"`
	Profile  string        `json:"profile"`
}

// Dispatcher routes messages. It is safe for concurrent use by different
// sessions; turns on the same profile serialize only on the profile's own
// operations.
type Dispatcher struct {
	store     *learner.Store
	lessons   *lesson.Orchestrator
	scheduler *revision.Scheduler
	questions *agents.QuestionSetter
	grader    *agents.Grader
	logger    *zap.Logger
}

// Deps are the collaborators of a Dispatcher.
type Deps struct {
	Store     *learner.Store
	Lessons   *lesson.Orchestrator
	Scheduler *revision.Scheduler
	Questions *agents.QuestionSetter
	Grader    *agents.Grader
	Logger    *zap.Logger
}

// New creates a Dispatcher.
func New(d Deps) *Dispatcher {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:     d.Store,
		lessons:   d.Lessons,
		scheduler: d.Scheduler,
		questions: d.Questions,
		grader:    d.Grader,
		logger:    logger,
	}
}

// Store returns the learner store.
func (d *Dispatcher) Store() *learner.Store {
	return d.store
}

// SelectProfile switches the session to profileID. Unknown IDs are
// ignored and reported as false.
func (d *Dispatcher) SelectProfile(sessionID, profileID string) bool {
	ok := d.store.SetActive(sessionID, profileID)
	if ok {
		d.logger.Info("profile selected", zap.String("session", sessionID), zap.String("profile", profileID))
	}
	return ok
}

// Handle answers query for the session's active learner. It never fails:
// every outcome, including a panic in a collaborator, is a response text.
func (d *Dispatcher) Handle(ctx context.Context, sessionID, query string) (res Result) {
	rec := trace.NewRecorder(d.logger.With(zap.String("session", sessionID)))
	ctx = trace.WithRecorder(ctx, rec)
	profile := d.store.Active(sessionID)

	res.Profile = profile.ID()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			rec.Add(trace.StageDispatch, fmt.Sprintf("Unhandled error: %v", r))
			res.Response = UnhandledText
			res.Intent = IntentLabelError
		}
		res.Trace = rec.Events()
	}()

	rec.Add(trace.StageDispatch, fmt.Sprintf("Received request %q for %s", query, profile.ID()))
	res.Response, res.Intent = d.route(ctx, profile, query)
	return res
}

func (d *Dispatcher) route(ctx context.Context, profile *learner.Profile, query string) (string, string) {
	if pending, ok := profile.TakePendingAnswer(); ok {
		if !pending.Valid() {
			trace.Add(ctx, trace.StageState, "Pending answer corrupted, cleared")
			return CorruptStateText, IntentLabelCorrupt
		}
		trace.Add(ctx, trace.StageDispatch, fmt.Sprintf("Awaiting answer for %q, grading", pending.Concept))
		return d.grader.Grade(ctx, profile, query, pending), IntentLabelAnswer
	}

	intent := Classify(query)
	trace.Add(ctx, trace.StageDispatch, fmt.Sprintf("Classified as %s", intent.Kind))

	switch intent.Kind {
	case IntentExplain:
		topic := intent.Topic
		if topic == "" {
			topic = DefaultTopic
		}
		return d.lessons.Teach(ctx, profile, topic), intent.Kind.String()

	case IntentRevise:
		return d.scheduler.Recommend(ctx, profile.Snapshot()), intent.Kind.String()

	case IntentTestMe:
		if intent.Topic == "" {
			return MissingTopicText, intent.Kind.String()
		}
		item := d.questions.Generate(ctx, intent.Topic)
		profile.SetPendingAnswer(intent.Topic, item.Answer)
		trace.Add(ctx, trace.StageState, fmt.Sprintf("Pending answer set for %q", intent.Topic))
		return lesson.FormatQuestion(item.Question), intent.Kind.String()

	default:
		return HelpText, intent.Kind.String()
	}
}
