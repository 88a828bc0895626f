// Package app wires the tutor together: event store, LLM provider,
// agents and dispatcher.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/agents"
	"github.com/abhisek/eduindia/internal/config"
	"github.com/abhisek/eduindia/internal/dispatch"
	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/lesson"
	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/revision"
	"github.com/abhisek/eduindia/internal/store"
)

// Options configures the app.
type Options struct {
	Config config.Config

	// DBPath is the event log location; store.MemoryDSN keeps it in memory.
	DBPath string

	Logger *zap.Logger

	// Provider replaces the configured LLM provider when set.
	Provider llm.Provider
}

// App holds the running tutor.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Store      *store.Store
	Learners   *learner.Store
	Provider   llm.Provider
	Dispatcher *dispatch.Dispatcher

	// ProviderErr is set when the configured provider could not be built.
	// The tutor still runs and every agent reports the error inline.
	ProviderErr error
}

// New opens the event store and builds the dispatcher.
func New(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	learners, err := learner.NewStore(cfg.Profiles)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Store: st, Learners: learners}

	a.Provider = opts.Provider
	if a.Provider == nil {
		llmCfg := cfg.LLM
		llmCfg.Discover()
		a.Provider, a.ProviderErr = llm.NewProviderOrUnavailable(ctx, llmCfg, st.EventRepo(), logger.Named("llm"))
		if a.ProviderErr != nil {
			logger.Warn("LLM provider not configured; tutor replies will report the error", zap.Error(a.ProviderErr))
		}
	}

	agentLog := logger.Named("agents")
	questions := agents.NewQuestionSetter(a.Provider, cfg.Agents, agentLog)
	a.Dispatcher = dispatch.New(dispatch.Deps{
		Store: learners,
		Lessons: lesson.NewOrchestrator(
			agents.NewExplainer(a.Provider, cfg.Agents, agentLog),
			agents.NewLocalizer(a.Provider, cfg.Agents, agentLog),
			questions,
			logger.Named("lesson"),
		),
		Scheduler: revision.NewScheduler(a.Provider, cfg.Agents, cfg.Revision.StaleAfter, logger.Named("revision")),
		Questions: questions,
		Grader:    agents.NewGrader(a.Provider, cfg.Agents, agentLog),
		Logger:    logger.Named("dispatch"),
	})
	return a, nil
}

// Close releases the event store.
func (a *App) Close() error {
	return a.Store.Close()
}
