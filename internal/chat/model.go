// Package chat is the full-screen tutoring conversation: a scrolling
// transcript above a single input line.
package chat

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/samber/lo"

	"github.com/abhisek/eduindia/internal/dispatch"
	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/trace"
	"github.com/abhisek/eduindia/internal/ui"
)

// Greeting opens every conversation.
const Greeting = "Namaste! I'm your EduIndia tutor. Ask me to **explain** a concept, " +
	"**test me on** a topic, or tell you what to **study next**."

// Options configures a chat Model.
type Options struct {
	Dispatcher *dispatch.Dispatcher
	SessionID  string

	// Style is the glamour style for tutor replies; ui.StylePlain shows
	// raw markdown.
	Style string

	ShowTrace bool

	// Notice is shown once above the greeting, e.g. a missing API key.
	Notice string
}

type speaker int

const (
	speakerLearner speaker = iota
	speakerTutor
	speakerSystem
)

// entry is one block of the transcript.
type entry struct {
	speaker speaker
	text    string
	trace   []trace.Event

	// rendered caches text for the current width.
	rendered string
}

// replyMsg carries the dispatcher's answer back to the program.
type replyMsg struct {
	result dispatch.Result
}

// Model is the root Bubble Tea model of the chat.
type Model struct {
	ctx        context.Context
	dispatcher *dispatch.Dispatcher
	learners   *learner.Store
	sessionID  string
	style      string
	md         *ui.Markdown

	input    textinput.Model
	viewport viewport.Model

	// transcript is what the viewport shows. Switching learner clears it.
	transcript []entry
	showTrace  bool
	waiting    bool

	width  int
	height int
}

// New creates the chat for one session.
func New(ctx context.Context, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "explain photosynthesis · test me on soil health · study next"
	ti.Prompt = "› "
	ti.Focus()

	m := &Model{
		ctx:        ctx,
		dispatcher: opts.Dispatcher,
		learners:   opts.Dispatcher.Store(),
		sessionID:  opts.SessionID,
		style:      opts.Style,
		md:         ui.NewMarkdown(opts.Style, 80),
		input:      ti,
		viewport:   viewport.New(),
		showTrace:  opts.ShowTrace,
	}
	if opts.Notice != "" {
		m.system(ui.Warn(opts.Notice))
	}
	m.system(ui.ProfileCard(m.active().Snapshot()))
	m.transcript = append(m.transcript, entry{speaker: speakerTutor, text: Greeting})
	m.system(ui.RenderHints(ui.ChatHints))
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case replyMsg:
		m.waiting = false
		m.transcript = append(m.transcript, entry{
			speaker: speakerTutor,
			text:    msg.result.Response,
			trace:   msg.result.Trace,
		})
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			return m, m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles the input line: slash commands run here, anything else
// goes to the dispatcher off the UI goroutine.
func (m *Model) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	if line == "" || m.waiting {
		return nil
	}
	m.input.Reset()

	if strings.HasPrefix(line, "/") {
		cmd := m.command(line)
		m.refresh()
		return cmd
	}

	m.transcript = append(m.transcript, entry{speaker: speakerLearner, text: line})
	m.waiting = true
	m.refresh()

	ctx, d, session := m.ctx, m.dispatcher, m.sessionID
	return func() tea.Msg {
		return replyMsg{result: d.Handle(ctx, session, line)}
	}
}

func (m *Model) command(line string) tea.Cmd {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return tea.Quit
	case "/profiles":
		snaps := lo.Map(m.learners.Profiles(), func(p *learner.Profile, _ int) learner.Snapshot {
			return p.Snapshot()
		})
		m.system(ui.ProfileList(snaps, m.active().ID()))
	case "/profile":
		if arg == "" {
			m.system(ui.Warn("usage: /profile <id>"))
			return nil
		}
		if err := m.SelectProfile(arg); err != nil {
			m.system(ui.Warn(err.Error()))
		}
	case "/card":
		m.system(ui.ProfileCard(m.active().Snapshot()))
	case "/trace":
		m.showTrace = !m.showTrace
		m.invalidate()
		m.system(fmt.Sprintf("Trace %s.", lo.Ternary(m.showTrace, "on", "off")))
	case "/help":
		m.system(ui.RenderHints(ui.ChatHints))
	default:
		m.system(ui.Warn(fmt.Sprintf("unknown command %s (try /help)", name)))
	}
	return nil
}

// SelectProfile switches the session's learner and starts a fresh
// transcript with their card. An unknown ID changes nothing.
func (m *Model) SelectProfile(id string) error {
	if _, err := m.learners.Lookup(id); err != nil {
		return err
	}
	m.dispatcher.SelectProfile(m.sessionID, id)
	m.transcript = nil
	m.system(ui.ProfileCard(m.active().Snapshot()))
	m.refresh()
	return nil
}

func (m *Model) active() *learner.Profile {
	return m.learners.Active(m.sessionID)
}

func (m *Model) system(text string) {
	m.transcript = append(m.transcript, entry{speaker: speakerSystem, text: text})
}
