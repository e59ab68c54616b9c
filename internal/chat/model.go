package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/cvforge/cvchat/internal/client"
	"github.com/cvforge/cvchat/internal/i18n"
)

const (
	maxSuggestions   = 3
	suggestDebounce  = 200 * time.Millisecond
	filePreviewLines = 8
)

// Executor interprets free-text commands and offers completions.
// *client.Client satisfies it.
type Executor interface {
	Execute(ctx context.Context, text string) (*client.CommandResult, error)
	Suggestions(ctx context.Context, partial string) ([]string, error)
}

// Streamer is the optional streaming variant of command execution.
type Streamer interface {
	ExecuteStream(ctx context.Context, text string) (<-chan client.StreamEvent, error)
}

// Authenticator manages the user session.
type Authenticator interface {
	SignIn(ctx context.Context) (string, error)
	Authenticated() bool
}

// Downloader persists documents carried by command results.
type Downloader interface {
	Trigger(ctx context.Context, result *client.CommandResult) (string, error)
}

// Options wires the view's collaborators.
type Options struct {
	Executor  Executor
	Streamer  Streamer // nil disables streaming
	Auth      Authenticator
	Downloads Downloader
	Strings   *i18n.Catalog
	Logger    *slog.Logger

	// Input length (in runes) that must be exceeded before suggestions fire.
	SuggestionThreshold int

	// Directory downloads and transcript exports are written to.
	DownloadDir string
}

// Messages delivered by collaborator commands.
type (
	commandResultMsg struct {
		result *client.CommandResult
		err    error
	}
	streamStartedMsg struct {
		events <-chan client.StreamEvent
	}
	streamEventMsg struct {
		events <-chan client.StreamEvent
		event  client.StreamEvent
		ok     bool
	}
	suggestTickMsg struct {
		query string
	}
	suggestionsMsg struct {
		query string
		items []string
		err   error
	}
	signInMsg struct {
		user string
		err  error
	}
	downloadDoneMsg struct {
		path string
		err  error
	}
	transcriptSavedMsg struct {
		path string
		err  error
	}
)

// Model is the bubbletea model for the chat view.
type Model struct {
	opts  Options
	theme Theme

	transcript Transcript
	input      textinput.Model
	spin       spinner.Model

	width  int
	height int

	pending   bool // a command execution is in flight
	streaming bool // the in-flight execution streams into the last message
	showGate  bool
	signingIn bool
	quitting  bool

	suggestions   []string
	suggestIndex  int
	showSuggest   bool
	lastSuggested string
}

// New creates the chat view.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	input := textinput.New()
	input.Placeholder = opts.Strings.Get("chat.placeholder")
	input.CharLimit = 512

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		opts:  opts,
		theme: defaultTheme,
		input: input,
		spin:  spin,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.input.Focus()
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.pending || m.signingIn {
			return m, cmd
		}
		return m, nil

	case commandResultMsg:
		m.pending = false
		cmd := m.applyResult(msg.result, msg.err)
		return m, cmd

	case streamStartedMsg:
		m.streaming = false
		return m, readStream(msg.events)

	case streamEventMsg:
		return m.handleStreamEvent(msg)

	case suggestTickMsg:
		// Only fetch if the input has not moved on since the debounce tick.
		if msg.query == m.input.Value() && m.suggestionsEnabled() {
			return m, m.fetchSuggestions(msg.query)
		}
		return m, nil

	case suggestionsMsg:
		return m.handleSuggestions(msg)

	case signInMsg:
		return m.handleSignIn(msg)

	case downloadDoneMsg:
		// The download trigger's outcome is not surfaced in the transcript.
		if msg.err != nil {
			m.opts.Logger.Error("download failed", "error", msg.err)
		} else {
			m.opts.Logger.Info("document saved", "path", msg.path)
		}
		return m, nil

	case transcriptSavedMsg:
		if msg.err != nil {
			m.opts.Logger.Error("transcript save failed", "error", msg.err)
		} else {
			m.transcript.Append(RoleSystem, KindText,
				m.opts.Strings.Get("chat.transcript_saved")+": "+msg.path, nil)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	if m.showGate {
		return m.handleGateKey(msg)
	}

	switch msg.String() {
	case "enter":
		return m.submit()

	case "tab":
		if m.showSuggest && len(m.suggestions) > 0 {
			m.applySuggestion(m.suggestions[m.suggestIndex])
		}
		return m, nil

	case "up":
		if m.showSuggest && m.suggestIndex > 0 {
			m.suggestIndex--
			return m, nil
		}

	case "down":
		if m.showSuggest && m.suggestIndex < len(m.suggestions)-1 {
			m.suggestIndex++
			return m, nil
		}

	case "esc":
		m.hideSuggestions()
		return m, nil

	case "ctrl+s":
		return m, m.saveTranscript()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, tea.Batch(cmd, m.scheduleSuggestions())
}

func (m Model) handleGateKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.signingIn {
			return m, nil
		}
		m.signingIn = true
		return m, tea.Batch(m.signIn(), m.spin.Tick)
	case "esc":
		if !m.signingIn {
			m.showGate = false
		}
	}
	return m, nil
}

// submit implements the send action: empty input is a no-op, unauthenticated
// submission opens the auth gate, everything else dispatches the command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.pending {
		// Submission is disabled while a command is in flight.
		return m, nil
	}

	if !m.opts.Auth.Authenticated() {
		m.showGate = true
		return m, nil
	}

	m.transcript.Append(RoleUser, KindCommand, text, nil)
	m.input.Reset()
	m.hideSuggestions()
	m.lastSuggested = ""
	m.pending = true

	return m, tea.Batch(m.execute(text), m.spin.Tick)
}

// applyResult converts an execution outcome into transcript messages, per
// result type. Failures become visible assistant text; nothing propagates.
func (m *Model) applyResult(result *client.CommandResult, err error) tea.Cmd {
	errPrefix := m.opts.Strings.Get("chat.error_prefix")

	if err != nil {
		m.opts.Logger.Error("command execution failed", "error", err)
		m.transcript.Append(RoleAssistant, KindError, errPrefix+err.Error(), nil)
		return nil
	}
	if !result.Success {
		m.transcript.Append(RoleAssistant, KindError, errPrefix+result.Error, nil)
		return nil
	}

	switch result.Type {
	case client.TypeConversation:
		m.transcript.Append(RoleAssistant, KindText, result.Reply, nil)
		return nil

	case client.TypePDF:
		m.transcript.Append(RoleAssistant, KindResult, m.summary(result, "chat.result_pdf"), result)
		return m.triggerDownload(result)

	case client.TypeEdit:
		m.transcript.Append(RoleAssistant, KindResult, m.summary(result, "chat.result_edit"), result)
		return nil

	case client.TypeFileContent:
		m.transcript.Append(RoleAssistant, KindResult, m.summary(result, "chat.result_file"), result)
		return nil

	default:
		m.transcript.Append(RoleAssistant, KindResult, m.summary(result, "chat.result_generic"), result)
		return nil
	}
}

// summary prefers the server's human-readable reply over the catalog default.
func (m *Model) summary(result *client.CommandResult, fallbackKey string) string {
	if result.Reply != "" {
		return result.Reply
	}
	return m.opts.Strings.Get(fallbackKey)
}

func (m Model) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		// Channel closed without a terminal event.
		m.pending = false
		m.streaming = false
		return m, nil
	}

	ev := msg.event
	switch {
	case ev.Err != nil:
		m.pending = false
		if m.streaming {
			m.transcript.DropLast()
			m.streaming = false
		}
		m.transcript.Append(RoleAssistant, KindError,
			m.opts.Strings.Get("chat.error_prefix")+ev.Err.Error(), nil)
		return m, nil

	case ev.Result != nil:
		m.pending = false
		if m.streaming {
			if ev.Result.Success && ev.Result.Type == client.TypeConversation {
				// The reply already streamed into the transcript.
				m.streaming = false
				return m, nil
			}
			// Anything else supersedes the streamed stub.
			m.transcript.DropLast()
			m.streaming = false
		}
		cmd := m.applyResult(ev.Result, nil)
		return m, cmd

	default:
		if !m.streaming {
			m.transcript.Append(RoleAssistant, KindText, "", nil)
			m.streaming = true
		}
		m.transcript.ExtendLast(ev.Delta)
		return m, readStream(msg.events)
	}
}

func (m Model) handleSuggestions(msg suggestionsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.opts.Logger.Debug("suggestions failed", "error", msg.err)
		return m, nil
	}
	// Stale responses for input the user has already edited are dropped.
	if msg.query != m.input.Value() || !m.suggestionsEnabled() {
		return m, nil
	}

	items := msg.items
	if len(items) > maxSuggestions {
		items = items[:maxSuggestions]
	}
	m.suggestions = items
	m.suggestIndex = 0
	m.showSuggest = len(items) > 0
	return m, nil
}

func (m Model) handleSignIn(msg signInMsg) (tea.Model, tea.Cmd) {
	m.signingIn = false
	if msg.err != nil {
		// Deliberately no transcript message; sign-in failures are only
		// logged and the gate stays up for another attempt.
		m.opts.Logger.Error("sign in failed", "error", msg.err)
		return m, nil
	}

	m.showGate = false
	m.opts.Logger.Info("signed in", "user", msg.user)
	m.transcript.Append(RoleAssistant, KindText, m.welcome(), nil)
	return m, nil
}

// welcome builds the post-sign-in message enumerating example commands.
func (m *Model) welcome() string {
	s := m.opts.Strings
	return s.Get("chat.welcome") + "\n" +
		"  • " + s.Get("chat.example_generate") + "\n" +
		"  • " + s.Get("chat.example_edit") + "\n" +
		"  • " + s.Get("chat.example_fetch")
}

func (m *Model) suggestionsEnabled() bool {
	return m.opts.Auth.Authenticated() &&
		utf8.RuneCountInString(m.input.Value()) > m.opts.SuggestionThreshold
}

// scheduleSuggestions debounces suggestion fetches while the user types.
func (m *Model) scheduleSuggestions() tea.Cmd {
	if !m.suggestionsEnabled() {
		m.hideSuggestions()
		return nil
	}

	query := m.input.Value()
	if query == m.lastSuggested {
		return nil
	}
	m.lastSuggested = query

	return tea.Tick(suggestDebounce, func(time.Time) tea.Msg {
		return suggestTickMsg{query: query}
	})
}

func (m *Model) applySuggestion(s string) {
	m.input.SetValue(s)
	m.lastSuggested = s
	m.hideSuggestions()
}

func (m *Model) hideSuggestions() {
	m.showSuggest = false
	m.suggestions = nil
	m.suggestIndex = 0
}

// Collaborator commands. Each runs in its own goroutine and reports back as
// a message; the view itself never blocks.

func (m *Model) execute(text string) tea.Cmd {
	if m.opts.Streamer != nil {
		streamer := m.opts.Streamer
		return func() tea.Msg {
			events, err := streamer.ExecuteStream(context.Background(), text)
			if err != nil {
				return commandResultMsg{err: err}
			}
			return streamStartedMsg{events: events}
		}
	}

	executor := m.opts.Executor
	return func() tea.Msg {
		result, err := executor.Execute(context.Background(), text)
		return commandResultMsg{result: result, err: err}
	}
}

func readStream(events <-chan client.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return streamEventMsg{events: events, event: ev, ok: ok}
	}
}

func (m *Model) fetchSuggestions(query string) tea.Cmd {
	executor := m.opts.Executor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		items, err := executor.Suggestions(ctx, query)
		return suggestionsMsg{query: query, items: items, err: err}
	}
}

func (m *Model) signIn() tea.Cmd {
	authenticator := m.opts.Auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := authenticator.SignIn(ctx)
		return signInMsg{user: user, err: err}
	}
}

func (m *Model) triggerDownload(result *client.CommandResult) tea.Cmd {
	if m.opts.Downloads == nil {
		return nil
	}
	downloads := m.opts.Downloads
	return func() tea.Msg {
		path, err := downloads.Trigger(context.Background(), result)
		return downloadDoneMsg{path: path, err: err}
	}
}

func (m *Model) saveTranscript() tea.Cmd {
	dir := m.opts.DownloadDir
	content := m.transcript.Markdown()
	return func() tea.Msg {
		name := fmt.Sprintf("cvchat-transcript-%s.md", time.Now().Format("20060102-150405"))
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return transcriptSavedMsg{err: fmt.Errorf("write transcript: %w", err)}
		}
		return transcriptSavedMsg{path: path}
	}
}
