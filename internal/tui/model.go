package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docvoice/docvoice/internal/core/domain"
	"github.com/docvoice/docvoice/internal/core/usecase"
)

// Greeter fetches the service welcome message shown in the header.
type Greeter interface {
	Welcome(ctx context.Context) (string, error)
}

// DocumentOpener opens a candidate upload file by name.
type DocumentOpener interface {
	Open(name string) (io.ReadCloser, error)
}

// Deps are the collaborators the shell composes. Files is the documents
// watcher stream; nil disables the picker updates.
type Deps struct {
	Pipeline  *usecase.Pipeline
	Sessions  *usecase.SessionManager
	History   *usecase.HistoryStore
	Speech    *usecase.SpeechController
	Greeter   Greeter
	Documents DocumentOpener
	Files     <-chan []string
}

type mode int

const (
	modeBrowse mode = iota
	modeLogin
	modeRegister
	modeAsk
)

type panelFocus int

const (
	focusFiles panelFocus = iota
	focusHistory
)

// Model is the root bubbletea model. All remote work happens in commands;
// Update only applies their completion messages, so the shell itself stays
// single threaded.
type Model struct {
	deps Deps

	mode  mode
	focus panelFocus

	width  int
	height int

	welcome string

	files     []string
	fileIndex int

	entries   []domain.HistoryEntry
	histIndex int

	busy        bool
	summary     string
	translation string
	translLang  string
	answer      string
	question    string

	lang string

	sessionName string

	// Form state shared by login, register, and ask.
	inputUser     string
	inputPass     string
	inputQuestion string
	formField     int

	statusText string
	errorText  string
	transient  bool
}

// New creates the shell model around its collaborators.
func New(deps Deps) Model {
	return Model{
		deps:       deps,
		lang:       deps.Pipeline.Language(),
		statusText: "Starting...",
	}
}

// Init fires the startup commands: greeting, session restore, and the
// first read from the documents watcher.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		welcomeCmd(m.deps.Greeter),
		restoreCmd(m.deps.Sessions),
	}
	if m.deps.Files != nil {
		cmds = append(cmds, waitFilesCmd(m.deps.Files))
	}
	return tea.Batch(cmds...)
}

func welcomeCmd(g Greeter) tea.Cmd {
	return func() tea.Msg {
		if g == nil {
			return welcomeMsg{}
		}
		text, err := g.Welcome(context.Background())
		return welcomeMsg{Text: text, Err: err}
	}
}

func restoreCmd(sessions *usecase.SessionManager) tea.Cmd {
	return func() tea.Msg {
		session, err := sessions.RestoreSession(context.Background())
		if err != nil {
			// Restore never blocks startup.
			return restoredMsg{}
		}
		return restoredMsg{Session: session}
	}
}

// waitFilesCmd reads the next listing from the watcher.
func waitFilesCmd(files <-chan []string) tea.Cmd {
	return func() tea.Msg {
		listing, ok := <-files
		if !ok {
			return nil
		}
		return filesMsg{Files: listing}
	}
}

func summarizeCmd(pipeline *usecase.Pipeline, docs DocumentOpener, name string) tea.Cmd {
	return func() tea.Msg {
		file, err := docs.Open(name)
		if err != nil {
			return summaryMsg{Err: err}
		}
		defer file.Close()
		summary, err := pipeline.Summarize(context.Background(), name, file)
		return summaryMsg{Summary: summary, Err: err}
	}
}

func translateCmd(pipeline *usecase.Pipeline, langCode string) tea.Cmd {
	return func() tea.Msg {
		translation, err := pipeline.Translate(context.Background(), langCode)
		return translationMsg{Translation: translation, Err: err}
	}
}

func askCmd(pipeline *usecase.Pipeline, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := pipeline.Ask(context.Background(), question)
		return answerMsg{Answer: answer, Err: err}
	}
}

func loginCmd(sessions *usecase.SessionManager, username, password string) tea.Cmd {
	return func() tea.Msg {
		session, err := sessions.Login(context.Background(), username, password)
		return loginMsg{Session: session, Err: err}
	}
}

func registerCmd(sessions *usecase.SessionManager, username, password string) tea.Cmd {
	return func() tea.Msg {
		err := sessions.Register(context.Background(), username, password)
		return registerMsg{Username: username, Err: err}
	}
}

func logoutCmd(sessions *usecase.SessionManager) tea.Cmd {
	return func() tea.Msg {
		return logoutMsg{Err: sessions.Logout(context.Background())}
	}
}

// refreshHistoryCmd reloads the cache and reports the entries. Concurrent
// triggers for the same user coalesce inside the store.
func refreshHistoryCmd(history *usecase.HistoryStore, userID string) tea.Cmd {
	return func() tea.Msg {
		_ = history.Refresh(context.Background(), userID)
		return historyMsg{Entries: history.Entries()}
	}
}

func playCmd(speech *usecase.SpeechController, ch domain.Channel, text, langHint string) tea.Cmd {
	return func() tea.Msg {
		done, err := speech.Play(ch, text, langHint)
		if err != nil {
			return playbackErrMsg{Err: err}
		}
		return playbackStartedMsg{Channel: ch, Done: done}
	}
}

func waitPlaybackCmd(ch domain.Channel, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return playbackDoneMsg{Channel: ch}
	}
}

func clearNoticeCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}

// Update processes messages and returns the updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case welcomeMsg:
		if msg.Err == nil && msg.Text != "" {
			m.welcome = msg.Text
		}
		m.statusText = "Ready"
		return m, nil

	case filesMsg:
		m.files = msg.Files
		if m.fileIndex >= len(m.files) {
			m.fileIndex = max(0, len(m.files)-1)
		}
		return m, waitFilesCmd(m.deps.Files)

	case restoredMsg:
		if msg.Session != nil {
			m.sessionName = msg.Session.DisplayName
			return m, refreshHistoryCmd(m.deps.History, msg.Session.UserID)
		}
		return m, nil

	case summaryMsg:
		m.busy = false
		if msg.Err != nil {
			return m.notice(msg.Err)
		}
		m.summary = msg.Summary.Text
		m.translation = ""
		m.translLang = ""
		m.answer = ""
		m.question = ""
		m.statusText = "Summary ready"
		if session := m.deps.Sessions.Current(); session != nil {
			return m, refreshHistoryCmd(m.deps.History, session.UserID)
		}
		return m, nil

	case translationMsg:
		m.busy = false
		if msg.Err != nil {
			return m.notice(msg.Err)
		}
		m.translation = msg.Translation.Text
		m.translLang = msg.Translation.LangCode
		m.statusText = "Translated to " + domain.LanguageName(msg.Translation.LangCode)
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.Err != nil {
			return m.notice(msg.Err)
		}
		m.answer = msg.Answer.Text
		m.question = msg.Answer.Question
		m.statusText = "Answer ready"
		return m, nil

	case loginMsg:
		m.busy = false
		// The password field clears whatever the outcome.
		m.inputPass = ""
		if msg.Err != nil {
			m.formField = 1
			return m.notice(msg.Err)
		}
		m.mode = modeBrowse
		m.sessionName = msg.Session.DisplayName
		m.statusText = "Logged in as " + msg.Session.DisplayName
		m.inputUser = ""
		return m, refreshHistoryCmd(m.deps.History, msg.Session.UserID)

	case registerMsg:
		m.busy = false
		if msg.Err != nil {
			return m.notice(msg.Err)
		}
		m.mode = modeLogin
		m.formField = 1
		m.statusText = "Registered " + msg.Username + ", enter password to log in"
		return m, nil

	case logoutMsg:
		m.sessionName = ""
		m.entries = nil
		m.histIndex = 0
		if msg.Err != nil {
			return m.notice(msg.Err)
		}
		m.statusText = "Logged out"
		return m, nil

	case historyMsg:
		m.entries = msg.Entries
		if m.histIndex >= len(m.entries) {
			m.histIndex = max(0, len(m.entries)-1)
		}
		return m, nil

	case playbackStartedMsg:
		return m, waitPlaybackCmd(msg.Channel, msg.Done)

	case playbackDoneMsg:
		return m, nil

	case playbackErrMsg:
		return m.notice(msg.Err)

	case clearNoticeMsg:
		if m.transient {
			m.errorText = ""
			m.transient = false
		}
		return m, nil
	}

	return m, nil
}

// notice surfaces a failure as a transient user-facing line.
func (m Model) notice(err error) (tea.Model, tea.Cmd) {
	m.errorText = domain.UserMessage(err)
	m.transient = true
	return m, clearNoticeCmd()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeBrowse {
		return m.handleFormKey(msg)
	}

	switch msg.String() {
	case keyQuit, keyQuitUpper, keyCtrlC:
		m.deps.Speech.Stop(domain.ChannelPrimary)
		m.deps.Speech.Stop(domain.ChannelSecondary)
		return m, tea.Quit

	case keySummarize:
		if m.busy || len(m.files) == 0 {
			return m, nil
		}
		m.busy = true
		m.statusText = "Summarizing " + m.files[m.fileIndex] + "..."
		return m, summarizeCmd(m.deps.Pipeline, m.deps.Documents, m.files[m.fileIndex])

	case keyTranslate:
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.statusText = "Translating to " + domain.LanguageName(m.lang) + "..."
		return m, translateCmd(m.deps.Pipeline, m.lang)

	case keyAsk:
		if m.busy {
			return m, nil
		}
		m.mode = modeAsk
		m.inputQuestion = ""
		return m, nil

	case keyLanguage:
		m.lang = nextLanguage(m.lang)
		if err := m.deps.Pipeline.SetLanguage(m.lang); err != nil {
			return m.notice(err)
		}
		return m, nil

	case keyPrimary:
		return m.togglePlayback(domain.ChannelPrimary, m.summary, "en")

	case keySecondary:
		return m.togglePlayback(domain.ChannelSecondary, m.translation, m.translLang)

	case keyStopAll:
		m.deps.Speech.Stop(domain.ChannelPrimary)
		m.deps.Speech.Stop(domain.ChannelSecondary)
		return m, nil

	case keyLogin:
		if m.sessionName != "" {
			return m, nil
		}
		m.mode = modeLogin
		m.inputUser = ""
		m.inputPass = ""
		m.formField = 0
		return m, nil

	case keyRegister:
		if m.sessionName != "" {
			return m, nil
		}
		m.mode = modeRegister
		m.inputUser = ""
		m.inputPass = ""
		m.formField = 0
		return m, nil

	case keyLogout:
		if m.sessionName == "" {
			return m, nil
		}
		return m, logoutCmd(m.deps.Sessions)

	case keyRefresh:
		if session := m.deps.Sessions.Current(); session != nil {
			return m, refreshHistoryCmd(m.deps.History, session.UserID)
		}
		return m, nil

	case keyTab:
		if m.focus == focusFiles {
			m.focus = focusHistory
		} else {
			m.focus = focusFiles
		}
		return m, nil

	case keyJ, keyDown:
		if m.focus == focusFiles && m.fileIndex < len(m.files)-1 {
			m.fileIndex++
		} else if m.focus == focusHistory && m.histIndex < len(m.entries)-1 {
			m.histIndex++
		}
		return m, nil

	case keyK, keyUp:
		if m.focus == focusFiles && m.fileIndex > 0 {
			m.fileIndex--
		} else if m.focus == focusHistory && m.histIndex > 0 {
			m.histIndex--
		}
		return m, nil

	case keyEnter:
		if m.focus == focusHistory && m.histIndex < len(m.entries) {
			summary := m.deps.Pipeline.LoadHistoryEntry(m.entries[m.histIndex])
			m.summary = summary.Text
			m.translation = ""
			m.translLang = ""
			m.answer = ""
			m.question = ""
			m.statusText = "Loaded summary from history"
		}
		return m, nil
	}

	return m, nil
}

// togglePlayback maps one key to the channel's whole lifecycle: idle
// starts, speaking pauses, paused resumes.
func (m Model) togglePlayback(ch domain.Channel, text, langHint string) (tea.Model, tea.Cmd) {
	switch m.deps.Speech.State(ch).Status {
	case domain.PlaybackSpeaking:
		if err := m.deps.Speech.Pause(ch); err != nil {
			return m.notice(err)
		}
		return m, nil
	case domain.PlaybackPaused:
		if err := m.deps.Speech.Resume(ch); err != nil {
			return m.notice(err)
		}
		return m, nil
	default:
		if text == "" {
			return m, nil
		}
		return m, playCmd(m.deps.Speech, ch, text, langHint)
	}
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyCtrlC:
		return m, tea.Quit

	case keyEsc:
		m.mode = modeBrowse
		return m, nil

	case keyTab, keyDown:
		if m.mode != modeAsk {
			m.formField = (m.formField + 1) % 2
		}
		return m, nil

	case keyUp:
		if m.mode != modeAsk && m.formField > 0 {
			m.formField--
		}
		return m, nil

	case keyEnter:
		return m.submitForm()

	case "backspace":
		switch {
		case m.mode == modeAsk:
			m.inputQuestion = trimLast(m.inputQuestion)
		case m.formField == 0:
			m.inputUser = trimLast(m.inputUser)
		default:
			m.inputPass = trimLast(m.inputPass)
		}
		return m, nil

	case " ":
		if m.mode == modeAsk {
			m.inputQuestion += " "
		}
		return m, nil

	default:
		if msg.Type == tea.KeyRunes {
			switch {
			case m.mode == modeAsk:
				m.inputQuestion += string(msg.Runes)
			case m.formField == 0:
				m.inputUser += string(msg.Runes)
			default:
				m.inputPass += string(msg.Runes)
			}
		}
		return m, nil
	}
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	// A dispatch is already in flight; a second enter must not start another.
	if m.busy {
		return m, nil
	}
	switch m.mode {
	case modeAsk:
		question := m.inputQuestion
		m.mode = modeBrowse
		m.inputQuestion = ""
		m.busy = true
		m.statusText = "Asking..."
		return m, askCmd(m.deps.Pipeline, question)

	case modeLogin:
		if m.formField == 0 {
			m.formField = 1
			return m, nil
		}
		m.busy = true
		m.statusText = "Logging in..."
		return m, loginCmd(m.deps.Sessions, m.inputUser, m.inputPass)

	case modeRegister:
		if m.formField == 0 {
			m.formField = 1
			return m, nil
		}
		m.busy = true
		m.statusText = "Registering..."
		return m, registerCmd(m.deps.Sessions, m.inputUser, m.inputPass)
	}
	return m, nil
}

// nextLanguage cycles through the supported codes in their stable order.
func nextLanguage(current string) string {
	codes := domain.LanguageCodes()
	for i, code := range codes {
		if code == current {
			return codes[(i+1)%len(codes)]
		}
	}
	return codes[0]
}

func trimLast(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}
