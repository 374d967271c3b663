package tui

import (
	"github.com/docvoice/docvoice/internal/core/domain"
)

// welcomeMsg carries the service greeting fetched at startup.
type welcomeMsg struct {
	Text string
	Err  error
}

// filesMsg carries a fresh listing from the documents watcher.
type filesMsg struct {
	Files []string
}

// summaryMsg is the completion of a summarize run.
type summaryMsg struct {
	Summary domain.Summary
	Err     error
}

// translationMsg is the completion of a translate run.
type translationMsg struct {
	Translation domain.Translation
	Err         error
}

// answerMsg is the completion of a question run.
type answerMsg struct {
	Answer domain.Answer
	Err    error
}

// loginMsg is the completion of a login attempt.
type loginMsg struct {
	Session domain.Session
	Err     error
}

// registerMsg is the completion of a registration attempt.
type registerMsg struct {
	Username string
	Err      error
}

// logoutMsg is the completion of a logout.
type logoutMsg struct {
	Err error
}

// restoredMsg carries the session recovered at startup, nil when none.
type restoredMsg struct {
	Session *domain.Session
}

// historyMsg carries the refreshed history cache.
type historyMsg struct {
	Entries []domain.HistoryEntry
}

// playbackStartedMsg reports a playback successfully started on a channel.
type playbackStartedMsg struct {
	Channel domain.Channel
	Done    <-chan struct{}
}

// playbackDoneMsg reports a channel's playback finished for any reason.
type playbackDoneMsg struct {
	Channel domain.Channel
}

// playbackErrMsg reports a playback that could not start.
type playbackErrMsg struct {
	Err error
}

// clearNoticeMsg clears a transient status or error line.
type clearNoticeMsg struct{}
