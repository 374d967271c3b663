package domain

// Channel identifies one of the two logical speech playback slots. Both
// share one physical audio device, so only one can produce sound at a time.
type Channel int

const (
	ChannelPrimary Channel = iota
	ChannelSecondary
)

func (c Channel) String() string {
	switch c {
	case ChannelPrimary:
		return "primary"
	case ChannelSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

type PlaybackStatus int

const (
	PlaybackIdle PlaybackStatus = iota
	PlaybackSpeaking
	PlaybackPaused
)

func (s PlaybackStatus) String() string {
	switch s {
	case PlaybackSpeaking:
		return "speaking"
	case PlaybackPaused:
		return "paused"
	default:
		return "idle"
	}
}

// PlaybackState is the public snapshot of one channel.
type PlaybackState struct {
	Channel  Channel
	Status   PlaybackStatus
	Text     string
	LangHint string
}

// Voice is one voice offered by the speech engine. Lang is a BCP47-ish
// tag such as "en" or "en-us".
type Voice struct {
	Name string
	Lang string
}
