package usecase

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/docvoice/docvoice/internal/core/domain"
	"github.com/docvoice/docvoice/internal/core/ports"
	"github.com/docvoice/docvoice/internal/observability/metrics"
)

// SpeechController runs the two playback channels over a single shared
// audio device. Starting playback on either channel cancels whatever is
// speaking or paused on both, so at most one utterance is ever active.
type SpeechController struct {
	engine  ports.SpeechEngine
	metrics *metrics.ClientMetrics

	mu       sync.Mutex
	channels map[domain.Channel]*channelState
}

type channelState struct {
	status    domain.PlaybackStatus
	text      string
	langHint  string
	utterance ports.Utterance
	// generation guards the done monitor against acting on a state that
	// was replaced after the utterance was started.
	generation uint64
}

func NewSpeechController(engine ports.SpeechEngine, m *metrics.ClientMetrics) *SpeechController {
	return &SpeechController{
		engine:  engine,
		metrics: m,
		channels: map[domain.Channel]*channelState{
			domain.ChannelPrimary:   {status: domain.PlaybackIdle},
			domain.ChannelSecondary: {status: domain.PlaybackIdle},
		},
	}
}

// Play starts speaking text on the given channel, silencing any active
// utterance on either channel first. The returned channel closes when
// playback finishes for any reason.
func (c *SpeechController) Play(ch domain.Channel, text, langHint string) (<-chan struct{}, error) {
	// The unsupported check comes first: a missing engine is permanent,
	// not a retryable not-ready-yet.
	if c.engine.Unsupported() {
		return nil, domain.WrapError(domain.ErrUnsupportedEnvironment, "speech.play",
			errors.New("no speech engine on this machine"))
	}
	if !c.engine.Ready() {
		return nil, domain.WrapError(domain.ErrEngineNotReady, "speech.play",
			errors.New("voice enumeration pending"))
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInputMissing, "speech.play",
			errors.New("nothing to speak"))
	}

	voice := bestVoice(c.engine.Voices(), langHint)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, state := range c.channels {
		if state.status != domain.PlaybackIdle && state.utterance != nil {
			state.utterance.Cancel()
		}
		state.status = domain.PlaybackIdle
		state.utterance = nil
		state.generation++
	}

	utt, err := c.engine.Speak(text, voice)
	if err != nil {
		return nil, err
	}

	state := c.channels[ch]
	state.status = domain.PlaybackSpeaking
	state.text = text
	state.langHint = langHint
	state.utterance = utt
	state.generation++
	gen := state.generation

	if c.metrics != nil {
		c.metrics.RecordPlayback(serviceName, ch.String(), nil)
	}

	done := make(chan struct{})
	go c.monitor(ch, gen, utt, done)
	return done, nil
}

// monitor waits for the utterance to finish and resets the channel to
// idle, unless the channel has since moved on to a newer utterance.
func (c *SpeechController) monitor(ch domain.Channel, gen uint64, utt ports.Utterance, done chan struct{}) {
	err := <-utt.Done()
	if err != nil {
		slog.Warn("playback_failed", "channel", ch.String(), "error", err)
		if c.metrics != nil {
			c.metrics.RecordPlayback(serviceName, ch.String(), err)
		}
	}

	c.mu.Lock()
	state := c.channels[ch]
	if state.generation == gen {
		state.status = domain.PlaybackIdle
		state.utterance = nil
	}
	c.mu.Unlock()
	close(done)
}

// Pause suspends a speaking channel. Any other state is a no-op.
func (c *SpeechController) Pause(ch domain.Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.channels[ch]
	if state.status != domain.PlaybackSpeaking || state.utterance == nil {
		return nil
	}
	if err := state.utterance.Pause(); err != nil {
		return err
	}
	state.status = domain.PlaybackPaused
	return nil
}

// Resume continues a paused channel. Any other state is a no-op.
func (c *SpeechController) Resume(ch domain.Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.channels[ch]
	if state.status != domain.PlaybackPaused || state.utterance == nil {
		return nil
	}
	if err := state.utterance.Resume(); err != nil {
		return err
	}
	state.status = domain.PlaybackSpeaking
	return nil
}

// Stop cancels a speaking or paused channel. Idle is a no-op.
func (c *SpeechController) Stop(ch domain.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.channels[ch]
	if state.status == domain.PlaybackIdle {
		return
	}
	if state.utterance != nil {
		state.utterance.Cancel()
	}
	state.status = domain.PlaybackIdle
	state.utterance = nil
	state.generation++
}

// State returns a snapshot of the channel's playback state.
func (c *SpeechController) State(ch domain.Channel) domain.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.channels[ch]
	return domain.PlaybackState{
		Channel:  ch,
		Status:   state.status,
		Text:     state.text,
		LangHint: state.langHint,
	}
}

// bestVoice picks the voice whose language matches the hint by longest
// shared prefix, so "en" prefers "en" over "en-us" but accepts either.
// With no usable match it falls back to the first available voice.
func bestVoice(voices []domain.Voice, langHint string) domain.Voice {
	hint := strings.ToLower(strings.TrimSpace(langHint))
	if len(voices) == 0 {
		return domain.Voice{Lang: hint}
	}
	if hint == "" {
		return voices[0]
	}

	best := -1
	bestLen := 0
	for i, v := range voices {
		lang := strings.ToLower(v.Lang)
		n := commonPrefix(lang, hint)
		if n == 0 {
			continue
		}
		// An exact match or a hint-prefix match beats a partial overlap.
		if n > bestLen || (n == bestLen && lang == hint) {
			best = i
			bestLen = n
		}
	}
	if best < 0 {
		return voices[0]
	}
	return voices[best]
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
