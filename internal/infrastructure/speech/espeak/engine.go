package espeak

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/docvoice/docvoice/internal/core/domain"
	"github.com/docvoice/docvoice/internal/core/ports"
)

// Engine drives a local espeak-ng binary, one process per utterance.
// Voice enumeration runs in the background; Ready reports false until it
// completes. A missing binary makes the engine unsupported for the whole
// session.
type Engine struct {
	binary string
	rate   int
	pitch  int

	mu          sync.RWMutex
	ready       bool
	unsupported bool
	voices      []domain.Voice
}

func New(binary string, rate, pitch int) *Engine {
	e := &Engine{
		binary: binary,
		rate:   rate,
		pitch:  pitch,
	}
	go e.enumerate()
	return e
}

func (e *Engine) enumerate() {
	path, err := exec.LookPath(e.binary)
	if err != nil {
		e.mu.Lock()
		e.unsupported = true
		e.mu.Unlock()
		slog.Warn("speech_engine_unavailable", "binary", e.binary, "error", err)
		return
	}

	out, err := exec.Command(path, "--voices").Output()
	if err != nil {
		e.mu.Lock()
		e.unsupported = true
		e.mu.Unlock()
		slog.Warn("speech_voice_enumeration_failed", "binary", e.binary, "error", err)
		return
	}

	voices := parseVoices(out)
	e.mu.Lock()
	e.voices = voices
	e.ready = len(voices) > 0
	e.unsupported = len(voices) == 0
	e.mu.Unlock()
	slog.Info("speech_engine_ready", "voices", len(voices))
}

// parseVoices reads `espeak-ng --voices` output. Columns:
// Pty Language Age/Gender VoiceName File Other
func parseVoices(out []byte) []domain.Voice {
	var voices []domain.Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false // header row
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, domain.Voice{
			Name: fields[3],
			Lang: strings.ToLower(fields[1]),
		})
	}
	return voices
}

func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

// Unsupported reports whether the binary is known to be unusable. Once
// set it stays set for the whole session.
func (e *Engine) Unsupported() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.unsupported
}

func (e *Engine) Voices() []domain.Voice {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Voice, len(e.voices))
	copy(out, e.voices)
	return out
}

// Speak spawns one espeak process for the text. A zero voice keeps the
// engine default.
func (e *Engine) Speak(text string, voice domain.Voice) (ports.Utterance, error) {
	e.mu.RLock()
	unsupported, ready := e.unsupported, e.ready
	e.mu.RUnlock()

	if unsupported {
		return nil, domain.WrapError(domain.ErrUnsupportedEnvironment, "speak",
			fmt.Errorf("%s not usable", e.binary))
	}
	if !ready {
		return nil, domain.WrapError(domain.ErrEngineNotReady, "speak",
			errors.New("voice enumeration incomplete"))
	}

	args := []string{
		"-s", strconv.Itoa(e.rate),
		"-p", strconv.Itoa(e.pitch),
	}
	if voice.Lang != "" {
		args = append(args, "-v", voice.Lang)
	}
	args = append(args, "--", text)

	cmd := exec.Command(e.binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, domain.WrapError(domain.ErrUnsupportedEnvironment, "speak", err)
	}

	u := &utterance{
		cmd:  cmd,
		done: make(chan error, 1),
	}
	go u.wait()
	return u, nil
}

type utterance struct {
	cmd  *exec.Cmd
	done chan error

	mu       sync.Mutex
	canceled bool
}

func (u *utterance) wait() {
	err := u.cmd.Wait()

	u.mu.Lock()
	canceled := u.canceled
	u.mu.Unlock()

	// A kill we issued ourselves is a clean stop, not an engine error.
	if canceled {
		err = nil
	}
	u.done <- err
}

func (u *utterance) Pause() error {
	return u.cmd.Process.Signal(syscall.SIGSTOP)
}

func (u *utterance) Resume() error {
	return u.cmd.Process.Signal(syscall.SIGCONT)
}

func (u *utterance) Cancel() {
	u.mu.Lock()
	if u.canceled {
		u.mu.Unlock()
		return
	}
	u.canceled = true
	u.mu.Unlock()

	// SIGCONT first so a paused process can actually die.
	_ = u.cmd.Process.Signal(syscall.SIGCONT)
	_ = u.cmd.Process.Kill()
}

func (u *utterance) Done() <-chan error {
	return u.done
}
