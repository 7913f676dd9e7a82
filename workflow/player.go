package workflow

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PlayerState is one of the playback preview states.
type PlayerState string

const (
	PlayerLoading PlayerState = "loading"
	PlayerReady   PlayerState = "ready"
	PlayerPlaying PlayerState = "playing"
	PlayerPaused  PlayerState = "paused"
	PlayerError   PlayerState = "error"
)

// LoadTimeout is how long the player waits for a valid duration before
// surfacing the error state.
const LoadTimeout = 10 * time.Second

// skipStep is the fixed transport skip amount.
const skipStep = 10 * time.Second

// endThreshold is how close to the end the position must be, while not
// playing, for the player to auto-rewind.
const endThreshold = 500 * time.Millisecond

// ErrLoadTimeout is reported when a locator never reaches a playable state
// within the timeout window.
var ErrLoadTimeout = errors.New("audio did not load within the timeout window")

// ErrPlayerNotReady is returned for transport operations outside the ready states.
var ErrPlayerNotReady = errors.New("player is not ready")

// DurationProber resolves the playable duration of an audio locator.
type DurationProber interface {
	Probe(ctx context.Context, locator string) (time.Duration, error)
}

// ProbeFunc adapts a function to the DurationProber interface.
type ProbeFunc func(ctx context.Context, locator string) (time.Duration, error)

func (f ProbeFunc) Probe(ctx context.Context, locator string) (time.Duration, error) {
	return f(ctx, locator)
}

// FFProbe resolves durations by shelling out to ffprobe.
type FFProbe struct{}

func (FFProbe) Probe(ctx context.Context, locator string) (time.Duration, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		locator,
	).Output()
	if err != nil {
		return 0, err
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func isValidDuration(d time.Duration) bool {
	return d > 0
}

// Player is a finite-state playback preview over one audio locator:
// loading -> ready <-> {playing, paused}, loading -> error on timeout.
// A probed duration takes precedence over the externally supplied hint; the
// hint covers recorded formats whose container carries no metadata. Deleting
// the source from the error state is the caller's affordance: discard the
// player and clear the audio source.
type Player struct {
	mu         sync.Mutex
	locator    string
	hint       time.Duration
	prober     DurationProber
	timeout    time.Duration
	now        func() time.Time
	generation int

	state    PlayerState
	duration time.Duration
	position time.Duration
	playedAt time.Time
	timer    *time.Timer
	cancel   context.CancelFunc
}

// NewPlayer creates a player for locator and begins probing immediately.
// hint is an optional duration fallback; pass 0 when none is known.
func NewPlayer(locator string, hint time.Duration, prober DurationProber) *Player {
	return newPlayer(locator, hint, prober, LoadTimeout, time.Now)
}

func newPlayer(locator string, hint time.Duration, prober DurationProber, timeout time.Duration, now func() time.Time) *Player {
	p := &Player{
		locator: locator,
		hint:    hint,
		prober:  prober,
		timeout: timeout,
		now:     now,
		state:   PlayerLoading,
	}
	p.mu.Lock()
	p.startProbeLocked()
	p.mu.Unlock()
	return p
}

// startProbeLocked kicks off one probe attempt with a fresh timeout window.
func (p *Player) startProbeLocked() {
	gen := p.generation

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.cancel = cancel

	p.timer = time.AfterFunc(p.timeout, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation == gen && p.state == PlayerLoading {
			p.state = PlayerError
		}
	})

	go func() {
		defer cancel()
		d, err := p.prober.Probe(ctx, p.locator)

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation != gen || p.state != PlayerLoading {
			return
		}

		switch {
		case err == nil && isValidDuration(d):
			p.becomeReadyLocked(d)
		case isValidDuration(p.hint):
			// Container carried no usable metadata; fall back to the hint.
			p.becomeReadyLocked(p.hint)
		default:
			// Stay loading; the timeout timer decides when this becomes an
			// error.
		}
	}()
}

func (p *Player) becomeReadyLocked(d time.Duration) {
	p.duration = d
	p.position = 0
	p.state = PlayerReady
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Retry re-probes the same locator from the error state, restarting the
// timeout window.
func (p *Player) Retry() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != PlayerError {
		return ErrPlayerNotReady
	}
	p.generation++
	p.state = PlayerLoading
	p.startProbeLocked()
	return nil
}

// State returns the current playback state.
func (p *Player) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked()
	return p.state
}

// Err returns ErrLoadTimeout while in the error state, nil otherwise.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PlayerError {
		return ErrLoadTimeout
	}
	return nil
}

// Duration returns the resolved track duration, zero until ready.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// Position returns the current transport position, clamped to the track.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked()
	return p.position
}

// syncLocked advances the position while playing and applies the end-of-track
// rules: playback stops at the end, and a stopped position within
// endThreshold of the end rewinds to zero.
func (p *Player) syncLocked() {
	if p.state == PlayerPlaying {
		p.position += p.now().Sub(p.playedAt)
		p.playedAt = p.now()
		if p.position >= p.duration {
			p.position = p.duration
			p.state = PlayerPaused
		}
	}

	notPlaying := p.state == PlayerReady || p.state == PlayerPaused
	if notPlaying && p.duration > 0 && p.position > 0 && p.duration-p.position < endThreshold {
		p.position = 0
	}
}

// Play starts or resumes playback.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked()

	if p.state != PlayerReady && p.state != PlayerPaused {
		return ErrPlayerNotReady
	}
	p.playedAt = p.now()
	p.state = PlayerPlaying
	return nil
}

// Pause suspends playback, keeping the position. Pausing a track that just
// ran out is a no-op: the sync already stopped it.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	wasPlaying := p.state == PlayerPlaying
	p.syncLocked()

	if p.state != PlayerPlaying {
		if wasPlaying {
			return nil
		}
		return ErrPlayerNotReady
	}
	p.state = PlayerPaused
	p.syncLocked()
	return nil
}

// SeekTo moves the transport to pos, clamped to [0, duration].
func (p *Player) SeekTo(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked()

	if p.state != PlayerReady && p.state != PlayerPlaying && p.state != PlayerPaused {
		return ErrPlayerNotReady
	}
	p.position = clamp(pos, 0, p.duration)
	p.playedAt = p.now()
	return nil
}

// Skip moves the transport by delta (the transport buttons use ±10s),
// clamped to [0, duration].
func (p *Player) Skip(delta time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncLocked()

	if p.state != PlayerReady && p.state != PlayerPlaying && p.state != PlayerPaused {
		return ErrPlayerNotReady
	}
	p.position = clamp(p.position+delta, 0, p.duration)
	p.playedAt = p.now()
	return nil
}

// SkipForward advances the transport by the fixed skip step.
func (p *Player) SkipForward() error { return p.Skip(skipStep) }

// SkipBack rewinds the transport by the fixed skip step.
func (p *Player) SkipBack() error { return p.Skip(-skipStep) }

// Close releases the probe and timers. The player is unusable afterwards.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state = PlayerPaused
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
