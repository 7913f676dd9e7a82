package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// Recorder errors. All of them leave the recorder in a usable, not-recording
// state so the caller can report and retry.
var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
	ErrEmptyRecording   = errors.New("recording produced no audio")
)

// Recording is a finalized capture: a locator to the audio bytes plus the
// duration measured while recording.
type Recording struct {
	Locator  string
	Duration time.Duration
}

// Recorder is the single contract both capture variants satisfy: start,
// stop-and-finalize, and a live duration counter while recording.
type Recorder interface {
	// Start requests capture access and begins recording. Returns
	// ErrPermissionDenied when access is refused and ErrAlreadyRecording when
	// a capture is still active.
	Start(ctx context.Context) error
	// Stop ends the capture and finalizes it into a Recording.
	Stop() (Recording, error)
	// Recording reports whether a capture is active.
	Recording() bool
	// Elapsed returns the running duration of the active capture, or the
	// duration of the last finished one.
	Elapsed() time.Duration
	// Close tears down any active capture, timers and temp artifacts.
	Close() error
}

// tickInterval drives the OnTick duration counter. 100ms keeps the counter
// comfortably above the 5Hz the recording UI needs.
const tickInterval = 100 * time.Millisecond

// MicRecorder captures from the default input device by running an ffmpeg
// process writing to a temp file. This is the device-microphone variant.
type MicRecorder struct {
	// OnTick, when set, receives the elapsed duration every tickInterval
	// while a capture is active.
	OnTick func(time.Duration)

	mu        sync.Mutex
	dir       string
	probe     func() error
	startCmd  func(ctx context.Context, outPath string) (stop func() error, err error)
	now       func() time.Time
	recording bool
	startedAt time.Time
	elapsed   time.Duration
	outPath   string
	stop      func() error
	stopTick  chan struct{}
}

// NewMicRecorder creates a device recorder writing captures under dir
// (os.TempDir when empty).
func NewMicRecorder(dir string) *MicRecorder {
	if dir == "" {
		dir = os.TempDir()
	}
	return &MicRecorder{
		dir:      dir,
		probe:    probeCaptureDevice,
		startCmd: startFFmpegCapture,
		now:      time.Now,
	}
}

// probeCaptureDevice checks that the capture toolchain is available. A missing
// or inaccessible device surfaces as a permission error to the caller.
func probeCaptureDevice() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("%w: ffmpeg not available", ErrPermissionDenied)
	}
	return nil
}

// startFFmpegCapture launches ffmpeg recording the default input device as
// mono 16kHz m4a. The returned stop func interrupts the process and waits for
// the container to be finalized.
func startFFmpegCapture(ctx context.Context, outPath string) (func() error, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "pulse",
		"-i", "default",
		"-ac", "1",
		"-ar", "16000",
		"-y",
		outPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting capture: %w", err)
	}

	return func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			_ = cmd.Process.Kill()
		}
		// ffmpeg exits non-zero on SIGINT; the file is still finalized.
		_ = cmd.Wait()
		return nil
	}, nil
}

func (r *MicRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ErrAlreadyRecording
	}
	if err := r.probe(); err != nil {
		return err
	}

	outPath := filepath.Join(r.dir, fmt.Sprintf("recording-%d.m4a", r.now().UnixNano()))
	stop, err := r.startCmd(ctx, outPath)
	if err != nil {
		return err
	}

	r.outPath = outPath
	r.stop = stop
	r.startedAt = r.now()
	r.elapsed = 0
	r.recording = true
	r.stopTick = make(chan struct{})
	go r.tickLoop(r.stopTick)
	return nil
}

func (r *MicRecorder) tickLoop(done chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if r.OnTick != nil {
				r.OnTick(r.Elapsed())
			}
		}
	}
}

func (r *MicRecorder) Stop() (Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return Recording{}, ErrNotRecording
	}

	// Capture the duration before stopping, mirroring the counter shown to
	// the user while recording.
	r.elapsed = r.now().Sub(r.startedAt)
	r.finishLocked()

	err := r.stop()
	r.stop = nil
	if err != nil {
		r.removeOutput()
		return Recording{}, fmt.Errorf("stopping capture: %w", err)
	}

	info, statErr := os.Stat(r.outPath)
	if statErr != nil || info.Size() == 0 {
		r.removeOutput()
		return Recording{}, ErrEmptyRecording
	}

	return Recording{Locator: r.outPath, Duration: r.elapsed}, nil
}

// finishLocked clears the recording flag and stops the tick loop.
func (r *MicRecorder) finishLocked() {
	r.recording = false
	if r.stopTick != nil {
		close(r.stopTick)
		r.stopTick = nil
	}
}

func (r *MicRecorder) removeOutput() {
	if r.outPath != "" {
		_ = os.Remove(r.outPath)
		r.outPath = ""
	}
}

func (r *MicRecorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *MicRecorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return r.now().Sub(r.startedAt)
	}
	return r.elapsed
}

// Close abandons any active capture and discards its output.
func (r *MicRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return nil
	}
	r.finishLocked()
	if r.stop != nil {
		_ = r.stop()
		r.stop = nil
	}
	r.removeOutput()
	return nil
}

// StreamRecorder captures from an in-process audio stream into a memory
// buffer, finalized to a file on stop. This is the media-capture variant used
// when no device microphone is available. Live sources that can block in Read
// (pipes, network streams) must implement io.Closer: Stop and Close close the
// source to release a pending Read, and the resulting read error ends the
// capture.
type StreamRecorder struct {
	// OnTick, when set, receives the elapsed duration every tickInterval
	// while a capture is active.
	OnTick func(time.Duration)

	mu        sync.Mutex
	source    io.Reader
	dir       string
	now       func() time.Time
	recording bool
	startedAt time.Time
	elapsed   time.Duration
	buf       bytes.Buffer
	done      chan struct{}
	stopTick  chan struct{}
	stopped   bool
}

// NewStreamRecorder creates a stream recorder reading from source. Captures
// are finalized under dir (os.TempDir when empty).
func NewStreamRecorder(source io.Reader, dir string) *StreamRecorder {
	if dir == "" {
		dir = os.TempDir()
	}
	return &StreamRecorder{
		source: source,
		dir:    dir,
		now:    time.Now,
	}
}

func (r *StreamRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ErrAlreadyRecording
	}
	if r.source == nil {
		return fmt.Errorf("%w: no capture stream available", ErrPermissionDenied)
	}

	r.buf.Reset()
	r.stopped = false
	r.startedAt = r.now()
	r.elapsed = 0
	r.recording = true
	r.done = make(chan struct{})
	r.stopTick = make(chan struct{})
	go r.capture(ctx)
	go r.tickLoop(r.stopTick)
	return nil
}

func (r *StreamRecorder) capture(ctx context.Context) {
	defer close(r.done)
	chunk := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return
		}
		r.mu.Lock()
		if r.stopped {
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()

		n, err := r.source.Read(chunk)
		if n > 0 {
			r.mu.Lock()
			r.buf.Write(chunk[:n])
			r.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (r *StreamRecorder) tickLoop(done chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if r.OnTick != nil {
				r.OnTick(r.Elapsed())
			}
		}
	}
}

func (r *StreamRecorder) Stop() (Recording, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return Recording{}, ErrNotRecording
	}

	r.elapsed = r.now().Sub(r.startedAt)
	r.stopped = true
	r.recording = false
	if r.stopTick != nil {
		close(r.stopTick)
		r.stopTick = nil
	}
	done := r.done
	r.mu.Unlock()

	r.releaseSource()
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.buf.Len() == 0 {
		return Recording{}, ErrEmptyRecording
	}

	outPath := filepath.Join(r.dir, fmt.Sprintf("capture-%d.webm", r.now().UnixNano()))
	if err := os.WriteFile(outPath, r.buf.Bytes(), 0o644); err != nil {
		return Recording{}, fmt.Errorf("finalizing capture: %w", err)
	}
	r.buf.Reset()

	return Recording{Locator: outPath, Duration: r.elapsed}, nil
}

func (r *StreamRecorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *StreamRecorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return r.now().Sub(r.startedAt)
	}
	return r.elapsed
}

// Close abandons any active capture and discards buffered audio.
func (r *StreamRecorder) Close() error {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	r.recording = false
	if r.stopTick != nil {
		close(r.stopTick)
		r.stopTick = nil
	}
	done := r.done
	r.mu.Unlock()

	r.releaseSource()
	<-done

	r.mu.Lock()
	r.buf.Reset()
	r.mu.Unlock()
	return nil
}

// releaseSource unblocks a Read pending on a closeable source.
func (r *StreamRecorder) releaseSource() {
	if closer, ok := r.source.(io.Closer); ok {
		_ = closer.Close()
	}
}
