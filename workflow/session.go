package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Vecinus/vecinus/model"
)

// Phase is the lifecycle stage of one acta-creation session.
type Phase string

const (
	// PhaseIdle has no form state; nothing in progress.
	PhaseIdle Phase = "idle"
	// PhaseDrafting is the open creation form: title plus audio source.
	PhaseDrafting Phase = "drafting"
	// PhaseGenerating has a generation request in flight.
	PhaseGenerating Phase = "generating"
	// PhaseReviewing has a pending draft whose transcript is being edited.
	PhaseReviewing Phase = "reviewing"
	// PhaseClosing waits for the editor surface to fully unmount. The
	// signature surface must not be opened until then: on mobile both use a
	// heavyweight embedded web view and two of them conflict over input
	// events.
	PhaseClosing Phase = "closing"
	// PhaseSigning is the open signature surface over the pending draft.
	PhaseSigning Phase = "signing"
)

// Session errors.
var (
	ErrInvalidPhase      = errors.New("operation not allowed in current phase")
	ErrSourceAttached    = errors.New("an audio source is already attached")
	ErrNoSource          = errors.New("no audio source attached")
	ErrNotReady          = errors.New("title and a resolved audio source are required")
	ErrGenerationPending = errors.New("generation already in progress")
	ErrNoPendingDraft    = errors.New("no pending draft")
	ErrEditorStillOpen   = errors.New("editor surface has not finished closing")
	ErrEmptySignature    = errors.New("signature is empty")
)

// Generator is the collaborator that turns title + audio into a draft acta.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (model.Acta, error)
}

// GenerateRequest is the submission to the generation collaborator.
type GenerateRequest struct {
	Title        string
	Community    string
	CreatedBy    string
	AudioLocator string
}

// Publisher receives published actas. Satisfied by service.ActaStore.
type Publisher interface {
	Prepend(acta model.Acta)
}

// Session drives one acta through capture, generation, review and signing.
// It is parameterized by community and user identity instead of reading any
// ambient state, and every phase transition is validated: in particular the
// signature surface can only open through the explicit EditorClosed
// completion signal, never concurrently with the editor.
type Session struct {
	mu        sync.Mutex
	community string
	userName  string
	generator Generator
	store     Publisher
	now       func() time.Time

	phase       Phase
	title       string
	source      AudioSource
	generation  int
	pending     *model.Acta
	workingCopy string
}

// NewSession creates an idle session for the given community and user.
func NewSession(community, userName string, generator Generator, store Publisher) *Session {
	return &Session{
		community: community,
		userName:  userName,
		generator: generator,
		store:     store,
		now:       time.Now,
		phase:     PhaseIdle,
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Title returns the draft form title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Source returns the attached audio source, nil when none is held.
func (s *Session) Source() AudioSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// PendingDraft returns a copy of the draft awaiting review or signature.
func (s *Session) PendingDraft() (model.Acta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return model.Acta{}, false
	}
	return *s.pending, true
}

// StartDraft opens the creation form.
func (s *Session) StartDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	s.phase = PhaseDrafting
	return nil
}

// SetTitle updates the meeting title on the open form.
func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseDrafting {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	s.title = title
	return nil
}

// AttachRecording holds a finished microphone recording as the audio source.
// A previously attached source must be removed explicitly first.
func (s *Session) AttachRecording(rec Recording) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseDrafting {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	if rec.Locator == "" {
		return ErrEmptyRecording
	}
	if s.source != nil {
		return ErrSourceAttached
	}
	s.source = RecordedAudio{URI: rec.Locator, Duration: rec.Duration}
	return nil
}

// AttachFile holds a picked file as the audio source. A cancelled pick simply
// never reaches this call. Non-audio files are held as generic attachments
// and do not satisfy the generation precondition.
func (s *Session) AttachFile(name, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseDrafting {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	if locator == "" || name == "" {
		return fmt.Errorf("picked file has no locator or name")
	}
	if s.source != nil {
		return ErrSourceAttached
	}
	s.source = UploadedFile{URI: locator, Name: name}
	return nil
}

// RemoveAudio is the explicit user deletion of the held source.
func (s *Session) RemoveAudio() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseDrafting {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	if s.source == nil {
		return ErrNoSource
	}
	s.source = nil
	return nil
}

// CanGenerate reports whether the generation precondition holds: a non-empty
// title and a source that resolves to playable audio.
func (s *Session) CanGenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canGenerateLocked()
}

func (s *Session) canGenerateLocked() bool {
	return s.phase == PhaseDrafting && s.title != "" && s.source != nil && s.source.ResolvesToAudio()
}

// Generate submits the form to the generation collaborator and, on success,
// installs the returned draft for review. Re-entry while a request is in
// flight is refused. On failure the form state stays intact so the user can
// resubmit.
func (s *Session) Generate(ctx context.Context) (model.Acta, error) {
	s.mu.Lock()
	if s.phase == PhaseGenerating {
		s.mu.Unlock()
		return model.Acta{}, ErrGenerationPending
	}
	if !s.canGenerateLocked() {
		s.mu.Unlock()
		return model.Acta{}, ErrNotReady
	}

	req := GenerateRequest{
		Title:        s.title,
		Community:    s.community,
		CreatedBy:    s.userName,
		AudioLocator: s.source.Locator(),
	}
	s.phase = PhaseGenerating
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	draft, err := s.generator.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.phase != PhaseGenerating {
		// The session was abandoned mid-flight; discard the result.
		return model.Acta{}, ErrInvalidPhase
	}

	if err != nil {
		// Back to the form with title and audio preserved.
		s.phase = PhaseDrafting
		return model.Acta{}, fmt.Errorf("generating acta: %w", err)
	}

	s.title = ""
	s.source = nil
	s.pending = &draft
	s.workingCopy = draft.Transcript
	s.phase = PhaseReviewing
	return draft, nil
}

// EditTranscript updates the in-memory working copy. The pending draft is not
// touched until ConfirmTranscript.
func (s *Session) EditTranscript(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReviewing {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	s.workingCopy = text
	return nil
}

// WorkingTranscript returns the current editing buffer.
func (s *Session) WorkingTranscript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workingCopy
}

// ConfirmTranscript commits the working copy into the pending draft and moves
// to the closing phase. The signature surface stays shut until EditorClosed.
func (s *Session) ConfirmTranscript() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReviewing {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	if s.pending == nil {
		return ErrNoPendingDraft
	}
	s.pending.Transcript = s.workingCopy
	s.phase = PhaseClosing
	return nil
}

// CancelReview discards the working copy and the pending draft; a new
// generation must be started from scratch.
func (s *Session) CancelReview() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReviewing {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	s.pending = nil
	s.workingCopy = ""
	s.phase = PhaseIdle
	return nil
}

// EditorClosed is the completion signal that the editor surface has fully
// unmounted. Only now may the signature surface open.
func (s *Session) EditorClosed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseClosing {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	s.phase = PhaseSigning
	return nil
}

// Sign publishes the pending draft with the given signature image, prepends
// it to the shared collection and clears the pending slot.
func (s *Session) Sign(signatureImage string) (model.Acta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseClosing {
		return model.Acta{}, ErrEditorStillOpen
	}
	if s.phase != PhaseSigning {
		return model.Acta{}, fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	if s.pending == nil {
		return model.Acta{}, ErrNoPendingDraft
	}
	if signatureImage == "" {
		return model.Acta{}, ErrEmptySignature
	}

	signed := model.Sign(*s.pending, signatureImage, s.userName, s.now())
	s.store.Prepend(signed)
	s.pending = nil
	s.workingCopy = ""
	s.phase = PhaseIdle
	return signed, nil
}

// CancelSignature closes the signature surface and discards the pending
// draft, returning the session to idle.
func (s *Session) CancelSignature() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseSigning {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, s.phase)
	}
	s.pending = nil
	s.workingCopy = ""
	s.phase = PhaseIdle
	return nil
}

// Abandon resets the session from any phase, discarding all transient state.
// An in-flight generation result arriving afterwards is discarded.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.title = ""
	s.source = nil
	s.pending = nil
	s.workingCopy = ""
	s.phase = PhaseIdle
}
