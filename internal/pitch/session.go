// Package pitch drives the per-investor video pitch workflow: record a video,
// upload it to hosted media, compose and dispatch the outreach email.
package pitch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/opencrew/pitchboard/internal/capture"
	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/hunter"
	"github.com/opencrew/pitchboard/internal/mailer"
	"github.com/opencrew/pitchboard/internal/models"
)

var (
	ErrCaptureUnavailable = errors.NewSentinel("capture device unavailable")
	ErrInvalidPhase       = errors.NewSentinel("operation not valid in current phase")
	ErrNoMedia            = errors.NewSentinel("no recorded media")
	ErrUploadFailed       = errors.NewSentinel("upload failed")
	ErrPreconditionFailed = errors.NewSentinel("send preconditions not met")
	ErrSendFailed         = errors.NewSentinel("email dispatch failed")
	ErrPrepFailed         = errors.NewSentinel("outreach preparation failed")
)

// Phase is the session's position in the recording workflow.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRecording Phase = "recording"
	PhasePreview   Phase = "preview"
	PhaseUploading Phase = "uploading"
	PhaseHosted    Phase = "hosted"
)

// EmailSubject is the fixed subject line for every video pitch email.
const EmailSubject = "Video Pitch from OpenCrew AI"

const emailBodyTemplate = "Hi %s,\n\n" +
	"I saw your work with %s and was really impressed. I recorded a short, personalized video to explain why I'm reaching out.\n\n" +
	"You can watch the pitch here: %s\n\n" +
	"Best,\n[Your Name]"

const linkedInTemplate = "Hi %s,\n\n" +
	"I saw your work with %s and was really impressed. My startup is also in the %s space.\n\n" +
	"Would be great to connect."

// Uploader pushes finished media to a hosting service and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, media capture.Media) (string, error)
}

// Resolver looks up a likely email address for a person at a domain.
type Resolver interface {
	Resolve(ctx context.Context, name, domain string) hunter.Resolution
}

// TipSource produces pitch preparation tips for an investor.
type TipSource interface {
	GenerateTips(ctx context.Context, investor models.Investor) (string, error)
}

// Deps are the external collaborators a session needs.
type Deps struct {
	Device   capture.Device
	Uploader Uploader
	Resolver Resolver
	Tips     TipSource
	Sender   mailer.Sender
}

// Session is the workflow state for one investor's pitch. It is exclusively
// owned by one browser session and all state is confined behind its mutex.
type Session struct {
	deps   Deps
	logger *slog.Logger

	mu         sync.Mutex
	investor   models.Investor
	phase      Phase
	handle     capture.Handle
	media      capture.Media
	hostedURL  string
	emailBody  string
	// bodyDerived marks that the email body has been derived or user-edited,
	// so a later upload success never overwrites it. Retry clears it.
	bodyDerived bool
	resolution  hunter.Resolution
	resolveGen  uint64
	tips        string
}

func NewSession(investor models.Investor, deps Deps, logger *slog.Logger) *Session {
	return &Session{
		deps:     deps,
		investor: investor,
		phase:    PhaseIdle,
		logger:   logger.With("source", "pitch.Session", "investor_id", investor.ID),
	}
}

// State is a point-in-time snapshot of the session for the UI.
type State struct {
	Phase      Phase             `json:"phase"`
	InvestorID int64             `json:"investor_id"`
	HasMedia   bool              `json:"has_media"`
	HostedURL  string            `json:"hosted_url"`
	EmailBody  string            `json:"email_body"`
	Resolution hunter.Resolution `json:"resolution"`
	Tips       string            `json:"tips"`
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Phase:      s.phase,
		InvestorID: s.investor.ID,
		HasMedia:   !s.media.Empty(),
		HostedURL:  s.hostedURL,
		EmailBody:  s.emailBody,
		Resolution: s.resolution,
		Tips:       s.tips,
	}
}

// Investor returns the investor this session pitches to.
func (s *Session) Investor() models.Investor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.investor
}

// StartRecording acquires the capture device. The phase flips to Recording
// before the device answers and reverts to Idle when acquisition fails, so
// the UI can show the recording state immediately.
func (s *Session) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseIdle {
		phase := s.phase
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot start recording from %s", ErrInvalidPhase, phase)
	}
	s.phase = PhaseRecording
	s.mu.Unlock()

	handle, err := s.deps.Device.Acquire(ctx)

	s.mu.Lock()
	if err != nil {
		if s.phase == PhaseRecording {
			s.phase = PhaseIdle
		}
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}
	if s.phase != PhaseRecording {
		// The session was closed or reset while the device was answering.
		// The handle must not outlive the session, so release it here.
		s.mu.Unlock()
		if releaseErr := handle.Release(); releaseErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "release capture handle after close",
				errors.SlogError(releaseErr))
		}
		return fmt.Errorf("%w: session is no longer recording", ErrInvalidPhase)
	}
	s.handle = handle
	s.mu.Unlock()
	return nil
}

// StopRecording finalizes the capture into preview media. Outside Recording
// it is a no-op. The device handle is released whether or not finalization
// succeeds; a failed finalize drops the session back to Idle.
func (s *Session) StopRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseRecording || s.handle == nil {
		s.mu.Unlock()
		return nil
	}
	handle := s.handle
	s.handle = nil
	s.mu.Unlock()

	media, stopErr := handle.Stop(ctx)
	if releaseErr := handle.Release(); releaseErr != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "release capture handle",
			errors.SlogError(releaseErr))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if stopErr != nil {
		s.phase = PhaseIdle
		s.media = capture.Media{}
		return errors.Wrap(stopErr, "finalize recording")
	}
	s.media = media
	s.phase = PhasePreview
	return nil
}

// Retry discards the preview take so a new recording can start. The hosted
// URL and derived email body are discarded with it.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePreview {
		return fmt.Errorf("%w: cannot retry from %s", ErrInvalidPhase, s.phase)
	}
	s.media = capture.Media{}
	s.hostedURL = ""
	s.emailBody = ""
	s.bodyDerived = false
	s.phase = PhaseIdle
	return nil
}

// SaveOffline hands out the recorded media for local export. The session is
// unchanged.
func (s *Session) SaveOffline() (capture.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhasePreview && s.phase != PhaseHosted {
		return capture.Media{}, fmt.Errorf("%w: nothing to save from %s", ErrInvalidPhase, s.phase)
	}
	if s.media.Empty() {
		return capture.Media{}, ErrNoMedia
	}
	return s.media, nil
}

// Upload pushes the preview media to hosted media. On success the session
// becomes Hosted and, the first time only, the outreach email body is derived
// from the investor and the hosted URL. On failure the session returns to
// Preview with the media intact; there is no automatic retry.
func (s *Session) Upload(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhasePreview {
		phase := s.phase
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot upload from %s", ErrInvalidPhase, phase)
	}
	if s.media.Empty() {
		s.mu.Unlock()
		return ErrNoMedia
	}
	media := s.media
	s.phase = PhaseUploading
	s.mu.Unlock()

	url, err := s.deps.Uploader.Upload(ctx, media)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = PhasePreview
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	s.hostedURL = url
	s.phase = PhaseHosted
	if !s.bodyDerived {
		s.emailBody = fmt.Sprintf(emailBodyTemplate,
			s.investor.FirstName(), s.investor.Fund, url)
		s.bodyDerived = true
	}
	return nil
}

// SetEmailBody stores a user edit of the composed email. Edits are never
// overwritten by a later derivation.
func (s *Session) SetEmailBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emailBody = body
	s.bodyDerived = true
}

// ResolveEmail looks up the investor's email. When lookups overlap, the most
// recently requested one wins and stale responses are discarded. The returned
// resolution is whatever the session holds after this lookup settled.
func (s *Session) ResolveEmail(ctx context.Context) hunter.Resolution {
	s.mu.Lock()
	s.resolveGen++
	gen := s.resolveGen
	name, domain := s.investor.Name, s.investor.Domain
	s.mu.Unlock()

	res := s.deps.Resolver.Resolve(ctx, name, domain)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.resolveGen {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "discarded stale email resolution",
			slog.Uint64("generation", gen))
		return s.resolution
	}
	s.resolution = res
	return res
}

// GenerateTips fetches pitch tips for the investor. It is independent of the
// recording phase and a failure leaves the session untouched.
func (s *Session) GenerateTips(ctx context.Context) (string, error) {
	s.mu.Lock()
	investor := s.investor
	s.mu.Unlock()

	tips, err := s.deps.Tips.GenerateTips(ctx, investor)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.tips = tips
	s.mu.Unlock()
	return tips, nil
}

// SendEmailPitch dispatches the composed email. It refuses without any
// network traffic unless an email was resolved and the video is hosted.
func (s *Session) SendEmailPitch(ctx context.Context) error {
	s.mu.Lock()
	if s.resolution.State != hunter.StateFound || s.hostedURL == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: need a resolved email and a hosted video", ErrPreconditionFailed)
	}
	msg := mailer.Message{
		To:      s.resolution.Email,
		Subject: EmailSubject,
		Body:    s.emailBody,
	}
	s.mu.Unlock()

	if err := s.deps.Sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}

// LinkedInPrep is a ready-to-paste connection message plus the profile to
// open.
type LinkedInPrep struct {
	Message    string `json:"message"`
	ProfileURL string `json:"profile_url"`
}

// LinkedInMessage builds the connection request message for an investor.
func LinkedInMessage(investor models.Investor) string {
	return fmt.Sprintf(linkedInTemplate,
		investor.FirstName(),
		investor.FirstPortfolioCompany(),
		investor.FirstSectorFocus())
}

// PrepLinkedIn builds the LinkedIn outreach message. It needs only the
// investor's identity, not a recording.
func (s *Session) PrepLinkedIn() (LinkedInPrep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.investor.LinkedInURL == "" {
		return LinkedInPrep{}, fmt.Errorf("%w: investor has no LinkedIn profile", ErrPrepFailed)
	}
	return LinkedInPrep{
		Message:    LinkedInMessage(s.investor),
		ProfileURL: s.investor.LinkedInURL,
	}, nil
}

// close releases any live capture handle. Called when the manager discards
// the session.
func (s *Session) close() {
	s.mu.Lock()
	handle := s.handle
	s.handle = nil
	s.phase = PhaseIdle
	s.mu.Unlock()

	if handle != nil {
		if err := handle.Release(); err != nil {
			s.logger.LogAttrs(context.Background(), slog.LevelError,
				"release capture handle on close", errors.SlogError(err))
		}
	}
}
