package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"kissbooth/internal/domain"
	"kissbooth/internal/photo"
	"kissbooth/internal/ports"
)

// Config controls booth timing behavior.
type Config struct {
	Device              ports.DeviceConfig
	CountdownStart      int
	CountdownInterval   time.Duration
	SurfacePollInterval time.Duration
	SurfacePollAttempts int
}

// BoothController orchestrates the capture-and-send lifecycle: device
// acquisition, feed attachment, countdown-gated capture and submission. It
// is the only writer of the session phase.
type BoothController struct {
	camera    ports.DeviceCapture
	surfaces  ports.SurfaceProvider
	submitter ports.Submitter
	encoder   photo.Encoder
	events    ports.EventSink
	clock     clockwork.Clock
	cfg       Config

	mu      sync.Mutex
	current *boothSession
}

func NewBoothController(
	camera ports.DeviceCapture,
	surfaces ports.SurfaceProvider,
	submitter ports.Submitter,
	encoder photo.Encoder,
	events ports.EventSink,
	clock clockwork.Clock,
	cfg Config,
) *BoothController {
	if cfg.CountdownStart < 1 {
		cfg.CountdownStart = 3
	}
	if cfg.CountdownInterval <= 0 {
		cfg.CountdownInterval = time.Second
	}
	if cfg.SurfacePollInterval <= 0 {
		cfg.SurfacePollInterval = 100 * time.Millisecond
	}
	if cfg.SurfacePollAttempts < 1 {
		cfg.SurfacePollAttempts = 20
	}
	return &BoothController{
		camera:    camera,
		surfaces:  surfaces,
		submitter: submitter,
		encoder:   encoder,
		events:    events,
		clock:     clock,
		cfg:       cfg,
	}
}

// Open starts a new booth session and begins device acquisition. Any
// previous session is torn down first, releasing its device.
func (c *BoothController) Open(ctx context.Context, label string) domain.Status {
	c.Close()

	sessionCtx, cancel := context.WithCancel(ctx)
	session := &boothSession{
		id:     uuid.NewString(),
		label:  label,
		ctx:    sessionCtx,
		cancel: cancel,
		phase:  domain.PhaseAcquiring,
	}

	c.mu.Lock()
	c.current = session
	c.mu.Unlock()

	c.events.PhaseChanged(domain.PhaseAcquiring, domain.ReasonCameraStarting)
	go c.acquireFlow(sessionCtx, session)
	return c.Status()
}

// RequestCapture begins the countdown toward a single capture. It is a
// no-op unless the session is live with a ready feed; in particular a
// request during an active countdown neither restarts nor queues.
func (c *BoothController) RequestCapture() domain.Status {
	c.mu.Lock()
	session := c.current
	if session == nil || session.phase != domain.PhaseLive || session.feed == nil ||
		!session.feed.LatestFrame().HasGeometry() {
		status := c.statusLocked()
		c.mu.Unlock()
		return status
	}

	session.phase = domain.PhaseCountingDown
	remaining := c.cfg.CountdownStart
	session.countdown = &remaining
	c.mu.Unlock()

	c.events.PhaseChanged(domain.PhaseCountingDown, domain.ReasonCountdownStarted)
	go c.countdownFlow(session)
	return c.Status()
}

// ConfirmSend submits the captured still. A second request while one is
// pending is a no-op; there is exactly one in-flight submission per session.
func (c *BoothController) ConfirmSend() domain.Status {
	c.mu.Lock()
	session := c.current
	if session == nil || session.phase != domain.PhasePreviewing || len(session.captured) == 0 {
		status := c.statusLocked()
		c.mu.Unlock()
		return status
	}

	session.phase = domain.PhaseSending
	image := session.captured
	label := session.label
	ctx := session.ctx
	c.mu.Unlock()

	c.events.PhaseChanged(domain.PhaseSending, domain.ReasonSubmissionStarted)
	go c.submitFlow(ctx, session, image, label)
	return c.Status()
}

// Retake discards the captured still and re-acquires the camera from
// scratch. It doubles as the manual retry from the failed phase: recovery
// is always a full restart of acquisition, never a resume of one step.
func (c *BoothController) Retake() domain.Status {
	c.mu.Lock()
	session := c.current
	if session == nil || (session.phase != domain.PhasePreviewing && session.phase != domain.PhaseFailed) {
		status := c.statusLocked()
		c.mu.Unlock()
		return status
	}

	session.phase = domain.PhaseAcquiring
	session.captured = nil
	session.countdown = nil
	session.errDetail = ""
	session.feed = nil
	ctx := session.ctx
	c.mu.Unlock()

	c.events.PhaseChanged(domain.PhaseAcquiring, domain.ReasonCameraRestarted)
	go c.acquireFlow(ctx, session)
	return c.Status()
}

// Close tears down the active session: pending acquisition is abandoned, a
// running countdown is cancelled and the device handle is released exactly
// once. Safe to call with no session.
func (c *BoothController) Close() {
	c.mu.Lock()
	session := c.current
	c.current = nil
	var stream ports.DeviceStream
	if session != nil {
		session.cancel()
		stream = session.stream
		session.stream = nil
		session.phase = domain.PhaseIdle
		session.countdown = nil
		session.captured = nil
	}
	c.mu.Unlock()

	if stream != nil {
		_ = stream.Stop()
	}
	if session != nil {
		c.events.PhaseChanged(domain.PhaseIdle, domain.ReasonBoothClosed)
	}
}

// CapturedImage returns a copy of the encoded still, present only between
// a completed capture and the retake or close that discards it.
func (c *BoothController) CapturedImage() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session := c.current
	if session == nil || len(session.captured) == 0 {
		return nil, false
	}
	return append([]byte(nil), session.captured...), true
}

// Status returns the current session status.
func (c *BoothController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *BoothController) statusLocked() domain.Status {
	session := c.current
	if session == nil {
		return domain.Status{Phase: domain.PhaseIdle}
	}
	status := domain.Status{
		SessionID: session.id,
		Phase:     session.phase,
		Label:     session.label,
		Error:     session.errDetail,
		Active:    true,
	}
	if session.countdown != nil {
		remaining := *session.countdown
		status.Countdown = &remaining
	}
	return status
}

// acquireFlow runs device acquisition and feed attachment for one entry
// into the acquiring phase. Every entry performs a fresh acquire; handles
// are never reused across phases.
func (c *BoothController) acquireFlow(ctx context.Context, session *boothSession) {
	stream, err := c.camera.Acquire(ctx, c.cfg.Device)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.failSession(session, domain.PhaseAcquiring, acquireReason(err), domain.ErrorCodeAcquire, err.Error())
		return
	}

	c.mu.Lock()
	if c.current != session || session.phase != domain.PhaseAcquiring {
		c.mu.Unlock()
		_ = stream.Stop()
		return
	}
	session.stream = stream
	c.mu.Unlock()

	feed, err := attachFeed(ctx, c.clock, stream, c.surfaces, c.cfg.SurfacePollInterval, c.cfg.SurfacePollAttempts)
	if err != nil {
		c.releaseStream(session)
		if ctx.Err() != nil {
			return
		}
		c.failSession(session, domain.PhaseAcquiring, domain.ReasonSurfaceNeverReady, domain.ErrorCodeAttach, err.Error())
		return
	}

	select {
	case <-feed.Ready():
	case <-feed.Done():
		c.releaseStream(session)
		c.failSession(session, domain.PhaseAcquiring, domain.ReasonCameraUnavailable, domain.ErrorCodeAcquire,
			"video stream ended before the first frame")
		return
	case <-ctx.Done():
		return
	}

	c.mu.Lock()
	if c.current != session || session.phase != domain.PhaseAcquiring {
		c.mu.Unlock()
		return
	}
	session.feed = feed
	session.phase = domain.PhaseLive
	c.mu.Unlock()

	c.events.PhaseChanged(domain.PhaseLive, domain.ReasonFeedReady)
}

// countdownFlow ticks down and fires exactly one capture at expiry.
func (c *BoothController) countdownFlow(session *boothSession) {
	completed := runCountdown(session.ctx, c.clock, c.cfg.CountdownStart, c.cfg.CountdownInterval, func(remaining int) {
		c.mu.Lock()
		stale := c.current != session || session.phase != domain.PhaseCountingDown
		if !stale {
			n := remaining
			session.countdown = &n
		}
		c.mu.Unlock()
		if !stale {
			c.events.CountdownTick(remaining)
		}
	})
	if !completed {
		return
	}
	c.fireCapture(session)
}

func (c *BoothController) fireCapture(session *boothSession) {
	c.mu.Lock()
	if c.current != session || session.phase != domain.PhaseCountingDown {
		c.mu.Unlock()
		return
	}
	frame := session.feed.LatestFrame()
	c.mu.Unlock()

	still, err := c.encoder.Encode(frame)
	if err != nil {
		// Feed lost mid-countdown: fall back to live with the device
		// still open so the user can simply try again.
		c.mu.Lock()
		if c.current != session || session.phase != domain.PhaseCountingDown {
			c.mu.Unlock()
			return
		}
		session.phase = domain.PhaseLive
		session.countdown = nil
		c.mu.Unlock()

		if !errors.Is(err, photo.ErrFrameUnavailable) {
			c.events.SessionError(domain.ErrorCodeEncode, err.Error())
		}
		c.events.PhaseChanged(domain.PhaseLive, domain.ReasonFrameLost)
		return
	}

	c.mu.Lock()
	if c.current != session || session.phase != domain.PhaseCountingDown {
		c.mu.Unlock()
		return
	}
	session.phase = domain.PhasePreviewing
	session.countdown = nil
	session.captured = still
	session.feed = nil
	stream := session.stream
	session.stream = nil
	c.mu.Unlock()

	if stream != nil {
		_ = stream.Stop()
	}
	c.events.PhaseChanged(domain.PhasePreviewing, domain.ReasonPhotoCaptured)
}

func (c *BoothController) submitFlow(ctx context.Context, session *boothSession, image []byte, label string) {
	err := c.submitter.Submit(ctx, image, label)

	c.mu.Lock()
	if c.current != session || session.phase != domain.PhaseSending {
		c.mu.Unlock()
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			c.mu.Unlock()
			return
		}
		// The captured image is retained through the failure; only a
		// retake discards it.
		session.phase = domain.PhaseFailed
		session.errDetail = ports.ErrDeliveryFailed.Error()
		c.mu.Unlock()

		c.events.SessionError(domain.ErrorCodeSubmit, err.Error())
		c.events.PhaseChanged(domain.PhaseFailed, domain.ReasonDeliveryFailed)
		return
	}
	session.phase = domain.PhaseSent
	c.mu.Unlock()

	c.events.PhaseChanged(domain.PhaseSent, domain.ReasonDelivered)
}

func (c *BoothController) failSession(session *boothSession, from domain.Phase, reason domain.PhaseReason, code domain.ErrorCode, detail string) {
	c.mu.Lock()
	if c.current != session || session.phase != from {
		c.mu.Unlock()
		return
	}
	session.phase = domain.PhaseFailed
	session.errDetail = detail
	session.countdown = nil
	c.mu.Unlock()

	c.events.SessionError(code, detail)
	c.events.PhaseChanged(domain.PhaseFailed, reason)
}

func (c *BoothController) releaseStream(session *boothSession) {
	c.mu.Lock()
	stream := session.stream
	session.stream = nil
	c.mu.Unlock()

	if stream != nil {
		_ = stream.Stop()
	}
}

func acquireReason(err error) domain.PhaseReason {
	switch {
	case errors.Is(err, ports.ErrPermissionDenied):
		return domain.ReasonPermissionDenied
	case errors.Is(err, ports.ErrNoDeviceFound):
		return domain.ReasonNoCameraFound
	default:
		return domain.ReasonCameraUnavailable
	}
}
