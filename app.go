package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"kissbooth/internal/bootstrap"
	"kissbooth/internal/config"
	"kissbooth/internal/domain"
	"kissbooth/internal/ports"
	"kissbooth/internal/usecase"
)

const (
	eventPhase = "kissbooth:phase"
	eventTick  = "kissbooth:tick"
	eventFrame = "kissbooth:frame"
	eventError = "kissbooth:error"
)

// App is the Wails application root. It is both the event sink the
// controller reports through and the display surface provider: the frontend
// announces its canvas via AttachSurface and live frames flow back to it as
// events.
type App struct {
	ctx context.Context

	controller *usecase.BoothController
	cfg        config.Config
	bootErr    error

	mu        sync.Mutex
	surfaceUp bool
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.PhaseChanged(domain.PhaseIdle, domain.ReasonBoothCold)
}

func (a *App) shutdown(_ context.Context) {
	if a.controller != nil {
		a.controller.Close()
	}
}

// OpenBooth starts a booth session for the chosen card label.
func (a *App) OpenBooth(label string) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	return a.controller.Open(a.ctx, label), nil
}

// AttachSurface announces that the frontend canvas is ready to render frames.
func (a *App) AttachSurface() {
	a.mu.Lock()
	a.surfaceUp = true
	a.mu.Unlock()
}

// DetachSurface withdraws the frontend canvas.
func (a *App) DetachSurface() {
	a.mu.Lock()
	a.surfaceUp = false
	a.mu.Unlock()
}

// RequestCapture starts the countdown toward a single capture.
func (a *App) RequestCapture() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	return a.controller.RequestCapture(), nil
}

// ConfirmSend submits the captured photo.
func (a *App) ConfirmSend() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	return a.controller.ConfirmSend(), nil
}

// Retake discards the captured photo and restarts the camera. It is also
// the retry path out of the failed phase.
func (a *App) Retake() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	return a.controller.Retake(), nil
}

// CloseBooth tears down the active session and releases the camera.
func (a *App) CloseBooth() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.controller.Close()
	return nil
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{Phase: domain.PhaseFailed, Error: a.bootErr.Error()}
		}
		return domain.Status{Phase: domain.PhaseIdle}
	}
	return a.controller.Status()
}

// GetCapturedImage returns the captured photo as a data URL, or an empty
// string when no capture is held.
func (a *App) GetCapturedImage() string {
	if a.controller == nil {
		return ""
	}
	image, ok := a.controller.CapturedImage()
	if !ok {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// Surface reports whether the frontend canvas is up; the app itself is the
// surface that relays frames to it.
func (a *App) Surface() (ports.DisplaySurface, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.surfaceUp {
		return nil, false
	}
	return a, true
}

// Present pushes one live frame to the frontend canvas.
func (a *App) Present(frame domain.Frame) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventFrame, map[string]any{
		"image":  "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame.Data),
		"width":  frame.Width,
		"height": frame.Height,
	})
}

// PhaseChanged emits booth lifecycle updates to the frontend.
func (a *App) PhaseChanged(phase domain.Phase, reason domain.PhaseReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPhase, map[string]string{
		"phase":   string(phase),
		"reason":  string(reason),
		"message": phaseReasonMessage(reason),
	})
}

// CountdownTick emits the remaining countdown value.
func (a *App) CountdownTick(remaining int) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTick, map[string]int{"remaining": remaining})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func phaseReasonMessage(reason domain.PhaseReason) string {
	switch reason {
	case domain.ReasonBoothCold:
		return "Booth ready"
	case domain.ReasonCameraStarting:
		return "Starting camera..."
	case domain.ReasonCameraRestarted:
		return "Camera restarted; previous photo discarded"
	case domain.ReasonFeedReady:
		return "Camera is live"
	case domain.ReasonCountdownStarted:
		return "Get ready!"
	case domain.ReasonFrameLost:
		return "Lost the camera feed; try again"
	case domain.ReasonPhotoCaptured:
		return "Photo captured"
	case domain.ReasonSubmissionStarted:
		return "Sending your photo..."
	case domain.ReasonDelivered:
		return "Photo sent!"
	case domain.ReasonDeliveryFailed:
		return "Sending failed"
	case domain.ReasonPermissionDenied:
		return "Camera access was denied"
	case domain.ReasonNoCameraFound:
		return "No camera found"
	case domain.ReasonCameraUnavailable:
		return "Camera is unavailable"
	case domain.ReasonSurfaceNeverReady:
		return "Display never became ready"
	case domain.ReasonBoothClosed:
		return "Booth closed"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeAcquire:
		return "Camera could not be started"
	case domain.ErrorCodeAttach:
		return "Display attachment failed"
	case domain.ErrorCodeEncode:
		return "Photo encoding failed"
	case domain.ErrorCodeSubmit:
		return "Sending failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
