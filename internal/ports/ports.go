package ports

import (
	"context"
	"errors"

	"kissbooth/internal/domain"
)

// Acquisition failures are classified into exactly three causes. Callers
// decide whether to offer a manual retry; nothing here retries automatically.
var (
	ErrPermissionDenied  = errors.New("camera permission denied")
	ErrNoDeviceFound     = errors.New("no camera device found")
	ErrDeviceUnavailable = errors.New("camera device unavailable")
)

// ErrDeliveryFailed is the uniform submission failure. Transport errors and
// non-success responses are indistinguishable to callers.
var ErrDeliveryFailed = errors.New("delivery failed")

// DeviceConfig describes how the camera should be captured.
type DeviceConfig struct {
	Command     string
	InputFormat string
	InputDevice string
	Width       int
	Height      int
	FrameRate   int
}

// DeviceStream is an exclusively owned live camera stream. The frames channel
// closes when the underlying device stops producing. Stop must be safe to
// call exactly once per acquisition; owners never share or reuse a stream.
type DeviceStream interface {
	Frames() <-chan domain.Frame
	Stop() error
}

// DeviceCapture opens camera capture streams.
type DeviceCapture interface {
	Acquire(ctx context.Context, cfg DeviceConfig) (DeviceStream, error)
}

// DisplaySurface renders live frames for the user.
type DisplaySurface interface {
	Present(frame domain.Frame)
}

// SurfaceProvider reports whether a display surface exists yet. The surface
// and the device stream come up independently, so the answer may change from
// one call to the next.
type SurfaceProvider interface {
	Surface() (DisplaySurface, bool)
}

// Submitter delivers a captured still and its label to the remote endpoint.
// The image is read-only for the duration of the call.
type Submitter interface {
	Submit(ctx context.Context, image []byte, label string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	PhaseChanged(phase domain.Phase, reason domain.PhaseReason)
	CountdownTick(remaining int)
	SessionError(code domain.ErrorCode, detail string)
}
