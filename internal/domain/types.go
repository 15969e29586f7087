package domain

// Phase models the capture-and-send booth lifecycle.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseAcquiring    Phase = "acquiring"
	PhaseLive         Phase = "live"
	PhaseCountingDown Phase = "counting_down"
	PhasePreviewing   Phase = "previewing"
	PhaseSending      Phase = "sending"
	PhaseSent         Phase = "sent"
	PhaseFailed       Phase = "failed"
)

// PhaseReason provides a structured reason for phase transitions.
type PhaseReason string

const (
	ReasonBoothCold         PhaseReason = "booth_cold"
	ReasonCameraStarting    PhaseReason = "camera_starting"
	ReasonCameraRestarted   PhaseReason = "camera_restarted"
	ReasonFeedReady         PhaseReason = "feed_ready"
	ReasonCountdownStarted  PhaseReason = "countdown_started"
	ReasonFrameLost         PhaseReason = "frame_lost"
	ReasonPhotoCaptured     PhaseReason = "photo_captured"
	ReasonSubmissionStarted PhaseReason = "submission_started"
	ReasonDelivered         PhaseReason = "delivered"
	ReasonDeliveryFailed    PhaseReason = "delivery_failed"
	ReasonPermissionDenied  PhaseReason = "permission_denied"
	ReasonNoCameraFound     PhaseReason = "no_camera_found"
	ReasonCameraUnavailable PhaseReason = "camera_unavailable"
	ReasonSurfaceNeverReady PhaseReason = "surface_never_ready"
	ReasonBoothClosed       PhaseReason = "booth_closed"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup ErrorCode = "startup"
	ErrorCodeAcquire ErrorCode = "acquire"
	ErrorCodeAttach  ErrorCode = "attach"
	ErrorCodeEncode  ErrorCode = "encode"
	ErrorCodeSubmit  ErrorCode = "submit"
)

// Frame is a single JPEG frame from the live feed with its decoded geometry.
type Frame struct {
	Data   []byte `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// HasGeometry reports whether the frame carries renderable dimensions.
// A zero-geometry frame means the feed is not (or no longer) streaming.
func (f Frame) HasGeometry() bool {
	return f.Width > 0 && f.Height > 0
}

// Status summarizes the current booth session.
type Status struct {
	SessionID string `json:"sessionId,omitempty"`
	Phase     Phase  `json:"phase"`
	Countdown *int   `json:"countdown,omitempty"`
	Label     string `json:"label,omitempty"`
	Error     string `json:"error,omitempty"`
	Active    bool   `json:"active"`
}
