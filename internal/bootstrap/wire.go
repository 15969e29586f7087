package bootstrap

import (
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"kissbooth/internal/camera"
	"kissbooth/internal/config"
	"kissbooth/internal/photo"
	"kissbooth/internal/ports"
	"kissbooth/internal/providers/mailrelay"
	"kissbooth/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.BoothController
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, surfaces ports.SurfaceProvider) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	controller := usecase.NewBoothController(
		camera.NewFFMPEGCapture(cfg.Camera.Command, logger),
		surfaces,
		mailrelay.NewClient(mailrelay.Config{
			Endpoint: cfg.Relay.Endpoint,
			Timeout:  cfg.Relay.Timeout,
		}, logger),
		photo.NewEncoder(cfg.Booth.JPEGQuality),
		eventSink,
		clockwork.NewRealClock(),
		usecase.Config{
			Device: ports.DeviceConfig{
				Command:     cfg.Camera.Command,
				InputFormat: cfg.Camera.InputFormat,
				InputDevice: cfg.Camera.InputDevice,
				Width:       cfg.Camera.Width,
				Height:      cfg.Camera.Height,
				FrameRate:   cfg.Camera.FrameRate,
			},
			CountdownStart:      cfg.Booth.CountdownStart,
			CountdownInterval:   cfg.Booth.CountdownInterval,
			SurfacePollInterval: cfg.Booth.SurfacePollInterval,
			SurfacePollAttempts: cfg.Booth.SurfacePollAttempts,
		},
	)

	return Services{Controller: controller, Config: cfg}, nil
}
