package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"kissbooth/internal/domain"
	"kissbooth/internal/ports"
)

// FFMPEGCapture opens live MJPEG camera streams by running ffmpeg against the
// user-facing capture device.
type FFMPEGCapture struct {
	command string
	logger  *slog.Logger
}

func NewFFMPEGCapture(command string, logger *slog.Logger) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFMPEGCapture{command: command, logger: logger}
}

func (c *FFMPEGCapture) Acquire(ctx context.Context, cfg ports.DeviceConfig) (ports.DeviceStream, error) {
	if cfg.InputFormat == "" {
		cfg.InputFormat = "v4l2"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "/dev/video0"
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 15
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-video_size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-framerate", strconv.Itoa(cfg.FrameRate),
		"-i", cfg.InputDevice,
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", "3",
		"-",
	}

	cmd := exec.CommandContext(ctx, c.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %v", ports.ErrDeviceUnavailable, c.command, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case <-waitErr:
		return nil, classifyAcquireError(stderr.String())
	case <-time.After(250 * time.Millisecond):
	}

	c.logger.Info("camera stream started",
		"device", cfg.InputDevice,
		"format", cfg.InputFormat,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
	)

	stream := &ffmpegStream{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
		frames:  make(chan domain.Frame, 4),
		logger:  c.logger,
	}
	go stream.readFrames()
	return stream, nil
}

// classifyAcquireError maps ffmpeg startup failures onto the three acquire
// causes using the device error text on stderr.
func classifyAcquireError(stderr string) error {
	detail := strings.TrimSpace(stderr)
	if detail == "" {
		detail = "camera process exited before streaming"
	}

	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "operation not permitted"):
		return fmt.Errorf("%w: %s", ports.ErrPermissionDenied, detail)
	case strings.Contains(lower, "no such file or directory"),
		strings.Contains(lower, "no such device"),
		strings.Contains(lower, "cannot find a device"):
		return fmt.Errorf("%w: %s", ports.ErrNoDeviceFound, detail)
	default:
		return fmt.Errorf("%w: %s", ports.ErrDeviceUnavailable, detail)
	}
}

type ffmpegStream struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer
	frames chan domain.Frame
	logger *slog.Logger

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *ffmpegStream) Frames() <-chan domain.Frame {
	return s.frames
}

func (s *ffmpegStream) readFrames() {
	defer close(s.frames)

	var scanner frameScanner
	buf := make([]byte, 64*1024)
	for {
		n, err := s.stdout.Read(buf)
		if n > 0 {
			scanner.write(buf[:n])
			for {
				raw, ok := scanner.next()
				if !ok {
					break
				}
				cfg, cfgErr := jpeg.DecodeConfig(bytes.NewReader(raw))
				if cfgErr != nil {
					continue
				}
				select {
				case s.frames <- domain.Frame{Data: raw, Width: cfg.Width, Height: cfg.Height}:
				default:
					// consumer is behind; drop rather than stall the device read
				}
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *ffmpegStream) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if s.stopErr == nil {
				s.stopErr = closeErr
			}
		}

		if s.stopErr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, strings.TrimSpace(s.stderr.String()))
		}

		s.logger.Info("camera stream stopped")
	})

	return s.stopErr
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
