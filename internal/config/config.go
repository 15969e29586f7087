package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config stores runtime configuration for the booth.
type Config struct {
	Relay  RelayConfig
	Camera CameraConfig
	Booth  BoothConfig
}

// RelayConfig points at the mail relay that receives submissions.
type RelayConfig struct {
	Endpoint string        `env:"KISSBOOTH_RELAY_URL"`
	Timeout  time.Duration `env:"KISSBOOTH_RELAY_TIMEOUT" envDefault:"30s"`
}

// CameraConfig describes the user-facing capture device.
type CameraConfig struct {
	Command     string `env:"KISSBOOTH_FFMPEG_COMMAND" envDefault:"ffmpeg"`
	InputFormat string `env:"KISSBOOTH_CAMERA_INPUT_FORMAT" envDefault:"v4l2"`
	InputDevice string `env:"KISSBOOTH_CAMERA_DEVICE" envDefault:"/dev/video0"`
	Width       int    `env:"KISSBOOTH_CAMERA_WIDTH" envDefault:"1280"`
	Height      int    `env:"KISSBOOTH_CAMERA_HEIGHT" envDefault:"720"`
	FrameRate   int    `env:"KISSBOOTH_CAMERA_FPS" envDefault:"15"`
}

// BoothConfig controls countdown, surface attachment and encoding behavior.
type BoothConfig struct {
	CountdownStart      int           `env:"KISSBOOTH_COUNTDOWN_START" envDefault:"3"`
	CountdownInterval   time.Duration `env:"KISSBOOTH_COUNTDOWN_INTERVAL" envDefault:"1s"`
	SurfacePollInterval time.Duration `env:"KISSBOOTH_SURFACE_POLL_INTERVAL" envDefault:"100ms"`
	SurfacePollAttempts int           `env:"KISSBOOTH_SURFACE_POLL_ATTEMPTS" envDefault:"20"`
	JPEGQuality         int           `env:"KISSBOOTH_JPEG_QUALITY" envDefault:"85"`
}

// Load resolves configuration from environment variables and defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Booth.CountdownStart < 1 {
		cfg.Booth.CountdownStart = 3
	}
	if cfg.Booth.CountdownInterval <= 0 {
		cfg.Booth.CountdownInterval = time.Second
	}
	if cfg.Booth.SurfacePollInterval <= 0 {
		cfg.Booth.SurfacePollInterval = 100 * time.Millisecond
	}
	if cfg.Booth.SurfacePollAttempts < 1 {
		cfg.Booth.SurfacePollAttempts = 20
	}
	if cfg.Booth.JPEGQuality < 1 || cfg.Booth.JPEGQuality > 100 {
		cfg.Booth.JPEGQuality = 85
	}

	return cfg, nil
}
