package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"kissbooth/internal/domain"
	"kissbooth/internal/ports"
)

// ErrSurfaceNeverReady indicates the display surface did not appear within
// the bounded polling window.
var ErrSurfaceNeverReady = errors.New("display surface never became ready")

// liveFeed tracks the most recent frame delivered to the display surface.
// Feed readiness and feed loss are both derived from frame geometry: the
// feed is ready once the first frame with non-zero dimensions arrives, and
// lost whenever the latest frame no longer has any.
type liveFeed struct {
	mu     sync.Mutex
	latest domain.Frame

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
}

func newLiveFeed() *liveFeed {
	return &liveFeed{
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (f *liveFeed) observe(frame domain.Frame) {
	f.mu.Lock()
	f.latest = frame
	f.mu.Unlock()

	if frame.HasGeometry() {
		f.readyOnce.Do(func() { close(f.ready) })
	}
}

// LatestFrame returns the most recent frame seen on the feed.
func (f *liveFeed) LatestFrame() domain.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

// Ready is closed once the feed reports its first renderable frame.
func (f *liveFeed) Ready() <-chan struct{} {
	return f.ready
}

// Done is closed once the device stream stops producing frames.
func (f *liveFeed) Done() <-chan struct{} {
	return f.done
}

// attachFeed binds a device stream to the display surface. The surface and
// the stream come up independently, so the surface may not exist yet; poll
// at a fixed interval for a bounded number of attempts rather than waiting
// forever.
func attachFeed(
	ctx context.Context,
	clock clockwork.Clock,
	stream ports.DeviceStream,
	surfaces ports.SurfaceProvider,
	interval time.Duration,
	attempts int,
) (*liveFeed, error) {
	for attempt := 1; ; attempt++ {
		if surface, ok := surfaces.Surface(); ok {
			feed := newLiveFeed()
			go pumpFrames(ctx, stream, surface, feed)
			return feed, nil
		}
		if attempt >= attempts {
			return nil, ErrSurfaceNeverReady
		}
		select {
		case <-clock.After(interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func pumpFrames(ctx context.Context, stream ports.DeviceStream, surface ports.DisplaySurface, feed *liveFeed) {
	defer close(feed.done)

	for {
		select {
		case frame, ok := <-stream.Frames():
			if !ok {
				return
			}
			feed.observe(frame)
			surface.Present(frame)
		case <-ctx.Done():
			return
		}
	}
}
