package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"kissbooth/internal/domain"
)

// ErrFrameUnavailable indicates the feed no longer reports renderable
// geometry at capture time. Callers recover by returning to the live phase.
var ErrFrameUnavailable = errors.New("frame unavailable")

// Encoder renders live frames into mirrored JPEG stills.
type Encoder struct {
	quality int
}

func NewEncoder(quality int) Encoder {
	if quality < 1 || quality > 100 {
		quality = 85
	}
	return Encoder{quality: quality}
}

// Encode mirrors the frame horizontally and re-encodes it as a JPEG still at
// the frame's native dimensions. Front-facing cameras show a mirrored
// preview, so the stored image must match what the user saw.
func (e Encoder) Encode(frame domain.Frame) ([]byte, error) {
	if !frame.HasGeometry() || len(frame.Data) == 0 {
		return nil, ErrFrameUnavailable
	}

	img, err := jpeg.Decode(bytes.NewReader(frame.Data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, Mirror(img), &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, fmt.Errorf("encode still: %w", err)
	}
	return out.Bytes(), nil
}

// Mirror flips an image horizontally.
func Mirror(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(bounds.Min.X+bounds.Max.X-1-x, y, src.At(x, y))
		}
	}
	return dst
}
