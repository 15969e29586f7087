package camera

import "bytes"

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// frameScanner splits a raw MJPEG byte stream into complete JPEG frames.
type frameScanner struct {
	buf []byte
}

func (s *frameScanner) write(p []byte) {
	s.buf = append(s.buf, p...)
}

// next returns the earliest complete frame buffered so far.
func (s *frameScanner) next() ([]byte, bool) {
	start := bytes.Index(s.buf, jpegSOI)
	if start == -1 {
		// keep the trailing byte in case a marker is split across reads
		if n := len(s.buf); n > 1 {
			s.buf = append(s.buf[:0], s.buf[n-1:]...)
		}
		return nil, false
	}
	end := bytes.Index(s.buf[start+2:], jpegEOI)
	if end == -1 {
		if start > 0 {
			s.buf = append(s.buf[:0], s.buf[start:]...)
		}
		return nil, false
	}
	end += start + 2 + len(jpegEOI)

	frame := append([]byte(nil), s.buf[start:end]...)
	s.buf = append(s.buf[:0], s.buf[end:]...)
	return frame, true
}
