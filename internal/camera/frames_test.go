package camera

import (
	"bytes"
	"testing"
)

func TestFrameScannerSplitsCompleteFrames(t *testing.T) {
	t.Parallel()

	frameA := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}
	frameB := []byte{0xFF, 0xD8, 0x03, 0xFF, 0xD9}

	var scanner frameScanner
	scanner.write(frameA)
	scanner.write(frameB)

	got, ok := scanner.next()
	if !ok || !bytes.Equal(got, frameA) {
		t.Fatalf("unexpected first frame: %v ok=%v", got, ok)
	}
	got, ok = scanner.next()
	if !ok || !bytes.Equal(got, frameB) {
		t.Fatalf("unexpected second frame: %v ok=%v", got, ok)
	}
	if _, ok := scanner.next(); ok {
		t.Fatalf("expected no further frames")
	}
}

func TestFrameScannerHandlesPartialWrites(t *testing.T) {
	t.Parallel()

	frame := []byte{0xFF, 0xD8, 0xAA, 0xBB, 0xCC, 0xFF, 0xD9}

	var scanner frameScanner
	for i := range frame {
		scanner.write(frame[i : i+1])
		if i < len(frame)-1 {
			if _, ok := scanner.next(); ok {
				t.Fatalf("frame yielded before EOI at byte %d", i)
			}
		}
	}

	got, ok := scanner.next()
	if !ok || !bytes.Equal(got, frame) {
		t.Fatalf("unexpected frame: %v ok=%v", got, ok)
	}
}

func TestFrameScannerDiscardsLeadingGarbage(t *testing.T) {
	t.Parallel()

	frame := []byte{0xFF, 0xD8, 0x10, 0xFF, 0xD9}

	var scanner frameScanner
	scanner.write([]byte{0x00, 0x11, 0x22})
	scanner.write(frame)

	got, ok := scanner.next()
	if !ok || !bytes.Equal(got, frame) {
		t.Fatalf("unexpected frame: %v ok=%v", got, ok)
	}
}
