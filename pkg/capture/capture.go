// Package capture abstracts the exam-sheet image sources feeding the
// enrichment workflow: a live capture device and direct file import.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 85

// Source provides access to a live frame device.
type Source interface {
	// Open acquires an exclusive handle on the device. Callers must close
	// the returned stream on every exit path.
	Open(ctx context.Context) (Stream, error)
}

// Stream is an acquired device handle delivering frames.
type Stream interface {
	// Frame returns the current frame.
	Frame() (image.Image, error)
	// Close releases the device handle.
	Close() error
}

// EncodeJPEG renders a frame into a static JPEG payload.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportJPEG decodes an uploaded image of any supported format and re-encodes
// it as JPEG, so the outbound inference payload is always image/jpeg.
func ImportJPEG(r io.Reader, quality int) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode imported image: %w", err)
	}
	return EncodeJPEG(img, quality)
}
