package capture

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const lockFileName = ".capture.lock"

// SpoolSource reads frames from a spool directory kept current by the kiosk
// camera agent. Exclusivity is enforced through a lock file so two workflow
// instances cannot hold the device at once.
type SpoolSource struct {
	dir string
}

// NewSpoolSource validates the spool directory and returns a source.
func NewSpoolSource(dir string) (*SpoolSource, error) {
	if dir == "" {
		return nil, fmt.Errorf("spool directory required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat spool directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spool path %s is not a directory", dir)
	}
	return &SpoolSource{dir: dir}, nil
}

// Open takes the spool lock. It fails when another stream holds the device.
func (s *SpoolSource) Open(_ context.Context) (Stream, error) {
	lockPath := filepath.Join(s.dir, lockFileName)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("capture device already in use")
		}
		return nil, fmt.Errorf("acquire capture device: %w", err)
	}
	_ = f.Close()
	return &spoolStream{dir: s.dir, lockPath: lockPath}, nil
}

type spoolStream struct {
	dir      string
	lockPath string
	closed   bool
}

// Frame loads the most recently written image in the spool directory.
func (s *spoolStream) Frame() (image.Image, error) {
	if s.closed {
		return nil, fmt.Errorf("capture stream closed")
	}
	newest, err := s.newestFrame()
	if err != nil {
		return nil, err
	}
	img, err := imaging.Open(newest, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", filepath.Base(newest), err)
	}
	return img, nil
}

// Close releases the spool lock. Safe to call more than once.
func (s *spoolStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := os.Remove(s.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release capture device: %w", err)
	}
	return nil
}

func (s *spoolStream) newestFrame() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("read spool directory: %w", err)
	}

	var newest string
	var newestMod int64
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().UnixNano() > newestMod {
			newest = filepath.Join(s.dir, entry.Name())
			newestMod = info.ModTime().UnixNano()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no frame available in spool")
	}
	return newest, nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
