package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSpoolSourceExclusiveOpen(t *testing.T) {
	dir := t.TempDir()
	source, err := NewSpoolSource(dir)
	require.NoError(t, err)

	stream, err := source.Open(context.Background())
	require.NoError(t, err)

	_, err = source.Open(context.Background())
	require.Error(t, err, "second open must fail while the device is held")

	require.NoError(t, stream.Close())

	// Released handle can be reacquired.
	stream2, err := source.Open(context.Background())
	require.NoError(t, err)
	require.NoError(t, stream2.Close())
	require.NoError(t, stream2.Close(), "double close is a no-op")
}

func TestSpoolStreamReadsNewestFrame(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imaging.Save(testFrame(color.White), filepath.Join(dir, "old.png")))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, imaging.Save(testFrame(color.Black), filepath.Join(dir, "new.png")))

	source, err := NewSpoolSource(dir)
	require.NoError(t, err)
	stream, err := source.Open(context.Background())
	require.NoError(t, err)
	defer stream.Close() //nolint:errcheck

	frame, err := stream.Frame()
	require.NoError(t, err)
	r, g, b, _ := frame.At(0, 0).RGBA()
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

func TestSpoolStreamEmptySpool(t *testing.T) {
	source, err := NewSpoolSource(t.TempDir())
	require.NoError(t, err)
	stream, err := source.Open(context.Background())
	require.NoError(t, err)
	defer stream.Close() //nolint:errcheck

	_, err = stream.Frame()
	require.Error(t, err)
}

func TestEncodeJPEGAndImportRoundTrip(t *testing.T) {
	payload, err := EncodeJPEG(testFrame(color.White), 90)
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	// JPEG SOI marker.
	assert.Equal(t, []byte{0xFF, 0xD8}, payload[:2])

	reencoded, err := ImportJPEG(bytes.NewReader(payload), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, reencoded[:2])
}

func TestImportJPEGFromPNG(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, imaging.Encode(buf, testFrame(color.White), imaging.PNG))

	payload, err := ImportJPEG(buf, 80)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, payload[:2])
}

func TestImportJPEGRejectsGarbage(t *testing.T) {
	_, err := ImportJPEG(bytes.NewReader([]byte("not an image")), 80)
	require.Error(t, err)
}
