package overlay

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAnnotateDrawsBox(t *testing.T) {
	src := blankPNG(t, 200, 100)
	out, err := Annotate(src, []Mark{{ID: "0-7", X: 10, Y: 10, W: 50, H: 30}}, 1.0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	// top-left corner of the box outline is red
	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, color.RGBA{R: 255}.R, uint8(r>>8))
	assert.Zero(t, uint8(g>>8))
	assert.Zero(t, uint8(b>>8))
}

func TestAnnotateScalesCoordinates(t *testing.T) {
	src := blankPNG(t, 200, 200)
	out, err := Annotate(src, []Mark{{ID: "0-1", X: 10, Y: 10, W: 40, H: 40}}, 2.0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	r, _, _, _ := img.At(20, 20).RGBA()
	assert.Equal(t, uint8(255), uint8(r>>8))
}

func TestAnnotateClampsOutOfBounds(t *testing.T) {
	src := blankPNG(t, 50, 50)
	_, err := Annotate(src, []Mark{{ID: "0-9", X: -20, Y: -20, W: 500, H: 500}}, 1.0)
	assert.NoError(t, err)
}

func TestAnnotateRejectsGarbage(t *testing.T) {
	_, err := Annotate([]byte("not a png"), nil, 1.0)
	assert.Error(t, err)
}
