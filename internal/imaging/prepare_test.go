package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepare_PassesSmallPNGThrough(t *testing.T) {
	data := encodePNG(t, solid(40, 30))

	out, err := NewPreparer(100, nil).Prepare("small.png", data)
	require.NoError(t, err)

	assert.Equal(t, "image/png", out.MIMEType)
	assert.Equal(t, data, out.Data)
	assert.Equal(t, "small.png", out.Name)
}

func TestPrepare_DownscalesLargeImages(t *testing.T) {
	data := encodePNG(t, solid(400, 200))

	out, err := NewPreparer(100, nil).Prepare("big.png", data)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIMEType)

	decoded, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())
}

func TestPrepare_ReencodesOtherFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, solid(20, 20), nil))

	out, err := NewPreparer(0, nil).Prepare("scan.gif", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIMEType)
	_, err = jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
}

func TestPrepare_RejectsNonImages(t *testing.T) {
	_, err := NewPreparer(0, nil).Prepare("notes.txt", []byte("hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notes.txt")
}
