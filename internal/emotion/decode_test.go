package emotion

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeImagePayload_DataURL(t *testing.T) {
	src := solidImage(8, 6)
	payload := "data:image/png;base64," + encodePNG(t, src)

	img, err := DecodeImagePayload(payload)

	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
	assert.Equal(t, src.At(3, 2), img.At(3, 2))
}

func TestDecodeImagePayload_RawBase64WithoutPadding(t *testing.T) {
	encoded := encodePNG(t, solidImage(3, 3))
	for len(encoded) > 0 && encoded[len(encoded)-1] == '=' {
		encoded = encoded[:len(encoded)-1]
	}

	img, err := DecodeImagePayload(encoded)

	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
}

func TestDecodeImagePayload_FlattensAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0})

	img, err := DecodeImagePayload(encodePNG(t, src))

	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.At(0, 0))
}

func TestDecodeImagePayload_Invalid(t *testing.T) {
	for _, payload := range []string{
		"",
		"data:image/png;base64",
		"!!!not base64!!!",
		base64.StdEncoding.EncodeToString([]byte("plain text, not an image")),
	} {
		_, err := DecodeImagePayload(payload)
		assert.ErrorIs(t, err, ErrInvalidImage, payload)
	}
}
