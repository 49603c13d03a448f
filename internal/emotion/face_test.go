package emotion

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	faces []FaceBox
	err   error
	panic bool
}

func (d *stubDetector) DetectFaces(_ context.Context, _ image.Image) ([]FaceBox, error) {
	if d.panic {
		panic("detector crashed")
	}
	return d.faces, d.err
}

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	return img
}

func TestFaceLocator_CropsWithPadding(t *testing.T) {
	img := solidImage(200, 100)
	loc := NewFaceLocator(&stubDetector{faces: []FaceBox{
		{XMin: 0.25, YMin: 0.3, Width: 0.25, Height: 0.4},
	}}, 20, nil)

	out := loc.LocateAndCrop(context.Background(), img)

	// x=50-20, y=30-20, w=50+40, h=40+40
	assert.Equal(t, 90, out.Bounds().Dx())
	assert.Equal(t, 80, out.Bounds().Dy())
	assert.Equal(t, img.At(30, 10), out.At(0, 0))
}

func TestFaceLocator_ClampsToImage(t *testing.T) {
	img := solidImage(100, 100)
	loc := NewFaceLocator(&stubDetector{faces: []FaceBox{
		{XMin: 0.05, YMin: 0.8, Width: 0.5, Height: 0.5},
	}}, 20, nil)

	out := loc.LocateAndCrop(context.Background(), img)

	// x=max(0,5-20)=0, w=min(100,50+40)=90; y=80-20=60, h=min(40,90)=40
	assert.Equal(t, 90, out.Bounds().Dx())
	assert.Equal(t, 40, out.Bounds().Dy())
	assert.Equal(t, img.At(0, 60), out.At(0, 0))
}

func TestFaceLocator_PicksLargestFace(t *testing.T) {
	img := solidImage(100, 100)
	loc := NewFaceLocator(&stubDetector{faces: []FaceBox{
		{XMin: 0.0, YMin: 0.0, Width: 0.1, Height: 0.1},
		{XMin: 0.5, YMin: 0.5, Width: 0.3, Height: 0.3},
		{XMin: 0.1, YMin: 0.1, Width: 0.2, Height: 0.2},
	}}, 0, nil)

	out := loc.LocateAndCrop(context.Background(), img)

	assert.Equal(t, 30, out.Bounds().Dx())
	assert.Equal(t, img.At(50, 50), out.At(0, 0))
}

func TestSelectFace_TieKeepsFirst(t *testing.T) {
	first := FaceBox{XMin: 0.1, YMin: 0.1, Width: 0.2, Height: 0.2}
	second := FaceBox{XMin: 0.6, YMin: 0.6, Width: 0.2, Height: 0.2}

	assert.Equal(t, first, selectFace([]FaceBox{first, second}))
}

func TestFaceLocator_FallsBackToOriginal(t *testing.T) {
	img := solidImage(64, 48)
	cases := map[string]*FaceLocator{
		"nil locator":  nil,
		"no detector":  NewFaceLocator(nil, 20, nil),
		"no faces":     NewFaceLocator(&stubDetector{}, 20, nil),
		"detect error": NewFaceLocator(&stubDetector{err: errors.New("quota")}, 20, nil),
		"panic":        NewFaceLocator(&stubDetector{panic: true}, 20, nil),
		"empty box":    NewFaceLocator(&stubDetector{faces: []FaceBox{{XMin: 2, YMin: 2}}}, 0, nil),
	}
	for name, loc := range cases {
		t.Run(name, func(t *testing.T) {
			out := loc.LocateAndCrop(context.Background(), img)
			require.NotNil(t, out)
			assert.Same(t, img, out.(*image.RGBA))
		})
	}
}

func TestFaceLocator_OffsetBounds(t *testing.T) {
	base := solidImage(120, 120)
	sub := base.SubImage(image.Rect(20, 20, 120, 120))
	loc := NewFaceLocator(&stubDetector{faces: []FaceBox{
		{XMin: 0.5, YMin: 0.5, Width: 0.1, Height: 0.1},
	}}, 0, nil)

	out := loc.LocateAndCrop(context.Background(), sub)

	assert.Equal(t, 10, out.Bounds().Dx())
	assert.Equal(t, base.At(70, 70), out.At(0, 0))
}
