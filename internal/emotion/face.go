package emotion

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"kindspeak-server/internal/logger"
)

// DefaultFacePadding 人脸框四周外扩的像素数
const DefaultFacePadding = 20

// FaceBox 相对坐标的人脸框，取值范围 [0,1]
type FaceBox struct {
	XMin   float64
	YMin   float64
	Width  float64
	Height float64
}

func (b FaceBox) area() float64 {
	return b.Width * b.Height
}

// FaceDetector 人脸检测能力
type FaceDetector interface {
	DetectFaces(ctx context.Context, img image.Image) ([]FaceBox, error)
}

// FaceLocator 定位人脸并裁剪
// detector 为 nil 表示检测不可用，此时原图返回
type FaceLocator struct {
	detector FaceDetector
	padding  int
	log      *logger.Logger
}

// NewFaceLocator 创建人脸定位器
func NewFaceLocator(detector FaceDetector, padding int, log *logger.Logger) *FaceLocator {
	if padding < 0 {
		padding = DefaultFacePadding
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &FaceLocator{
		detector: detector,
		padding:  padding,
		log:      log.With("component", "FaceLocator"),
	}
}

// LocateAndCrop 返回外扩后的人脸区域；没有人脸或检测失败时返回原图
func (l *FaceLocator) LocateAndCrop(ctx context.Context, img image.Image) (out image.Image) {
	if l == nil || l.detector == nil || img == nil {
		return img
	}

	defer func() {
		if r := recover(); r != nil {
			l.log.Warn("face detection panicked", "panic", fmt.Sprint(r))
			out = img
		}
	}()

	faces, err := l.detector.DetectFaces(ctx, img)
	if err != nil {
		l.log.Warn("face detection failed", "error", err)
		return img
	}
	if len(faces) == 0 {
		return img
	}

	rect := l.cropRect(img.Bounds(), selectFace(faces))
	if rect.Empty() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(dst, image.Point{}, img, rect, draw.Src, nil)
	return dst
}

// selectFace 选择面积最大的人脸，面积相同取先出现的
func selectFace(faces []FaceBox) FaceBox {
	best := faces[0]
	for _, f := range faces[1:] {
		if f.area() > best.area() {
			best = f
		}
	}
	return best
}

// cropRect 将相对坐标转换为绝对像素，外扩 padding 后裁剪到图像边界内
func (l *FaceLocator) cropRect(bounds image.Rectangle, box FaceBox) image.Rectangle {
	iw, ih := bounds.Dx(), bounds.Dy()

	x := int(box.XMin * float64(iw))
	y := int(box.YMin * float64(ih))
	w := int(box.Width * float64(iw))
	h := int(box.Height * float64(ih))

	x = max(0, x-l.padding)
	y = max(0, y-l.padding)
	w = min(iw-x, w+2*l.padding)
	h = min(ih-y, h+2*l.padding)
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}

	return image.Rect(x, y, x+w, y+h).Add(bounds.Min)
}
