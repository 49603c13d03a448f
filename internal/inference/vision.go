package inference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"kindspeak-server/internal/emotion"
	"kindspeak-server/internal/logger"
)

// maxFaces 单张图像最多返回的人脸数
const maxFaces = 10

// VisionFaceDetector 基于 Google Cloud Vision 的人脸检测
type VisionFaceDetector struct {
	client *vision.ImageAnnotatorClient
	log    *logger.Logger
}

// ClientOptions 根据凭证配置生成客户端选项
// 以 { 开头视为 JSON 内容，否则视为文件路径；为空时使用默认凭证链
func ClientOptions(credentials string) []option.ClientOption {
	creds := strings.TrimSpace(credentials)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

// NewVisionFaceDetector 创建人脸检测器
func NewVisionFaceDetector(ctx context.Context, credentials string, log *logger.Logger) (*VisionFaceDetector, error) {
	if log == nil {
		log = logger.NewNop()
	}
	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &VisionFaceDetector{client: client, log: log.With("service", "gcp.Vision")}, nil
}

// Close 关闭底层连接
func (d *VisionFaceDetector) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

// DetectFaces 返回相对坐标的人脸框，顺序与 Vision 返回一致
func (d *VisionFaceDetector) DetectFaces(ctx context.Context, img image.Image) ([]emotion.FaceBox, error) {
	if d == nil || d.client == nil {
		return nil, errors.New("vision client not initialized")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: buf.Bytes()},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_FACE_DETECTION, MaxResults: maxFaces},
			},
		}},
	}
	resp, err := d.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	b := img.Bounds()
	boxes := make([]emotion.FaceBox, 0, len(r0.FaceAnnotations))
	for _, fa := range r0.FaceAnnotations {
		if box, ok := relativeBox(fa.GetFdBoundingPoly(), b.Dx(), b.Dy()); ok {
			boxes = append(boxes, box)
		}
	}
	d.log.Debug("faces detected", "count", len(boxes))
	return boxes, nil
}

// relativeBox 将像素顶点转换为相对坐标的外接矩形
func relativeBox(poly *visionpb.BoundingPoly, width, height int) (emotion.FaceBox, bool) {
	if poly == nil || len(poly.Vertices) == 0 || width <= 0 || height <= 0 {
		return emotion.FaceBox{}, false
	}
	minX, minY := poly.Vertices[0].X, poly.Vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range poly.Vertices[1:] {
		minX, maxX = min(minX, v.X), max(maxX, v.X)
		minY, maxY = min(minY, v.Y), max(maxY, v.Y)
	}
	if maxX <= minX || maxY <= minY {
		return emotion.FaceBox{}, false
	}
	return emotion.FaceBox{
		XMin:   float64(minX) / float64(width),
		YMin:   float64(minY) / float64(height),
		Width:  float64(maxX-minX) / float64(width),
		Height: float64(maxY-minY) / float64(height),
	}, true
}
