package spotapi

import (
	"context"

	"google.golang.org/protobuf/types/known/durationpb"
)

// ImageRequest asks for a single image source. Everything but SourceName is passed through to
// the robot untouched.
type ImageRequest struct {
	ImageSourceName string      `json:"image_source_name"`
	QualityPercent  float64     `json:"quality_percent"`
	ImageFormat     ImageFormat `json:"image_format"`
	PixelFormat     PixelFormat `json:"pixel_format"`
	ResizeRatio     float64     `json:"resize_ratio"`
}

// GetImageRequest is a batch of image requests.
type GetImageRequest struct {
	ImageRequests []ImageRequest `json:"image_requests"`
}

// GetImageResponse carries one response per fulfilled image request.
type GetImageResponse struct {
	ImageResponses []ImageResponse `json:"image_responses"`
}

// NewGetImageRequest builds a batch request for the named sources with a shared quality and
// pixel format.
func NewGetImageRequest(sourceNames []string, qualityPercent float64, pixelFormat PixelFormat) *GetImageRequest {
	req := &GetImageRequest{ImageRequests: make([]ImageRequest, 0, len(sourceNames))}
	for _, name := range sourceNames {
		req.ImageRequests = append(req.ImageRequests, ImageRequest{
			ImageSourceName: name,
			QualityPercent:  qualityPercent,
			PixelFormat:     pixelFormat,
		})
	}
	return req
}

// ImageFetcher fetches batches of images from the robot. Implementations own transport and
// retries; a returned error fails the whole batch.
type ImageFetcher interface {
	GetImages(ctx context.Context, req *GetImageRequest) (*GetImageResponse, error)
}

// TimeSync reports the current estimate of the offset to add to a robot timestamp to express it
// in the local clock domain.
type TimeSync interface {
	GetClockSkew(ctx context.Context) (*durationpb.Duration, error)
}
