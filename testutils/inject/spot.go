package inject

import (
	"context"

	"google.golang.org/protobuf/types/known/durationpb"

	"go.viam.com/spotbridge/spotapi"
)

// ImageFetcher is an injected image fetcher.
type ImageFetcher struct {
	spotapi.ImageFetcher
	GetImagesFunc func(ctx context.Context, req *spotapi.GetImageRequest) (*spotapi.GetImageResponse, error)
}

// GetImages calls the injected GetImages or the real version.
func (f *ImageFetcher) GetImages(ctx context.Context, req *spotapi.GetImageRequest) (*spotapi.GetImageResponse, error) {
	if f.GetImagesFunc == nil {
		return f.ImageFetcher.GetImages(ctx, req)
	}
	return f.GetImagesFunc(ctx, req)
}

// TimeSync is an injected time sync.
type TimeSync struct {
	spotapi.TimeSync
	GetClockSkewFunc func(ctx context.Context) (*durationpb.Duration, error)
}

// GetClockSkew calls the injected GetClockSkew or the real version.
func (ts *TimeSync) GetClockSkew(ctx context.Context) (*durationpb.Duration, error) {
	if ts.GetClockSkewFunc == nil {
		return ts.TimeSync.GetClockSkew(ctx)
	}
	return ts.GetClockSkewFunc(ctx)
}
