package inject

import (
	"context"

	"go.viam.com/spotbridge/publisher"
	"go.viam.com/spotbridge/ros"
)

// Sink is an injected publisher sink.
type Sink struct {
	publisher.Sink
	PublishImageFunc      func(ctx context.Context, topic string, img *ros.Image) error
	PublishCameraInfoFunc func(ctx context.Context, topic string, info ros.CameraInfo) error
	PublishTransformsFunc func(ctx context.Context, transforms []ros.TransformStamped) error
	CloseFunc             func(ctx context.Context) error
}

// PublishImage calls the injected PublishImage or the real version.
func (s *Sink) PublishImage(ctx context.Context, topic string, img *ros.Image) error {
	if s.PublishImageFunc == nil {
		return s.Sink.PublishImage(ctx, topic, img)
	}
	return s.PublishImageFunc(ctx, topic, img)
}

// PublishCameraInfo calls the injected PublishCameraInfo or the real version.
func (s *Sink) PublishCameraInfo(ctx context.Context, topic string, info ros.CameraInfo) error {
	if s.PublishCameraInfoFunc == nil {
		return s.Sink.PublishCameraInfo(ctx, topic, info)
	}
	return s.PublishCameraInfoFunc(ctx, topic, info)
}

// PublishTransforms calls the injected PublishTransforms or the real version.
func (s *Sink) PublishTransforms(ctx context.Context, transforms []ros.TransformStamped) error {
	if s.PublishTransformsFunc == nil {
		return s.Sink.PublishTransforms(ctx, transforms)
	}
	return s.PublishTransformsFunc(ctx, transforms)
}

// Close calls the injected Close or the real version.
func (s *Sink) Close(ctx context.Context) error {
	if s.CloseFunc == nil {
		if s.Sink == nil {
			return nil
		}
		return s.Sink.Close(ctx)
	}
	return s.CloseFunc(ctx)
}
