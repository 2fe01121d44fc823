// Package imageclient fetches batches of images from the robot and converts them into middleware
// images, camera calibrations and static transforms.
package imageclient

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/durationpb"

	"go.viam.com/spotbridge/imagesource"
	"go.viam.com/spotbridge/logging"
	"go.viam.com/spotbridge/referenceframe"
	"go.viam.com/spotbridge/rimage"
	"go.viam.com/spotbridge/rimage/transform"
	"go.viam.com/spotbridge/ros"
	"go.viam.com/spotbridge/spotapi"
)

var (
	// ErrRemoteFetch is returned when the robot could not provide the requested images.
	ErrRemoteFetch = errors.New("failed to get images")
	// ErrClockSync is returned when no clock skew is available for the batch.
	ErrClockSync = errors.New("failed to get latest clock skew")
)

// ImageWithCameraInfo is a decoded image and the calibration of the camera that took it.
type ImageWithCameraInfo struct {
	Image *ros.Image
	Info  ros.CameraInfo
}

// Result is one fully converted batch.
type Result struct {
	Images     map[imagesource.ImageSource]ImageWithCameraInfo
	Transforms []ros.TransformStamped
}

// Options configures a Client.
type Options struct {
	// RobotName namespaces every frame id. Empty leaves frame ids bare.
	RobotName string
	// Policy filters and renames snapshot frames. Nil uses referenceframe.DefaultPolicy.
	Policy *referenceframe.Policy
	// Concurrency is how many captures are converted at once. Values below 2 convert in order.
	Concurrency int
}

// Client converts robot image batches.
type Client struct {
	fetcher  spotapi.ImageFetcher
	timeSync spotapi.TimeSync
	opts     Options
	policy   referenceframe.Policy
	logger   logging.Logger
}

// New returns a client reading images from fetcher and the clock skew from timeSync.
func New(fetcher spotapi.ImageFetcher, timeSync spotapi.TimeSync, opts Options, logger logging.Logger) *Client {
	policy := referenceframe.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	return &Client{fetcher: fetcher, timeSync: timeSync, opts: opts, policy: policy, logger: logger}
}

type converted struct {
	source     imagesource.ImageSource
	image      ImageWithCameraInfo
	transforms []ros.TransformStamped
}

// GetImages fetches the requested images and converts every one of them. Any failure fails the
// whole batch: the result is either complete or nil.
func (c *Client) GetImages(ctx context.Context, req *spotapi.GetImageRequest) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "imageclient::GetImages")
	defer span.End()

	resp, err := c.fetcher.GetImages(ctx, req)
	if err != nil {
		// fmt.Errorf with two %w verbs keeps both the sentinel and the cause matchable by
		// errors.Is, which errors.Wrap cannot do.
		return nil, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}

	skew, err := c.timeSync.GetClockSkew(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClockSync, err)
	}

	conversions, err := c.convertAll(ctx, resp.ImageResponses, skew)
	if err != nil {
		return nil, err
	}

	out := &Result{Images: make(map[imagesource.ImageSource]ImageWithCameraInfo, len(conversions))}
	for _, conv := range conversions {
		if _, ok := out.Images[conv.source]; ok {
			c.logger.Warnw("batch contains the same image source twice, keeping the first", "source", conv.source.String())
		} else {
			out.Images[conv.source] = conv.image
		}
		out.Transforms = append(out.Transforms, conv.transforms...)
	}
	c.logger.Debugw("converted image batch",
		"images", len(out.Images), "transforms", len(out.Transforms), "skew", skew.AsDuration())
	return out, nil
}

func (c *Client) convertAll(
	ctx context.Context,
	responses []spotapi.ImageResponse,
	skew *durationpb.Duration,
) ([]converted, error) {
	out := make([]converted, len(responses))
	if c.opts.Concurrency < 2 {
		for i := range responses {
			conv, err := c.convert(ctx, &responses[i], skew)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	}

	// Each capture writes only its own slot. The first failure in capture order is reported, no
	// matter which goroutine finished first.
	errs := make([]error, len(responses))
	var group errgroup.Group
	group.SetLimit(c.opts.Concurrency)
	for i := range responses {
		i := i
		group.Go(func() error {
			out[i], errs[i] = c.convert(ctx, &responses[i], skew)
			return errs[i]
		})
	}
	if group.Wait() == nil {
		return out, nil
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return nil, errors.New("unreachable: conversion failed without an error")
}

func (c *Client) convert(
	ctx context.Context,
	resp *spotapi.ImageResponse,
	skew *durationpb.Duration,
) (converted, error) {
	img, err := rimage.DecodeImage(ctx, &resp.Shot, c.opts.RobotName, skew)
	if err != nil {
		return converted{}, errors.Wrap(err, "failed to convert image response to Image message")
	}

	intrinsics := transform.NewPinholeCameraIntrinsicsFromSpot(
		resp.Source.Pinhole.Intrinsics, resp.Shot.Image.Rows, resp.Shot.Image.Cols)
	if err := intrinsics.CheckValid(); err != nil {
		c.logger.Warnw("image source reports unusable intrinsics", "source", resp.Source.Name, "error", err)
	}
	info := transform.NewCameraInfo(intrinsics, img.Header)

	source, err := imagesource.FromVendorName(resp.Source.Name)
	if err != nil {
		return converted{}, errors.Wrap(err, "failed to convert image source name to ImageSource")
	}

	return converted{
		source:     source,
		image:      ImageWithCameraInfo{Image: img, Info: info},
		transforms: referenceframe.ExtractTransforms(&resp.Shot, c.opts.RobotName, skew, c.policy),
	}, nil
}
