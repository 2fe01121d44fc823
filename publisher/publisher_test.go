package publisher_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/spotbridge/imageclient"
	"go.viam.com/spotbridge/imagesource"
	"go.viam.com/spotbridge/logging"
	"go.viam.com/spotbridge/publisher"
	"go.viam.com/spotbridge/ros"
	"go.viam.com/spotbridge/spotapi"
	"go.viam.com/spotbridge/testutils/inject"
)

type getterFunc func(ctx context.Context, req *spotapi.GetImageRequest) (*imageclient.Result, error)

func (f getterFunc) GetImages(ctx context.Context, req *spotapi.GetImageRequest) (*imageclient.Result, error) {
	return f(ctx, req)
}

var (
	frontLeftRGB   = imagesource.ImageSource{Camera: imagesource.FrontLeft, Type: imagesource.RGB}
	frontLeftDepth = imagesource.ImageSource{Camera: imagesource.FrontLeft, Type: imagesource.Depth}
	backRGB        = imagesource.ImageSource{Camera: imagesource.Back, Type: imagesource.RGB}
)

func batch() *imageclient.Result {
	header := ros.Header{Stamp: ros.Time{Sec: 5}, FrameID: "frontleft_fisheye"}
	return &imageclient.Result{
		Images: map[imagesource.ImageSource]imageclient.ImageWithCameraInfo{
			frontLeftRGB: {
				Image: &ros.Image{Header: header, Encoding: ros.EncodingBGR8},
				Info:  ros.CameraInfo{Header: header},
			},
			frontLeftDepth: {
				Image: &ros.Image{Header: header, Encoding: ros.Encoding16UC1},
				Info:  ros.CameraInfo{Header: header},
			},
		},
		Transforms: []ros.TransformStamped{{ChildFrameID: "frontleft_fisheye"}},
	}
}

type recordingSink struct {
	mu         sync.Mutex
	topics     []string
	transforms int
	closed     bool
}

func (r *recordingSink) inject() *inject.Sink {
	return &inject.Sink{
		PublishImageFunc: func(ctx context.Context, topic string, img *ros.Image) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.topics = append(r.topics, topic)
			return nil
		},
		PublishCameraInfoFunc: func(ctx context.Context, topic string, info ros.CameraInfo) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.topics = append(r.topics, topic)
			return nil
		},
		PublishTransformsFunc: func(ctx context.Context, transforms []ros.TransformStamped) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.transforms += len(transforms)
			return nil
		},
		CloseFunc: func(ctx context.Context) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.closed = true
			return nil
		},
	}
}

func TestNewValidation(t *testing.T) {
	getter := getterFunc(func(context.Context, *spotapi.GetImageRequest) (*imageclient.Result, error) { return batch(), nil })
	logger := logging.NewTestLogger(t)

	_, err := publisher.New(getter, &inject.Sink{}, publisher.Params{Period: time.Second, Logger: logger})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = publisher.New(getter, &inject.Sink{}, publisher.Params{
		Sources: []imagesource.ImageSource{frontLeftRGB}, Logger: logger,
	})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = publisher.New(getter, &inject.Sink{}, publisher.Params{
		Sources: []imagesource.ImageSource{{Camera: imagesource.Camera(99)}}, Period: time.Second, Logger: logger,
	})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPublishOnce(t *testing.T) {
	var seen *spotapi.GetImageRequest
	getter := getterFunc(func(ctx context.Context, req *spotapi.GetImageRequest) (*imageclient.Result, error) {
		seen = req
		return batch(), nil
	})
	rec := &recordingSink{}
	pub, err := publisher.New(getter, rec.inject(), publisher.Params{
		Sources:     []imagesource.ImageSource{frontLeftRGB, frontLeftDepth, backRGB},
		Period:      time.Second,
		Quality:     80,
		PixelFormat: spotapi.PixelFormatRGBU8,
		Logger:      logging.NewTestLogger(t),
	})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, pub.PublishOnce(context.Background()), test.ShouldBeNil)
	test.That(t, len(seen.ImageRequests), test.ShouldEqual, 3)
	test.That(t, seen.ImageRequests[0].ImageSourceName, test.ShouldEqual, "frontleft_fisheye_image")
	test.That(t, seen.ImageRequests[2].ImageSourceName, test.ShouldEqual, "back_fisheye_image")

	// back is missing from the batch and is skipped.
	test.That(t, rec.topics, test.ShouldResemble, []string{
		"camera/frontleft/image", "camera/frontleft/camera_info",
		"depth/frontleft/image", "depth/frontleft/camera_info",
	})
	test.That(t, rec.transforms, test.ShouldEqual, 1)

	test.That(t, pub.Close(context.Background()), test.ShouldBeNil)
	test.That(t, rec.closed, test.ShouldBeTrue)
	test.That(t, pub.Close(context.Background()), test.ShouldBeNil)
}

func TestPublishOnceCollectsSinkErrors(t *testing.T) {
	getter := getterFunc(func(context.Context, *spotapi.GetImageRequest) (*imageclient.Result, error) { return batch(), nil })
	transformsPublished := false
	sink := &inject.Sink{
		PublishImageFunc: func(ctx context.Context, topic string, img *ros.Image) error {
			return errors.New("image topic down")
		},
		PublishCameraInfoFunc: func(ctx context.Context, topic string, info ros.CameraInfo) error { return nil },
		PublishTransformsFunc: func(ctx context.Context, transforms []ros.TransformStamped) error {
			transformsPublished = true
			return nil
		},
	}
	pub, err := publisher.New(getter, sink, publisher.Params{
		Sources: []imagesource.ImageSource{frontLeftRGB, frontLeftDepth},
		Period:  time.Second,
		Logger:  logging.NewTestLogger(t),
	})
	test.That(t, err, test.ShouldBeNil)

	err = pub.PublishOnce(context.Background())
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 2)
	test.That(t, err.Error(), test.ShouldContainSubstring, "image topic down")
	test.That(t, transformsPublished, test.ShouldBeTrue)
}

func TestPublishOnceGetImagesFailure(t *testing.T) {
	getter := getterFunc(func(context.Context, *spotapi.GetImageRequest) (*imageclient.Result, error) {
		return nil, imageclient.ErrClockSync
	})
	// Any sink call panics on the nil embedded interface.
	pub, err := publisher.New(getter, &inject.Sink{}, publisher.Params{
		Sources: []imagesource.ImageSource{frontLeftRGB},
		Period:  time.Second,
		Logger:  logging.NewTestLogger(t),
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errors.Is(pub.PublishOnce(context.Background()), imageclient.ErrClockSync), test.ShouldBeTrue)
}

func TestStartPublishesOnEveryTick(t *testing.T) {
	calls := make(chan struct{}, 10)
	getter := getterFunc(func(context.Context, *spotapi.GetImageRequest) (*imageclient.Result, error) {
		calls <- struct{}{}
		return batch(), nil
	})
	mockClock := clock.NewMock()
	rec := &recordingSink{}
	pub, err := publisher.New(getter, rec.inject(), publisher.Params{
		Sources: []imagesource.ImageSource{frontLeftRGB},
		Period:  100 * time.Millisecond,
		Clock:   mockClock,
		Logger:  logging.NewTestLogger(t),
	})
	test.That(t, err, test.ShouldBeNil)
	pub.Start()
	pub.Start()

	for i := 0; i < 3; i++ {
		mockClock.Add(100 * time.Millisecond)
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatal("publisher did not request images after a tick")
		}
	}

	test.That(t, pub.Close(context.Background()), test.ShouldBeNil)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	test.That(t, rec.closed, test.ShouldBeTrue)
	test.That(t, len(rec.topics) >= 4, test.ShouldBeTrue)
}

func TestStartLogsFailures(t *testing.T) {
	calls := make(chan struct{}, 10)
	getter := getterFunc(func(context.Context, *spotapi.GetImageRequest) (*imageclient.Result, error) {
		calls <- struct{}{}
		return nil, imageclient.ErrRemoteFetch
	})
	logger, observed := logging.NewObservedTestLogger(t)
	mockClock := clock.NewMock()
	pub, err := publisher.New(getter, &inject.Sink{}, publisher.Params{
		Sources: []imagesource.ImageSource{frontLeftRGB},
		Period:  time.Second,
		Clock:   mockClock,
		Logger:  logger,
	})
	test.That(t, err, test.ShouldBeNil)
	pub.Start()
	mockClock.Add(time.Second)
	<-calls

	deadline := time.Now().Add(5 * time.Second)
	for observed.FilterMessageSnippet("failed to publish image batch").Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	test.That(t, observed.FilterMessageSnippet("failed to publish image batch").Len(), test.ShouldBeGreaterThan, 0)
	test.That(t, pub.Close(context.Background()), test.ShouldBeNil)
}
