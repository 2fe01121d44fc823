// Package publisher periodically requests image batches and hands them to a middleware sink.
package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/spotbridge/imageclient"
	"go.viam.com/spotbridge/imagesource"
	"go.viam.com/spotbridge/logging"
	"go.viam.com/spotbridge/ros"
	"go.viam.com/spotbridge/spotapi"
	"go.viam.com/spotbridge/utils"
)

// Sink receives converted messages. Implementations wrap a middleware transport.
type Sink interface {
	PublishImage(ctx context.Context, topic string, img *ros.Image) error
	PublishCameraInfo(ctx context.Context, topic string, info ros.CameraInfo) error
	PublishTransforms(ctx context.Context, transforms []ros.TransformStamped) error
	Close(ctx context.Context) error
}

// ImageGetter produces converted image batches. *imageclient.Client satisfies it.
type ImageGetter interface {
	GetImages(ctx context.Context, req *spotapi.GetImageRequest) (*imageclient.Result, error)
}

// Params configures a Publisher.
type Params struct {
	Sources     []imagesource.ImageSource
	Period      time.Duration
	Quality     float64
	PixelFormat spotapi.PixelFormat
	// Clock defaults to the wall clock.
	Clock  clock.Clock
	Logger logging.Logger
}

// Publisher requests the configured sources once per period and publishes every batch.
type Publisher struct {
	client  ImageGetter
	sink    Sink
	sources []imagesource.ImageSource
	req     *spotapi.GetImageRequest
	period  time.Duration
	clock   clock.Clock
	logger  logging.Logger

	mu      sync.Mutex
	workers utils.StoppableWorkers
	closed  bool
}

// New builds a publisher. It does not publish until Start is called.
func New(client ImageGetter, sink Sink, params Params) (*Publisher, error) {
	if len(params.Sources) == 0 {
		return nil, errors.New("publisher needs at least one image source")
	}
	if params.Period <= 0 {
		return nil, errors.Errorf("publish period must be positive, got %v", params.Period)
	}

	names := make([]string, 0, len(params.Sources))
	for _, src := range params.Sources {
		name, err := imagesource.ToVendorName(src)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	clk := params.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = logging.NewLogger("publisher")
	}

	return &Publisher{
		client:  client,
		sink:    sink,
		sources: params.Sources,
		req:     spotapi.NewGetImageRequest(names, params.Quality, params.PixelFormat),
		period:  params.Period,
		clock:   clk,
		logger:  logger,
	}, nil
}

// Start begins publishing in the background. Calling it again, or after Close, does nothing.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.workers != nil || p.closed {
		return
	}

	ticker := p.clock.Ticker(p.period)
	p.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if err := p.PublishOnce(ctx); err != nil && ctx.Err() == nil {
				p.logger.Errorw("failed to publish image batch", "error", err)
			}
		}
	})
}

// PublishOnce requests one batch and publishes it. Sources missing from the batch are skipped.
// Publishing continues past sink failures, which are returned together.
func (p *Publisher) PublishOnce(ctx context.Context) error {
	result, err := p.client.GetImages(ctx, p.req)
	if err != nil {
		return err
	}

	var errs error
	for _, src := range p.sources {
		img, ok := result.Images[src]
		if !ok {
			p.logger.Debugw("batch is missing image source", "source", src.String())
			continue
		}
		errs = multierr.Append(errs, errors.Wrapf(p.sink.PublishImage(ctx, src.Topic(), img.Image), "source %v", src))
		errs = multierr.Append(errs,
			errors.Wrapf(p.sink.PublishCameraInfo(ctx, src.CameraInfoTopic(), img.Info), "source %v", src))
	}
	if len(result.Transforms) > 0 {
		errs = multierr.Append(errs, errors.Wrap(p.sink.PublishTransforms(ctx, result.Transforms), "transforms"))
	}
	return errs
}

// Close stops publishing and closes the sink.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	workers := p.workers
	p.mu.Unlock()

	if workers != nil {
		workers.Stop()
	}
	return multierr.Combine(p.sink.Close(ctx), p.logger.Sync())
}
