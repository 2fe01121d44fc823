// Package config defines how the image bridge is configured.
package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/spotbridge/imageclient"
	"go.viam.com/spotbridge/imagesource"
	"go.viam.com/spotbridge/referenceframe"
)

const (
	// DefaultImageQuality is the JPEG quality requested when none is configured.
	DefaultImageQuality = 100.0
	// DefaultPublishRateHz is how often images are requested when no rate is configured.
	DefaultPublishRateHz = 15.0
)

// Sources selects which image sources are requested.
type Sources struct {
	RGB             bool `json:"rgb"`
	Depth           bool `json:"depth"`
	DepthRegistered bool `json:"depth_registered"`
	HasArm          bool `json:"has_arm"`
}

// Config is the bridge configuration.
type Config struct {
	RobotName string `json:"robot_name,omitempty"`
	// ExcludedFrames replaces the default excluded frames when non-empty.
	ExcludedFrames []string `json:"excluded_frames,omitempty"`
	// FrameRenames replaces the default parent frame renames when non-empty.
	FrameRenames      map[string]string `json:"frame_renames,omitempty"`
	Sources           Sources           `json:"sources"`
	ImageQuality      float64           `json:"image_quality,omitempty"`
	PublishRateHz     float64           `json:"publish_rate_hz,omitempty"`
	DecodeConcurrency int               `json:"decode_concurrency,omitempty"`
}

// FromAttributes decodes a loosely typed attribute map, as found in a larger robot config.
func FromAttributes(attributes map[string]interface{}) (*Config, error) {
	var conf Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &conf,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode bridge attributes")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Read loads and validates a JSON config file.
func Read(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config file %q", path)
	}
	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config file %q", path)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks that the config can be used.
func (conf *Config) Validate() error {
	if strings.Contains(conf.RobotName, "/") {
		return errors.Errorf("robot_name %q must not contain '/'", conf.RobotName)
	}
	if conf.ImageQuality < 0 || conf.ImageQuality > 100 {
		return errors.Errorf("image_quality must be between 0 and 100, got %v", conf.ImageQuality)
	}
	if conf.PublishRateHz < 0 {
		return errors.Errorf("publish_rate_hz cannot be negative, got %v", conf.PublishRateHz)
	}
	if conf.DecodeConcurrency < 0 {
		return errors.Errorf("decode_concurrency cannot be negative, got %d", conf.DecodeConcurrency)
	}
	for _, frame := range conf.ExcludedFrames {
		if frame == "" {
			return errors.New("excluded_frames cannot contain an empty frame name")
		}
	}
	return nil
}

// Policy is the frame policy described by the config, using the defaults for unset or empty
// fields.
func (conf *Config) Policy() referenceframe.Policy {
	excluded := referenceframe.DefaultExcludedFrames
	if len(conf.ExcludedFrames) > 0 {
		excluded = conf.ExcludedFrames
	}
	renames := referenceframe.DefaultParentRenames
	if len(conf.FrameRenames) > 0 {
		renames = conf.FrameRenames
	}
	return referenceframe.NewPolicy(excluded, renames)
}

// SourceOptions converts the source selection.
func (conf *Config) SourceOptions() imagesource.Options {
	return imagesource.Options{
		RGB:             conf.Sources.RGB,
		Depth:           conf.Sources.Depth,
		DepthRegistered: conf.Sources.DepthRegistered,
		HasHandCamera:   conf.Sources.HasArm,
	}
}

// Quality is the configured image quality, or DefaultImageQuality.
func (conf *Config) Quality() float64 {
	if conf.ImageQuality == 0 {
		return DefaultImageQuality
	}
	return conf.ImageQuality
}

// PublishPeriod is the time between two image requests.
func (conf *Config) PublishPeriod() time.Duration {
	rate := conf.PublishRateHz
	if rate == 0 {
		rate = DefaultPublishRateHz
	}
	return time.Duration(float64(time.Second) / rate)
}

// ClientOptions are the image client options described by the config.
func (conf *Config) ClientOptions() imageclient.Options {
	policy := conf.Policy()
	return imageclient.Options{
		RobotName:   conf.RobotName,
		Policy:      &policy,
		Concurrency: conf.DecodeConcurrency,
	}
}
