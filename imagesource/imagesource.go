// Package imagesource identifies the cameras on the robot and the kinds of images each one
// provides, and maps those identities to and from the robot's image source names.
package imagesource

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrUnrecognizedSourceName is returned when a robot image source name has no ImageSource.
var ErrUnrecognizedSourceName = errors.New("unrecognized image source name")

// Camera is one of the robot's cameras.
type Camera int

// The robot's cameras.
const (
	Back Camera = iota
	FrontLeft
	FrontRight
	Left
	Right
	Hand
)

var cameraNames = map[Camera]string{
	Back:       "back",
	FrontLeft:  "frontleft",
	FrontRight: "frontright",
	Left:       "left",
	Right:      "right",
	Hand:       "hand",
}

// BodyCameras are the cameras fixed to the body.
var BodyCameras = []Camera{Back, FrontLeft, FrontRight, Left, Right}

func (c Camera) String() string {
	if name, ok := cameraNames[c]; ok {
		return name
	}
	return fmt.Sprintf("camera(%d)", int(c))
}

// Type is the kind of image a source produces.
type Type int

// Image types.
const (
	RGB Type = iota
	Depth
	DepthRegistered
)

func (t Type) String() string {
	switch t {
	case RGB:
		return "rgb"
	case Depth:
		return "depth"
	case DepthRegistered:
		return "depth_registered"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ImageSource identifies one image stream of one camera.
type ImageSource struct {
	Camera Camera
	Type   Type
}

func (src ImageSource) String() string {
	return src.Camera.String() + "/" + src.Type.String()
}

// vendorNames is the one table both directions of the name conversion read from.
var vendorNames = map[ImageSource]string{
	{Back, RGB}:                   "back_fisheye_image",
	{Back, Depth}:                 "back_depth",
	{Back, DepthRegistered}:       "back_depth_in_visual_frame",
	{FrontLeft, RGB}:              "frontleft_fisheye_image",
	{FrontLeft, Depth}:            "frontleft_depth",
	{FrontLeft, DepthRegistered}:  "frontleft_depth_in_visual_frame",
	{FrontRight, RGB}:             "frontright_fisheye_image",
	{FrontRight, Depth}:           "frontright_depth",
	{FrontRight, DepthRegistered}: "frontright_depth_in_visual_frame",
	{Left, RGB}:                   "left_fisheye_image",
	{Left, Depth}:                 "left_depth",
	{Left, DepthRegistered}:       "left_depth_in_visual_frame",
	{Right, RGB}:                  "right_fisheye_image",
	{Right, Depth}:                "right_depth",
	{Right, DepthRegistered}:      "right_depth_in_visual_frame",
	{Hand, RGB}:                   "hand_color_image",
	{Hand, Depth}:                 "hand_depth",
	{Hand, DepthRegistered}:       "hand_depth_in_hand_color_frame",
}

var sourcesByVendorName = lo.Invert(vendorNames)

// All returns every defined image source.
func All() []ImageSource {
	return lo.Keys(vendorNames)
}

// ToVendorName returns the robot's name for the image source.
func ToVendorName(src ImageSource) (string, error) {
	name, ok := vendorNames[src]
	if !ok {
		return "", errors.Errorf("image source %v has no robot source name", src)
	}
	return name, nil
}

// FromVendorName resolves a robot image source name.
func FromVendorName(name string) (ImageSource, error) {
	src, ok := sourcesByVendorName[name]
	if !ok {
		return ImageSource{}, errors.Wrapf(ErrUnrecognizedSourceName, "%q", name)
	}
	return src, nil
}

// Topic returns the middleware topic the source is published on, relative to the node namespace.
func (src ImageSource) Topic() string {
	return src.topicPrefix() + "/image"
}

// CameraInfoTopic returns the topic the source's calibration is published on.
func (src ImageSource) CameraInfoTopic() string {
	return src.topicPrefix() + "/camera_info"
}

func (src ImageSource) topicPrefix() string {
	switch src.Type {
	case Depth:
		return "depth/" + src.Camera.String()
	case DepthRegistered:
		return "depth_registered/" + src.Camera.String()
	default:
		return "camera/" + src.Camera.String()
	}
}

// Options selects the image sources to stream.
type Options struct {
	RGB             bool
	Depth           bool
	DepthRegistered bool
	HasHandCamera   bool
}

// List returns the sources selected by opts, body cameras first and grouped by camera.
func List(opts Options) []ImageSource {
	cameras := BodyCameras
	if opts.HasHandCamera {
		cameras = append(append([]Camera{}, BodyCameras...), Hand)
	}
	types := lo.Filter([]Type{RGB, Depth, DepthRegistered}, func(t Type, _ int) bool {
		switch t {
		case RGB:
			return opts.RGB
		case Depth:
			return opts.Depth
		default:
			return opts.DepthRegistered
		}
	})

	sources := make([]ImageSource, 0, len(cameras)*len(types))
	for _, camera := range cameras {
		for _, t := range types {
			sources = append(sources, ImageSource{Camera: camera, Type: t})
		}
	}
	return sources
}
