// Package spotapi describes the subset of the Spot image API that the bridge consumes: image
// captures, their sources and intrinsics, frame tree snapshots and the request/response pair
// used to fetch them.
package spotapi

import (
	"fmt"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// PixelFormat is the layout of pixels in an uncompressed image, or the layout a compressed image
// decodes to. The values match the robot's wire enumeration.
type PixelFormat int32

// Supported pixel formats.
const (
	PixelFormatUnknown      PixelFormat = 0
	PixelFormatGreyscaleU8  PixelFormat = 1
	PixelFormatRGBU8        PixelFormat = 3
	PixelFormatRGBAU8       PixelFormat = 4
	PixelFormatDepthU16     PixelFormat = 5
	PixelFormatGreyscaleU16 PixelFormat = 6
)

func (pf PixelFormat) String() string {
	switch pf {
	case PixelFormatUnknown:
		return "PIXEL_FORMAT_UNKNOWN"
	case PixelFormatGreyscaleU8:
		return "PIXEL_FORMAT_GREYSCALE_U8"
	case PixelFormatRGBU8:
		return "PIXEL_FORMAT_RGB_U8"
	case PixelFormatRGBAU8:
		return "PIXEL_FORMAT_RGBA_U8"
	case PixelFormatDepthU16:
		return "PIXEL_FORMAT_DEPTH_U16"
	case PixelFormatGreyscaleU16:
		return "PIXEL_FORMAT_GREYSCALE_U16"
	default:
		return fmt.Sprintf("PIXEL_FORMAT(%d)", int32(pf))
	}
}

// ImageFormat is how the image payload is encoded.
type ImageFormat int32

// Image payload encodings.
const (
	FormatUnknown ImageFormat = 0
	FormatJPEG    ImageFormat = 1
	FormatRaw     ImageFormat = 2
	FormatRLE     ImageFormat = 3
)

func (f ImageFormat) String() string {
	switch f {
	case FormatUnknown:
		return "FORMAT_UNKNOWN"
	case FormatJPEG:
		return "FORMAT_JPEG"
	case FormatRaw:
		return "FORMAT_RAW"
	case FormatRLE:
		return "FORMAT_RLE"
	default:
		return fmt.Sprintf("FORMAT(%d)", int32(f))
	}
}

// Image is the payload of a single capture.
type Image struct {
	Cols        int32       `json:"cols"`
	Rows        int32       `json:"rows"`
	Data        []byte      `json:"data"`
	Format      ImageFormat `json:"format"`
	PixelFormat PixelFormat `json:"pixel_format"`
}

// ImageCapture is one snapshot from one camera at one instant.
type ImageCapture struct {
	Image                Image                  `json:"image"`
	AcquisitionTime      *timestamppb.Timestamp `json:"acquisition_time"`
	TransformsSnapshot   FrameTreeSnapshot      `json:"transforms_snapshot"`
	FrameNameImageSensor string                 `json:"frame_name_image_sensor"`
}

// Vec2 is a 2D vector.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PinholeIntrinsics are the intrinsic parameters of a pinhole camera model.
type PinholeIntrinsics struct {
	FocalLength    Vec2    `json:"focal_length"`
	PrincipalPoint Vec2    `json:"principal_point"`
	Skew           Vec2    `json:"skew"`
	PixelDepth     float64 `json:"pixel_depth"`
}

// PinholeModel wraps the intrinsics of a pinhole camera.
type PinholeModel struct {
	Intrinsics PinholeIntrinsics `json:"intrinsics"`
}

// ImageSource describes a camera the robot can take images from.
type ImageSource struct {
	Name    string       `json:"name"`
	Rows    int32        `json:"rows"`
	Cols    int32        `json:"cols"`
	Pinhole PinholeModel `json:"pinhole"`
}

// ImageResponse pairs a capture with the source it was taken from.
type ImageResponse struct {
	Shot   ImageCapture `json:"shot"`
	Source ImageSource  `json:"source"`
}
