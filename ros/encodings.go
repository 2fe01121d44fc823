package ros

import "github.com/pkg/errors"

// Image encodings produced by the bridge.
const (
	EncodingBGR8  = "bgr8"
	EncodingBGRA8 = "bgra8"
	EncodingMono8 = "mono8"
	Encoding16UC1 = "16UC1"
)

// Distortion models.
const (
	DistortionModelPlumbBob = "plumb_bob"
)

// EncodingInfo is the per-pixel layout of an encoding.
type EncodingInfo struct {
	Channels      int
	BitsPerSample int
}

// BytesPerPixel returns the size of a single pixel.
func (info EncodingInfo) BytesPerPixel() int {
	return info.Channels * info.BitsPerSample / 8
}

// InfoForEncoding describes one of the known encodings.
func InfoForEncoding(encoding string) (EncodingInfo, error) {
	switch encoding {
	case EncodingBGR8:
		return EncodingInfo{Channels: 3, BitsPerSample: 8}, nil
	case EncodingBGRA8:
		return EncodingInfo{Channels: 4, BitsPerSample: 8}, nil
	case EncodingMono8:
		return EncodingInfo{Channels: 1, BitsPerSample: 8}, nil
	case Encoding16UC1:
		return EncodingInfo{Channels: 1, BitsPerSample: 16}, nil
	default:
		return EncodingInfo{}, errors.Errorf("unknown image encoding %q", encoding)
	}
}

// FrameID namespaces a frame name with the robot name, omitting the separator when the robot
// name is empty.
func FrameID(robotName, frameName string) string {
	if robotName == "" {
		return frameName
	}
	return robotName + "/" + frameName
}
