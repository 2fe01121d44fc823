// Package ros holds the middleware message model the bridge produces: images, camera info and
// stamped transforms, laid out the way the ROS 2 sensor_msgs/geometry_msgs definitions are.
package ros

import (
	"fmt"
	"time"
)

// Time is a point in the middleware clock domain. Nanosec is always in [0, 1e9); a time before the
// epoch has a negative Sec.
type Time struct {
	Sec     int64  `json:"sec"`
	Nanosec uint32 `json:"nanosec"`
}

// AsTime converts to a time.Time in UTC.
func (t Time) AsTime() time.Time {
	return time.Unix(t.Sec, int64(t.Nanosec)).UTC()
}

func (t Time) String() string {
	return fmt.Sprintf("%d.%09d", t.Sec, t.Nanosec)
}

// Header is the standard metadata for stamped data.
type Header struct {
	Stamp   Time   `json:"stamp"`
	FrameID string `json:"frame_id"`
}

// Image is an uncompressed image.
type Image struct {
	Header      Header `json:"header"`
	Height      uint32 `json:"height"`
	Width       uint32 `json:"width"`
	Encoding    string `json:"encoding"`
	IsBigEndian bool   `json:"is_bigendian"`
	// Step is the full row length in bytes.
	Step uint32 `json:"step"`
	Data []byte `json:"data"`
}

// CameraInfo is the calibration of a monocular pinhole camera. All matrices are row-major.
type CameraInfo struct {
	Header          Header      `json:"header"`
	Height          uint32      `json:"height"`
	Width           uint32      `json:"width"`
	DistortionModel string      `json:"distortion_model"`
	D               []float64   `json:"d"`
	K               [9]float64  `json:"k"`
	R               [9]float64  `json:"r"`
	P               [12]float64 `json:"p"`
}

// Vector3 is a translation.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a rotation.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Transform is a rigid transform.
type Transform struct {
	Translation Vector3    `json:"translation"`
	Rotation    Quaternion `json:"rotation"`
}

// TransformStamped expresses the pose of ChildFrameID in Header.FrameID.
type TransformStamped struct {
	Header       Header    `json:"header"`
	ChildFrameID string    `json:"child_frame_id"`
	Transform    Transform `json:"transform"`
}
