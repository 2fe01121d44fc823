// Package transform holds the pinhole camera model and builds camera calibration messages from it.
package transform

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/spotbridge/spotapi"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intrinsics are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective projection of a 3D scene to the 2D plane.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// NewPinholeCameraIntrinsicsFromSpot reads the intrinsics of a capture's source, sized to the
// captured image.
func NewPinholeCameraIntrinsicsFromSpot(intrinsics spotapi.PinholeIntrinsics, rows, cols int32) *PinholeCameraIntrinsics {
	return &PinholeCameraIntrinsics{
		Width:  int(cols),
		Height: int(rows),
		Fx:     intrinsics.FocalLength.X,
		Fy:     intrinsics.FocalLength.Y,
		Ppx:    intrinsics.PrincipalPoint.X,
		Ppy:    intrinsics.PrincipalPoint.Y,
	}
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if params.Width == 0 || params.Height == 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal Y point Ppy = %#v", params.Ppy))
	}
	return nil
}

// GetCameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) GetCameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// GetProjectionMatrix returns the 3x4 projection matrix of a monocular camera: the camera matrix
// with a zero fourth column, since there is no stereo baseline.
func (params *PinholeCameraIntrinsics) GetProjectionMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	projection := mat.NewDense(3, 4, nil)
	projection.Slice(0, 3, 0, 3).(*mat.Dense).Copy(params.GetCameraMatrix())
	return projection
}
