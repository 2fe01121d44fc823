package transform

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/spotbridge/ros"
)

// NewCameraInfo builds the calibration message for an image taken with the given intrinsics.
// Images are rectified before they leave the robot, so the distortion coefficients are zero and
// the rectification matrix is the identity.
func NewCameraInfo(params *PinholeCameraIntrinsics, header ros.Header) ros.CameraInfo {
	info := ros.CameraInfo{
		Header:          header,
		Height:          uint32(params.Height),
		Width:           uint32(params.Width),
		DistortionModel: ros.DistortionModelPlumbBob,
		D:               []float64{0, 0, 0, 0, 0},
	}
	flatten(info.K[:], params.GetCameraMatrix())
	flatten(info.R[:], identity3())
	flatten(info.P[:], params.GetProjectionMatrix())
	return info
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// flatten copies m into dst in row-major order.
func flatten(dst []float64, m *mat.Dense) {
	rows, cols := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dst[r*cols+c] = m.At(r, c)
		}
	}
}
