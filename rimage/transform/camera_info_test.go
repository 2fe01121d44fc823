package transform

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/spotbridge/ros"
	"go.viam.com/spotbridge/spotapi"
)

func TestNewCameraInfo(t *testing.T) {
	header := ros.Header{FrameID: "spot1/hand_color_image_sensor", Stamp: ros.Time{Sec: 5}}
	for _, intrinsics := range []spotapi.PinholeIntrinsics{
		{
			FocalLength:    spotapi.Vec2{X: 552.1, Y: 551.7},
			PrincipalPoint: spotapi.Vec2{X: 320.4, Y: 239.2},
			Skew:           spotapi.Vec2{X: 0.3, Y: 0.2},
		},
		{},
	} {
		params := NewPinholeCameraIntrinsicsFromSpot(intrinsics, 480, 640)
		info := NewCameraInfo(params, header)

		test.That(t, info.Header, test.ShouldResemble, header)
		test.That(t, info.Height, test.ShouldEqual, uint32(480))
		test.That(t, info.Width, test.ShouldEqual, uint32(640))
		test.That(t, info.DistortionModel, test.ShouldEqual, ros.DistortionModelPlumbBob)
		test.That(t, info.D, test.ShouldResemble, []float64{0, 0, 0, 0, 0})
		test.That(t, info.R, test.ShouldResemble, [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})

		fx, fy := intrinsics.FocalLength.X, intrinsics.FocalLength.Y
		cx, cy := intrinsics.PrincipalPoint.X, intrinsics.PrincipalPoint.Y
		test.That(t, info.K, test.ShouldResemble, [9]float64{fx, 0, cx, 0, fy, cy, 0, 0, 1})
		test.That(t, info.P, test.ShouldResemble, [12]float64{fx, 0, cx, 0, 0, fy, cy, 0, 0, 0, 1, 0})
	}
}

func TestCheckValid(t *testing.T) {
	var missing *PinholeCameraIntrinsics
	test.That(t, errors.Is(missing.CheckValid(), ErrNoIntrinsics), test.ShouldBeTrue)
	test.That(t, missing.GetCameraMatrix(), test.ShouldBeNil)

	params := NewPinholeCameraIntrinsicsFromSpot(spotapi.PinholeIntrinsics{
		FocalLength:    spotapi.Vec2{X: 300, Y: 300},
		PrincipalPoint: spotapi.Vec2{X: 320, Y: 240},
	}, 480, 640)
	test.That(t, params.CheckValid(), test.ShouldBeNil)

	params.Fy = 0
	test.That(t, errors.Is(params.CheckValid(), ErrNoIntrinsics), test.ShouldBeTrue)
}
