package referenceframe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.viam.com/spotbridge/ros"
	"go.viam.com/spotbridge/spotapi"
)

var identity = spotapi.SE3Pose{Rotation: spotapi.Quaternion{W: 1}}

func handCapture() *spotapi.ImageCapture {
	return &spotapi.ImageCapture{
		AcquisitionTime: &timestamppb.Timestamp{Seconds: 50, Nanos: 10},
		TransformsSnapshot: spotapi.FrameTreeSnapshot{ChildToParentEdgeMap: map[string]spotapi.ParentEdge{
			"body":          {ParentFrameName: "odom", ParentTformChild: identity},
			"odom":          {ParentFrameName: "", ParentTformChild: identity},
			"vision":        {ParentFrameName: "odom", ParentTformChild: identity},
			"arm0.link_wr1": {ParentFrameName: "body", ParentTformChild: identity},
			"hand": {ParentFrameName: "arm0.link_wr1", ParentTformChild: spotapi.SE3Pose{
				Position: spotapi.Vec3{X: 0.19, Z: -0.02},
				Rotation: spotapi.Quaternion{W: 1},
			}},
			"hand_color_image_sensor": {ParentFrameName: "hand", ParentTformChild: identity},
		}},
	}
}

func byChild(a, b ros.TransformStamped) bool {
	return a.ChildFrameID < b.ChildFrameID
}

func TestExtractTransforms(t *testing.T) {
	stamp := ros.Time{Sec: 49, Nanosec: 10}
	got := ExtractTransforms(handCapture(), "spot1", &durationpb.Duration{Seconds: -1}, DefaultPolicy())

	expected := []ros.TransformStamped{
		{
			Header:       ros.Header{Stamp: stamp, FrameID: "spot1/link_wr1"},
			ChildFrameID: "spot1/hand",
			Transform: ros.Transform{
				Translation: ros.Vector3{X: 0.19, Z: -0.02},
				Rotation:    ros.Quaternion{W: 1},
			},
		},
		{
			Header:       ros.Header{Stamp: stamp, FrameID: "spot1/hand"},
			ChildFrameID: "spot1/hand_color_image_sensor",
			Transform:    ros.Transform{Rotation: ros.Quaternion{W: 1}},
		},
	}
	test.That(t, cmp.Diff(expected, got, cmpopts.SortSlices(byChild)), test.ShouldBeEmpty)
}

func TestExtractTransformsWithoutRobotName(t *testing.T) {
	got := ExtractTransforms(handCapture(), "", nil, DefaultPolicy())
	test.That(t, len(got), test.ShouldEqual, 2)
	for _, tform := range got {
		test.That(t, tform.Header.FrameID, test.ShouldNotStartWith, "/")
		test.That(t, tform.ChildFrameID, test.ShouldNotStartWith, "/")
		test.That(t, tform.Header.FrameID, test.ShouldNotEqual, "arm0.link_wr1")
		test.That(t, tform.Header.Stamp, test.ShouldResemble, ros.Time{Sec: 50, Nanosec: 10})
	}
}

func TestExtractTransformsExcludesBody(t *testing.T) {
	capture := &spotapi.ImageCapture{
		TransformsSnapshot: spotapi.FrameTreeSnapshot{ChildToParentEdgeMap: map[string]spotapi.ParentEdge{
			"body": {ParentFrameName: "odom", ParentTformChild: identity},
		}},
	}
	test.That(t, ExtractTransforms(capture, "spot1", nil, DefaultPolicy()), test.ShouldBeEmpty)
	test.That(t, ExtractTransforms(&spotapi.ImageCapture{}, "spot1", nil, DefaultPolicy()), test.ShouldBeEmpty)
}

func TestInjectedPolicy(t *testing.T) {
	policy := NewPolicy([]string{"hand"}, nil)
	test.That(t, policy.ExcludedFrames(), test.ShouldResemble, []string{"hand"})

	got := ExtractTransforms(handCapture(), "", nil, policy)
	test.That(t, len(got), test.ShouldEqual, 5)
	for _, tform := range got {
		test.That(t, tform.ChildFrameID, test.ShouldNotEqual, "hand")
	}

	// Malformed edges are passed through untouched.
	var odom ros.TransformStamped
	for _, tform := range got {
		if tform.ChildFrameID == "odom" {
			odom = tform
		}
	}
	test.That(t, odom.ChildFrameID, test.ShouldEqual, "odom")
	test.That(t, odom.Header.FrameID, test.ShouldEqual, "")
}

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()
	test.That(t, policy.ExcludedFrames(), test.ShouldResemble, []string{"arm0.link_wr1", "body", "odom", "vision"})
	test.That(t, policy.ParentFrame("arm0.link_wr1"), test.ShouldEqual, "link_wr1")
	test.That(t, policy.ParentFrame("hand"), test.ShouldEqual, "hand")
	test.That(t, policy.Excludes("vision"), test.ShouldBeTrue)
	test.That(t, policy.Excludes("hand"), test.ShouldBeFalse)
}
