package referenceframe

import (
	"google.golang.org/protobuf/types/known/durationpb"

	"go.viam.com/spotbridge/ros"
	"go.viam.com/spotbridge/spatialmath"
	"go.viam.com/spotbridge/spotapi"
	"go.viam.com/spotbridge/timesync"
)

// ExtractTransforms returns the edges of the capture's frame tree snapshot allowed by policy, with
// both frame ids namespaced by robotName. Every transform is stamped with the capture's
// acquisition time in the local clock domain. Order follows map iteration and is not stable.
func ExtractTransforms(
	capture *spotapi.ImageCapture,
	robotName string,
	skew *durationpb.Duration,
	policy Policy,
) []ros.TransformStamped {
	stamp := timesync.ApplyClockSkew(capture.AcquisitionTime, skew)

	edges := capture.TransformsSnapshot.ChildToParentEdgeMap
	out := make([]ros.TransformStamped, 0, len(edges))
	for childFrame, edge := range edges {
		if policy.Excludes(childFrame) {
			continue
		}
		parentFrame := policy.ParentFrame(edge.ParentFrameName)

		out = append(out, ros.TransformStamped{
			Header: ros.Header{
				Stamp:   stamp,
				FrameID: ros.FrameID(robotName, parentFrame),
			},
			ChildFrameID: ros.FrameID(robotName, childFrame),
			Transform:    spatialmath.NewPoseFromSpot(edge.ParentTformChild).Transform(),
		})
	}
	return out
}
