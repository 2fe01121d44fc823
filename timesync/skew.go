// Package timesync moves timestamps from the robot clock domain into the local clock domain and
// keeps the estimate of the offset between the two clocks.
package timesync

import (
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.viam.com/spotbridge/ros"
)

const nanosPerSecond = 1_000_000_000

// ApplyClockSkew returns robotTime + skew. Seconds and nanoseconds are summed separately so the
// result is exact for any timestamp protobuf can represent. A nil timestamp is the epoch and a nil
// skew is zero.
func ApplyClockSkew(robotTime *timestamppb.Timestamp, skew *durationpb.Duration) ros.Time {
	sec := robotTime.GetSeconds() + skew.GetSeconds()
	nanos := int64(robotTime.GetNanos()) + int64(skew.GetNanos())

	// Both nanos terms are in (-1e9, 1e9), so one carry in either direction normalizes.
	if nanos >= nanosPerSecond {
		nanos -= nanosPerSecond
		sec++
	} else if nanos < 0 {
		nanos += nanosPerSecond
		sec--
	}
	return ros.Time{Sec: sec, Nanosec: uint32(nanos)}
}
