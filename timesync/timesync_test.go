package timesync

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.viam.com/spotbridge/logging"
	"go.viam.com/spotbridge/ros"
)

func TestApplyClockSkew(t *testing.T) {
	for _, tc := range []struct {
		name     string
		stamp    *timestamppb.Timestamp
		skew     *durationpb.Duration
		expected ros.Time
	}{
		{
			name:     "zero skew is identity",
			stamp:    &timestamppb.Timestamp{Seconds: 1700000000, Nanos: 123456789},
			skew:     &durationpb.Duration{},
			expected: ros.Time{Sec: 1700000000, Nanosec: 123456789},
		},
		{
			name:     "positive skew carries nanoseconds",
			stamp:    &timestamppb.Timestamp{Seconds: 10, Nanos: 900000000},
			skew:     &durationpb.Duration{Seconds: 1, Nanos: 200000000},
			expected: ros.Time{Sec: 12, Nanosec: 100000000},
		},
		{
			name:     "negative skew borrows a second",
			stamp:    &timestamppb.Timestamp{Seconds: 10, Nanos: 100000000},
			skew:     &durationpb.Duration{Seconds: -1, Nanos: -200000000},
			expected: ros.Time{Sec: 8, Nanosec: 900000000},
		},
		{
			name:     "negative sub-second skew",
			stamp:    &timestamppb.Timestamp{Seconds: 10},
			skew:     &durationpb.Duration{Nanos: -1},
			expected: ros.Time{Sec: 9, Nanosec: 999999999},
		},
		{
			name:     "result before the epoch",
			stamp:    &timestamppb.Timestamp{Seconds: 1, Nanos: 500000000},
			skew:     &durationpb.Duration{Seconds: -2},
			expected: ros.Time{Sec: -1, Nanosec: 500000000},
		},
		{
			name:     "years of uptime",
			stamp:    &timestamppb.Timestamp{Seconds: 253402300799, Nanos: 999999999},
			skew:     durationpb.New(-10 * 365 * 24 * time.Hour),
			expected: ros.Time{Sec: 253402300799 - 10*365*24*3600, Nanosec: 999999999},
		},
		{
			name:     "nil skew",
			stamp:    &timestamppb.Timestamp{Seconds: 3, Nanos: 4},
			expected: ros.Time{Sec: 3, Nanosec: 4},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, ApplyClockSkew(tc.stamp, tc.skew), test.ShouldResemble, tc.expected)
		})
	}
}

func TestApplyClockSkewMatchesTimeArithmetic(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 250, time.UTC)
	for _, skew := range []time.Duration{
		0, time.Nanosecond, -time.Nanosecond, 1500 * time.Millisecond, -1500 * time.Millisecond, -72 * time.Hour,
	} {
		got := ApplyClockSkew(timestamppb.New(base), durationpb.New(skew))
		test.That(t, got.AsTime(), test.ShouldEqual, base.Add(skew))
	}
}

func roundTrip(start time.Time, robotAhead, networkDelay time.Duration) RoundTrip {
	serverRx := start.Add(networkDelay / 2).Add(robotAhead)
	return RoundTrip{
		ClientTx: start,
		ServerRx: serverRx,
		ServerTx: serverRx.Add(time.Millisecond),
		ClientRx: start.Add(networkDelay).Add(time.Millisecond),
	}
}

func TestRoundTrip(t *testing.T) {
	rt := roundTrip(time.Unix(100, 0), 5*time.Second, 2*time.Second)
	test.That(t, rt.Delay(), test.ShouldEqual, 2*time.Second)
	test.That(t, rt.Skew(), test.ShouldEqual, -5*time.Second)
}

func TestKeeper(t *testing.T) {
	logger := logging.NewTestLogger(t)
	clk := clock.NewMock()
	keeper := NewKeeper(clk, KeeperConfig{Window: 2, MaxAge: time.Minute}, logger)

	_, err := keeper.GetClockSkew(context.Background())
	test.That(t, errors.Is(err, ErrNotEstablished), test.ShouldBeTrue)

	test.That(t, keeper.Update(roundTrip(clk.Now(), 3*time.Second, 40*time.Millisecond)), test.ShouldBeNil)
	test.That(t, keeper.Update(roundTrip(clk.Now(), 2*time.Second, 10*time.Millisecond)), test.ShouldBeNil)

	skew, err := keeper.GetClockSkew(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, skew.AsDuration(), test.ShouldEqual, -2*time.Second)

	// The low delay sample falls out of the window.
	test.That(t, keeper.Update(roundTrip(clk.Now(), 4*time.Second, 30*time.Millisecond)), test.ShouldBeNil)
	test.That(t, keeper.Update(roundTrip(clk.Now(), 1*time.Second, 20*time.Millisecond)), test.ShouldBeNil)
	skew, err = keeper.GetClockSkew(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, skew.AsDuration(), test.ShouldEqual, -time.Second)

	clk.Add(2 * time.Minute)
	_, err = keeper.GetClockSkew(context.Background())
	test.That(t, errors.Is(err, ErrNotEstablished), test.ShouldBeTrue)

	bad := RoundTrip{ClientTx: clk.Now(), ClientRx: clk.Now(), ServerRx: clk.Now(), ServerTx: clk.Now().Add(time.Second)}
	test.That(t, keeper.Update(bad), test.ShouldNotBeNil)
}
