package timesync

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/durationpb"

	"go.viam.com/spotbridge/logging"
)

// ErrNotEstablished is returned while the keeper has no usable skew estimate.
var ErrNotEstablished = errors.New("clock skew has not been established")

// RoundTrip is one time sync exchange. ClientTx and ClientRx are read from the local clock,
// ServerRx and ServerTx from the robot clock.
type RoundTrip struct {
	ClientTx time.Time
	ServerRx time.Time
	ServerTx time.Time
	ClientRx time.Time
}

// Delay is the time the exchange spent on the network.
func (rt RoundTrip) Delay() time.Duration {
	return rt.ClientRx.Sub(rt.ClientTx) - rt.ServerTx.Sub(rt.ServerRx)
}

// Skew is the amount to add to a robot timestamp to express it on the local clock.
func (rt RoundTrip) Skew() time.Duration {
	robotAhead := (rt.ServerRx.Sub(rt.ClientTx) + rt.ServerTx.Sub(rt.ClientRx)) / 2
	return -robotAhead
}

// KeeperConfig tunes a Keeper.
type KeeperConfig struct {
	// Window is how many recent round trips are considered when picking the estimate.
	Window int
	// MaxAge is how long an estimate stays valid without a new round trip. Zero never expires.
	MaxAge time.Duration
}

// Keeper tracks round trips and serves the skew of the lowest delay one in its window.
type Keeper struct {
	mu      sync.Mutex
	clk     clock.Clock
	cfg     KeeperConfig
	samples []RoundTrip
	updated time.Time
	logger  logging.Logger
}

// NewKeeper returns a keeper that reads the local clock from clk.
func NewKeeper(clk clock.Clock, cfg KeeperConfig, logger logging.Logger) *Keeper {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	return &Keeper{clk: clk, cfg: cfg, logger: logger}
}

// Update records a round trip. Exchanges with a negative delay are rejected.
func (k *Keeper) Update(rt RoundTrip) error {
	if rt.Delay() < 0 {
		return errors.Errorf("round trip has negative delay %v", rt.Delay())
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.samples = append(k.samples, rt)
	if len(k.samples) > k.cfg.Window {
		k.samples = k.samples[len(k.samples)-k.cfg.Window:]
	}
	k.updated = k.clk.Now()
	k.logger.Debugw("time sync round trip", "delay", rt.Delay(), "skew", rt.Skew())
	return nil
}

// GetClockSkew returns the current estimate.
func (k *Keeper) GetClockSkew(ctx context.Context) (*durationpb.Duration, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.samples) == 0 {
		return nil, ErrNotEstablished
	}
	if age := k.clk.Since(k.updated); k.cfg.MaxAge > 0 && age > k.cfg.MaxAge {
		return nil, errors.Wrapf(ErrNotEstablished, "last round trip was %v ago", age)
	}

	best := k.samples[0]
	for _, rt := range k.samples[1:] {
		if rt.Delay() < best.Delay() {
			best = rt
		}
	}
	return durationpb.New(best.Skew()), nil
}
