// Package referenceframe extracts the static transforms carried by image captures and applies the
// frame naming policy they are published under.
package referenceframe

import (
	"sort"

	"github.com/samber/lo"
)

// DefaultExcludedFrames are child frames whose edges are never taken from a capture.
//
// body, odom and vision move with the robot and are published from robot state instead. Hand
// camera snapshots also carry an arm0.link_wr1 -> body edge, which depends on the arm's position.
var DefaultExcludedFrames = []string{"body", "odom", "vision", "arm0.link_wr1"}

// DefaultParentRenames maps parent frame names found in snapshots to the names used everywhere
// else. Hand camera snapshots name the wrist arm0.link_wr1 while robot state calls it link_wr1;
// without the rename the hand camera frames never follow the arm.
var DefaultParentRenames = map[string]string{"arm0.link_wr1": "link_wr1"}

// Policy decides which snapshot edges are kept and what their parents are called.
type Policy struct {
	excluded map[string]struct{}
	renames  map[string]string
}

// NewPolicy builds a policy. The inputs are copied.
func NewPolicy(excludedFrames []string, parentRenames map[string]string) Policy {
	return Policy{
		excluded: lo.Keyify(excludedFrames),
		renames:  lo.Assign(parentRenames),
	}
}

// DefaultPolicy returns the policy built from DefaultExcludedFrames and DefaultParentRenames.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultExcludedFrames, DefaultParentRenames)
}

// Excludes reports whether edges with this child frame are dropped.
func (p Policy) Excludes(childFrame string) bool {
	_, ok := p.excluded[childFrame]
	return ok
}

// ParentFrame returns the name a parent frame is published under.
func (p Policy) ParentFrame(parentFrame string) string {
	if renamed, ok := p.renames[parentFrame]; ok {
		return renamed
	}
	return parentFrame
}

// ExcludedFrames lists the excluded child frames in sorted order.
func (p Policy) ExcludedFrames() []string {
	frames := lo.Keys(p.excluded)
	sort.Strings(frames)
	return frames
}
