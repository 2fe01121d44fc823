package spotapi

// Vec3 is a 3D vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a rotation expressed as a quaternion. It is not required to be normalized.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// SE3Pose is a rigid transform.
type SE3Pose struct {
	Position Vec3       `json:"position"`
	Rotation Quaternion `json:"rotation"`
}

// ParentEdge is the edge from a child frame to its parent in a frame tree snapshot.
type ParentEdge struct {
	ParentFrameName  string  `json:"parent_frame_name"`
	ParentTformChild SE3Pose `json:"parent_tform_child"`
}

// FrameTreeSnapshot is the kinematic frame tree at the time of a capture, keyed by child frame name.
type FrameTreeSnapshot struct {
	ChildToParentEdgeMap map[string]ParentEdge `json:"child_to_parent_edge_map"`
}
