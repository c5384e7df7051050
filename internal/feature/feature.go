// Package feature defines the per-frame keypoint feature vector exchanged
// between the landmark extractor and the sequence classifier.
package feature

// Holistic keypoint layout. One frame is flattened into a single vector:
// pose landmarks carry x, y, z and visibility; the selected face points and
// both hands carry x, y, z.
const (
	PoseLandmarks = 33
	PoseValues    = 4
	FacePoints    = 6
	HandLandmarks = 21
	HandValues    = 3
	FaceValues    = 3

	PoseLen      = PoseLandmarks * PoseValues
	FaceLen      = FacePoints * FaceValues
	HandLen      = HandLandmarks * HandValues
	PoseOffset   = 0
	FaceOffset   = PoseOffset + PoseLen
	LeftOffset   = FaceOffset + FaceLen
	RightOffset  = LeftOffset + HandLen

	// Dim is the total feature vector length per frame.
	Dim = PoseLen + FaceLen + 2*HandLen
)

// FaceIndices are the face-mesh landmark indices kept from the full mesh:
// nose bridge, upper/lower lip centers, under lip, and the mouth corners.
var FaceIndices = [FacePoints]int{0, 13, 14, 17, 61, 291}

// Vector is one frame's flattened keypoint features. It is immutable by
// convention after assembly; the sliding window owns stored vectors.
type Vector []float32

// Assemble builds a Vector from the four landmark groups. Any group may be
// nil or short when the extractor did not detect it in the frame; missing
// values are zero-filled, extra values are dropped. This mirrors the
// degenerate-input behavior of the holistic extractor and is not an error.
func Assemble(pose, face, left, right []float32) Vector {
	v := make(Vector, Dim)
	copyGroup(v[PoseOffset:PoseOffset+PoseLen], pose)
	copyGroup(v[FaceOffset:FaceOffset+FaceLen], face)
	copyGroup(v[LeftOffset:LeftOffset+HandLen], left)
	copyGroup(v[RightOffset:RightOffset+HandLen], right)
	return v
}

// Zero returns an all-zero vector, the shape produced for a frame in which
// no landmark group was detected.
func Zero() Vector {
	return make(Vector, Dim)
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

func copyGroup(dst []float32, src []float32) {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
	}
	copy(dst, src[:n])
}
