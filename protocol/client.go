package protocol

// Messages sent by the client.

// Hello opens a session.
type Hello struct {
	V    int    `json:"v"`              // protocol version
	Name string `json:"name,omitempty"` // optional rider name
}

// PoseInput is one tracked pose snapshot, sent at ClientPoseHz. Vectors are
// [x, y, z] in meters, Y up; forward vectors need not be normalized.
type PoseInput struct {
	Head     [3]float64 `json:"head"`
	Left     [3]float64 `json:"left"`
	Right    [3]float64 `json:"right"`
	HeadFwd  [3]float64 `json:"headFwd"`
	LeftFwd  [3]float64 `json:"leftFwd"`
	RightFwd [3]float64 `json:"rightFwd"`
	Valid    bool       `json:"valid"`
}
