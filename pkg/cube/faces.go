package cube

// Face is one fixed cube orientation, in degrees.
type Face struct {
	Name   string
	Letter string
	Yaw    float64
	Pitch  float64
	Roll   float64
	FOV    float64
}

// FaceFOV is the field of view of every face view.
const FaceFOV = 90.0

// Faces lists the six orientations in output order. Index i is written by the
// reprojection process as face file number i.
var Faces = [6]Face{
	{Name: "front", Letter: "f", Yaw: 0, Pitch: 0, FOV: FaceFOV},
	{Name: "back", Letter: "b", Yaw: 180, Pitch: 0, FOV: FaceFOV},
	{Name: "up", Letter: "u", Yaw: 0, Pitch: -90, FOV: FaceFOV},
	{Name: "down", Letter: "d", Yaw: 0, Pitch: 90, FOV: FaceFOV},
	{Name: "left", Letter: "l", Yaw: 90, Pitch: 0, FOV: FaceFOV},
	{Name: "right", Letter: "r", Yaw: -90, Pitch: 0, FOV: FaceFOV},
}

// FaceCount is the number of cube faces.
const FaceCount = len(Faces)
