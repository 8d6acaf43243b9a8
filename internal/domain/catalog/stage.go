package catalog

import "github.com/okian/spotcheck/internal/domain/model"

// percent scales a stage fraction to stage coordinates.
const percent = 100.0

// Rect is the on-screen bounding box of the stage at the moment of a tap.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize converts client pixel coordinates into a stage Point.
// A stage with no area rejects the tap with ErrDegenerateStage.
func Normalize(clientX, clientY float64, r Rect) (model.Point, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return model.Point{}, ErrDegenerateStage
	}
	return model.Point{
		X: (clientX - r.Left) / r.Width * percent,
		Y: (clientY - r.Top) / r.Height * percent,
	}, nil
}
