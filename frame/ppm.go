package frame

import "math"

func pixelsPerMeter(h int, fov float64) float64 {
	return (float64(h) / 2) / math.Tan(fov/2)
}
