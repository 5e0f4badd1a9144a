package common

import "math"

// RotateVector rotates (x, y) by rad radians, clockwise on screen.
func RotateVector(rad, x, y float64) (float64, float64) {
	sin, cos := math.Sincos(rad)
	return x*cos - y*sin, x*sin + y*cos
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
