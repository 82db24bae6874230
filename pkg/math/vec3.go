// Package math provides the vector math used for mesh geometry.
package math

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Angle returns the unsigned angle between v and other in degrees, in [0, 180].
// A zero-length operand yields 0.
//
// Computed as atan2(|v x w|, v . w) in float64, which stays accurate for
// nearly parallel and nearly opposite vectors where acos of the normalized
// dot product loses precision.
func (v Vec3) Angle(other Vec3) float64 {
	ax, ay, az := float64(v.X), float64(v.Y), float64(v.Z)
	bx, by, bz := float64(other.X), float64(other.Y), float64(other.Z)

	cx := ay*bz - az*by
	cy := az*bx - ax*bz
	cz := ax*by - ay*bx
	cross := math.Sqrt(cx*cx + cy*cy + cz*cz)
	dot := ax*bx + ay*by + az*bz

	if cross == 0 && dot == 0 {
		return 0
	}
	return math.Atan2(cross, dot) * 180 / math.Pi
}

// IsFinite reports whether every component is a finite number.
func (v Vec3) IsFinite() bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
