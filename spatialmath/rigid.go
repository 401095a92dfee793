package spatialmath

import "github.com/golang/geo/r3"

// Sign selects whether Translate adds or subtracts the translation.
type Sign int

const (
	// Add translates by +t.
	Add Sign = 1
	// Subtract translates by -t.
	Subtract Sign = -1
)

// Apply rotates p by rm.
func Apply(rm *RotationMatrix, p r3.Vector) r3.Vector {
	return rm.Mul(p)
}

// Translate returns p + t when sign is Add and p - t when sign is Subtract.
func Translate(p, t r3.Vector, sign Sign) r3.Vector {
	if sign == Subtract {
		return p.Sub(t)
	}
	return p.Add(t)
}

// ApplyAll rotates every point by rm into a new slice.
func ApplyAll(rm *RotationMatrix, pts []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(pts))
	for i, p := range pts {
		out[i] = Apply(rm, p)
	}
	return out
}

// TranslateAll translates every point by t into a new slice.
func TranslateAll(pts []r3.Vector, t r3.Vector, sign Sign) []r3.Vector {
	out := make([]r3.Vector, len(pts))
	for i, p := range pts {
		out[i] = Translate(p, t, sign)
	}
	return out
}
