package spatialmath

// Two axis conventions meet in the pipeline. Poses and reconstructed clouds use
// the forward convention: x points along the optical axis, y to the right and
// z down. The pinhole model uses the optical convention: x right, y down and
// z along the optical axis. The two bases below are the fixed permutations
// between them and are each other's inverse.
var (
	// forwardToOptical has 1.0 at (0,1), (1,2) and (2,0).
	forwardToOptical = [9]float64{
		0, 1, 0,
		0, 0, 1,
		1, 0, 0,
	}
	// opticalToForward has 1.0 at (0,2), (1,0) and (2,1).
	opticalToForward = [9]float64{
		0, 0, 1,
		1, 0, 0,
		0, 1, 0,
	}
)

// ForwardToOpticalBasis returns the permutation taking a forward convention
// point to the optical convention: (x, y, z) -> (y, z, x).
func ForwardToOpticalBasis() *RotationMatrix {
	return &RotationMatrix{forwardToOptical}
}

// OpticalToForwardBasis returns the permutation taking an optical convention
// point to the forward convention: (x, y, z) -> (z, x, y).
func OpticalToForwardBasis() *RotationMatrix {
	return &RotationMatrix{opticalToForward}
}
