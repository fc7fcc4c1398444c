package registration

// TransformSize is the coefficient count of a 4x4 homogeneous transform
// flattened row-major: m00,m01,m02,m03, m10,...,m33. The 3x3 block encodes
// rotation and uniform scale; column 3 holds the translation.
const TransformSize = 16

// IsValidTransform reports whether coeffs has the exact shape of a flattened
// 4x4 homogeneous transform. Evaluators reject malformed vectors rather than
// attempt to use them.
func IsValidTransform(coeffs []float64) bool {
	return len(coeffs) == TransformSize
}

// ApplyTransform applies the row-major 4x4 transform held in coeffs to the
// point (x, y, z). coeffs must be valid per IsValidTransform.
func ApplyTransform(coeffs []float64, x, y, z float64) (tx, ty, tz float64) {
	tx = coeffs[0]*x + coeffs[1]*y + coeffs[2]*z + coeffs[3]
	ty = coeffs[4]*x + coeffs[5]*y + coeffs[6]*z + coeffs[7]
	tz = coeffs[8]*x + coeffs[9]*y + coeffs[10]*z + coeffs[11]
	return tx, ty, tz
}
