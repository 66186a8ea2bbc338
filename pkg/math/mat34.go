package math

// Mat34 is a 3x4 transform matrix in row-major order, the layout used by
// voxel model tailers and animation descriptor frames.
// Layout: [m0 m1 m2  m3 ]
//
//	[m4 m5 m6  m7 ]
//	[m8 m9 m10 m11]
//
// The fourth column holds the translation.
type Mat34 [12]float32

// IdentityMat34 returns an identity transform.
func IdentityMat34() Mat34 {
	return Mat34{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
}

// Translation returns the translation column.
func (m Mat34) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// WithTranslation returns a copy of m with the translation column replaced.
func (m Mat34) WithTranslation(t Vec3) Mat34 {
	m[3], m[7], m[11] = t.X, t.Y, t.Z
	return m
}

// MulVec3 applies the transform to a point (rotation plus translation).
func (m Mat34) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

// Mul composes two transforms: the result applies other first, then m.
func (m Mat34) Mul(other Mat34) Mat34 {
	var out Mat34
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			sum := float32(0)
			for k := 0; k < 3; k++ {
				sum += m[row*4+k] * other[k*4+col]
			}
			if col == 3 {
				sum += m[row*4+3]
			}
			out[row*4+col] = sum
		}
	}
	return out
}
