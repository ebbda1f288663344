package gltf

import "math"

// LocalTransform returns the node's translation, rotation (x, y, z, w) and
// scale. A matrix is decomposed; missing TRS fields take their defaults.
func (n *Node) LocalTransform() (t [3]float32, r [4]float32, s [3]float32) {
	if n.Matrix != nil {
		return decompose(n.Matrix)
	}
	r = [4]float32{0, 0, 0, 1}
	s = [3]float32{1, 1, 1}
	if n.Translation != nil {
		t = *n.Translation
	}
	if n.Rotation != nil {
		r = *n.Rotation
	}
	if n.Scale != nil {
		s = *n.Scale
	}
	return
}

// decompose splits a column-major affine matrix into TRS. Shear is lost.
func decompose(m *[16]float32) (t [3]float32, r [4]float32, s [3]float32) {
	t = [3]float32{m[12], m[13], m[14]}

	col := func(c int) [3]float64 {
		return [3]float64{float64(m[c*4]), float64(m[c*4+1]), float64(m[c*4+2])}
	}
	length := func(v [3]float64) float64 {
		return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	c0, c1, c2 := col(0), col(1), col(2)
	sx, sy, sz := length(c0), length(c1), length(c2)

	det := c0[0]*(c1[1]*c2[2]-c2[1]*c1[2]) -
		c1[0]*(c0[1]*c2[2]-c2[1]*c0[2]) +
		c2[0]*(c0[1]*c1[2]-c1[1]*c0[2])
	if det < 0 {
		sx = -sx
	}
	s = [3]float32{float32(sx), float32(sy), float32(sz)}
	if sx == 0 || sy == 0 || sz == 0 {
		r = [4]float32{0, 0, 0, 1}
		return
	}

	// Rotation matrix entries, row-major naming: rRC.
	r00, r10, r20 := c0[0]/sx, c0[1]/sx, c0[2]/sx
	r01, r11, r21 := c1[0]/sy, c1[1]/sy, c1[2]/sy
	r02, r12, r22 := c2[0]/sz, c2[1]/sz, c2[2]/sz

	var x, y, z, w float64
	switch trace := r00 + r11 + r22; {
	case trace > 0:
		k := 0.5 / math.Sqrt(trace+1)
		w = 0.25 / k
		x = (r21 - r12) * k
		y = (r02 - r20) * k
		z = (r10 - r01) * k
	case r00 > r11 && r00 > r22:
		k := 2 * math.Sqrt(1+r00-r11-r22)
		w = (r21 - r12) / k
		x = 0.25 * k
		y = (r01 + r10) / k
		z = (r02 + r20) / k
	case r11 > r22:
		k := 2 * math.Sqrt(1+r11-r00-r22)
		w = (r02 - r20) / k
		x = (r01 + r10) / k
		y = 0.25 * k
		z = (r12 + r21) / k
	default:
		k := 2 * math.Sqrt(1+r22-r00-r11)
		w = (r10 - r01) / k
		x = (r02 + r20) / k
		y = (r12 + r21) / k
		z = 0.25 * k
	}
	r = [4]float32{float32(x), float32(y), float32(z), float32(w)}
	return
}
