package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	got := UnitX.Cross(UnitY)
	if got != UnitZ {
		t.Errorf("Vec3.Cross() = %v, want %v", got, UnitZ)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 0}.Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector should normalize to zero, got %v", z)
	}
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{1, 1, 0}.Normalize(), 1.2)
	v := Vec3{0.3, -2, 5}

	byQuat := q.Rotate(v)
	byMat := q.ToMat4().TransformPoint(v)
	if !byQuat.ApproxEqual(byMat, 1e-4) {
		t.Errorf("Rotate = %v, ToMat4 = %v", byQuat, byMat)
	}
}

func TestQuatMulOrder(t *testing.T) {
	yaw := QuatFromAxisAngle(UnitY, math.Pi/2)
	roll := QuatFromAxisAngle(UnitX, math.Pi/2)

	// yaw*roll rotates by roll first, then yaw, in world terms.
	got := yaw.Mul(roll).Rotate(UnitY)
	want := yaw.Rotate(roll.Rotate(UnitY))
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("Mul order: got %v, want %v", got, want)
	}
}

func TestComposeTRS(t *testing.T) {
	m := Compose(Vec3{10, 0, 0}, QuatFromAxisAngle(UnitY, math.Pi/2), Vec3{2, 2, 2})
	got := m.TransformPoint(UnitX)

	// Scale to (2,0,0), rotate 90 deg about Y to (0,0,-2), translate.
	want := Vec3{10, 0, -2}
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("Compose: got %v, want %v", got, want)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	if got := m.Mul(Identity()); got != m {
		t.Errorf("M * I should equal M, got %v", got)
	}
}

func TestLookAtOrigin(t *testing.T) {
	view := LookAt(Vec3{0, 4, 4}, Vec3{}, UnitY)
	got := view.TransformPoint(Vec3{})

	// The target sits straight ahead on -Z at the eye distance.
	want := Vec3{0, 0, -float32(math.Sqrt(32))}
	if !got.ApproxEqual(want, 1e-4) {
		t.Errorf("LookAt target in view space = %v, want %v", got, want)
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	m := Scale(Vec3{2, 1, 1})
	n := m.NormalMatrix()

	want := Mat3{0.5, 0, 0, 0, 1, 0, 0, 0, 1}
	for i := range n {
		if math.Abs(float64(n[i]-want[i])) > 1e-6 {
			t.Fatalf("NormalMatrix = %v, want %v", n, want)
		}
	}
}

func TestNormalMatrixRotation(t *testing.T) {
	m := QuatFromAxisAngle(UnitZ, 0.7).ToMat4()
	n := m.NormalMatrix()

	// For a pure rotation the inverse transpose is the rotation itself.
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			if math.Abs(float64(n[col*3+row]-m[col*4+row])) > 1e-5 {
				t.Fatalf("element (%d,%d): got %v, want %v", row, col, n[col*3+row], m[col*4+row])
			}
		}
	}
}

func TestInverse(t *testing.T) {
	m := Compose(Vec3{1, -2, 3}, QuatFromAxisAngle(UnitZ, 0.7), Vec3{2, 1, 0.5})
	p := Vec3{0.5, 4, -1}

	back := m.Inverse().TransformPoint(m.TransformPoint(p))
	if !back.ApproxEqual(p, 1e-4) {
		t.Errorf("Inverse round trip = %v, want %v", back, p)
	}

	var singular Mat4
	if singular.Inverse() != Identity() {
		t.Error("singular matrix should invert to identity")
	}
}
