package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/robotview/pkg/math"
)

// robotTree builds: robot{Body{Wheel_FL}, Wheel_FR, Arm{Wheel_RL}}.
func robotTree() *Group {
	root := NewGroup("robot")
	body := NewMesh("Body", &Primitive{})
	body.Add(NewMesh("Wheel_FL", &Primitive{}))
	arm := NewGroup("Arm")
	arm.Add(NewMesh("Wheel_RL", &Primitive{}))
	root.Add(body, NewMesh("Wheel_FR", &Primitive{}), arm)
	return root
}

func TestWalkPreOrder(t *testing.T) {
	var names []string
	Walk(robotTree(), func(n Node) bool {
		names = append(names, n.Name())
		return true
	})
	assert.Equal(t, []string{"robot", "Body", "Wheel_FL", "Wheel_FR", "Arm", "Wheel_RL"}, names)
}

func TestWalkSkipChildren(t *testing.T) {
	var names []string
	Walk(robotTree(), func(n Node) bool {
		names = append(names, n.Name())
		return n.Name() != "Body"
	})
	assert.Equal(t, []string{"robot", "Body", "Wheel_FR", "Arm", "Wheel_RL"}, names)
}

func TestWalkNil(t *testing.T) {
	called := false
	Walk(nil, func(Node) bool { called = true; return true })
	assert.False(t, called)
}

func TestAsMesh(t *testing.T) {
	m, ok := NewMesh("m").AsMesh()
	assert.True(t, ok)
	assert.Equal(t, "m", m.Name())

	_, ok = NewGroup("g").AsMesh()
	assert.False(t, ok)
}

func TestFindAndCount(t *testing.T) {
	root := robotTree()

	require.NotNil(t, Find(root, "Wheel_RL"))
	assert.Nil(t, Find(root, "Wheel_XX"))

	nodes, meshes := Count(root)
	assert.Equal(t, 6, nodes)
	assert.Equal(t, 4, meshes)
}

func TestWalkWorldComposesParents(t *testing.T) {
	root := NewGroup("root")
	root.Transform().Translation = math.Vec3{X: 1}
	child := NewGroup("child")
	child.Transform().Translation = math.Vec3{Y: 2}
	root.Add(child)

	got := map[string]math.Vec3{}
	WalkWorld(root, math.Identity(), func(n Node, world math.Mat4) {
		got[n.Name()] = world.TransformPoint(math.Vec3{})
	})
	assert.Equal(t, math.Vec3{X: 1}, got["root"])
	assert.Equal(t, math.Vec3{X: 1, Y: 2}, got["child"])
}

func TestComputeNormals(t *testing.T) {
	p := &Primitive{
		Positions: []math.Vec3{{}, {X: 1}, {Z: -1}},
		Indices:   []uint32{0, 1, 2},
	}
	p.ComputeNormals()

	require.Len(t, p.Normals, 3)
	for _, n := range p.Normals {
		assert.True(t, n.ApproxEqual(math.UnitY, 1e-6), "normal %v", n)
	}
	assert.Equal(t, 1, p.TriangleCount())
}

func TestComputeNormalsSkipsBadIndices(t *testing.T) {
	p := &Primitive{
		Positions: []math.Vec3{{}, {X: 1}, {Z: -1}},
		Indices:   []uint32{0, 1, 7},
	}
	assert.NotPanics(t, p.ComputeNormals)
	assert.Equal(t, math.Vec3{}, p.Normals[0])
}

func TestMeshBounds(t *testing.T) {
	m := NewMesh("m",
		&Primitive{Positions: []math.Vec3{{X: -1}, {Y: 2}}},
		&Primitive{},
		&Primitive{Positions: []math.Vec3{{Z: 3}, {X: 0.5, Y: -4}}},
	)
	lo, hi, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: -1, Y: -4}, lo)
	assert.Equal(t, math.Vec3{X: 0.5, Y: 2, Z: 3}, hi)

	_, _, ok = NewMesh("empty").Bounds()
	assert.False(t, ok)
}

func TestSceneDefaults(t *testing.T) {
	s := New(DefaultOptions())

	assert.InDelta(t, 0xee/255.0, s.Background[0], 1e-6)
	assert.Len(t, s.Grid, 44)
	require.NotNil(t, s.Lights)
	assert.Equal(t, 1, s.Lights.PointCount())
	assert.Nil(t, s.Asset())
	assert.Same(t, s.Robot(), s.Root().Children()[0])
}

func TestAttachAssetOnce(t *testing.T) {
	s := New(DefaultOptions())
	asset := robotTree()

	require.NoError(t, s.AttachAsset(asset))
	assert.Same(t, asset, s.Asset())
	assert.Len(t, s.Robot().Children(), 1)

	assert.ErrorIs(t, s.AttachAsset(NewGroup("other")), ErrAssetAttached)
	assert.Len(t, s.Robot().Children(), 1)
}

func TestAttachNilAsset(t *testing.T) {
	s := New(DefaultOptions())
	assert.Error(t, s.AttachAsset(nil))
	assert.Nil(t, s.Asset())
}
