package prefabs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveMergesPrefabChain(t *testing.T) {
	useDisk(t)
	spec, err := EntityBuildSpec{
		Name:   "guard",
		Prefab: "patroller",
		Components: map[string]any{
			"transform": map[string]any{"x": 10},
		},
	}.Resolve()
	require.NoError(t, err)
	require.Equal(t, "guard", spec.Name)
	require.Empty(t, spec.Prefab)

	rb, err := DecodeComponentSpec[RigidBodyComponentSpec](spec.Components["rigid_body"])
	require.NoError(t, err)
	require.Equal(t, "dynamic", rb.Type)
	require.Equal(t, []string{"world"}, rb.LayersToCollide)
	require.Nil(t, rb.Gravity)

	col, err := DecodeComponentSpec[ColliderComponentSpec](spec.Components["collider"])
	require.NoError(t, err)
	require.True(t, col.Physics)
	require.Equal(t, "body", col.Layer)
	require.Len(t, col.Shapes, 1)
	require.Equal(t, 28.0, col.Shapes[0].Height)

	tr, err := DecodeComponentSpec[TransformComponentSpec](spec.Components["transform"])
	require.NoError(t, err)
	require.Equal(t, 10.0, tr.X)

	sc, err := DecodeComponentSpec[ScriptComponentSpec](spec.Components["script"])
	require.NoError(t, err)
	require.Equal(t, "patrol", sc.Path)
	require.Equal(t, 60, sc.Vars["speed"])
}

func TestResolveKeepsPrefabName(t *testing.T) {
	useDisk(t)
	spec, err := EntityBuildSpec{Prefab: "ball"}.Resolve()
	require.NoError(t, err)
	require.Equal(t, "ball", spec.Name)
}

func TestResolveRejectsCycles(t *testing.T) {
	dir := useDisk(t)
	writeFile(t, filepath.Join(dir, "a.yaml"), "prefab: b\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "prefab: a\n")

	_, err := EntityBuildSpec{Prefab: "a"}.Resolve()
	require.ErrorIs(t, err, ErrInvalidSpec)

	_, err = EntityBuildSpec{Prefab: "nope"}.Resolve()
	require.Error(t, err)
}

func TestDecodeComponentSpec(t *testing.T) {
	got, err := DecodeComponentSpec[RigidBodyComponentSpec](nil)
	require.NoError(t, err)
	require.Equal(t, RigidBodyComponentSpec{}, got)

	got, err = DecodeComponentSpec[RigidBodyComponentSpec](map[string]any{"gravity": 0.0, "velocity_y": -3})
	require.NoError(t, err)
	require.NotNil(t, got.Gravity)
	require.Zero(t, *got.Gravity)
	require.Equal(t, -3.0, got.VelocityY)

	_, err = DecodeComponentSpec[RigidBodyComponentSpec](map[string]any{"layers_to_collide": 5})
	require.Error(t, err)
}
