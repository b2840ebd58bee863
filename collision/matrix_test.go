package collision

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMatrixDecode(t *testing.T) {
	var cfg struct {
		Matrix Matrix `yaml:"matrix"`
	}
	err := yaml.Unmarshal([]byte("matrix:\n  - [player, world]\n  - [enemy, world]\n"), &cfg)
	require.NoError(t, err)
	require.Equal(t, Matrix{{"player", "world"}, {"enemy", "world"}}, cfg.Matrix)
	require.True(t, cfg.Matrix.Allows("world", "enemy"))
	require.False(t, cfg.Matrix.Allows("player", "enemy"))

	err = yaml.Unmarshal([]byte("matrix: []\n"), &cfg)
	require.NoError(t, err)
	require.NotNil(t, cfg.Matrix)
	require.False(t, cfg.Matrix.Allows("player", "world"))
}

func TestMatrixDecodeRejectsBadRows(t *testing.T) {
	var cfg struct {
		Matrix Matrix `yaml:"matrix"`
	}
	err := yaml.Unmarshal([]byte("matrix:\n  - [player, world, enemy]\n"), &cfg)
	require.ErrorContains(t, err, "row 0 has 3 layers")

	err = yaml.Unmarshal([]byte("matrix: nope\n"), &cfg)
	require.Error(t, err)
}

func TestNilMatrixAllowsEverything(t *testing.T) {
	var m Matrix
	require.True(t, m.Allows("a", "b"))
	require.True(t, m.Allows("", ""))
}
