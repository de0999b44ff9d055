package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"verimix/group"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_Config_Load_JSON(t *testing.T) {
	defaults := group.DefaultParams()
	path := writeConfig(t, "params.json", `{
		"prime": "`+defaults.P.String()+`",
		"g": "2",
		"h": "3"
	}`)

	params, err := Load(path)
	require.NoError(t, err)
	require.Zero(t, params.P.Cmp(defaults.P))
	require.Equal(t, int64(2), params.G.Int64())
	require.Equal(t, int64(3), params.H.Int64())
}

func Test_Config_Load_YAML(t *testing.T) {
	path := writeConfig(t, "params.yaml", "prime: \"23\"\ng: \"2\"\nh: \"3\"\n")

	params, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(23), params.P.Int64())
}

func Test_Config_Load_Missing_File(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func Test_Config_Load_Missing_Key(t *testing.T) {
	path := writeConfig(t, "params.json", `{"prime": "23", "g": "2"}`)

	_, err := Load(path)
	require.Error(t, err)
}

func Test_Config_Load_Rejects_Bad_Params(t *testing.T) {
	// Equal generators fail structural validation.
	path := writeConfig(t, "params.json", `{"prime": "23", "g": "2", "h": "2"}`)

	_, err := Load(path)
	require.Error(t, err)
}

func Test_Config_Load_Rejects_Garbage(t *testing.T) {
	path := writeConfig(t, "params.json", `{"prime": "not-a-number", "g": "2", "h": "3"}`)

	_, err := Load(path)
	require.Error(t, err)
}
