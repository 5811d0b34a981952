package atomicio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_CreatesDirsAndLeavesNoTemp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.txt")
	require.NoError(t, WriteFile(path, []byte("hello")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, WriteCSV(path,
		[]string{"indicator", "latest"},
		[][]string{{"cpi", "310.3"}, {"fed_funds", "5.25"}},
	))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "indicator,latest\ncpi,310.3\nfed_funds,5.25\n", string(data))
}

func TestWriteJSON_Indented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, map[string]int{"rows": 900}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"rows\": 900")
}
