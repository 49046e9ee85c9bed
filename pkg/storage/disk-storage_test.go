package storage

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestJsonRoundTrip(t *testing.T) {
	ds := NewDiskStorage(t.TempDir())
	in := sample{Name: "a", Items: []string{"x", "y"}}

	require.NoError(t, ds.SaveJson(in, "plain.json"))
	require.NoError(t, ds.SaveGzippedJson(in, "nested/zipped.json.gz"))

	var plain, zipped sample
	require.NoError(t, ds.LoadAuto(&plain, "plain.json"))
	require.NoError(t, ds.LoadAuto(&zipped, "nested/zipped.json.gz"))
	assert.Equal(t, in, plain)
	assert.Equal(t, in, zipped)
}

func TestReadMissingFile(t *testing.T) {
	ds := NewDiskStorage(t.TempDir())
	_, err := ds.ReadFile("missing.json")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteFileReplaces(t *testing.T) {
	ds := NewDiskStorage(t.TempDir())
	require.NoError(t, ds.WriteFile("f.json", []byte("1")))
	require.NoError(t, ds.WriteFile("f.json", []byte("2")))
	b, err := ds.ReadFile("f.json")
	require.NoError(t, err)
	assert.Equal(t, "2", string(b))

	entries, err := os.ReadDir(ds.RootFolder)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}
