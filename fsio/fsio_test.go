package fsio

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestResolveDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.Nil(t, fs.MkdirAll("data", 0o755))
	require.Nil(t, afero.WriteFile(fs, "data/part1.parquet", []byte("b"), 0o644))
	require.Nil(t, afero.WriteFile(fs, "data/part0.parquet", []byte("a"), 0o644))
	require.Nil(t, afero.WriteFile(fs, "data/_metadata", []byte("m"), 0o644))
	require.Nil(t, afero.WriteFile(fs, "data/notes.txt", []byte("x"), 0o644))

	_, token, paths, err := Resolve("data", fs)
	require.Nil(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, []string{"data/part0.parquet", "data/part1.parquet"}, paths)
	require.True(t, HasMetadataFile(fs, "data"))
}

func TestResolveSingleFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.Nil(t, afero.WriteFile(fs, "one.parquet", []byte("a"), 0o644))
	_, _, paths, err := Resolve("one.parquet", fs)
	require.Nil(t, err)
	require.Equal(t, []string{"one.parquet"}, paths)
}

func TestResolveGlob(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.Nil(t, afero.WriteFile(fs, "d/a.parquet", []byte("a"), 0o644))
	require.Nil(t, afero.WriteFile(fs, "d/b.parquet", []byte("b"), 0o644))
	_, _, paths, err := Resolve("d/*.parquet", fs)
	require.Nil(t, err)
	require.Equal(t, []string{"d/a.parquet", "d/b.parquet"}, paths)
}

func TestResolveMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, _, _, err := Resolve("nowhere", fs)
	require.NotNil(t, err)
}
