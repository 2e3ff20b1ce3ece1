package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestOpen(t *testing.T) {
	path := writeFile(t, "1\t1\t0:a\n0\t1\t0:b\n")
	m, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, path, m.Path())
	assert.Equal(t, 16, m.Len())
	assert.Equal(t, "1\t1\t0:a\n0\t1\t0:b\n", string(m.Bytes()))
	require.NoError(t, m.Advise(AccessRandom))
	require.NoError(t, m.Advise(AccessSequential))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
}

func TestOpen_Empty(t *testing.T) {
	m, err := Open(writeFile(t, ""))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Advise(AccessWillNeed))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
