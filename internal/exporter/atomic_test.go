package exporter

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minutes.csv")

	err := writeAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "first")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	// replace existing content
	require.NoError(t, writeAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "second")
		return err
	}))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assertOnlyFiles(t, dir, "minutes.csv")
}

func TestWriteAtomic_FailureKeepsPreviousContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minutes.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	boom := errors.New("boom")
	err := writeAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
	assertOnlyFiles(t, dir, "minutes.csv")
}

func TestWriteAtomic_MissingDirectory(t *testing.T) {
	err := writeAtomic(filepath.Join(t.TempDir(), "absent", "x.csv"), func(io.Writer) error { return nil })
	assert.Error(t, err)
}

// assertOnlyFiles checks that dir holds exactly the named entries
func assertOnlyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Name()
	}
	assert.ElementsMatch(t, names, got)
}
