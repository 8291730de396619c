package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "restart.bst")
}

// build creates a store at a fresh path, runs fn on the writer and closes it.
func build(t *testing.T, fn func(w *Writer), opts ...Option) string {
	t.Helper()

	path := tempPath(t)
	w, err := Create(path, opts...)
	require.NoError(t, err)

	fn(w)
	require.NoError(t, w.Close())

	return path
}

func open(t *testing.T, path string, opts ...Option) *Reader {
	t.Helper()

	r, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return r
}

// writeCell writes the struct {size:0, name:"cellA", values:[1.5, 0.0, -3]}.
func writeCell(t *testing.T, w *Writer) {
	t.Helper()

	require.NoError(t, w.BeginStruct("cell"))
	require.NoError(t, w.WriteInt32("size", 0))
	require.NoError(t, w.WriteString("name", "cellA"))
	require.NoError(t, w.WriteFloat64Array("values", []float64{1.5, 0.0, -3}))
	require.NoError(t, w.EndStruct())
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}
