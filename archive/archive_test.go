package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bstruct/compress"
	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/format"
	"github.com/arloliu/bstruct/store"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

func writeStore(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "restart.bst")
	w, err := store.Create(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteString("title", "checkpoint"))
	require.NoError(t, w.BeginArray("cells", 200))
	for i := range 200 {
		require.NoError(t, w.BeginStruct(""))
		require.NoError(t, w.WriteInt32("id", int32(i)))
		require.NoError(t, w.WriteFloat64Array("values", []float64{float64(i), 0.5, 0}))
		require.NoError(t, w.EndStruct())
	}
	require.NoError(t, w.EndArray())
	require.NoError(t, w.Close())

	return path
}

func TestPackUnpack(t *testing.T) {
	raw := bytes.Repeat([]byte("BSTRUCT\x01\x00\x00\x00"), 500)

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			require := require.New(t)

			codec, err := compress.GetCodec(ct)
			require.NoError(err)

			var packed bytes.Buffer
			stats, err := Pack(&packed, bytes.NewReader(raw), codec)
			require.NoError(err)
			require.Equal(ct, stats.Codec)
			require.Equal(int64(len(raw)), stats.RawSize)
			require.Equal(int64(packed.Len()-HeaderSize), stats.PackedSize)
			require.Equal(Magic, packed.String()[:4])

			var restored bytes.Buffer
			got, err := Unpack(&restored, bytes.NewReader(packed.Bytes()))
			require.NoError(err)
			require.Equal(stats, got)
			require.Equal(raw, restored.Bytes())
		})
	}
}

func TestPack_Empty(t *testing.T) {
	require := require.New(t)

	var packed bytes.Buffer
	stats, err := Pack(&packed, bytes.NewReader(nil), compress.ZstdCodec{})
	require.NoError(err)
	require.Zero(stats.RawSize)
	require.Zero(stats.Ratio())

	var restored bytes.Buffer
	_, err = Unpack(&restored, &packed)
	require.NoError(err)
	require.Zero(restored.Len())
}

func TestUnpack_Corrupt(t *testing.T) {
	raw := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 64)

	var packed bytes.Buffer
	_, err := Pack(&packed, bytes.NewReader(raw), compress.NoOpCodec{})
	require.NoError(t, err)
	data := packed.Bytes()

	corrupt := func(mutate func(b []byte) []byte) []byte {
		return mutate(append([]byte(nil), data...))
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", data[:10], errs.ErrInvalidPayload},
		{"magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b }), errs.ErrInvalidMagic},
		{"codec", corrupt(func(b []byte) []byte { b[codecPos] = 0x7F; return b }), errs.ErrInvalidPayload},
		{"size", corrupt(func(b []byte) []byte { b[rawSizePos]++; return b }), errs.ErrInvalidPayload},
		{"checksum", corrupt(func(b []byte) []byte { b[checksumPos] ^= 0xFF; return b }), errs.ErrInvalidPayload},
		{"payload", corrupt(func(b []byte) []byte { b[HeaderSize+3] ^= 0xFF; return b }), errs.ErrInvalidPayload},
		{"truncated", data[:len(data)-1], errs.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := Unpack(&out, bytes.NewReader(tt.data))
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, errs.ErrFormat)
			require.Zero(t, out.Len())
		})
	}
}

func TestPackFile_RoundTrip(t *testing.T) {
	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			require := require.New(t)

			dir := t.TempDir()
			src := writeStore(t, dir)
			packedPath := filepath.Join(dir, "restart.bstz")
			restoredPath := filepath.Join(dir, "restored.bst")

			stats, err := PackFile(src, packedPath, ct)
			require.NoError(err)
			if ct != format.CompressionNone {
				require.Less(stats.Ratio(), 1.0)
			}

			got, err := UnpackFile(packedPath, restoredPath)
			require.NoError(err)
			require.Equal(stats, got)

			want, err := os.ReadFile(src)
			require.NoError(err)
			restored, err := os.ReadFile(restoredPath)
			require.NoError(err)
			require.Equal(want, restored)

			r, err := store.Open(restoredPath)
			require.NoError(err)
			defer r.Close()

			title, err := r.ReadString("title")
			require.NoError(err)
			require.Equal("checkpoint", title)
		})
	}
}

func TestPackFile_RejectsUnclosedStore(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "open.bst")
	w, err := store.Create(src)
	require.NoError(err)
	require.NoError(w.WriteInt32("step", 1))
	require.NoError(w.Sync())

	dst := filepath.Join(dir, "open.bstz")
	_, err = PackFile(src, dst, format.CompressionZstd)
	require.ErrorIs(err, errs.ErrNoNameTable)
	require.NoFileExists(dst)

	require.NoError(w.Close())
}

func TestUnpackFile_LeavesNoPartialOutput(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.bstz")
	require.NoError(os.WriteFile(bad, []byte("BSTZ\x02garbage-after-header-bytes"), 0o600))

	dst := filepath.Join(dir, "out.bst")
	_, err := UnpackFile(bad, dst)
	require.ErrorIs(err, errs.ErrInvalidPayload)
	require.NoFileExists(dst)

	entries, err := os.ReadDir(dir)
	require.NoError(err)
	require.Len(entries, 1)
}

func TestPackFile_UnknownCodec(t *testing.T) {
	dir := t.TempDir()
	src := writeStore(t, dir)

	_, err := PackFile(src, filepath.Join(dir, "x.bstz"), format.CompressionType(0x7F))
	require.Error(t, err)
}
