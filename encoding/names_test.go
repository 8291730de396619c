package encoding

import (
	"strings"
	"testing"

	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/errs"
	"github.com/stretchr/testify/require"
)

func TestNameTable_RoundTrip(t *testing.T) {
	engines := map[string]endian.EndianEngine{
		"little": endian.GetLittleEndianEngine(),
		"big":    endian.GetBigEndianEngine(),
	}

	entries := []NameEntry{
		{Name: "size", ID: 0},
		{Name: "name", ID: 1},
		{Name: "", ID: 2},
		{Name: strings.Repeat("x", MaxNameLength), ID: 65535},
	}

	for name, engine := range engines {
		t.Run(name, func(t *testing.T) {
			buf, err := AppendNameTable([]byte{0xEE}, entries, engine)
			require.NoError(t, err)
			require.Len(t, buf, 1+NameTableSize(entries))

			decoded, n, err := DecodeNameTable(buf[1:], engine)
			require.NoError(t, err)
			require.Equal(t, NameTableSize(entries), n)
			require.Equal(t, entries, decoded)
		})
	}
}

func TestNameTable_Empty(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	buf, err := AppendNameTable(nil, nil, engine)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, buf)

	decoded, n, err := DecodeNameTable(buf, engine)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Empty(t, decoded)
}

func TestNameTable_Errors(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("name too long", func(t *testing.T) {
		_, err := AppendNameTable(nil, []NameEntry{{Name: strings.Repeat("y", 256)}}, engine)
		require.ErrorIs(t, err, errs.ErrNameTooLong)
		require.ErrorIs(t, err, errs.ErrResource)
	})

	t.Run("truncated count", func(t *testing.T) {
		_, _, err := DecodeNameTable([]byte{1, 0}, engine)
		require.ErrorIs(t, err, errs.ErrInvalidNameTable)
	})

	t.Run("truncated entry", func(t *testing.T) {
		buf, err := AppendNameTable(nil, []NameEntry{{Name: "values", ID: 3}}, engine)
		require.NoError(t, err)

		_, _, err = DecodeNameTable(buf[:len(buf)-1], engine)
		require.ErrorIs(t, err, errs.ErrInvalidNameTable)
		require.ErrorIs(t, err, errs.ErrFormat)
	})

	t.Run("negative count", func(t *testing.T) {
		_, _, err := DecodeNameTable([]byte{0xFF, 0xFF, 0xFF, 0xFF}, engine)
		require.ErrorIs(t, err, errs.ErrInvalidNameTable)
	})
}
