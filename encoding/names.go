package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/errs"
)

// MaxNameLength is the longest field name the name table can store.
const MaxNameLength = math.MaxUint8

// MaxNames is the number of distinct ids a 16-bit identifier can address.
const MaxNames = math.MaxUint16 + 1

// NameEntry is one interned field name.
type NameEntry struct {
	Name string
	ID   uint16
}

// NameTableSize returns the encoded size of entries.
func NameTableSize(entries []NameEntry) int {
	size := 4
	for _, e := range entries {
		size += 1 + len(e.Name) + 2
	}

	return size
}

// AppendNameTable encodes the name table.
// Format: [Count: int32] [Len1: uint8][Name1][ID1: int16] [Len2: uint8][Name2][ID2: int16] ...
//
// Parameters:
//   - buf: Destination buffer
//   - entries: Names with their ids, in any order
//   - engine: Byte order for the count and ids
//
// Returns:
//   - []byte: The extended buffer
//   - error: ErrNameTableFull or ErrNameTooLong
func AppendNameTable(buf []byte, entries []NameEntry, engine endian.EndianEngine) ([]byte, error) {
	if len(entries) > MaxNames {
		return buf, fmt.Errorf("%w: %d names", errs.ErrNameTableFull, len(entries))
	}

	for _, e := range entries {
		if len(e.Name) > MaxNameLength {
			return buf, fmt.Errorf("%w: '%s'", errs.ErrNameTooLong, e.Name)
		}
	}

	buf = engine.AppendUint32(buf, uint32(len(entries))) //nolint:gosec
	for _, e := range entries {
		buf = append(buf, byte(len(e.Name)))
		buf = append(buf, e.Name...)
		buf = engine.AppendUint16(buf, e.ID)
	}

	return buf, nil
}

// DecodeNameTable decodes a name table payload.
//
// Parameters:
//   - data: Bytes starting at the count field
//   - engine: Byte order of the file
//
// Returns:
//   - []NameEntry: Decoded entries in file order
//   - int: Number of bytes consumed
//   - error: ErrInvalidNameTable if data is truncated or the count is out of range
func DecodeNameTable(data []byte, engine endian.EndianEngine) ([]NameEntry, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("%w: cannot read count (need 4 bytes, have %d)", errs.ErrInvalidNameTable, len(data))
	}

	count := int(int32(engine.Uint32(data))) //nolint:gosec
	if count < 0 || count > MaxNames {
		return nil, 0, fmt.Errorf("%w: count %d out of range", errs.ErrInvalidNameTable, count)
	}
	offset := 4

	entries := make([]NameEntry, count)
	for i := range entries {
		if len(data) < offset+1 {
			return nil, 0, fmt.Errorf("%w: cannot read length of name %d at offset %d", errs.ErrInvalidNameTable, i, offset)
		}
		nameLen := int(data[offset])
		offset++

		if len(data) < offset+nameLen+2 {
			return nil, 0, fmt.Errorf("%w: cannot read name %d (need %d bytes at offset %d, have %d total)",
				errs.ErrInvalidNameTable, i, nameLen+2, offset, len(data))
		}

		entries[i].Name = string(data[offset : offset+nameLen])
		offset += nameLen
		entries[i].ID = engine.Uint16(data[offset:])
		offset += 2
	}

	return entries, offset, nil
}
