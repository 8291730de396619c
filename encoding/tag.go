package encoding

import (
	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/format"
)

// Anonymous is the id passed to AppendTag for items without a name.
const Anonymous = -1

// MaxNarrowID is the largest id encoded in a single byte.
const MaxNarrowID = 0xFF

// AppendTag appends the tag byte and, for named items, the name id.
//
// Parameters:
//   - buf: Destination buffer
//   - engine: Byte order for the 2-byte id form
//   - token: Token kind
//   - id: Name id, or Anonymous
//
// Returns:
//   - []byte: The extended buffer
func AppendTag(buf []byte, engine endian.EndianEngine, token format.Token, id int) []byte {
	switch {
	case id < 0:
		return append(buf, byte(token))
	case id <= MaxNarrowID:
		return append(buf, byte(token)|format.TagHasName, byte(id))
	default:
		buf = append(buf, byte(token)|format.TagHasName|format.TagWideID)
		return engine.AppendUint16(buf, uint16(id)) //nolint:gosec
	}
}

// ParseTag splits a tag byte into its token kind and the size of the name id
// that follows it (0, 1 or 2 bytes).
func ParseTag(tag byte) (format.Token, int) {
	token := format.Token(tag & format.TagMask)
	switch {
	case tag&format.TagHasName == 0:
		return token, 0
	case tag&format.TagWideID != 0:
		return token, 2
	default:
		return token, 1
	}
}

// DecodeID decodes a name id of the size reported by ParseTag.
func DecodeID(engine endian.EndianEngine, data []byte) int {
	if len(data) == 1 {
		return int(data[0])
	}

	return int(engine.Uint16(data))
}

// TagSize returns the number of bytes AppendTag writes for id.
func TagSize(id int) int {
	switch {
	case id < 0:
		return 1
	case id <= MaxNarrowID:
		return 2
	default:
		return 3
	}
}
