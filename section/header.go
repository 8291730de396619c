package section

import (
	"fmt"

	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/errs"
)

// Header is the fixed-size section at the start of a store file.
type Header struct {
	// Version is the stream format version.
	Version uint32
	// NameTableOffset is the file offset of the name table, NameTablePlaceholder
	// until the writing session is closed.
	NameTableOffset int64
	// Engine is the byte order of the file.
	Engine endian.EndianEngine
}

// NewHeader creates a header for a fresh file written with the given byte order.
func NewHeader(engine endian.EndianEngine) *Header {
	return &Header{
		Version:         Version,
		NameTableOffset: NameTablePlaceholder,
		Engine:          engine,
	}
}

// Parse parses the header from a byte slice and detects its byte order.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly HeaderSize bytes)
//
// Returns:
//   - error: ErrInvalidHeader, ErrInvalidMagic or ErrUnsupportedVersion
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: size %d, want %d", errs.ErrInvalidHeader, len(data), HeaderSize)
	}

	if string(data[:MagicSize]) != Magic {
		return fmt.Errorf("%w: %q", errs.ErrInvalidMagic, data[:MagicSize])
	}

	engine := endian.GetNativeEngine()
	if engine.Uint32(data[VersionOffset:])&0xFF == 0 {
		engine = endian.Opposite(engine)
	}

	version := engine.Uint32(data[VersionOffset:])
	if version == 0 || version > Version {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, version)
	}

	h.Version = version
	h.Engine = engine
	h.NameTableOffset = int64(engine.Uint64(data[NameTableOffsetPos:])) //nolint:gosec

	return nil
}

// Bytes serializes the header into a byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, 0, HeaderSize)
	b = append(b, Magic...)
	b = h.Engine.AppendUint32(b, h.Version)
	b = h.Engine.AppendUint64(b, uint64(h.NameTableOffset)) //nolint:gosec

	return b
}

// OffsetBytes encodes a name-table offset for patching at NameTableOffsetPos.
func (h *Header) OffsetBytes(offset int64) []byte {
	return h.Engine.AppendUint64(make([]byte, 0, 8), uint64(offset)) //nolint:gosec
}

// IsSwapped reports whether the file byte order differs from the host's.
func (h Header) IsSwapped() bool {
	return !endian.CompareNativeEndian(h.Engine)
}

// ParseHeader parses a Header from the first HeaderSize bytes of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: size %d, want %d", errs.ErrInvalidHeader, len(data), HeaderSize)
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
