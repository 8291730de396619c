package section

// Header layout, all offsets in bytes from the start of the file.
const (
	Magic = "BSTRUCT" // Magic identifies a store file.

	Version = 1 // Version is the current stream format version.

	MagicSize            = 7
	VersionOffset        = MagicSize         // int32 version in writer byte order
	NameTableOffsetPos   = VersionOffset + 4 // int64 position of the name table
	HeaderSize           = NameTableOffsetPos + 8
	NameTablePlaceholder = 0 // NameTablePlaceholder marks a file whose name table was never written.
)
