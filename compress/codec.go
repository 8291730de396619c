package compress

import (
	"fmt"

	"github.com/arloliu/bstruct/format"
)

// Codec compresses and decompresses whole blocks.
type Codec interface {
	// Compress appends the compressed form of src to dst.
	Compress(dst, src []byte) ([]byte, error)
	// Decompress appends the decompressed form of src to dst. rawSize is the
	// expected decompressed size; a mismatch is an error.
	Decompress(dst, src []byte, rawSize int) ([]byte, error)
	// Type returns the compression type written to archive headers.
	Type() format.CompressionType
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NoOpCodec{},
	format.CompressionZstd: ZstdCodec{},
	format.CompressionS2:   S2Codec{},
	format.CompressionLZ4:  LZ4Codec{},
}

// GetCodec returns the built-in codec for compressionType.
//
// Returns:
//   - Codec: Stateless codec, safe for concurrent use
//   - error: Unsupported compression type
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

func checkSize(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: decompressed %d bytes, want %d", name, got, want)
	}

	return nil
}
