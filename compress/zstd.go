package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/bstruct/format"
)

// zstdMaxPrealloc caps the output allocated up front from an untrusted size.
const zstdMaxPrealloc = 64 << 20

// ZstdCodec provides Zstandard compression. It gives the best ratio of the
// built-in codecs and suits checkpoints kept for long-term retention.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// zstdDecoderPool pools decoders; klauspost/compress decoders operate without
// allocations after warmup.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderCRC(false), // the archive carries its own checksum
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// Compress appends the zstd frame of src to dst.
func (ZstdCodec) Compress(dst, src []byte) ([]byte, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(src, dst), nil
}

// Decompress appends the decoded frame to dst.
func (ZstdCodec) Decompress(dst, src []byte, rawSize int) ([]byte, error) {
	if len(src) == 0 {
		return dst, checkSize("zstd", 0, rawSize)
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	if hint := min(rawSize, zstdMaxPrealloc); cap(dst)-len(dst) < hint {
		grown := make([]byte, len(dst), len(dst)+hint)
		copy(grown, dst)
		dst = grown
	}

	start := len(dst)
	out, err := decoder.DecodeAll(src, dst)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if err := checkSize("zstd", len(out)-start, rawSize); err != nil {
		return nil, err
	}

	return out, nil
}

func (ZstdCodec) Type() format.CompressionType {
	return format.CompressionZstd
}
