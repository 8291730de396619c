package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/bstruct/format"
)

// lz4CompressorPool pools lz4.Compressor instances, which keep a hash table
// between calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4MaxRatio bounds the expansion of a single LZ4 block.
const lz4MaxRatio = 255

// LZ4Codec provides LZ4 block compression. Blocks carry no size, so the
// archive header supplies it on decompression. Incompressible input is stored
// verbatim and recognized by its length equaling the raw size.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// Compress appends the LZ4 block of src to dst.
func (LZ4Codec) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	block := make([]byte, lz4.CompressBlockBound(len(src)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(src, block)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(src) {
		return append(dst, src...), nil
	}

	return append(dst, block[:n]...), nil
}

// Decompress appends the decoded block of exactly rawSize bytes to dst.
func (LZ4Codec) Decompress(dst, src []byte, rawSize int) ([]byte, error) {
	if len(src) == 0 {
		return dst, checkSize("lz4", 0, rawSize)
	}
	if len(src) == rawSize {
		return append(dst, src...), nil
	}
	if rawSize > len(src)*lz4MaxRatio {
		return nil, fmt.Errorf("lz4: raw size %d impossible for %d byte block", rawSize, len(src))
	}

	buf := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(src, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if err := checkSize("lz4", n, rawSize); err != nil {
		return nil, err
	}

	return append(dst, buf...), nil
}

func (LZ4Codec) Type() format.CompressionType {
	return format.CompressionLZ4
}
