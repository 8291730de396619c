package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/bstruct/format"
)

// S2Codec provides S2 block compression, a faster Snappy extension.
type S2Codec struct{}

var _ Codec = S2Codec{}

// Compress appends the S2 block of src to dst.
func (S2Codec) Compress(dst, src []byte) ([]byte, error) {
	bound := s2.MaxEncodedLen(len(src))
	if bound < 0 {
		return nil, fmt.Errorf("s2: block of %d bytes too large", len(src))
	}
	block := make([]byte, bound)

	return append(dst, s2.EncodeBetter(block, src)...), nil
}

// Decompress appends the decoded block to dst.
func (S2Codec) Decompress(dst, src []byte, rawSize int) ([]byte, error) {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if err := checkSize("s2", n, rawSize); err != nil {
		return nil, err
	}

	out, err := s2.Decode(make([]byte, n), src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return append(dst, out...), nil
}

func (S2Codec) Type() format.CompressionType {
	return format.CompressionS2
}
