package compress

import "github.com/arloliu/bstruct/format"

// NoOpCodec stores blocks unchanged.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

// Compress appends src to dst.
func (NoOpCodec) Compress(dst, src []byte) ([]byte, error) {
	return append(dst, src...), nil
}

// Decompress appends src to dst after checking its size.
func (NoOpCodec) Decompress(dst, src []byte, rawSize int) ([]byte, error) {
	if err := checkSize("none", len(src), rawSize); err != nil {
		return nil, err
	}

	return append(dst, src...), nil
}

func (NoOpCodec) Type() format.CompressionType {
	return format.CompressionNone
}
