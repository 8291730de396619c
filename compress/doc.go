// Package compress provides the block codecs used to archive closed store files.
//
// Store files are never compressed in place: values are already narrowed per
// token, and the index array relies on stable file offsets. Archiving is a
// separate step applied to a whole closed file, for example before moving a
// checkpoint to cold storage.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): stores the bytes unchanged
//   - Zstd (format.CompressionZstd): best ratio, moderate speed
//   - S2 (format.CompressionS2): balanced ratio and speed
//   - LZ4 (format.CompressionLZ4): fastest decompression
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(nil, raw)
//	restored, err := codec.Decompress(nil, packed, len(raw))
//
// The raw size is passed to Decompress so codecs without a self-describing
// frame, like LZ4 blocks, can allocate the output exactly once.
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use. Encoders and
// decoders are pooled internally.
package compress
