// Package archive wraps closed store files in a compressed, checksummed container.
//
// The container is a fixed 21-byte little-endian header followed by one
// compressed block:
//
//	+--------+-------+----------+----------+----------------+
//	| "BSTZ" | codec | raw size | xxhash64 | payload ...    |
//	| 4 B    | 1 B   | 8 B      | 8 B      | packed size    |
//	+--------+-------+----------+----------+----------------+
//
// The checksum covers the uncompressed store bytes, so Unpack detects both
// payload corruption and a codec that decoded to the wrong content.
//
// Archives are not readable in place. UnpackFile restores the original store
// file, which is then opened with store.Open.
package archive
