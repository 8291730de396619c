package encoding

import (
	"math"

	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/format"
)

// MaxShortLength is the longest string or array encoded with a 1-byte length.
const MaxShortLength = math.MaxUint8

// MaxLength is the longest string or array the 4-byte length can describe.
const MaxLength = math.MaxInt32

// StringToken returns TokenString1 for strings up to MaxShortLength bytes and
// TokenString otherwise.
func StringToken(s string) format.Token {
	if len(s) <= MaxShortLength {
		return format.TokenString1
	}

	return format.TokenString
}

// ArrayToken returns TokenBeginArray1 for sizes up to MaxShortLength and
// TokenBeginArray otherwise.
func ArrayToken(size int) format.Token {
	if size <= MaxShortLength {
		return format.TokenBeginArray1
	}

	return format.TokenBeginArray
}

// AppendLength appends a length in the width implied by token: one byte for
// TokenString1 and TokenBeginArray1, four bytes otherwise.
func AppendLength(buf []byte, engine endian.EndianEngine, token format.Token, n int) []byte {
	if token == format.TokenString1 || token == format.TokenBeginArray1 {
		return append(buf, byte(n)) //nolint:gosec
	}

	return engine.AppendUint32(buf, uint32(n)) //nolint:gosec
}

// LengthSize returns the width of the length prefix that follows token.
func LengthSize(token format.Token) int {
	if token == format.TokenString1 || token == format.TokenBeginArray1 {
		return 1
	}

	return 4
}

// DecodeLength decodes a length prefix of LengthSize(token) bytes.
func DecodeLength(engine endian.EndianEngine, token format.Token, data []byte) int {
	if LengthSize(token) == 1 {
		return int(data[0])
	}

	return int(int32(engine.Uint32(data))) //nolint:gosec
}

// AppendString appends the length prefix and bytes of s using StringToken(s).
func AppendString(buf []byte, engine endian.EndianEngine, s string) []byte {
	buf = AppendLength(buf, engine, StringToken(s), len(s))
	return append(buf, s...)
}
