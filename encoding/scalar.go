package encoding

import (
	"math"

	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/format"
)

// IntToken returns the narrowest token that represents v exactly.
func IntToken(v int32) format.Token {
	switch {
	case v == 0:
		return format.TokenZero
	case v > 0 && v <= math.MaxUint8:
		return format.TokenByte
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return format.TokenShort
	case v > 0 && v <= math.MaxUint16:
		return format.TokenUShort
	default:
		return format.TokenInt
	}
}

// ShortToken returns the narrowest token for a 16-bit signed value.
func ShortToken(v int16) format.Token {
	return IntToken(int32(v))
}

// UShortToken returns the narrowest token for a 16-bit unsigned value.
func UShortToken(v uint16) format.Token {
	switch {
	case v == 0:
		return format.TokenZero
	case v <= math.MaxUint8:
		return format.TokenByte
	default:
		return format.TokenUShort
	}
}

// DoubleToken returns TokenZero for positive zero, TokenFloat when v survives a
// round trip through float32, and TokenDouble otherwise. NaN and negative zero
// are always written as TokenDouble so their bits are preserved.
func DoubleToken(v float64) format.Token {
	switch {
	case v == 0 && !math.Signbit(v):
		return format.TokenZero
	case v == 0 || math.IsNaN(v):
		return format.TokenDouble
	case float64(float32(v)) == v:
		return format.TokenFloat
	default:
		return format.TokenDouble
	}
}

// FloatToken returns TokenZero for positive zero and TokenFloat otherwise.
func FloatToken(v float32) format.Token {
	if v == 0 && !math.Signbit(float64(v)) {
		return format.TokenZero
	}

	return format.TokenFloat
}

// BoolToken returns TokenTrue or TokenFalse.
func BoolToken(v bool) format.Token {
	if v {
		return format.TokenTrue
	}

	return format.TokenFalse
}

// AppendInt appends the payload of an integer token chosen by IntToken,
// ShortToken or UShortToken.
func AppendInt(buf []byte, engine endian.EndianEngine, token format.Token, v int32) []byte {
	switch token {
	case format.TokenByte:
		return append(buf, byte(v)) //nolint:gosec
	case format.TokenShort, format.TokenUShort:
		return engine.AppendUint16(buf, uint16(v)) //nolint:gosec
	case format.TokenInt:
		return engine.AppendUint32(buf, uint32(v)) //nolint:gosec
	default:
		return buf
	}
}

// AppendDouble appends the payload of a token chosen by DoubleToken or FloatToken.
func AppendDouble(buf []byte, engine endian.EndianEngine, token format.Token, v float64) []byte {
	switch token {
	case format.TokenFloat:
		return engine.AppendUint32(buf, math.Float32bits(float32(v)))
	case format.TokenDouble:
		return engine.AppendUint64(buf, math.Float64bits(v))
	default:
		return buf
	}
}

// DecodeInt decodes the payload of an integer token.
//
// Returns:
//   - int64: Decoded value
//   - bool: false if token is not TokenZero, TokenByte, TokenShort, TokenUShort or TokenInt
func DecodeInt(engine endian.EndianEngine, token format.Token, payload []byte) (int64, bool) {
	switch token {
	case format.TokenZero:
		return 0, true
	case format.TokenByte:
		return int64(payload[0]), true
	case format.TokenShort:
		return int64(int16(engine.Uint16(payload))), true //nolint:gosec
	case format.TokenUShort:
		return int64(engine.Uint16(payload)), true
	case format.TokenInt:
		return int64(int32(engine.Uint32(payload))), true //nolint:gosec
	default:
		return 0, false
	}
}

// DecodeDouble decodes the payload of any numeric token as float64.
func DecodeDouble(engine endian.EndianEngine, token format.Token, payload []byte) (float64, bool) {
	switch token {
	case format.TokenFloat:
		return float64(math.Float32frombits(engine.Uint32(payload))), true
	case format.TokenDouble:
		return math.Float64frombits(engine.Uint64(payload)), true
	default:
		v, ok := DecodeInt(engine, token, payload)
		return float64(v), ok
	}
}

// Accepts reports whether a value stored as found may be read into a field
// declared as want. TokenZero satisfies every numeric declaration; integer
// tokens widen into wider integers and into double.
//
// The declaration kinds are TokenByte, TokenShort, TokenUShort, TokenInt,
// TokenFloat, TokenDouble, TokenTrue (any bool) and TokenString (any string).
func Accepts(want, found format.Token) bool {
	switch want {
	case format.TokenByte:
		return found == format.TokenZero || found == format.TokenByte
	case format.TokenShort:
		return found == format.TokenZero || found == format.TokenByte || found == format.TokenShort
	case format.TokenUShort:
		return found == format.TokenZero || found == format.TokenByte || found == format.TokenUShort
	case format.TokenInt:
		switch found {
		case format.TokenZero, format.TokenByte, format.TokenShort, format.TokenUShort, format.TokenInt:
			return true
		}
		return false
	case format.TokenFloat:
		return found == format.TokenZero || found == format.TokenFloat
	case format.TokenDouble:
		return found.IsNumeric()
	case format.TokenTrue, format.TokenFalse:
		return found.IsBool()
	case format.TokenString, format.TokenString1:
		return found.IsString()
	default:
		return want == found
	}
}
