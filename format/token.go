package format

// Token is the kind stored in the low 6 bits of every tag byte.
type Token uint8

const (
	TokenByte        Token = 0  // TokenByte is an unsigned 8-bit integer payload.
	TokenShort       Token = 1  // TokenShort is a signed 16-bit integer payload.
	TokenInt         Token = 2  // TokenInt is a signed 32-bit integer payload.
	TokenFloat       Token = 3  // TokenFloat is an IEEE 754 single precision payload.
	TokenDouble      Token = 4  // TokenDouble is an IEEE 754 double precision payload.
	TokenTrue        Token = 5  // TokenTrue is boolean true, no payload.
	TokenFalse       Token = 6  // TokenFalse is boolean false, no payload.
	TokenUShort      Token = 7  // TokenUShort is an unsigned 16-bit integer payload.
	TokenZero        Token = 8  // TokenZero is numeric zero of any width, no payload.
	TokenString      Token = 9  // TokenString is a string with a 4-byte length prefix.
	TokenString1     Token = 10 // TokenString1 is a string with a 1-byte length prefix.
	TokenBeginArray  Token = 11 // TokenBeginArray opens an array with a 4-byte size.
	TokenBeginArray1 Token = 12 // TokenBeginArray1 opens an array with a 1-byte size.
	TokenBeginStruct Token = 13 // TokenBeginStruct opens a struct.
	TokenIndexArray  Token = 14 // TokenIndexArray is a 4-byte size followed by size 8-byte offsets.
	TokenEndStruct   Token = 15 // TokenEndStruct closes a struct.
	TokenEndArray    Token = 16 // TokenEndArray closes an array.
	TokenEnd         Token = 17 // TokenEnd terminates the stream.

	tokenCount = 18
)

// Tag byte layout.
const (
	TagHasName = 0x80 // TagHasName marks a tag followed by a name id.
	TagWideID  = 0x40 // TagWideID marks a 2-byte name id instead of a 1-byte id.
	TagMask    = 0x3F // TagMask extracts the token kind.
)

var tokenNames = [tokenCount]string{
	"Byte", "Short", "Int", "Float", "Double", "True", "False", "UShort", "Zero",
	"String", "String1", "BeginArray", "BeginArray1", "BeginStruct", "IndexArray",
	"EndStruct", "EndArray", "End",
}

func (t Token) String() string {
	if t.IsValid() {
		return tokenNames[t]
	}

	return "Unknown"
}

// IsValid reports whether t is a known token kind.
func (t Token) IsValid() bool {
	return t < tokenCount
}

// IsEnd reports whether t closes a struct, an array, or the stream.
func (t Token) IsEnd() bool {
	return t == TokenEndStruct || t == TokenEndArray || t == TokenEnd
}

// IsBool reports whether t is TokenTrue or TokenFalse.
func (t Token) IsBool() bool {
	return t == TokenTrue || t == TokenFalse
}

// IsArray reports whether t opens an array.
func (t Token) IsArray() bool {
	return t == TokenBeginArray || t == TokenBeginArray1
}

// IsString reports whether t is a string token.
func (t Token) IsString() bool {
	return t == TokenString || t == TokenString1
}

// IsNumeric reports whether t carries a number, including TokenZero.
func (t Token) IsNumeric() bool {
	switch t {
	case TokenByte, TokenShort, TokenUShort, TokenInt, TokenFloat, TokenDouble, TokenZero:
		return true
	default:
		return false
	}
}

// PayloadSize returns the fixed payload size of t, or -1 for variable-size
// and container tokens.
func (t Token) PayloadSize() int {
	switch t {
	case TokenByte:
		return 1
	case TokenShort, TokenUShort:
		return 2
	case TokenInt, TokenFloat:
		return 4
	case TokenDouble:
		return 8
	case TokenTrue, TokenFalse, TokenZero, TokenBeginStruct, TokenEndStruct, TokenEndArray, TokenEnd:
		return 0
	default:
		return -1
	}
}
