// Package encoding implements the byte-level codec of the bstruct stream.
//
// Every item in a store stream starts with one tag byte:
//
//	bit 7    has name: a name id follows the tag
//	bit 6    wide id: the id is 2 bytes instead of 1
//	bits 0-5 token kind (format.Token)
//
// followed by the optional name id and the token payload. Anonymous items, the
// common case for array elements, cost exactly one tag byte plus payload.
//
// Writers pick the narrowest token that represents a value exactly:
//
//	token := encoding.IntToken(300)              // format.TokenShort
//	buf = encoding.AppendTag(buf, engine, token, id)
//	buf = encoding.AppendInt(buf, engine, token, 300)
//
// Readers decode the payload of whatever token is on disk and use Accepts to
// decide whether it may be widened into the requested type.
//
// The package also encodes the name table written at the end of every file:
//
//	[count: int32] count × ([len: uint8][name: len bytes][id: int16])
//
// All functions are stateless and safe for concurrent use.
package encoding
