// Package endian provides byte order utilities for the bstruct stream codec.
//
// A store file is written in the byte order of the machine that produced it. Readers
// detect the order from the header version and decode every multi-byte value with
// the matching EndianEngine, so files move freely between heterogeneous nodes.
//
// # Basic Usage
//
//	engine := endian.GetNativeEngine()
//	buf = engine.AppendUint32(buf, 1)
//
// A reader that finds a foreign-order header switches to the opposite engine:
//
//	engine = endian.Opposite(engine)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() EndianEngine {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

var native = CheckEndianness()

func IsNativeLittleEndian() bool {
	return native == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return native == binary.BigEndian
}

func CompareNativeEndian(engine EndianEngine) bool {
	return engine == native
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	return native
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Opposite returns the engine with the other byte order.
func Opposite(engine EndianEngine) EndianEngine {
	if engine == binary.BigEndian {
		return binary.LittleEndian
	}

	return binary.BigEndian
}

// Name returns "little" or "big".
func Name(engine EndianEngine) string {
	if engine == binary.BigEndian {
		return "big"
	}

	return "little"
}
