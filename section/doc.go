// Package section implements the fixed header at the start of a store file.
//
// Layout:
//
//	[magic "BSTRUCT": 7 bytes][version: int32][name-table offset: int64]
//
// The version and the offset are written in the byte order of the producing
// machine. A reader decodes the version with its native order; a zero low byte
// means the file comes from a machine of the other order, and every multi-byte
// value in the file must be swapped.
package section
