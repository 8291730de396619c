// Package nametable interns field names into compact 16-bit identifiers.
//
// A Writer assigns dense ids in first-use order while a store is written. A
// Reader holds the table loaded from a closed file, sorted once by name for
// binary search and once by id for reverse lookups.
package nametable

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/bstruct/encoding"
	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/internal/hash"
)

// Writer is the write-side interning table. It is owned by one store session
// and is not safe for concurrent use.
type Writer struct {
	ids   map[string]uint16
	names []string
}

// NewWriter creates an empty interning table.
func NewWriter() *Writer {
	return &Writer{ids: make(map[string]uint16)}
}

// NewWriterFrom creates an interning table seeded with existing entries, so
// that their ids keep their meaning and new names continue after the highest id.
func NewWriterFrom(entries []encoding.NameEntry) (*Writer, error) {
	w := NewWriter()
	for _, e := range entries {
		if _, ok := w.ids[e.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate name '%s'", errs.ErrInvalidNameTable, e.Name)
		}
		for int(e.ID) >= len(w.names) {
			w.names = append(w.names, "")
		}
		w.ids[e.Name] = e.ID
		w.names[e.ID] = e.Name
	}

	if len(w.ids) != len(w.names) {
		return nil, fmt.Errorf("%w: ids are not dense", errs.ErrInvalidNameTable)
	}

	return w, nil
}

// Intern returns the id of name, allocating the next free id on first use.
//
// Returns:
//   - int: The id of name
//   - error: ErrNameTooLong, or ErrNameTableFull when all 65536 ids are taken
func (w *Writer) Intern(name string) (int, error) {
	if id, ok := w.ids[name]; ok {
		return int(id), nil
	}

	if len(name) > encoding.MaxNameLength {
		return 0, fmt.Errorf("%w: '%s'", errs.ErrNameTooLong, name)
	}
	if len(w.names) >= encoding.MaxNames {
		return 0, fmt.Errorf("%w: cannot intern '%s'", errs.ErrNameTableFull, name)
	}

	id := uint16(len(w.names)) //nolint:gosec
	w.ids[name] = id
	w.names = append(w.names, name)

	return int(id), nil
}

// Len returns the number of interned names.
func (w *Writer) Len() int {
	return len(w.names)
}

// Entries returns the interned names in id order.
func (w *Writer) Entries() []encoding.NameEntry {
	entries := make([]encoding.NameEntry, len(w.names))
	for i, name := range w.names {
		entries[i] = encoding.NameEntry{Name: name, ID: uint16(i)} //nolint:gosec
	}

	return entries
}

// AppendTo encodes the table in id order and appends it to buf.
func (w *Writer) AppendTo(buf []byte, engine endian.EndianEngine) ([]byte, error) {
	return encoding.AppendNameTable(buf, w.Entries(), engine)
}

// Reader is the read-side table loaded from a closed store. It is immutable
// after construction and safe for concurrent use.
type Reader struct {
	byName []encoding.NameEntry
	byID   []string
}

// NewReader builds a lookup table from decoded entries.
func NewReader(entries []encoding.NameEntry) (*Reader, error) {
	r := &Reader{
		byName: slices.Clone(entries),
	}

	slices.SortFunc(r.byName, func(a, b encoding.NameEntry) int {
		return strings.Compare(a.Name, b.Name)
	})

	for i := 1; i < len(r.byName); i++ {
		if r.byName[i].Name == r.byName[i-1].Name {
			return nil, fmt.Errorf("%w: duplicate name '%s'", errs.ErrInvalidNameTable, r.byName[i].Name)
		}
	}

	maxID := -1
	for _, e := range entries {
		maxID = max(maxID, int(e.ID))
	}
	r.byID = make([]string, maxID+1)
	seen := make([]bool, maxID+1)
	for _, e := range entries {
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: duplicate id %d", errs.ErrInvalidNameTable, e.ID)
		}
		seen[e.ID] = true
		r.byID[e.ID] = e.Name
	}

	return r, nil
}

// Lookup returns the id of name by binary search.
//
// Returns:
//   - int: The id of name
//   - error: ErrNameNotInTable if the file never declared name
func (r *Reader) Lookup(name string) (int, error) {
	i, found := slices.BinarySearchFunc(r.byName, name, func(e encoding.NameEntry, target string) int {
		return strings.Compare(e.Name, target)
	})
	if !found {
		return 0, fmt.Errorf("%w: '%s'", errs.ErrNameNotInTable, name)
	}

	return int(r.byName[i].ID), nil
}

// Name returns the name for id, and false if the id is not in the table.
func (r *Reader) Name(id int) (string, bool) {
	if id < 0 || id >= len(r.byID) {
		return "", false
	}

	return r.byID[id], true
}

// Len returns the number of names in the table.
func (r *Reader) Len() int {
	return len(r.byName)
}

// Entries returns the table in id order.
func (r *Reader) Entries() []encoding.NameEntry {
	entries := slices.Clone(r.byName)
	slices.SortFunc(entries, func(a, b encoding.NameEntry) int {
		return int(a.ID) - int(b.ID)
	})

	return entries
}

// Fingerprint returns a hash of the table in id order. Two files with the same
// fingerprint interned the same names in the same order.
func (r *Reader) Fingerprint() uint64 {
	return Fingerprint(r.Entries())
}

// Fingerprint hashes entries that are already in id order.
func Fingerprint(entries []encoding.NameEntry) uint64 {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Name)
		sb.WriteByte(0)
	}

	return hash.ID(sb.String())
}
