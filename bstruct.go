// Package bstruct provides a compact, self-describing binary format for
// checkpoint and restart files of long-running simulations.
//
// A bstruct file is a tagged stream of named scalars, structs and arrays,
// followed by a table that maps field names to 16-bit ids. Readers request
// fields by name in any order, so files stay readable when writers add,
// remove or reorder fields. Arrays may carry an index of element offsets
// for direct access to a single record, and files are read transparently
// on hosts of either byte order.
//
// # Core Features
//
//   - Narrowest exact encoding per value (zero, byte, short, int, float, double)
//   - Out-of-order field resolution with memoization and a layout drift counter
//   - Index arrays for O(1) seeks into large record collections
//   - Byte order detection from the file header
//   - Append sessions that extend a closed file
//
// # Basic Usage
//
//	w, _ := bstruct.Create("restart.bst")
//	_ = w.WriteInt32("year", 1901)
//	base, _ := w.ReserveIndexArray("cells", len(cells))
//	for i, c := range cells {
//	    _ = w.PatchIndex(base, i, w.Offset())
//	    _ = w.BeginStruct("")
//	    _ = w.WriteFloat64("soil_carbon", c.SoilCarbon)
//	    _ = w.EndStruct()
//	}
//	_ = w.EndArray()
//	_ = w.Close()
//
// Reading disjoint ranges of the index array in parallel:
//
//	err := bstruct.ForEachIndexed(ctx, "restart.bst", "cells", 8,
//	    func(ctx context.Context, r *store.Reader, slot int) error {
//	        if err := r.BeginStruct(""); err != nil {
//	            return err
//	        }
//	        v, err := r.ReadFloat64("soil_carbon")
//	        if err != nil {
//	            return err
//	        }
//	        cells[slot].SoilCarbon = v
//	        return r.EndStruct("")
//	    })
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the store
// package. For fine-grained control use the store package directly.
//
//   - store: read and write sessions
//   - archive, compress: compressed containers for closed files
//   - metrics: Prometheus collector for session statistics
//   - cmd/bstruct: command line inspector and archiver
package bstruct

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/store"
)

// Create creates a store file for writing.
//
// Parameters:
//   - path: File path, truncated if it exists
//   - opts: Session options
//
// Returns:
//   - *store.Writer: Write session
//   - error: Option or I/O error
func Create(path string, opts ...store.Option) (*store.Writer, error) {
	return store.Create(path, opts...)
}

// Open opens a closed store file for reading.
//
// Parameters:
//   - path: File path
//   - opts: Session options
//
// Returns:
//   - *store.Reader: Read session
//   - error: Format or I/O error
func Open(path string, opts ...store.Option) (*store.Reader, error) {
	return store.Open(path, opts...)
}

// Append reopens a closed store file and continues writing after its last item.
func Append(path string, opts ...store.Option) (*store.Writer, error) {
	return store.Append(path, opts...)
}

// IndexedFunc is called by ForEachIndexed with the reader positioned at one
// element of the indexed array.
type IndexedFunc func(ctx context.Context, r *store.Reader, slot int) error

// ForEachIndexed calls fn for every element of the top-level index array
// called array. The slots are split into contiguous ranges, one per worker,
// and each worker reads its range through its own read session. The first
// error cancels the remaining work and is returned.
//
// Parameters:
//   - ctx: Context for cancellation
//   - path: Path of a closed store file
//   - array: Name of a top-level array written with ReserveIndexArray
//   - workers: Number of concurrent sessions; values below 1 mean 1
//   - fn: Function called once per slot
//   - opts: Options for every read session
//
// Returns:
//   - error: The first error returned by fn or by a session
func ForEachIndexed(ctx context.Context, path, array string, workers int, fn IndexedFunc, opts ...store.Option) error {
	size, err := indexedSize(path, array, opts)
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}

	workers = max(1, min(workers, size))
	chunk := (size + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < size; lo += chunk {
		hi := min(lo+chunk, size)
		g.Go(func() error {
			return forRange(ctx, path, array, lo, hi, fn, opts)
		})
	}

	return g.Wait()
}

func indexedSize(path, array string, opts []store.Option) (int, error) {
	r, err := store.Open(path, opts...)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	size, err := r.BeginArray(array)
	if err != nil {
		return 0, err
	}
	if !r.IsIndexed() {
		return 0, fmt.Errorf("%s: array '%s' has no index: %w", path, array, errs.ErrNotIndexed)
	}

	return size, nil
}

func forRange(ctx context.Context, path, array string, lo, hi int, fn IndexedFunc, opts []store.Option) error {
	r, err := store.Open(path, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	if _, err := r.BeginArray(array); err != nil {
		return err
	}

	for slot := lo; slot < hi; slot++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.SeekIndex(slot); err != nil {
			return err
		}
		if err := fn(ctx, r, slot); err != nil {
			return err
		}
	}

	return nil
}

// Fingerprint returns the name-table fingerprint of a closed store file.
// Files whose writers interned the same names in the same order share it.
func Fingerprint(path string, opts ...store.Option) (uint64, error) {
	r, err := store.Open(path, opts...)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	return r.Fingerprint(), nil
}
