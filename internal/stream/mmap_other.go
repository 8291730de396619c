//go:build !linux && !darwin && !freebsd && !openbsd && !netbsd && !dragonfly

package stream

import (
	"errors"
	"os"
)

var errMmapUnsupported = errors.New("mmap not supported on this platform")

func mmapFile(_ *os.File, _ int64) ([]byte, func() error, error) {
	return nil, nil, errMmapUnsupported
}
