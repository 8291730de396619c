package store

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/internal/options"
	"github.com/arloliu/bstruct/internal/pool"
	"github.com/arloliu/bstruct/metrics"
)

const (
	// DefaultMaxDepth is the default bound on nested structs and arrays.
	DefaultMaxDepth = 64
	// MaxDepthLimit is the largest nesting bound WithMaxDepth accepts.
	MaxDepthLimit = 1024
)

// Config holds the settings of a store session.
type Config struct {
	engine      endian.EndianEngine
	logger      zerolog.Logger
	diagnostics bool
	maxDepth    int
	bufferSize  int
	mmap        bool
	metrics     *metrics.Collector
}

// Option configures a store session.
type Option = options.Option[*Config]

func newConfig(opts []Option) (*Config, error) {
	cfg := &Config{
		engine:      endian.GetNativeEngine(),
		logger:      zerolog.Nop(),
		diagnostics: true,
		maxDepth:    DefaultMaxDepth,
		bufferSize:  pool.StreamBufferDefaultSize,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithByteOrder sets the byte order of newly created files.
// Readers always use the order recorded in the file header, and appending
// sessions keep the order of the file they extend.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New(func(c *Config) error {
		if engine == nil {
			return fmt.Errorf("store: byte order engine is nil")
		}
		c.engine = engine

		return nil
	})
}

// WithLittleEndian creates files in little-endian byte order.
func WithLittleEndian() Option {
	return WithByteOrder(endian.GetLittleEndianEngine())
}

// WithBigEndian creates files in big-endian byte order.
func WithBigEndian() Option {
	return WithByteOrder(endian.GetBigEndianEngine())
}

// WithLogger sets the logger used for diagnostics. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logger
	})
}

// WithDiagnostics enables or disables diagnostic log messages for failed
// operations. Errors are returned either way.
func WithDiagnostics(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.diagnostics = enabled
	})
}

// WithMaxDepth bounds the number of nested structs and arrays.
//
// Parameters:
//   - depth: Maximum nesting depth, 1 to MaxDepthLimit
func WithMaxDepth(depth int) Option {
	return options.New(func(c *Config) error {
		if depth < 1 || depth > MaxDepthLimit {
			return fmt.Errorf("store: max depth %d outside [1, %d]", depth, MaxDepthLimit)
		}
		c.maxDepth = depth

		return nil
	})
}

// WithBufferSize sets the write buffer size. Buffered data is flushed to the
// file whenever it grows beyond this size.
func WithBufferSize(size int) Option {
	return options.New(func(c *Config) error {
		if size <= 0 {
			return fmt.Errorf("store: buffer size must be positive, got %d", size)
		}
		c.bufferSize = size

		return nil
	})
}

// WithMmap memory maps files opened for reading when the platform supports it.
func WithMmap(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.mmap = enabled
	})
}

// WithMetrics reports session statistics and errors to c.
func WithMetrics(c *metrics.Collector) Option {
	return options.NoError(func(cfg *Config) {
		cfg.metrics = c
	})
}

// WithOptions bundles opts into one option, for presets built from
// configuration files.
func WithOptions(opts ...Option) Option {
	return options.Join(opts...)
}
