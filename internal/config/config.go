// Package config loads settings for the bstruct command.
//
// Sources are applied in order, later ones overriding earlier:
//  1. Defaults
//  2. YAML file, if a path is given
//  3. Environment variables with the BSTRUCT_ prefix
//
// Environment names map to keys by trimming the prefix, lower-casing and
// turning "__" into a dot: BSTRUCT_READ__BUFFER_SIZE sets read.buffer_size.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arloliu/bstruct/format"
	"github.com/arloliu/bstruct/store"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "BSTRUCT_"

var ErrInvalidConfig = errors.New("invalid config")

type Log struct {
	Level string `koanf:"level"`
	Human bool   `koanf:"human"`
}

type Read struct {
	Mmap       bool `koanf:"mmap"`
	BufferSize int  `koanf:"buffer_size"`
	MaxDepth   int  `koanf:"max_depth"`
}

type Archive struct {
	Codec string `koanf:"codec"`
}

type Parallel struct {
	Workers int `koanf:"workers"`
}

// Config holds all command settings.
type Config struct {
	Log      Log      `koanf:"log"`
	Read     Read     `koanf:"read"`
	Archive  Archive  `koanf:"archive"`
	Parallel Parallel `koanf:"parallel"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Log:      Log{Level: "info"},
		Read:     Read{BufferSize: 64 * 1024, MaxDepth: store.DefaultMaxDepth},
		Archive:  Archive{Codec: "zstd"},
		Parallel: Parallel{Workers: 4},
	}
}

// Load reads the optional YAML file at path, then the environment.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	transform := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, ok := format.ParseCompression(c.Archive.Codec); !ok {
		return fmt.Errorf("%w: archive.codec %q", ErrInvalidConfig, c.Archive.Codec)
	}
	if c.Read.BufferSize <= 0 {
		return fmt.Errorf("%w: read.buffer_size %d", ErrInvalidConfig, c.Read.BufferSize)
	}
	if c.Read.MaxDepth < 1 || c.Read.MaxDepth > store.MaxDepthLimit {
		return fmt.Errorf("%w: read.max_depth %d", ErrInvalidConfig, c.Read.MaxDepth)
	}
	if c.Parallel.Workers < 1 {
		return fmt.Errorf("%w: parallel.workers %d", ErrInvalidConfig, c.Parallel.Workers)
	}

	return nil
}

// Compression returns the archive codec as a CompressionType.
func (c Config) Compression() format.CompressionType {
	ct, _ := format.ParseCompression(c.Archive.Codec)
	return ct
}

// StoreOptions converts the read settings to a single store option.
func (c Config) StoreOptions() store.Option {
	return store.WithOptions(
		store.WithMmap(c.Read.Mmap),
		store.WithBufferSize(c.Read.BufferSize),
		store.WithMaxDepth(c.Read.MaxDepth),
	)
}
