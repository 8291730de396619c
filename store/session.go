package store

import (
	"github.com/rs/zerolog"

	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/errs"
	"github.com/arloliu/bstruct/metrics"
)

// Stats are the counters of a store session.
type Stats struct {
	// Misses counts fields scanned past while resolving out-of-order requests.
	Misses int64
	// Unread counts struct fields that were present but never requested.
	Unread int64
	// BytesRead is the number of bytes consumed by a read session.
	BytesRead int64
	// BytesWritten is the number of bytes appended by a write session.
	BytesWritten int64
	// Names is the size of the name table.
	Names int
}

// session is the state shared by Reader and Writer.
type session struct {
	path        string
	mode        string
	engine      endian.EndianEngine
	logger      zerolog.Logger
	diagnostics bool
	maxDepth    int
	metrics     *metrics.Collector
	closed      bool
}

func newSession(path, mode string, cfg *Config) session {
	return session{
		path:        path,
		mode:        mode,
		engine:      cfg.engine,
		logger:      cfg.logger.With().Str("component", "store").Str("file", path).Logger(),
		diagnostics: cfg.diagnostics,
		maxDepth:    cfg.maxDepth,
		metrics:     cfg.metrics,
	}
}

// Path returns the file path of the session.
func (s *session) Path() string {
	return s.path
}

// ByteOrder returns the byte order of the file.
func (s *session) ByteOrder() endian.EndianEngine {
	return s.engine
}

// SetDiagnostics enables or disables diagnostic messages and returns the
// previous setting.
func (s *session) SetDiagnostics(enabled bool) bool {
	prev := s.diagnostics
	s.diagnostics = enabled

	return prev
}

// fail completes fe with the session file, reports it and returns it.
func (s *session) fail(fe *errs.FieldError) error {
	fe.File = s.path
	s.metrics.ObserveError(fe)

	if s.diagnostics {
		ev := s.logger.Error().Str("op", fe.Op)
		if fe.Field != "" {
			ev = ev.Str("field", fe.Field)
		}
		if fe.Expected != "" || fe.Found != "" {
			ev = ev.Str("expected", fe.Expected).Str("found", fe.Found)
		}
		if fe.Offset >= 0 {
			ev = ev.Int64("offset", fe.Offset)
		}
		ev.Err(fe.Err).Msg("store operation failed")
	}

	return fe
}

func (s *session) checkOpen(op string) error {
	if s.closed {
		return &errs.FieldError{Op: op, File: s.path, Offset: -1, Err: errs.ErrClosed}
	}

	return nil
}
