// Package vlog is the structured logger the vault core logs through.
// It wraps zerolog directly rather than re-deriving zerolog's own level
// type, and funnels every child logger through one chokepoint that
// refuses to let a field named like raw key or plaintext material
// reach the sink — every legitimate log call site in this tree only
// ever attaches descriptors and record-type names, never the secret
// itself.
package vlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance every package-level helper and
// child logger in this tree is derived from.
var Logger zerolog.Logger

// Config configures the global logger. Level is zerolog's own type —
// there is no reason to re-derive a parallel enum just to switch on it
// at Init time.
type Config struct {
	Level   zerolog.Level
	Pretty  bool
	Output  io.Writer
}

func init() {
	Init(Config{Level: zerolog.InfoLevel})
}

// Init (re)configures the global logger.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(cfg.Level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var w io.Writer = output
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(w).With().Timestamp().Logger()
}

var sensitiveFieldNames = map[string]struct{}{
	"plaintext": {}, "key": {}, "data_key": {}, "index_key": {},
	"hmac_key": {}, "ciphertext": {}, "secret": {}, "password": {},
}

// field attaches a string field to logger l, after rejecting any key
// name that looks like it might carry secret material. Every child
// logger below is built through this one chokepoint rather than
// calling zerolog's With().Str() directly, so a future call site that
// tries to tag a log line with, say, "plaintext" gets a "[redacted]"
// value instead of the value itself.
func field(l zerolog.Logger, key, value string) zerolog.Logger {
	if _, blocked := sensitiveFieldNames[key]; blocked {
		return l.With().Str(key, "[redacted]").Logger()
	}
	return l.With().Str(key, value).Logger()
}

// WithRecordType creates a child logger tagged with the record type
// name a seal/unseal/query operation is running against.
func WithRecordType(typeName string) zerolog.Logger {
	return field(Logger, "record_type", typeName)
}

// WithIndex creates a child logger tagged with the declared index name
// a compose step belongs to.
func WithIndex(indexName string) zerolog.Logger {
	return field(Logger, "index", indexName)
}

// WithDescriptor creates a child logger tagged with the AAD descriptor
// a seal/unseal step is operating on, for tracing a specific attribute
// through a multi-attribute batch without logging its value.
func WithDescriptor(descriptor string) zerolog.Logger {
	return field(Logger, "descriptor", descriptor)
}

// WithCorrelationID creates a child logger tagged with a key-service
// call's correlation id, so every log line a single Encrypt/Decrypt/
// HMAC round trip emits can be traced back together.
func WithCorrelationID(id string) zerolog.Logger {
	return field(Logger, "correlation_id", id)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}
