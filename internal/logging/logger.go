// Package logging builds the console logger used by the command line tool.
//
// Informational entries go to stdout, errors to stderr. The library itself
// never builds a logger: it receives one through gistembed.WithLogger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Levels accepted by New.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// ErrUnknownLevel is returned by New for a level it does not know.
var ErrUnknownLevel = errors.New("unknown log level")

// New returns a logger writing entries below error level to stdout and the
// rest to stderr. "normal" starts at info, "debug" at debug and "none"
// discards everything.
func New(level string, stdout, stderr io.Writer) (*zap.Logger, error) {
	var minLevel zapcore.Level
	switch level {
	case LevelNone:
		return zap.NewNop(), nil
	case LevelNormal, "":
		minLevel = zapcore.InfoLevel
	case LevelDebug:
		minLevel = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("%w: %q (must be none, normal, or debug)", ErrUnknownLevel, level)
	}

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return minLevel <= lvl && lvl < zapcore.ErrorLevel
	})
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(stdout)), zapcore.AddSync(stdout), lowPriority),
		zapcore.NewCore(newErrorEncoder(encoderConfig(stderr)), zapcore.AddSync(stderr), highPriority),
	)
	return zap.New(core).Named("gistembed"), nil
}

// encoderConfig drops the caller and colors levels on terminals.
func encoderConfig(w io.Writer) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if isTerminal(w) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// errorEncoder prints errors by message only. Aggregated gist failures
// would otherwise be followed by an "errorVerbose" dump of every cause.
type errorEncoder struct {
	zapcore.Encoder
}

func newErrorEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return errorEncoder{zapcore.NewConsoleEncoder(cfg)}
}

func (e errorEncoder) Clone() zapcore.Encoder {
	return errorEncoder{e.Encoder.Clone()}
}

func (e errorEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if err, ok := f.Interface.(error); ok {
				f.Interface = errors.New(err.Error())
			}
		}
		out = append(out, f)
	}
	return e.Encoder.EncodeEntry(ent, out)
}
