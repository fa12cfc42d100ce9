// Package logging writes one JSON object per line:
// {"level":"INFO","timestamp":"...","message":"...","data":...}.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin wrapper around zap with the four levels used across the
// gateway. It is safe for concurrent use and never exits the process.
type Logger struct {
	z *zap.Logger
}

// noExit keeps Fatal entries from terminating the process.
type noExit struct{}

func (noExit) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}

// New builds a Logger writing to w.
func New(w io.Writer) *Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zapcore.DebugLevel)
	return &Logger{z: zap.New(core, zap.WithFatalHook(noExit{}))}
}

// NewStdout is the logger used by the server.
func NewStdout() *Logger { return New(os.Stdout) }

// Nop discards everything.
func Nop() *Logger { return &Logger{z: zap.NewNop()} }

func (l *Logger) Info(msg string, data any)  { l.write(zapcore.InfoLevel, msg, data) }
func (l *Logger) Warn(msg string, data any)  { l.write(zapcore.WarnLevel, msg, data) }
func (l *Logger) Error(msg string, data any) { l.write(zapcore.ErrorLevel, msg, data) }

// Fatal records an unrecoverable condition. The caller decides whether to stop.
func (l *Logger) Fatal(msg string, data any) { l.write(zapcore.FatalLevel, msg, data) }

// Sync flushes buffered entries.
func (l *Logger) Sync() { _ = l.z.Sync() }

func (l *Logger) write(level zapcore.Level, msg string, data any) {
	if l == nil || l.z == nil {
		return
	}
	defer func() { _ = recover() }()
	if ce := l.z.Check(level, msg); ce != nil {
		ce.Write(zap.Any("data", data))
	}
}
