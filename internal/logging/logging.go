// Package logging provides a small leveled, colorized logger used across the
// backup core, restore planner, and CLI.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Logger is the main logger type. A nil *Logger is valid and logs nothing,
// which lets internal packages accept a logger without forcing every caller
// (including tests) to construct one.
type Logger struct {
	prefix string
	level  Level
	output *log.Logger
	color  bool
}

// RootLogger is the default logger, writing to standard error at LevelWarn.
var RootLogger = New(LevelWarn)

// New creates a root logger at the specified level, writing to os.Stderr.
// Color is enabled automatically when standard error is a terminal.
func New(level Level) *Logger {
	return &Logger{
		level:  level,
		output: log.New(os.Stderr, "", log.LstdFlags),
		color:  isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// Sublogger creates a new sublogger with the specified name appended to the
// dotted prefix chain.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{
		prefix: prefix,
		level:  l.level,
		output: l.output,
		color:  l.color,
	}
}

func (l *Logger) line(level string, message string) string {
	if l.prefix != "" {
		return fmt.Sprintf("%s [%s] %s", level, l.prefix, message)
	}
	return fmt.Sprintf("%s %s", level, message)
}

func (l *Logger) emit(lvl Level, level string, paint func(string, ...interface{}) string, message string) {
	if l == nil || l.level < lvl {
		return
	}
	if l.color && paint != nil {
		level = paint(level)
	}
	l.output.Output(3, l.line(level, message))
}

// Error logs an error-level message.
func (l *Logger) Error(v ...interface{}) {
	l.emit(LevelError, "ERROR", color.RedString, fmt.Sprint(v...))
}

// Errorf logs a formatted error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.emit(LevelError, "ERROR", color.RedString, fmt.Sprintf(format, v...))
}

// Warn logs a warning-level message.
func (l *Logger) Warn(v ...interface{}) {
	l.emit(LevelWarn, "WARN", color.YellowString, fmt.Sprint(v...))
}

// Warnf logs a formatted warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.emit(LevelWarn, "WARN", color.YellowString, fmt.Sprintf(format, v...))
}

// Info logs an info-level message.
func (l *Logger) Info(v ...interface{}) {
	l.emit(LevelInfo, "INFO", nil, fmt.Sprint(v...))
}

// Infof logs a formatted info-level message.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.emit(LevelInfo, "INFO", nil, fmt.Sprintf(format, v...))
}

// Debug logs a debug-level message.
func (l *Logger) Debug(v ...interface{}) {
	l.emit(LevelDebug, "DEBUG", color.CyanString, fmt.Sprint(v...))
}

// Debugf logs a formatted debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.emit(LevelDebug, "DEBUG", color.CyanString, fmt.Sprintf(format, v...))
}

// Writer returns an io.Writer that logs each line written to it at info
// level. It is used to capture archiver subprocess stdout and stderr.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return &lineWriter{logger: l}
}

type lineWriter struct {
	logger *Logger
	buffer []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buffer = append(w.buffer, p...)
	for {
		idx := indexByte(w.buffer, '\n')
		if idx == -1 {
			break
		}
		w.logger.Info(string(trimCR(w.buffer[:idx])))
		w.buffer = w.buffer[idx+1:]
	}
	return len(p), nil
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
