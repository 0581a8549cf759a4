// Copyright 2025 R5 Labs
// This file is part of the R5 Core library.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

// Package log provides the gateway's structured logging facade. It wraps
// log/slog the way the upstream node's log package wraps it, trimmed to what
// a flat-package gateway needs: no per-file verbosity (vmodule), just
// level-filtered, colorized-when-a-TTY key/value logging.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Level mirrors slog.Level with two extra gradations the teacher's log
// package also carries: Trace (below Debug) and Crit (above Error).
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelCrit  = slog.Level(12)
)

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelCrit:  "CRIT",
}

// Logger is the interface handed out by New and used throughout the gateway.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	With(ctx ...any) Logger
}

type logger struct {
	inner *slog.Logger
}

// New returns a Logger with the given key/value pairs attached to every
// subsequent record, rooted at the package-level handler.
func New(ctx ...any) Logger {
	return &logger{inner: slog.New(rootHandler).With(ctx...)}
}

func (l *logger) log(level slog.Level, msg string, ctx ...any) {
	l.inner.Log(context.Background(), level, msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...any)  { l.log(LevelCrit, msg, ctx...) }

func (l *logger) With(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

// rootHandler backs every Logger returned by New, and the package-level
// default logger below. SetHandler replaces it.
var rootHandler slog.Handler = NewTerminalHandler(os.Stderr, LevelInfo)

// root is the process-wide default logger used by the package-level
// Trace/Debug/.../Crit functions.
var root Logger = &logger{inner: slog.New(rootHandler)}

// SetHandler replaces the handler backing both the package-level default
// logger and every Logger subsequently returned by New.
func SetHandler(h slog.Handler) {
	rootHandler = h
	root = &logger{inner: slog.New(h)}
}

func Trace(msg string, ctx ...any) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { root.Crit(msg, ctx...) }
