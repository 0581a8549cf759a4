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

package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var levelColor = map[slog.Level]*color.Color{
	LevelTrace: color.New(color.FgHiBlack),
	LevelDebug: color.New(color.FgBlue),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
	LevelCrit:  color.New(color.FgHiRed, color.Bold),
}

// terminalHandler renders a compact, logfmt-adjacent line:
//
//	INFO  [2026-07-29|10:15:04.001] dispatch ok                          method=eth_chainId reqid=abc123
type terminalHandler struct {
	mu       *sync.Mutex
	out      io.Writer
	minLevel slog.Level
	useColor bool
	attrs    []slog.Attr
}

// NewTerminalHandler returns an slog.Handler that writes human-readable,
// optionally colorized lines to w. Color is enabled automatically when w is
// a terminal (os.Stdout/os.Stderr and isatty.IsTerminal holds).
func NewTerminalHandler(w io.Writer, minLevel slog.Level) slog.Handler {
	useColor := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &terminalHandler{mu: new(sync.Mutex), out: w, minLevel: minLevel, useColor: useColor}
}

func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	name := levelNames[r.Level]
	if name == "" {
		name = r.Level.String()
	}
	if h.useColor {
		if c, ok := levelColor[r.Level]; ok {
			name = c.Sprint(name)
		}
	}
	fmt.Fprintf(&buf, "%-5s [%s] %-36s", name, r.Time.Format("2006-01-02|15:04:05.000"), r.Message)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	for _, a := range attrs {
		fmt.Fprintf(&buf, " %s=%s", a.Key, formatValue(a.Value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &terminalHandler{mu: h.mu, out: h.out, minLevel: h.minLevel, useColor: h.useColor}
	next.attrs = append(next.attrs, h.attrs...)
	next.attrs = append(next.attrs, attrs...)
	return next
}

func (h *terminalHandler) WithGroup(_ string) slog.Handler {
	// Groups are not meaningful for this flat key=value rendering; attributes
	// added under a group are still flattened onto the line.
	return h
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		s := fmt.Sprintf("%v", v.Any())
		for _, r := range s {
			if r == ' ' || r == '"' {
				return fmt.Sprintf("%q", s)
			}
		}
		return s
	}
}
