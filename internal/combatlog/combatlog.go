// Package combatlog collects the diagnostic combat log of a single
// iteration. Entries are buffered in order and handed to a Sink when the
// iteration ends or the run aborts.
package combatlog

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Entry is one combat log line. Static entries carry no timestamp.
type Entry struct {
	At     time.Duration
	Line   string
	Static bool
}

// String renders the entry the way the writer sink prints it.
func (e Entry) String() string {
	if e.Static {
		return e.Line
	}
	return fmt.Sprintf("[%6.2fs] %s", e.At.Round(time.Millisecond).Seconds(), e.Line)
}

// Sink receives flushed entries in order.
type Sink interface {
	Write(e Entry) error
}

// WriterSink prints entries as text lines.
type WriterSink struct {
	w io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(e Entry) error {
	_, err := fmt.Fprintln(s.w, e.String())
	return err
}

// ZapSink forwards entries to a structured logger at debug level.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger.Named("combatlog")}
}

func (s *ZapSink) Write(e Entry) error {
	if e.Static {
		s.logger.Debug(e.Line)
		return nil
	}
	s.logger.Debug(e.Line, zap.Duration("fight_time", e.At))
	return nil
}

// Buffer accumulates entries until Flush. A nil *Buffer discards everything,
// so callers can hold one unconditionally.
type Buffer struct {
	sink    Sink
	entries []Entry
}

func NewBuffer(sink Sink) *Buffer {
	return &Buffer{sink: sink}
}

// Add appends a timestamped line.
func (b *Buffer) Add(at time.Duration, format string, args ...any) {
	if b == nil {
		return
	}
	b.entries = append(b.entries, Entry{At: at, Line: fmt.Sprintf(format, args...)})
}

// Static appends a line without a timestamp.
func (b *Buffer) Static(format string, args ...any) {
	if b == nil {
		return
	}
	b.entries = append(b.entries, Entry{Line: fmt.Sprintf(format, args...), Static: true})
}

// Entries returns the buffered entries.
func (b *Buffer) Entries() []Entry {
	if b == nil {
		return nil
	}
	return b.entries
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Flush writes every buffered entry to the sink and clears the buffer. The
// buffer is cleared even when the sink fails.
func (b *Buffer) Flush() error {
	if b == nil {
		return nil
	}
	entries := b.entries
	b.entries = nil
	if b.sink == nil {
		return nil
	}
	for _, e := range entries {
		if err := b.sink.Write(e); err != nil {
			return fmt.Errorf("write combat log: %w", err)
		}
	}
	return nil
}
