package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives progress notifications while a pipeline works
// through an entry's documents.
type ProgressCallback interface {
	// OnStart is called once with the number of documents to process.
	OnStart(total int)

	// OnProgress is called after each document.
	OnProgress(current, total int)

	// OnComplete is called when the entry is finished.
	OnComplete()

	// OnError is called when a document fails.
	OnError(current int, err error)
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)              {}
func (NoOpProgressCallback) OnProgress(current, total int)  {}
func (NoOpProgressCallback) OnComplete()                    {}
func (NoOpProgressCallback) OnError(current int, err error) {}

// ConsoleProgressCallback draws a progress bar on the console.
type ConsoleProgressCallback struct {
	writer    io.Writer
	prefix    string
	width     int
	mutex     sync.Mutex
	startTime time.Time
}

// NewConsoleProgressCallback creates a console progress reporter. A nil
// writer defaults to stderr.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{writer: writer, prefix: prefix, width: 40}
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.startTime = time.Now()
	_, _ = fmt.Fprintf(c.writer, "%s0/%d\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if total == 0 {
		return
	}
	filled := c.width * current / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	percent := float64(current) / float64(total) * 100.0
	_, _ = fmt.Fprintf(c.writer, "\r%s[%s] %d/%d (%.1f%%)", c.prefix, bar, current, total, percent)
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	elapsed := time.Since(c.startTime)
	_, _ = fmt.Fprintf(c.writer, "\n%sCompleted in %v\n", c.prefix, elapsed.Round(time.Millisecond))
}

func (c *ConsoleProgressCallback) OnError(current int, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, _ = fmt.Fprintf(c.writer, "\n%sError at document %d: %v\n", c.prefix, current, err)
}

// LogProgressCallback logs progress updates through slog, for runs without a
// console.
type LogProgressCallback struct {
	logger    *slog.Logger
	level     slog.Level
	startTime time.Time
}

func NewLogProgressCallback(logger *slog.Logger, level slog.Level) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{logger: logger, level: level}
}

func (l *LogProgressCallback) OnStart(total int) {
	l.startTime = time.Now()
	l.logger.Log(nil, l.level, "processing entry", "documents", total)
}

func (l *LogProgressCallback) OnProgress(current, total int) {
	l.logger.Log(nil, l.level, "document done", "current", current, "total", total)
}

func (l *LogProgressCallback) OnComplete() {
	l.logger.Log(nil, l.level, "entry complete", "elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgressCallback) OnError(current int, err error) {
	l.logger.Log(nil, slog.LevelError, "document failed", "current", current, "error", err)
}
