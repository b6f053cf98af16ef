package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// consoleHandler writes bare messages, without timestamps or level prefixes.
// Debug records also carry their attributes.
type consoleHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	debugMode bool
	quiet     *bool
	attrs     []slog.Attr
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.debugMode
	}
	return true
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	msg := record.Message
	if record.Level == slog.LevelDebug {
		var sb strings.Builder
		sb.WriteString(msg)
		write := func(a slog.Attr) bool {
			fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
			return true
		}
		for _, a := range h.attrs {
			write(a)
		}
		record.Attrs(write)
		msg = sb.String()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if *h.quiet {
		return nil
	}
	_, err := fmt.Fprintln(h.writer, msg)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// createLumberjackLogger creates a rotating log file, tunable through the
// ST_LOG_MAX_SIZE, ST_LOG_MAX_BACKUPS and ST_LOG_MAX_AGE environment variables
func createLumberjackLogger(logFilePath string) *lumberjack.Logger {
	config := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    1, // megabytes
		MaxBackups: 2,
		MaxAge:     30, // days
		Compress:   false,
	}

	if n, ok := envInt("ST_LOG_MAX_SIZE"); ok && n > 0 {
		config.MaxSize = n
	}
	if n, ok := envInt("ST_LOG_MAX_BACKUPS"); ok && n >= 0 {
		config.MaxBackups = n
	}
	if n, ok := envInt("ST_LOG_MAX_AGE"); ok && n > 0 {
		config.MaxAge = n
	}
	return config
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// multiHandler fans out log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// SplogOptions configures a Splog
type SplogOptions struct {
	// Writer receives console output; defaults to stdout
	Writer io.Writer
	// LogFile enables a rotating debug log at this path
	LogFile string
	// Debug shows debug messages on the console
	Debug bool
}

// Splog is st's console output and structured log in one
type Splog struct {
	logger    *slog.Logger
	writer    io.Writer
	logWriter io.WriteCloser
	mu        sync.Mutex
	// quiet suppresses console output while a full-screen UI runs
	quiet bool
}

// NewSplog creates a console-only splog. Debug messages are shown when the
// DEBUG environment variable is set.
func NewSplog() *Splog {
	splog, _ := NewSplogWithConfig(SplogOptions{Debug: os.Getenv("DEBUG") != ""})
	return splog
}

// NewSplogWithConfig creates a splog with optional file logging
func NewSplogWithConfig(opts SplogOptions) (*Splog, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}
	splog := &Splog{writer: writer}

	handlers := []slog.Handler{&consoleHandler{
		mu:        &splog.mu,
		writer:    writer,
		debugMode: opts.Debug,
		quiet:     &splog.quiet,
	}}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lumberjackLogger := createLumberjackLogger(opts.LogFile)
		splog.logWriter = lumberjackLogger

		handlers = append(handlers, slog.NewTextHandler(lumberjackLogger, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
				}
				return a
			},
		}))
	}

	splog.logger = slog.New(&multiHandler{handlers: handlers})
	return splog, nil
}

// Logger exposes the underlying structured logger for library code
func (s *Splog) Logger() *slog.Logger {
	return s.logger
}

// SetQuiet suppresses console output while quiet is true
func (s *Splog) SetQuiet(quiet bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiet = quiet
}

func (s *Splog) log(level slog.Level, prefix, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.logger.Log(context.Background(), level, prefix+msg)
}

// Info writes an info message
func (s *Splog) Info(format string, args ...any) {
	s.log(slog.LevelInfo, "", format, args...)
}

// Warn writes a warning message
func (s *Splog) Warn(format string, args ...any) {
	s.log(slog.LevelWarn, "⚠️  ", format, args...)
}

// Error writes an error message
func (s *Splog) Error(format string, args ...any) {
	s.log(slog.LevelError, "❌ ", format, args...)
}

// Debug writes a debug message
func (s *Splog) Debug(format string, args ...any) {
	s.log(slog.LevelDebug, "", format, args...)
}

// Tip writes a hint about what to do next
func (s *Splog) Tip(format string, args ...any) {
	s.log(slog.LevelInfo, "💡 ", format, args...)
}

// Page writes preformatted output as is
func (s *Splog) Page(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.quiet {
		_, _ = fmt.Fprint(s.writer, content)
	}
}

// Newline writes a newline
func (s *Splog) Newline() {
	s.Page("\n")
}

// Close closes the log file if one was opened
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}
