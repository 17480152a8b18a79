package logbuffer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Channel identifies this extension in every buffered entry.
const Channel = "WOOCOMMERCE_EXTENSION"

// Log levels, most severe first.
const (
	LevelEmergency = "EMERGENCY"
	LevelAlert     = "ALERT"
	LevelCritical  = "CRITICAL"
	LevelError     = "ERROR"
	LevelWarning   = "WARNING"
	LevelNotice    = "NOTICE"
	LevelInfo      = "INFO"
	LevelDebug     = "DEBUG"
)

var severities = map[string]int{
	LevelEmergency: 800,
	LevelAlert:     700,
	LevelCritical:  600,
	LevelError:     500,
	LevelWarning:   400,
	LevelNotice:    300,
	LevelInfo:      200,
	LevelDebug:     100,
}

// Severity returns the numeric severity of a level, 0 if unknown.
func Severity(level string) int {
	return severities[level]
}

// Entry is one buffered log record awaiting delivery to the remote API.
// Entries are appended as single NDJSON lines and never mutated.
type Entry struct {
	Channel          string                 `json:"channel"`
	Level            string                 `json:"level"`
	Msg              string                 `json:"msg"`
	Timestamp        int64                  `json:"timestamp"`
	Context          map[string]interface{} `json:"context"`
	ExtensionVersion string                 `json:"extension_version"`
}

// Sink is the durable, append-only buffer file. Appends are single
// O_APPEND writes so overlapping request-scoped writers do not interleave
// within a line; reading and clearing is left to the flusher, which must
// not run concurrently with itself.
type Sink struct {
	path      string
	version   string
	threshold int

	mu sync.Mutex

	nowFunc func() time.Time
}

// NewSink returns a sink writing to path. Entries below threshold
// (a level name, e.g. "WARNING") are dropped; an empty threshold keeps
// everything.
func NewSink(path, version, threshold string) *Sink {
	return &Sink{
		path:      path,
		version:   version,
		threshold: severities[threshold],
		nowFunc:   time.Now,
	}
}

// Path returns the buffer file path.
func (s *Sink) Path() string {
	return s.path
}

// Version returns the extension version stamped on entries.
func (s *Sink) Version() string {
	return s.version
}

// NewEntry builds an entry stamped with the sink's channel, version and clock.
func (s *Sink) NewEntry(level, msg string, context map[string]interface{}) Entry {
	if context == nil {
		context = map[string]interface{}{}
	}
	return Entry{
		Channel:          Channel,
		Level:            level,
		Msg:              msg,
		Timestamp:        s.nowFunc().Unix(),
		Context:          context,
		ExtensionVersion: s.version,
	}
}

// Append writes one entry to the buffer file as a single NDJSON line.
func (s *Sink) Append(entry Entry) error {
	if severities[entry.Level] < s.threshold {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode log entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open buffer file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// ReadAll returns the raw buffer lines. A missing file reads as empty.
func (s *Sink) ReadAll() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read buffer file: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ArchiveAndClear copies the buffer file to its "_sent" sibling and then
// deletes the original. If the copy succeeds but the delete does not, the
// original stays in place and a later cycle repeats both steps, so the
// operation is safe to retry.
func (s *Sink) ArchiveAndClear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open buffer file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(s.archivePath())
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to archive buffer file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close archive file: %w", err)
	}

	src.Close()
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("failed to remove buffer file: %w", err)
	}
	return nil
}

func (s *Sink) archivePath() string {
	ext := filepath.Ext(s.path)
	return strings.TrimSuffix(s.path, ext) + "_sent" + ext
}

// Leveled helpers mirroring the eight remote log levels.

func (s *Sink) LogEmergency(msg string, context map[string]interface{}) {
	s.Append(s.NewEntry(LevelEmergency, msg, context))
}

func (s *Sink) LogAlert(msg string, context map[string]interface{}) {
	s.Append(s.NewEntry(LevelAlert, msg, context))
}

func (s *Sink) LogCritical(msg string, context map[string]interface{}) {
	s.Append(s.NewEntry(LevelCritical, msg, context))
}

func (s *Sink) LogError(msg string, context map[string]interface{}) {
	s.Append(s.NewEntry(LevelError, msg, context))
}

func (s *Sink) LogWarning(msg string, context map[string]interface{}) {
	s.Append(s.NewEntry(LevelWarning, msg, context))
}

func (s *Sink) LogNotice(msg string, context map[string]interface{}) {
	s.Append(s.NewEntry(LevelNotice, msg, context))
}

func (s *Sink) LogInfo(msg string, context map[string]interface{}) {
	s.Append(s.NewEntry(LevelInfo, msg, context))
}

func (s *Sink) LogDebug(msg string, context map[string]interface{}) {
	s.Append(s.NewEntry(LevelDebug, msg, context))
}
