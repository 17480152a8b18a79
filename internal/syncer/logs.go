package syncer

import (
	"encoding/json"
	"fmt"
	"time"

	"recommender/internal/logbuffer"
	"recommender/internal/logger"
	"recommender/internal/stacc"
)

// BatchSize is how many buffered entries go into one logs dispatch.
const BatchSize = 250

// Dispatcher is the slice of the API client the syncers need.
type Dispatcher interface {
	Send(op stacc.Operation, payload map[string]interface{}, timeout time.Duration) stacc.Result
}

// LogFlusher drains the buffer file into batched logs dispatches. The
// buffer is cleared only after every batch is confirmed, so a mid-stream
// failure resends everything on the next cycle: delivery is at-least-once
// and the remote side may see duplicates.
//
// Flush is not safe to run concurrently with itself; it is expected to be
// driven by a single external sync trigger.
type LogFlusher struct {
	api     Dispatcher
	sink    *logbuffer.Sink
	logger  *logger.Logger
	timeout time.Duration
}

func NewLogFlusher(api Dispatcher, sink *logbuffer.Sink, logger *logger.Logger, timeout time.Duration) *LogFlusher {
	return &LogFlusher{
		api:     api,
		sink:    sink,
		logger:  logger,
		timeout: timeout,
	}
}

// Flush sends all buffered entries and archives the buffer file. An empty
// buffer is a no-op success. The first batch failure aborts the cycle with
// the file untouched.
func (f *LogFlusher) Flush() error {
	lines, err := f.sink.ReadAll()
	if err != nil {
		f.logger.Error("Failed to read log buffer: %v", err)
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	entries := parseEntries(lines)
	if len(entries) == 0 {
		// Nothing decodable; archive so the next cycle starts clean.
		return f.sink.ArchiveAndClear()
	}

	total := len(entries)
	sent := 0
	for start := 0; start < total; start += BatchSize {
		end := start + BatchSize
		if end > total {
			end = total
		}
		batch := entries[start:end]

		if end == total {
			// Completeness marker so the remote side can account for the
			// full cycle.
			batch = append(batch, f.sink.NewEntry(
				logbuffer.LevelInfo,
				fmt.Sprintf("Finished sending logs %d/%d", len(batch)+1, total+1),
				map[string]interface{}{"size": len(batch) + 1},
			))
		}

		res := f.api.Send(stacc.OpLogs, map[string]interface{}{"logs": batch}, f.timeout)
		if !res.OK {
			// Failure reporting must not touch the buffer the next cycle
			// will resend.
			f.logger.Error("Failed to send the logs, stopped at %d/%d: %s", sent, total, res.Error())
			return fmt.Errorf("log flush aborted after %d/%d entries: %s", sent, total, res.Error())
		}
		sent = end
	}

	if err := f.sink.ArchiveAndClear(); err != nil {
		f.logger.Error("Failed to archive log buffer: %v", err)
		return err
	}
	return nil
}

// parseEntries decodes NDJSON lines, skipping anything malformed.
func parseEntries(lines []string) []logbuffer.Entry {
	entries := make([]logbuffer.Entry, 0, len(lines))
	for _, line := range lines {
		var entry logbuffer.Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
