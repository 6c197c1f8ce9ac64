package ledger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// FileStore appends one JSON line per recorded attempt to a local file and keeps
// running counters in memory, replaying the file at startup so that counters
// survive a restart within the same calendar day.
type FileStore struct {
	mu   sync.Mutex
	path string
	file *os.File
	days map[string]map[string]Counts
}

var _ Store = (*FileStore)(nil)

type fileEntry struct {
	Service string `json:"service"`
	Day     string `json:"day"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewFileStore opens (or creates) the usage file at the given path and replays any
// existing entries into memory.
func NewFileStore(path string) (*FileStore, error) {
	wrapMsg := "unable to open the usage file"

	s := &FileStore{
		path: path,
		days: make(map[string]map[string]Counts),
	}

	if err := s.replay(); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	s.file = f

	return s, nil
}

// replay loads the counters recorded by previous runs. Unparseable lines are
// skipped so that a torn write at the tail of the file can't wedge startup.
func (s *FileStore) replay() error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry fileEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		s.apply(entry)
	}
	return scanner.Err()
}

// apply folds one entry into the in-memory counters. Must be called with the lock
// held once the store is shared.
func (s *FileStore) apply(entry fileEntry) {
	day := s.days[entry.Day]
	if day == nil {
		day = make(map[string]Counts)
		s.days[entry.Day] = day
	}
	c := day[entry.Service]
	if entry.Success {
		c.Success++
	} else {
		c.Failure++
	}
	day[entry.Service] = c
}

func (s *FileStore) Increment(ctx context.Context, service string, day time.Time, success bool, errDetail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := fileEntry{
		Service: service,
		Day:     DayKey(day),
		Success: success,
		Error:   errDetail,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return err
	}

	s.apply(entry)
	return nil
}

func (s *FileStore) Counts(ctx context.Context, day time.Time) (map[string]Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]Counts)
	for service, c := range s.days[DayKey(day)] {
		snapshot[service] = c
	}
	return snapshot, nil
}

// Close releases the underlying file handle.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
