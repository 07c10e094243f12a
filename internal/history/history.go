// Package history implements the command-history collaborator named in
// spec.md §6: an append-only serialized binary file at $HOME/.bitehistory.
// The core only emits "add entry" events and reads on startup; the wire
// format is entirely this package's own decision (see DESIGN.md's
// resolution of the "History file format" open question).
package history

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"bite/internal/config"
	"bite/internal/system"
)

// Entry is one recorded command submission.
type Entry struct {
	Text string
	At   time.Time
}

// Store appends entries to $HOME/.bitehistory and can reload them on
// startup. Safe for concurrent AddEntry calls.
type Store struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// Open opens (creating if necessary) the history file for appending.
func Open() (*Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, f: f}, nil
}

// AddEntry implements session.HistorySink: it appends one record as
// [8-byte big-endian unix-nano timestamp][4-byte big-endian length][utf8 text].
func (s *Store) AddEntry(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return
	}
	var header [12]byte
	binary.BigEndian.PutUint64(header[0:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint32(header[8:12], uint32(len(text)))
	if _, err := s.f.Write(header[:]); err != nil {
		system.Logger.Warn("history write failed", "err", err)
		return
	}
	if _, err := s.f.WriteString(text); err != nil {
		system.Logger.Warn("history write failed", "err", err)
	}
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// Load reads every entry from the history file in submission order.
func Load() ([]Entry, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var entries []Entry
	for {
		var header [12]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return entries, err
		}
		at := time.Unix(0, int64(binary.BigEndian.Uint64(header[0:8])))
		n := binary.BigEndian.Uint32(header[8:12])
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return entries, err
		}
		entries = append(entries, Entry{Text: string(buf), At: at})
	}
	return entries, nil
}
