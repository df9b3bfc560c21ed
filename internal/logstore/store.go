// Package logstore provides bounded in-memory retention of captured step
// output. Retention is best-effort by design: the store holds logs in a
// weight-bounded LRU cache so a run with many large logs stays within a
// fixed memory budget, ejecting the least recently touched entries first.
package logstore

import (
	"sync"

	"github.com/specialistvlad/pipewright/internal/lrucache"
)

// Defaults bound the store at 64 entries of up to 256 KiB each.
const (
	DefaultMaxEntries    = 64
	DefaultMaxEntryBytes = 256 * 1024
)

// Store is a thread-safe, weight-bounded log store. Keys are the
// combination label of the instance plus the step name.
type Store struct {
	mu            sync.Mutex
	cache         *lrucache.Cache[string, lrucache.Bytes]
	maxEntryBytes int
}

// New creates a store holding at most maxEntries logs of maxEntryBytes
// each. Larger logs are truncated to the entry bound before insertion.
func New(maxEntries, maxEntryBytes int) (*Store, error) {
	cache, err := lrucache.New[string, lrucache.Bytes](maxEntries, maxEntryBytes)
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache, maxEntryBytes: maxEntryBytes}, nil
}

// Put retains the output of one step invocation, truncating the head of
// oversized logs so the failing tail survives.
func (s *Store) Put(instanceLabel, stepName string, output []byte) {
	if len(output) == 0 {
		return
	}
	if len(output) > s.maxEntryBytes {
		output = output[len(output)-s.maxEntryBytes:]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Insert cannot fail after truncation; the entry fits by construction.
	_ = s.cache.Insert(key(instanceLabel, stepName), lrucache.Bytes(output))
}

// Get returns the retained output for a step, if it is still resident.
func (s *Store) Get(instanceLabel, stepName string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(key(instanceLabel, stepName))
	return []byte(v), ok
}

func key(instanceLabel, stepName string) string {
	return instanceLabel + "/" + stepName
}
