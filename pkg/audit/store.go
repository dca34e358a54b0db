package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of log entries retained in memory before
// the oldest entries are evicted.
const DefaultCapacity = 1000

// DefaultQueryLimit is the number of entries returned by Query when the
// query does not specify a limit.
const DefaultQueryLimit = 50

// Store is a bounded in-memory log of rule evaluation outcomes. Entries
// are retained in append order; once capacity is reached the oldest
// entries are evicted first. An optional ArchiveSink receives evicted
// entries for durable retention.
//
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	entries  []*LogEntry
	capacity int

	archive ArchiveSink
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity overrides the default in-memory capacity.
// Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithArchiveSink attaches a sink that receives entries evicted from the
// in-memory window.
func WithArchiveSink(sink ArchiveSink) Option {
	return func(s *Store) {
		s.archive = sink
	}
}

// WithLogger sets the logger used to report archive failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty log store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		capacity: DefaultCapacity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "audit")
	return s
}

// Append records an entry, assigning an ID and timestamp when unset. The
// store keeps its own copy, so callers may reuse the entry afterwards.
//
// Appending never fails because of eviction or archive errors: when the
// sink rejects evicted entries they are dropped with a warning, and the
// append itself still succeeds.
func (s *Store) Append(ctx context.Context, entry *LogEntry) error {
	if entry == nil {
		return fmt.Errorf("log entry cannot be nil")
	}

	stored := entry.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}

	var evicted []*LogEntry

	s.mu.Lock()
	s.entries = append(s.entries, stored)
	if overflow := len(s.entries) - s.capacity; overflow > 0 {
		evicted = make([]*LogEntry, overflow)
		copy(evicted, s.entries[:overflow])
		n := copy(s.entries, s.entries[overflow:])
		for i := n; i < len(s.entries); i++ {
			s.entries[i] = nil
		}
		s.entries = s.entries[:n]
	}
	s.mu.Unlock()

	// Archive outside the lock so a slow sink cannot stall recording.
	if len(evicted) > 0 && s.archive != nil {
		if err := s.archive.Archive(ctx, evicted); err != nil {
			s.logger.Warn("failed to archive evicted log entries",
				"count", len(evicted),
				"error", err)
		}
	}

	return nil
}

// Query returns entries matching the query, newest first.
func (s *Store) Query(q Query) []*LogEntry {
	limit := q.Limit
	if limit == 0 {
		limit = DefaultQueryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*LogEntry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if !matchesQuery(entry, q) {
			continue
		}
		results = append(results, entry.Clone())
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}

func matchesQuery(entry *LogEntry, q Query) bool {
	if q.RuleID != "" && entry.RuleID != q.RuleID {
		return false
	}
	if q.CampaignID != "" && entry.CampaignID != q.CampaignID {
		return false
	}
	if q.Triggered != nil && entry.Triggered != *q.Triggered {
		return false
	}
	if q.Since != nil && entry.Timestamp.Before(*q.Since) {
		return false
	}
	return true
}

// Stats summarizes the entries currently retained.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalLogs: len(s.entries)}
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, entry := range s.entries {
		if entry.Triggered {
			stats.TriggeredCount++
		}
		if !entry.Timestamp.Before(cutoff) {
			stats.RecentLogs++
		}
	}
	if stats.TotalLogs > 0 {
		stats.SuccessRate = float64(stats.TriggeredCount) / float64(stats.TotalLogs) * 100
	}
	return stats
}

// Len returns the number of entries currently retained.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Capacity returns the configured in-memory capacity.
func (s *Store) Capacity() int {
	return s.capacity
}

// Clear removes all entries (for testing).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
