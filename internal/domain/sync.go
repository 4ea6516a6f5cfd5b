package domain

import "time"

// Phase is the lifecycle position of a remote collection fetch.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseLoading      Phase = "loading"
	PhasePendingRetry Phase = "pending-retry"
	PhaseReady        Phase = "ready"
	PhaseFailed       Phase = "failed"
)

// Busy reports whether a fetch is outstanding.
func (p Phase) Busy() bool {
	return p == PhaseLoading || p == PhasePendingRetry
}

// Terminal reports whether the last fetch has settled.
func (p Phase) Terminal() bool {
	return p == PhaseReady || p == PhaseFailed
}

// SyncState is the cached view of one remote collection.
//
// Phase ready means Items holds the most recent successful parse; phase
// failed means Items is empty and LastError is set.
type SyncState[T any] struct {
	Items         []T
	Phase         Phase
	RetryCount    int
	Dropped       int
	LastError     string
	Err           error
	LastFetchedAt *time.Time
	NextAttemptAt *time.Time
}

// cloner is implemented by items holding pointers.
type cloner[T any] interface {
	Clone() T
}

// Clone returns a copy that shares no mutable memory with s.
func (s SyncState[T]) Clone() SyncState[T] {
	out := s
	out.Items = make([]T, len(s.Items))
	for i, it := range s.Items {
		if c, ok := any(it).(cloner[T]); ok {
			out.Items[i] = c.Clone()
			continue
		}
		out.Items[i] = it
	}
	if s.LastFetchedAt != nil {
		t := *s.LastFetchedAt
		out.LastFetchedAt = &t
	}
	if s.NextAttemptAt != nil {
		t := *s.NextAttemptAt
		out.NextAttemptAt = &t
	}
	return out
}

// SyncRecord is the persisted outcome of the latest cache sync of a source.
type SyncRecord struct {
	ID           int64     `db:"id"`
	SourceID     string    `db:"source_id"`
	Phase        string    `db:"phase"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	ItemCount    int       `db:"item_count"`
	DroppedCount int       `db:"dropped_count"`
	LastError    string    `db:"last_error"`
	TotalSyncs   int64     `db:"total_syncs"`
}

// SyncStats holds statistics about a cache sync of one source.
type SyncStats struct {
	SourceID   string
	Phase      Phase
	Items      int
	Dropped    int
	RetryCount int
	Error      string
	Duration   time.Duration
}
