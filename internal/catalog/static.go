package catalog

import (
	"context"
	"time"

	"campaign_builder/internal/domain"
)

// StaticSource serves a fixed collection, such as the snapshot written by the
// cache syncer. Fetch never leaves the process.
type StaticSource[T any] struct {
	state domain.SyncState[T]
}

// NewStaticSource is ready with items, or failed when items is empty.
func NewStaticSource[T any](items []T, fetchedAt *time.Time) *StaticSource[T] {
	st := domain.SyncState[T]{Items: items, Phase: domain.PhaseReady, LastFetchedAt: fetchedAt}
	if len(items) == 0 {
		st = domain.SyncState[T]{Items: []T{}, Phase: domain.PhaseFailed, LastError: "stored snapshot is empty"}
	}
	return &StaticSource[T]{state: st.Clone()}
}

func (s *StaticSource[T]) State() domain.SyncState[T] {
	return s.state.Clone()
}

func (s *StaticSource[T]) Fetch(context.Context, bool) domain.SyncState[T] {
	return s.state.Clone()
}
