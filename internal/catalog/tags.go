package catalog

import (
	"context"
	"strings"
	"time"

	"campaign_builder/internal/domain"
)

// TagSource is the sync state owner for tags. *fetcher.Client[domain.Tag]
// satisfies it.
type TagSource interface {
	State() domain.SyncState[domain.Tag]
	Fetch(ctx context.Context, force bool) domain.SyncState[domain.Tag]
}

// TagStats summarises the cached tags.
type TagStats struct {
	Total         int
	ByKind        map[domain.TagKind]int
	LastFetchedAt *time.Time
	RetryCount    int
	Loading       bool
	Error         string
}

// TagRepository answers queries over the most recent tag sync. It never
// mutates the underlying state.
type TagRepository struct {
	src TagSource
}

func NewTagRepository(src TagSource) *TagRepository {
	return &TagRepository{src: src}
}

// Refresh forces a new fetch, superseding any outstanding one.
func (r *TagRepository) Refresh(ctx context.Context) domain.SyncState[domain.Tag] {
	return r.src.Fetch(ctx, true)
}

// Load fetches only when nothing has been fetched yet.
func (r *TagRepository) Load(ctx context.Context) domain.SyncState[domain.Tag] {
	if st := r.src.State(); st.Phase != domain.PhaseIdle {
		return st
	}
	return r.src.Fetch(ctx, false)
}

func (r *TagRepository) Phase() domain.Phase {
	return r.src.State().Phase
}

func (r *TagRepository) LastError() string {
	return r.src.State().LastError
}

func (r *TagRepository) All() []domain.Tag {
	return r.src.State().Items
}

func (r *TagRepository) ByKind(kind domain.TagKind) []domain.Tag {
	return filter(r.All(), func(t domain.Tag) bool { return t.Kind == kind })
}

func (r *TagRepository) ByID(id int64) (domain.Tag, bool) {
	return find(r.All(), func(t domain.Tag) bool { return t.ID == id })
}

// ByName returns the first tag named name. Tag names are not unique across
// kinds.
func (r *TagRepository) ByName(name string, caseInsensitive bool) (domain.Tag, bool) {
	return find(r.All(), func(t domain.Tag) bool { return sameName(t.Name, name, caseInsensitive) })
}

// Exists reports whether a tag of any kind is named name, ignoring case.
func (r *TagRepository) Exists(name string) bool {
	_, ok := r.ByName(name, true)
	return ok
}

func (r *TagRepository) Names() []string {
	return names(r.All())
}

func (r *TagRepository) NamesByKind(kind domain.TagKind) []string {
	return names(r.ByKind(kind))
}

func (r *TagRepository) Stats() TagStats {
	st := r.src.State()
	stats := TagStats{
		Total:         len(st.Items),
		ByKind:        make(map[domain.TagKind]int),
		LastFetchedAt: st.LastFetchedAt,
		RetryCount:    st.RetryCount,
		Loading:       st.Phase.Busy(),
		Error:         st.LastError,
	}
	for _, t := range st.Items {
		stats.ByKind[t.Kind]++
	}
	return stats
}

func names(tags []domain.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

func sameName(a, b string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func find[T any](items []T, match func(T) bool) (T, bool) {
	for _, it := range items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}
