package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncStateClone_CopiesAccountTagIDs(t *testing.T) {
	tagID := int64(3)
	fetched := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	st := SyncState[Account]{
		Phase:         PhaseReady,
		Items:         []Account{{ID: 1, TagID: &tagID}, {ID: 2}},
		LastFetchedAt: &fetched,
	}

	out := st.Clone()
	*out.Items[0].TagID = 99
	out.Items[1].Name = "changed"
	*out.LastFetchedAt = fetched.Add(time.Hour)

	assert.Equal(t, int64(3), tagID)
	assert.Empty(t, st.Items[1].Name)
	assert.Equal(t, fetched, *st.LastFetchedAt)
	assert.Nil(t, out.Items[1].TagID)
}

func TestSyncStateClone_PlainItems(t *testing.T) {
	st := SyncState[Tag]{Items: []Tag{{ID: 1, Name: "cliente"}}}

	out := st.Clone()
	out.Items[0].Name = "vip"

	assert.Equal(t, "cliente", st.Items[0].Name)
}
