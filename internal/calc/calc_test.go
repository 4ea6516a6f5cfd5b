package calc

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign_builder/internal/domain"
)

func accounts(n int) []domain.Account {
	out := make([]domain.Account, n)
	for i := range out {
		out[i] = domain.Account{ID: int64(i + 1), Name: fmt.Sprintf("acc-%d", i+1)}
	}
	return out
}

func TestDistribute_SumAndSpread(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7} {
		for _, total := range []int{0, 1, 5, 10, 99, 100, 1001} {
			got := Distribute(total, accounts(n))
			require.Len(t, got, n)

			sum, lo, hi := 0, math.MaxInt, 0
			for _, e := range got {
				sum += e.LeadCount
				lo = min(lo, e.LeadCount)
				hi = max(hi, e.LeadCount)
			}
			assert.Equal(t, total, sum, "total=%d accounts=%d", total, n)
			assert.LessOrEqual(t, hi-lo, 1, "total=%d accounts=%d", total, n)
		}
	}
}

func TestDistribute_RemainderGoesFirst(t *testing.T) {
	got := Distribute(10, accounts(3))

	assert.Equal(t, []domain.LeadDistributionEntry{
		{AccountID: 1, AccountName: "acc-1", LeadCount: 4},
		{AccountID: 2, AccountName: "acc-2", LeadCount: 3},
		{AccountID: 3, AccountName: "acc-3", LeadCount: 3},
	}, got)
}

func TestDistribute_Edges(t *testing.T) {
	for _, e := range Distribute(0, accounts(4)) {
		assert.Zero(t, e.LeadCount)
	}

	assert.Equal(t, []domain.LeadDistributionEntry{}, Distribute(50, nil))

	for _, e := range Distribute(-5, accounts(2)) {
		assert.Zero(t, e.LeadCount)
	}
}

func TestFromMinMax(t *testing.T) {
	tests := []struct {
		min, max, want int
	}{
		{60, 180, 120},
		{1, 2, 2},
		{1, 4, 3},
		{59, 60, 60},
		{0, 1, 1},
	}
	for _, tt := range tests {
		got := FromMinMax(tt.min, tt.max)
		assert.Equal(t, tt.want, got, "%d..%d", tt.min, tt.max)
		assert.Equal(t, int(math.Round(float64(tt.min+tt.max)/2)), got)
		assert.Equal(t, got, FromMinMax(tt.min, tt.max))
	}
}

func TestFromPreset(t *testing.T) {
	assert.Equal(t, DelayRange{Min: 60, Max: 180}, FromPreset(120))
	assert.Equal(t, DelayRange{Min: 1, Max: 90}, FromPreset(30))
	assert.Equal(t, DelayRange{Min: 1, Max: 120}, FromPreset(60))

	for _, p := range DelayPresets {
		r := FromPreset(p.Value)
		assert.True(t, r.Valid(), p.Label)
	}
}

func TestDelayRange_Average(t *testing.T) {
	r := FromPreset(300)
	assert.Equal(t, 300, r.Average())
	assert.False(t, DelayRange{Min: 10, Max: 10}.Valid())
}
