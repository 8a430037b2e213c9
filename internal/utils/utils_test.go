package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMillify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n         int
		precision int
		want      string
	}{
		{0, 2, "0"},
		{999, 2, "999"},
		{1000, 2, "1K"},
		{1500, 2, "1.5K"},
		{12345, 1, "12.3K"},
		{1_500_000, 2, "1.5M"},
		{-2_000_000_000, 2, "-2B"},
		{1234, -1, "1.23K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Millify(tt.n, tt.precision), "Millify(%d, %d)", tt.n, tt.precision)
	}
}

func TestHumanDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42s", HumanDuration(42*time.Second))
	assert.Equal(t, "14m", HumanDuration(14*time.Minute+10*time.Second))
	assert.Equal(t, "2h05m", HumanDuration(2*time.Hour+5*time.Minute+59*time.Second))
	assert.Equal(t, "0s", HumanDuration(0))
}

func TestSince(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 22, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "today", Since(now.Add(-time.Hour), now))
	assert.Equal(t, "1 day ago", Since(now.Add(-30*time.Hour), now))
	assert.Equal(t, "3653 days ago", Since(time.Date(2014, 6, 22, 12, 0, 0, 0, time.UTC), now))
}
