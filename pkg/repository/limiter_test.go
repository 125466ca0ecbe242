package repository

import (
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func count(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPage(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		skip  int
		take  int
		items []int
		more  bool
	}{
		{"middle page", 10, 3, 4, []int{3, 4, 5, 6}, true},
		{"skip past end", 10, 15, 4, nil, false},
		{"last page exact", 10, 6, 4, []int{6, 7, 8, 9}, false},
		{"last page short", 10, 8, 4, []int{8, 9}, false},
		{"negative skip", 5, -2, 2, []int{0, 1}, true},
		{"unbounded", 5, 1, -1, []int{1, 2, 3, 4}, false},
		{"take zero", 5, 0, 0, nil, true},
		{"take zero at end", 5, 5, 0, nil, false},
		{"empty source", 0, 0, 3, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, more := Page(slices.Values(count(tt.size)), tt.skip, tt.take)
			assert.Equal(t, tt.items, items)
			assert.Equal(t, tt.more, more)
		})
	}
}

// counting wraps a sequence and records how many elements were pulled.
func counting(values []int, pulled *int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, v := range values {
			*pulled++
			if !yield(v) {
				return
			}
		}
	}
}

func TestLimiterSinglePass(t *testing.T) {
	var pulled int
	items, more := Page(counting(count(10), &pulled), 3, 4)

	assert.Equal(t, []int{3, 4, 5, 6}, items)
	assert.True(t, more)
	// 3 skipped, 4 returned, 1 peeked
	assert.Equal(t, 8, pulled)
}

func TestLimiterHasNext(t *testing.T) {
	l := NewLimiter(slices.Values(count(3)), 1, 1)
	defer l.Stop()

	assert.True(t, l.HasNext())
	assert.True(t, l.HasNext())
	v, ok := l.Next()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.False(t, l.HasNext())
	assert.True(t, l.HasMore())
}

func TestPageBounds(t *testing.T) {
	skip, take := pageBounds(0, -5)
	assert.Equal(t, 0, skip)
	assert.Equal(t, -1, take)

	skip, take = pageBounds(10, 2)
	assert.Equal(t, 2, skip)
	assert.Equal(t, 10, take)
}
