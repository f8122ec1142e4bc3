package logcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendDropsOldestOnOverflow(t *testing.T) {
	c := NewCache(3)
	base := time.Unix(1000, 0)

	for i := 0; i < 5; i++ {
		c.Append(Record{Timestamp: base.Add(time.Duration(i) * time.Second), Severity: "INFO", Message: "m"})
	}

	got := c.Get(10)
	require.Len(t, got, 3)
	assert.Equal(t, base.Add(2*time.Second), got[0].Timestamp)
	assert.Equal(t, base.Add(4*time.Second), got[2].Timestamp)
}

func TestGetReturnsUpToLastN(t *testing.T) {
	c := NewCache(10)

	for i := 0; i < 4; i++ {
		c.Append(Record{Message: string(rune('a' + i))})
	}

	got := c.Get(2)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Message)
	assert.Equal(t, "d", got[1].Message)
}

func TestGrowPreservesRecentRecords(t *testing.T) {
	c := NewCache(2)
	c.Append(Record{Message: "a"})
	c.Append(Record{Message: "b"})
	c.Append(Record{Message: "c"})

	c.Grow(5)
	c.Append(Record{Message: "d"})

	got := c.Get(10)
	msgs := make([]string, len(got))
	for i, r := range got {
		msgs[i] = r.Message
	}
	assert.Equal(t, []string{"b", "c", "d"}, msgs)
}

func TestSetCapacityGrowsProcessGlobalCache(t *testing.T) {
	SetCapacity(2048)
	Default().Append(Record{Severity: "WARN", Category: "test", Message: "hi"})

	got := Default().Get(1)
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Message)
}
