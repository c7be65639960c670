package geotracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(i int) TrackPoint {
	return TrackPoint{
		Timestamp: time.Date(2024, 5, 1, 12, i, 0, 0, time.UTC),
		Latitude:  48 + float64(i)/100,
		Longitude: 16,
	}
}

func TestHistoryMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "track.jsonl"), 10)
	points, err := h.Read()
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestHistoryAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "track.jsonl")
	h := NewHistory(path, 10)
	for i := 0; i < 3; i++ {
		require.NoError(t, h.Append(point(i)))
	}
	points, err := h.Read()
	require.NoError(t, err)
	assert.Equal(t, []TrackPoint{point(0), point(1), point(2)}, points)

	// a second handle sees the same history
	points, err = NewHistory(path, 10).Read()
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestHistoryRetention(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "track.jsonl"), 10)
	for i := 0; i < 11; i++ {
		require.NoError(t, h.Append(point(i)))
	}
	points, _ := h.Read()
	assert.Len(t, points, 11)

	require.NoError(t, h.Append(point(11)))
	points, _ = h.Read()
	require.Len(t, points, 10)
	assert.Equal(t, point(2), points[0])
	assert.Equal(t, point(11), points[9])

	files, _ := os.ReadDir(filepath.Dir(h.Path))
	assert.Len(t, files, 1)
}

func TestHistoryUnbounded(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "track.jsonl"), -1)
	for i := 0; i < 30; i++ {
		require.NoError(t, h.Append(point(i)))
	}
	points, _ := h.Read()
	assert.Len(t, points, 30)
}

func TestHistorySkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.jsonl")
	h := NewHistory(path, 10)
	require.NoError(t, h.Append(point(0)))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	f.WriteString(`{"timestamp":"2024-05-01T12:01:00Z","lati` + "\n\n")
	f.Close()

	require.NoError(t, h.Append(point(2)))
	points, err := h.Read()
	require.NoError(t, err)
	assert.Equal(t, []TrackPoint{point(0), point(2)}, points)
}
