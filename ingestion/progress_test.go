package ingestion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Increment(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4)

	tracker.Start()
	tracker.Increment(2)
	assert.Contains(t, buf.String(), "\rProgress: 2/4 (50.0%)")

	tracker.Increment(5)
	assert.Equal(t, 4, tracker.Current(), "should cap at total")
	assert.Contains(t, buf.String(), "4/4 (100.0%)")
	assert.Contains(t, buf.String(), "chunks/s")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3)

	tracker.Start()
	tracker.Increment(3)
	tracker.Finish()

	assert.True(t, strings.HasSuffix(buf.String(), "\n"), "finish should end the line")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3)

	tracker.Increment(1)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_NilWriter(t *testing.T) {
	tracker := NewProgressTracker(nil, 2)
	tracker.Start()
	tracker.Increment(2)
	tracker.Finish()
	assert.Equal(t, 2, tracker.Current())
}
