package build

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Reports(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)
	tracker.Start()

	tracker.Add(25, 0)
	tracker.Add(0, 25)
	tracker.Add(50, 0)
	assert.Equal(t, 100, tracker.Current())

	output := buf.String()
	assert.Contains(t, output, "100/100")
	assert.Contains(t, output, "100.0%")
	assert.Contains(t, output, "25 recovered, 75 embedded")
}

func TestProgressTracker_Interval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 50)
	tracker.Start()

	tracker.Add(10, 0)
	assert.Empty(t, buf.String(), "below the interval nothing is reported")

	tracker.Add(40, 0)
	assert.Contains(t, buf.String(), "50/100")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)
	tracker.Start()
	tracker.Add(25, 0)
	assert.Equal(t, 10, tracker.Current())
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 100)
	tracker.Start()
	tracker.Add(3, 7)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "10/10")
	assert.True(t, strings.HasSuffix(output, "\n"))
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)
	tracker.Add(5, 0)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
	assert.Zero(t, tracker.Current())
}

func TestProgressTracker_NilWriter(t *testing.T) {
	tracker := NewProgressTracker(nil, 10, 1)
	tracker.Start()
	assert.NotPanics(t, func() {
		tracker.Add(10, 0)
		tracker.Finish()
	})
}
