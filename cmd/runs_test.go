//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	started := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)
	location := "camden"

	runs := []model.ScrapeRun{
		{
			ID:            "abc12345-6789-0000-0000-000000000000",
			Portal:        "rightmove",
			LocationQuery: &location,
			StartedAt:     started,
			FinishedAt:    &finished,
			TotalListings: 40,
			SuccessCount:  38,
			ErrorCount:    2,
			Status:        model.RunStatusCompletedWithErrors,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Portal:    "zoopla",
			StartedAt: started.Add(-time.Hour),
			Status:    model.RunStatusRunning,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "PORTAL")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "rightmove (camden)")
	assert.Contains(t, output, "completed_with_errors")
	assert.Contains(t, output, "zoopla")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "2026-03-10 09:15")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "1m30s")
}

func TestFormatRunsList_TruncatesLongPortal(t *testing.T) {
	location := "a-very-long-location-query-that-keeps-going"
	runs := []model.ScrapeRun{
		{
			ID:            "abc12345-6789-0000-0000-000000000000",
			Portal:        "rightmove",
			LocationQuery: &location,
			StartedAt:     time.Now(),
			Status:        model.RunStatusRunning,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	assert.Contains(t, buf.String(), "...")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}
