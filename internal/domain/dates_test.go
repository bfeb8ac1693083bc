package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateKeyUsesReferenceTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:00 UTC is still the previous evening in New York.
	instant := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-03-10", DateKey(instant, time.UTC))
	require.Equal(t, "2026-03-09", DateKey(instant, ny))
}

func TestDayBoundsSpringForwardIs23Hours(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start, end, err := DayBounds("2026-03-08", ny)
	require.NoError(t, err)
	require.Equal(t, 23*time.Hour, end.Sub(start))
	require.Equal(t, "2026-03-08", DateKey(start, ny))
	require.Equal(t, "2026-03-09", DateKey(end, ny))
}

func TestDayBoundsRejectsGarbage(t *testing.T) {
	_, _, err := DayBounds("not-a-date", time.UTC)
	require.Error(t, err)
}

func TestPreviousDateKey(t *testing.T) {
	require.Equal(t, "2026-02-28", PreviousDateKey("2026-03-01"))
	require.Equal(t, "2025-12-31", PreviousDateKey("2026-01-01"))
	require.Equal(t, "", PreviousDateKey("garbage"))
}
