package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	in := &domain.Cursor{
		StartedAt: time.Date(2026, 8, 30, 14, 22, 5, 123456789, time.UTC),
		ID:        "2f9f3c1e-90b4-4f41-8f02-bd5f9f3c1e90",
	}

	out, err := DecodeCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.True(t, in.StartedAt.Equal(out.StartedAt))
	require.Equal(t, in.ID, out.ID)
}

func TestCursorEmptyAndNil(t *testing.T) {
	require.Equal(t, "", EncodeCursor(nil))

	out, err := DecodeCursor("")
	require.NoError(t, err)
	require.Nil(t, out)

	out, err = DecodeCursor("   ")
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64!!")
	require.Error(t, err)

	// Valid base64 but missing the separator.
	_, err = DecodeCursor("bm8tc2VwYXJhdG9y")
	require.Error(t, err)
}
