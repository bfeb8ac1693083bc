// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jaseempk/dashtok-server/internal/domain"
)

// Cursor tokens ride in query strings, so the URL-safe alphabet is used.
var cursorEncoding = base64.URLEncoding

// EncodeCursor serialises a keyset cursor into an opaque token. A nil cursor
// yields the empty token.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	raw := c.StartedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return cursorEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor. Empty or blank tokens
// decode to a nil cursor, meaning the first page.
func DecodeCursor(token string) (*domain.Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := cursorEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	ts, id, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, fmt.Errorf("malformed cursor token")
	}
	startedAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("decode cursor timestamp: %w", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("decode cursor id: %w", err)
	}
	return &domain.Cursor{StartedAt: startedAt, ID: id}, nil
}
