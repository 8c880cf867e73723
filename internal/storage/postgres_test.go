package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDayString(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 15:30 UTC on the 14th is already the 15th in Tokyo; the stored day
	// must follow the configured location, not the database session
	at := time.Date(2025, 6, 14, 15, 30, 0, 0, time.UTC)

	p := &PostgresStore{loc: tokyo}
	assert.Equal(t, "2025-06-15", p.dayString(at))

	p = &PostgresStore{loc: time.UTC}
	assert.Equal(t, "2025-06-14", p.dayString(at))
}
