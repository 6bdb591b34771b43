package duckdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ValerySidorin/styx/pkg/journal/record"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, Config{}, log.NewNopLogger())
	require.NoError(t, err)
	defer s.Dispose(ctx)

	at := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	entries := []record.Entry{
		{Class: "packaging", ID: "1", URL: "https://img.example/1.jpg", Path: "images/packaging/1.jpg", Kind: "downloaded", CreatedAt: at},
		{Class: "packaging", ID: "2", URL: "https://img.example/2.jpg", Path: "images/packaging/2.jpg", Kind: "failed_http", Status: 404, CreatedAt: at},
		{Class: "packaging", ID: "3", Kind: "skipped_no_asset", CreatedAt: at},
	}
	require.NoError(t, s.Append(ctx, entries))
	require.NoError(t, s.Append(ctx, entries[:1]))

	var total, downloaded int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal;`).Scan(&total))
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal WHERE kind = 'downloaded';`).Scan(&downloaded))
	assert.Equal(t, 4, total)
	assert.Equal(t, 2, downloaded)

	var status int
	var created time.Time
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT status, created_at FROM journal WHERE identifier = '2';`).Scan(&status, &created))
	assert.Equal(t, 404, status)
	assert.True(t, at.Equal(created))
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Path: filepath.Join(t.TempDir(), "journal.duckdb")}

	s, err := NewStore(ctx, cfg, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, []record.Entry{{Class: "nutrition", ID: "a", Kind: "downloaded", CreatedAt: time.Now()}}))
	require.NoError(t, s.Dispose(ctx))

	s, err = NewStore(ctx, cfg, log.NewNopLogger())
	require.NoError(t, err)
	defer s.Dispose(ctx)

	var total int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal;`).Scan(&total))
	assert.Equal(t, 1, total)
}
