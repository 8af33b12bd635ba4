package transcript

import (
	"context"
	"fmt"
	"strings"
)

// NewStore picks a backend from the database URL: empty keeps transcripts in
// memory, "sqlite:<path>" opens a SQLite file and postgres URLs use pgx.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	url := strings.TrimSpace(databaseURL)
	switch {
	case url == "":
		return NewInMemoryStore(0), nil
	case strings.HasPrefix(url, "sqlite:"):
		return OpenSQLiteStore(ctx, strings.TrimPrefix(strings.TrimPrefix(url, "sqlite:"), "//"))
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return NewPostgresStore(ctx, url)
	default:
		return nil, fmt.Errorf("unsupported database url scheme in %q", redact(url))
	}
}

func redact(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "..."
	}
	if i := strings.IndexByte(url, ':'); i >= 0 {
		return url[:i+1] + "..."
	}
	return "..."
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}
