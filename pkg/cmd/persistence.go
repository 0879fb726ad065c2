package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joeleaver/flowgrid/pkg/persistence"
	"github.com/joeleaver/flowgrid/pkg/persistence/file"
	"github.com/joeleaver/flowgrid/pkg/persistence/postgresql"
	"github.com/joeleaver/flowgrid/pkg/persistence/redisstore"
)

// NewSessionStore creates a session store from a connection URL. The scheme
// picks the backend; anything unrecognized is treated as a file path.
func NewSessionStore(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.SessionStore, error) {
	switch parseStoreProvider(databaseURL) {
	case "postgres":
		return postgresql.NewStore(ctx, logger, databaseURL)
	case "redis":
		return redisstore.NewStore(ctx, logger, databaseURL)
	default:
		return file.NewStore(databaseURL)
	}
}

func parseStoreProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch provider {
	case "postgres", "postgresql":
		return "postgres"
	case "redis", "rediss":
		return "redis"
	default:
		return "file"
	}
}
