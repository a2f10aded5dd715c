package persistence

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Execer is the subset of *pgxpool.Pool the schema bootstrap needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// RunMigrations creates the credentials schema by executing every .sql file at
// the root of migrations, in name order. Files must be idempotent: no version
// table is kept and all of them run on every start.
func RunMigrations(ctx context.Context, db Execer, migrations fs.FS, logger *zap.Logger) error {
	if db == nil {
		logger.Warn("credential store not configured; skipping migrations")
		return nil
	}

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && path.Ext(entry.Name()) == ".sql" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		stmt, err := fs.ReadFile(migrations, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(stmt)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		logger.Debug("migration applied", zap.String("file", name))
	}

	logger.Info("credential schema ready", zap.Int("migrations", len(names)))
	return nil
}
