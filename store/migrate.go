package store

import (
	"context"
	"fmt"
)

// Migration produces dialect-specific DDL.
type Migration func(Dialect) string

// Migrate applies every migration in a single transaction. Migrations are
// expected to be idempotent (CREATE ... IF NOT EXISTS).
func Migrate(ctx context.Context, s *Session, migrations ...Migration) error {
	return s.Transaction(ctx, func(tx *Session) error {
		for i, m := range migrations {
			if _, err := tx.Exec(ctx, m(tx.dialect)); err != nil {
				return fmt.Errorf("store: migration %d: %w", i, err)
			}
		}
		return nil
	})
}
