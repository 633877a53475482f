package outbox

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a gorm handle on an existing PostgreSQL connection pool and
// creates the outbox table.
func Open(ctx context.Context, db *sql.DB) (*gorm.DB, error) {
	g, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}

	if err := Migrate(ctx, g); err != nil {
		return nil, fmt.Errorf("migrate outbox: %w", err)
	}

	return g, nil
}
