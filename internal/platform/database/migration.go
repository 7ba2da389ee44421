package database

import (
	"fmt"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationLogger adapts ectologger.Logger to migrate's verbose Logger
// interface, matching stem/pkg/database.MigrationLogger.
type MigrationLogger struct {
	ectologger.Logger
}

func (l MigrationLogger) Verbose() bool { return true }

func (l MigrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

// MigrateUp runs every pending migration in folderPath against dsn,
// returning nil if there was nothing to apply.
func MigrateUp(folderPath, dsn string, logger ectologger.Logger) error {
	if _, err := os.Stat(folderPath); err != nil {
		return fmt.Errorf("migration folder %s does not exist: %w", folderPath, err)
	}

	m, err := migrate.New("file://"+folderPath, dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	m.Log = MigrationLogger{Logger: logger}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
