package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/migrations"
	"github.com/spf13/pflag"
)

const (
	dsnFlag           = "dsn"
	migrationPathFlag = "migrations-path"
	downFlag          = "down"
)

type flags struct {
	dsn            string
	migrationsPath string
	down           bool
}

func main() {
	f := getFlagsValues()
	if f.dsn == "" {
		f.dsn = config.Load().DSN()
	}
	makeMigrations(f)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() flags {
	dsn := pflag.StringP(dsnFlag, "d", "", "postgres DSN, defaults to the service config")
	migrationsPath := pflag.StringP(migrationPathFlag, "m", "", "migrations directory, defaults to the embedded schema")
	down := pflag.Bool(downFlag, false, "roll back all migrations")
	pflag.Parse()
	return flags{dsn: *dsn, migrationsPath: *migrationsPath, down: *down}
}

// pgx5URL rewrites a postgres DSN to the scheme of the pgx/v5 migrate driver.
func pgx5URL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

func newMigrate(f flags) (*migrate.Migrate, error) {
	dbURL := pgx5URL(f.dsn)
	if f.migrationsPath != "" {
		return migrate.New(fmt.Sprintf("file://%s", f.migrationsPath), dbURL)
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, dbURL)
}

func makeMigrations(f flags) {
	m, err := newMigrate(f)
	if err != nil {
		slog.Error("failed to migrate", "dsn", config.RedactDSN(f.dsn), "err", err)
		fallDown()
	}

	m.Log = NewMigrationLogger()

	apply := m.Up
	if f.down {
		apply = m.Down
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf("migration applied\n")
}

func fallDown() {
	os.Exit(2)
}
