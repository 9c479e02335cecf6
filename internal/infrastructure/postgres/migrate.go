package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"net/url"
	"strings"

	"github.com/lib/pq"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrations brings the todos schema up to date. Every statement is
// idempotent so a table created by an earlier deployment is adopted as is.
func RunMigrations(dsn string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := openMigrationDB(dsn, logger)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, _ := m.Version()
	logger.Info("database migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// openMigrationDB connects through lib/pq, which defaults to sslmode=require
// and has no "prefer" mode. When the DSN names no sslmode it tries TLS first
// and retries in plain text if the server has TLS off, which is what the pgx
// pool does with the same URL.
func openMigrationDB(dsn string, logger *zap.Logger) (*sql.DB, error) {
	required, defaulted := withSSLMode(dsn, "require")
	db, err := ping(required)
	if err == nil || !defaulted || !errors.Is(err, pq.ErrSSLNotSupported) {
		return db, err
	}

	logger.Info("postgres server has TLS disabled, migrating without it")
	plain, _ := withSSLMode(dsn, "disable")
	return ping(plain)
}

func ping(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// withSSLMode sets sslmode on a URL or keyword/value DSN unless it already
// carries one. It reports whether mode was applied.
func withSSLMode(dsn, mode string) (string, bool) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn, false
		}
		q := u.Query()
		if q.Has("sslmode") {
			return dsn, false
		}
		q.Set("sslmode", mode)
		u.RawQuery = q.Encode()
		return u.String(), true
	}

	for _, field := range strings.Fields(dsn) {
		if strings.HasPrefix(field, "sslmode=") {
			return dsn, false
		}
	}
	return strings.TrimSpace(dsn + " sslmode=" + mode), true
}
