package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"curricula/internal/config"
	"curricula/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	DriverSQLite = "sqlite"
	DriverOracle = "oracle"
)

func init() {
	// go-ora takes :name placeholders; sqlx does not know the driver name.
	sqlx.BindDriver(DriverOracle, sqlx.NAMED)
}

// Open connects to the configured database and pings it.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	driver := strings.ToLower(cfg.DB.Driver)
	dsn := cfg.GetDSN()
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty for driver %q", driver)
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = sqlx.Open(DriverSQLite, dsn)
		if err == nil {
			// A single writer avoids SQLITE_BUSY between pool connections.
			db.SetMaxOpenConns(1)
		}
	case DriverOracle:
		db, err = sqlx.Open(DriverOracle, dsn)
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetConnMaxIdleTime(5 * time.Minute)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DB.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	logger.Get().Info("Connected to database", zap.String("driver", driver))
	return db, nil
}
