package database

import (
	"database/sql"
	"time"

	"coursehub/internal/platform/config"

	"github.com/rs/zerolog/log"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

// Connect opens the connection pool. A failed ping is not fatal: the
// fallback resolver treats an unreachable database as one unavailable
// backend, and database/sql reconnects on later calls.
func Connect() (*sql.DB, error) {
	db, err := sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Warn().Err(err).Msg("postgres unreachable at startup, will retry per request")
	} else {
		log.Info().Msg("connected to postgres")
	}
	return db, nil
}

func Close(db *sql.DB) {
	if db != nil {
		db.Close()
	}
}
