package infra_pg_init

import (
	_ "embed"
	"log"

	"github.com/Klaiveft/What2Watch/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// NotifyChannel is the LISTEN channel the row triggers publish to.
const NotifyChannel = "room_events"

//go:embed schema.sql
var schema string

func MustEstablishConn(cfg config.Postgres) *sqlx.DB {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}

	return db
}

// MustMigrate applies the idempotent schema, triggers included.
func MustMigrate(db *sqlx.DB) {
	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}
