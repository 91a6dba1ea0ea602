package repository

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the sql database handle shared by all repositories
type DB struct {
	*sql.DB
}

// NewDB opens a postgres connection pool and verifies connectivity
func NewDB(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}
