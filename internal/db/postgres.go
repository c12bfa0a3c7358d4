package db

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	_ "github.com/lib/pq"
)

// New opens a database/sql handle for the repositories.
func New(url string) (*sql.DB, error) {
	return sql.Open("postgres", url)
}

// NewPgx opens a direct pgx connection for health checks and ad-hoc queries.
func NewPgx(ctx context.Context, url string) (*pgx.Conn, error) {
	return pgx.Connect(ctx, url)
}
