package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	_ "github.com/mattn/go-sqlite3"
)

type (
	// DB is the single database file that holds users and reviews.
	DB struct {
		db *sql.DB
	}
)

func openDatabase(ctx context.Context, file string) (*sql.DB, error) {
	err := os.MkdirAll(filepath.Dir(file), 0755)
	if err != nil {
		return nil, fmt.Errorf("unable to create directory to store %v, cause %w", file, err)
	}
	connstr := fmt.Sprintf("file:%v?_journal=wal&_busy_timeout=5000&_fk=true&mode=rwc", file)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %v", file, err)
	}
	// sqlite has a single writer, let database/sql serialize callers
	// instead of handing out SQLITE_BUSY
	conn.SetMaxOpenConns(1)
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping database %v, cause %v", file, err)
	}
	return conn, nil
}

// Open loads (or creates) the database stored at file and makes sure
// every table exists.
func Open(ctx context.Context, file string) (*DB, error) {
	conn, err := openDatabase(ctx, file)
	if err != nil {
		return nil, err
	}
	d := &DB{db: conn}
	err = d.init(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init database %v, cause %w", file, err)
	}
	return d, nil
}

func (d *DB) Users() *Users {
	return NewUsers(d.db)
}

func (d *DB) Reviews() *Reviews {
	return NewReviews(d.db)
}

func (d *DB) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			user_id INTEGER not null primary key autoincrement,
			email TEXT not null unique,
			email_hash64 INTEGER not null,
			password_hash TEXT not null,
			created_at INTEGER not null
		)`,
		`create index if not exists idx_users_email_hash64
			on users(email_hash64)
		`,
		`create table if not exists reviews(
			review_id text not null primary key,
			product_id text not null,
			name text not null,
			title text not null,
			description text not null,
			rating integer not null check (rating between 1 and 5),
			created_at integer not null
		)`,
		`create index if not exists idx_reviews_product_id
			on reviews(product_id)
		`,
	} {
		_, err := d.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	// uniqueness of the email is what keeps concurrent registrations honest,
	// refuse to run against a database that lost it
	return requireUnique(ctx, d.db, "users", "email")
}

func (d *DB) Close() error {
	return d.db.Close()
}

func hashKey(key string) int64 {
	return int64(xxhash.Sum64String(key))
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
