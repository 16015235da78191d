package localdb

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS justifications (
	student_id INTEGER NOT NULL,
	day TEXT NOT NULL,
	detail TEXT NOT NULL,
	file_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (student_id, day)
);
CREATE TABLE IF NOT EXISTS tokens (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Open opens (creating if needed) the on-device SQLite database and ensures
// its schema.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", conf.LocalDBPath)
	if err != nil {
		return nil, errors.Wrapf(err, "localdb: opening %s", conf.LocalDBPath)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "localdb: ping")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "localdb: migrating schema")
	}
	return db, nil
}
