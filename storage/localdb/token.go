package localdb

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/storage/restapi"
)

const refreshTokenName = "refresh"

// ErrNoToken means no session has been persisted yet; the user must log in.
var ErrNoToken = errors.New("localdb: no stored token")

type tokenStore struct {
	db *sqlx.DB
}

var _ restapi.TokenStore = (*tokenStore)(nil) // interface compliance check

func NewTokenStore(db *sqlx.DB) restapi.TokenStore {
	return &tokenStore{db: db}
}

func (store *tokenStore) GetRefreshToken() (string, error) {
	var token string
	err := store.db.Get(&token, `SELECT value FROM tokens WHERE name = ?`, refreshTokenName)
	switch {
	case err == sql.ErrNoRows:
		return "", ErrNoToken
	case err != nil:
		return "", errors.Wrap(err, "localdb: reading token")
	}
	return token, nil
}

func (store *tokenStore) SaveRefreshToken(token string) error {
	_, err := store.db.Exec(
		`INSERT INTO tokens (name, value) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET value = excluded.value`,
		refreshTokenName, token,
	)
	return errors.Wrap(err, "localdb: writing token")
}
