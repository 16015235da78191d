package localdb

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/settings"
)

const settingsKey = "settings"

type settingsRepository struct {
	db *sqlx.DB
}

var _ settings.Repository = (*settingsRepository)(nil) // interface compliance check

func NewSettingsRepository(db *sqlx.DB) settings.Repository {
	return &settingsRepository{db: db}
}

// GetSettings overlays the stored JSON on Defaults so fields added after the
// entry was written keep their default values.
func (repo *settingsRepository) GetSettings() (settings.Settings, bool, error) {
	var raw string
	err := repo.db.Get(&raw, `SELECT value FROM settings WHERE key = ?`, settingsKey)
	switch {
	case err == sql.ErrNoRows:
		return settings.Settings{}, false, nil
	case err != nil:
		return settings.Settings{}, false, errors.Wrap(err, "localdb: reading settings")
	}

	conf := settings.Defaults()
	if err := json.Unmarshal([]byte(raw), &conf); err != nil {
		return settings.Settings{}, false, errors.Wrap(err, "localdb: corrupted settings entry")
	}
	return conf, true, nil
}

func (repo *settingsRepository) SaveSettings(conf settings.Settings) error {
	raw, err := json.Marshal(conf)
	if err != nil {
		return errors.Wrap(err, "localdb: encoding settings")
	}
	_, err = repo.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		settingsKey, string(raw),
	)
	return errors.Wrap(err, "localdb: writing settings")
}
