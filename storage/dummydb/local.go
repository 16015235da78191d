package dummydb

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/settings"
	"github.com/trezcool/mahudhurio/storage/restapi"
)

type settingsRepository struct {
	db *DB
}

var _ settings.Repository = (*settingsRepository)(nil) // interface compliance check

func NewSettingsRepository(db *DB) settings.Repository {
	return &settingsRepository{db: db}
}

func (repo *settingsRepository) GetSettings() (settings.Settings, bool, error) {
	repo.db.settings.RLock()
	defer repo.db.settings.RUnlock()

	if repo.db.settings.stored == nil {
		return settings.Settings{}, false, nil
	}
	return *repo.db.settings.stored, true, nil
}

func (repo *settingsRepository) SaveSettings(conf settings.Settings) error {
	repo.db.settings.Lock()
	defer repo.db.settings.Unlock()
	repo.db.settings.stored = &conf
	return nil
}

type justificationRepository struct {
	db *DB
}

var _ attendance.JustificationRepository = (*justificationRepository)(nil) // interface compliance check

func NewJustificationRepository(db *DB) attendance.JustificationRepository {
	return &justificationRepository{db: db}
}

func (repo *justificationRepository) GetJustification(studentID int, day time.Time) (attendance.Justification, error) {
	repo.db.justification.RLock()
	defer repo.db.justification.RUnlock()

	if j, ok := repo.db.justification.table[justKey(studentID, day)]; ok {
		return *j, nil
	}
	return attendance.Justification{}, attendance.ErrJustificationNotFound
}

func (repo *justificationRepository) SaveJustification(j attendance.Justification) error {
	repo.db.justification.Lock()
	defer repo.db.justification.Unlock()
	repo.db.justification.table[justKey(j.StudentID, j.Day)] = &j
	return nil
}

var errNoToken = errors.New("dummydb: no stored token")

type tokenStore struct {
	db *DB
}

var _ restapi.TokenStore = (*tokenStore)(nil) // interface compliance check

func NewTokenStore(db *DB) restapi.TokenStore {
	return &tokenStore{db: db}
}

func (store *tokenStore) GetRefreshToken() (string, error) {
	store.db.token.RLock()
	defer store.db.token.RUnlock()

	if token, ok := store.db.token.table["refresh"]; ok {
		return token, nil
	}
	return "", errNoToken
}

func (store *tokenStore) SaveRefreshToken(token string) error {
	store.db.token.Lock()
	defer store.db.token.Unlock()
	store.db.token.table["refresh"] = token
	return nil
}
