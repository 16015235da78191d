package settings

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

type Service struct {
	repo       Repository
	validate   *validator.Validate
	translator ut.Translator
	clock      core.Clock
	logger     core.Logger
}

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator, clock core.Clock, logger core.Logger) *Service {
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
		clock:      clock,
		logger:     logger,
	}
}

// Load returns the persisted settings, falling back to Defaults when nothing
// is stored or the stored entry cannot be read. A corrupted entry must never
// take the dashboard down.
func (s *Service) Load() Settings {
	conf, found, err := s.repo.GetSettings()
	if err != nil {
		s.logger.Warn(fmt.Sprintf("settings: falling back to defaults: %v", err), err)
		return Defaults()
	}
	if !found {
		return Defaults()
	}
	return conf
}

// Save validates and persists conf, stamping LastUpdated.
func (s *Service) Save(conf Settings) (Settings, error) {
	if err := s.validate.Struct(&conf); err != nil {
		return conf, core.TranslateValidationErrors(err, s.translator)
	}
	if conf.LatencyTime == "" {
		conf.LatencyTime = DefaultLatency
	}
	conf.LastUpdated = s.clock.Now().UTC()
	if err := s.repo.SaveSettings(conf); err != nil {
		return conf, err
	}
	return conf, nil
}
