package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string
	AppName  string
	Build    string
	WorkDir  string

	// InstitutionTimezone is the single timezone all session scheduling and
	// calendar-day matching is done in. Course timestamps arrive from the API
	// in UTC and are converted on ingestion.
	InstitutionTimezone string

	SessionLength         time.Duration
	CourseRefreshInterval time.Duration
	ClockTick             time.Duration

	API struct {
		BaseURL string
		Timeout time.Duration
	}

	FrontendBaseURL string
	LocalDBPath     string

	RollbarToken     string
	SendgridApiKey   string
	DefaultFromEmail string
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Mahudhurio")
	v.SetDefault("build", "dev")
	v.SetDefault("institutionTimezone", "Africa/Algiers")
	v.SetDefault("sessionLength", 90*time.Minute)
	v.SetDefault("courseRefreshInterval", time.Minute)
	v.SetDefault("clockTick", time.Second)
	v.SetDefault("apiBaseUrl", "http://127.0.0.1:8000")
	v.SetDefault("apiTimeout", 15*time.Second)
	v.SetDefault("frontendBaseUrl", "http://localhost:5173")
	v.SetDefault("localDbPath", filepath.Join(Getwd(), "mahudhurio.db"))
	v.SetDefault("defaultFromEmail", "noreply@localhost")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:                 v.GetBool("debug"),
		TestMode:              testMode,
		Env:                   env,
		AppName:               v.GetString("appName"),
		Build:                 v.GetString("build"),
		WorkDir:               Getwd(),
		InstitutionTimezone:   v.GetString("institutionTimezone"),
		SessionLength:         v.GetDuration("sessionLength"),
		CourseRefreshInterval: v.GetDuration("courseRefreshInterval"),
		ClockTick:             v.GetDuration("clockTick"),
		FrontendBaseURL:       v.GetString("frontendBaseUrl"),
		LocalDBPath:           v.GetString("localDbPath"),
		RollbarToken:          v.GetString("rollbarToken"),
		SendgridApiKey:        v.GetString("sendgridApiKey"),
		DefaultFromEmail:      v.GetString("defaultFromEmail"),
	}
	conf.API.BaseURL = v.GetString("apiBaseUrl")
	conf.API.Timeout = v.GetDuration("apiTimeout")
	return conf
}

// Location resolves the institution timezone; it falls back to UTC if the
// name cannot be loaded so time math never panics downstream.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.InstitutionTimezone)
	if err != nil {
		log.Printf("config: unknown timezone %q, falling back to UTC", c.InstitutionTimezone)
		return time.UTC
	}
	return loc
}
