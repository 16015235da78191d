package settings

import (
	"time"
)

// Recognized latency grace periods for the auto-late-marking policy.
const (
	Latency5  = "5min"
	Latency10 = "10min"
	Latency15 = "15min"
	Latency20 = "20min"
	Latency30 = "30min"

	DefaultLatency = Latency10
)

var latencyMinutes = map[string]int{
	Latency5:  5,
	Latency10: 10,
	Latency15: 15,
	Latency20: 20,
	Latency30: 30,
}

// Settings is the per-device professor configuration. Loaded once at startup,
// defaulted when absent or corrupted, persisted on every change.
type Settings struct {
	QRCheckIn       bool      `json:"qrCheckIn"`
	AutoLateMarking bool      `json:"autoLateMarking"`
	LatencyTime     string    `json:"latencyTime" validate:"omitempty,oneof=5min 10min 15min 20min 30min"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

func Defaults() Settings {
	return Settings{
		QRCheckIn:       true,
		AutoLateMarking: true,
		LatencyTime:     DefaultLatency,
	}
}

// Latency resolves the configured grace period. Unrecognized values resolve
// to the default rather than erroring, mirroring the load-tolerance policy.
func (s Settings) Latency() time.Duration {
	m, ok := latencyMinutes[s.LatencyTime]
	if !ok {
		m = latencyMinutes[DefaultLatency]
	}
	return time.Duration(m) * time.Minute
}

// Repository is the local key-value persistence for Settings.
type Repository interface {
	// GetSettings returns the stored settings and whether any were found.
	// Implementations must overlay stored fields on Defaults() so that
	// settings saved by older builds keep newer fields defaulted.
	GetSettings() (Settings, bool, error)
	SaveSettings(Settings) error
}
