package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"neurofleetx/internal/models"
)

// Config holds all runtime settings. Values come from the environment with
// defaults matching the observed demo behaviour.
type Config struct {
	// HTTP
	HTTPPort string

	// Simulation
	TickInterval time.Duration
	SimSeed      int64 // 0 means time-derived

	// Alerting thresholds
	BatteryAlertThreshold float64
	MaintenanceHealthyMin float64
	MaintenanceDueMin     float64

	// Auth lockout
	LockoutAttempts int
	LockoutDuration time.Duration

	// Notifications
	NotificationCap int

	// Geographic placement of new vehicles
	Bounds models.GeoBounds
}

// Load reads configuration from the environment
func Load() *Config {
	return &Config{
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		TickInterval:          time.Duration(getEnvInt("TICK_INTERVAL_MS", 3000)) * time.Millisecond,
		SimSeed:               int64(getEnvInt("SIM_SEED", 0)),
		BatteryAlertThreshold: getEnvFloat("BATTERY_ALERT_THRESHOLD", 20),
		MaintenanceHealthyMin: getEnvFloat("MAINTENANCE_HEALTHY_MIN", 80),
		MaintenanceDueMin:     getEnvFloat("MAINTENANCE_DUE_MIN", 50),
		LockoutAttempts:       getEnvInt("LOCKOUT_ATTEMPTS", 3),
		LockoutDuration:       time.Duration(getEnvInt("LOCKOUT_SECONDS", 30)) * time.Second,
		NotificationCap:       getEnvInt("NOTIFICATION_CAP", 10),
		Bounds: models.GeoBounds{
			MinLat: getEnvFloat("BOUNDS_MIN_LAT", 8.0),
			MaxLat: getEnvFloat("BOUNDS_MAX_LAT", 37.0),
			MinLng: getEnvFloat("BOUNDS_MIN_LNG", 68.0),
			MaxLng: getEnvFloat("BOUNDS_MAX_LNG", 97.0),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
