package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string

	// Lifecycle windows. Hours, not durations, so they can be tuned from the
	// environment without redeploying.
	CancellationWindowHours int64
	PayoutHoldHours         int64

	// Cron expression for the payout eligibility poll.
	PayoutPollSchedule string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		FirebaseProject:         getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:             getEnv("ENVIRONMENT", "development"),
		CancellationWindowHours: getEnvAsInt64("CANCELLATION_WINDOW_HOURS", 24),
		PayoutHoldHours:         getEnvAsInt64("PAYOUT_HOLD_HOURS", 48),
		PayoutPollSchedule:      getEnv("PAYOUT_POLL_SCHEDULE", "0 */10 * * * *"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
