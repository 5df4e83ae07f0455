package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	NatsURL     string
	Environment string

	Segmentation SegmentationConfig
	Tasks        TaskConfig
	Workers      WorkerConfig
}

// SegmentationConfig carries the scoring thresholds. Defaults mirror the
// values the pharmacy has been running on.
type SegmentationConfig struct {
	// VIPSpendingThreshold is the trailing-window spend that makes a
	// customer VIP.
	VIPSpendingThreshold float64
	// DermoVIPSpendingThreshold is the dermo-category spend that makes a
	// customer DERMO_VIP.
	DermoVIPSpendingThreshold float64
	// SpendingWindowDays is the trailing window for spend aggregates.
	SpendingWindowDays int
	// DefaultIntervalDays is the expected purchase interval assumed for
	// customers with too little history to derive one.
	DefaultIntervalDays int
	// NewCustomerDays is how long after the first purchase a customer
	// stays NEW.
	NewCustomerDays int
	// LostAfterDays is the purchase silence required (together with high
	// churn risk) to mark a customer LOST.
	LostAfterDays int
}

// TaskConfig carries task rule parameters.
type TaskConfig struct {
	// ReplenishmentLeadDays is subtracted from the predicted depletion
	// date so the reminder lands before the package runs out.
	ReplenishmentLeadDays int
	// ReminderGraceDays is how far past its due date an open
	// replenishment task must be before a REMINDER_CALL is raised.
	ReminderGraceDays int
	// VIPFollowupDays is the staff-contact silence that triggers a VIP
	// follow-up.
	VIPFollowupDays int
	// DermoConsultWindowDays bounds both the recent-purchase lookback
	// and the follow-up cooldown for DERMO_CONSULT.
	DermoConsultWindowDays int

	// Point values awarded per task type. Churn prevention and VIP
	// follow-up carry a second, higher value for their escalated form.
	ReplenishmentPoints    int
	ChurnPoints            int
	ChurnUrgentPoints      int
	VIPFollowupPoints      int
	DermoVIPFollowupPoints int
	DermoConsultPoints     int
	ReminderCallPoints     int
	CelebrationPoints      int
}

// WorkerConfig carries background worker intervals. The batch endpoints
// run the same engines on demand regardless of the schedule.
type WorkerConfig struct {
	TaskGenerationInterval time.Duration
	SegmentUpdateInterval  time.Duration
}

// New creates a new configuration from environment variables.
func New() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: buildDatabaseURL(),
		RedisURL:    os.Getenv("REDIS_URL"),
		NatsURL:     os.Getenv("NATS_URL"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Segmentation: SegmentationConfig{
			VIPSpendingThreshold:      getEnvFloat("VIP_SPENDING_THRESHOLD", 5000),
			DermoVIPSpendingThreshold: getEnvFloat("DERMO_VIP_SPENDING_THRESHOLD", 2000),
			SpendingWindowDays:        getEnvInt("SPENDING_WINDOW_DAYS", 180),
			DefaultIntervalDays:       getEnvInt("DEFAULT_PURCHASE_INTERVAL_DAYS", 30),
			NewCustomerDays:           getEnvInt("NEW_CUSTOMER_DAYS", 30),
			LostAfterDays:             getEnvInt("LOST_AFTER_DAYS", 180),
		},
		Tasks: TaskConfig{
			ReplenishmentLeadDays:  getEnvInt("REPLENISHMENT_LEAD_DAYS", 5),
			ReminderGraceDays:      getEnvInt("REMINDER_GRACE_DAYS", 3),
			VIPFollowupDays:        getEnvInt("VIP_FOLLOWUP_DAYS", 30),
			DermoConsultWindowDays: getEnvInt("DERMO_CONSULT_WINDOW_DAYS", 60),
			ReplenishmentPoints:    getEnvInt("REPLENISHMENT_POINTS", 10),
			ChurnPoints:            getEnvInt("CHURN_PREVENTION_POINTS", 15),
			ChurnUrgentPoints:      getEnvInt("CHURN_URGENT_POINTS", 20),
			VIPFollowupPoints:      getEnvInt("VIP_FOLLOWUP_POINTS", 10),
			DermoVIPFollowupPoints: getEnvInt("DERMO_VIP_FOLLOWUP_POINTS", 15),
			DermoConsultPoints:     getEnvInt("DERMO_CONSULT_POINTS", 15),
			ReminderCallPoints:     getEnvInt("REMINDER_CALL_POINTS", 10),
			CelebrationPoints:      getEnvInt("CELEBRATION_POINTS", 25),
		},
		Workers: WorkerConfig{
			TaskGenerationInterval: getEnvDuration("TASK_GENERATION_INTERVAL", 6*time.Hour),
			SegmentUpdateInterval:  getEnvDuration("SEGMENT_UPDATE_INTERVAL", 12*time.Hour),
		},
	}
}

// buildDatabaseURL constructs the database URL from individual
// components unless DATABASE_URL is set explicitly.
func buildDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "password")
	dbname := getEnv("DB_NAME", "eczane_crm")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
