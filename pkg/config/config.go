package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                       string
	Env                        string
	FirebaseCredentialsPath    string
	PostgresConnStr            string
	MongoURI                   string
	MongoDatabase              string
	JWTSecret                  string
	FirstStart                 bool
	ConfigSaveInterval         time.Duration
	DiscoveryInterval          time.Duration
	LockedNotificationDelay    time.Duration
	StartupNotificationTimeout time.Duration
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                       getEnv("PORT", "8080"),
		Env:                        getEnv("ENV", "development"),
		FirebaseCredentialsPath:    getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:            getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                   getEnv("MONGO_URI", ""),
		MongoDatabase:              getEnv("MONGO_DATABASE", "sone"),
		JWTSecret:                  getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirstStart:                 getBoolEnv("FIRST_START", false),
		ConfigSaveInterval:         getIntervalEnv("CONFIG_SAVE_INTERVAL", time.Minute),
		DiscoveryInterval:          getIntervalEnv("DISCOVERY_INTERVAL", 30*time.Second),
		LockedNotificationDelay:    getDurationEnv("LOCKED_NOTIFICATION_DELAY", 5*time.Minute),
		StartupNotificationTimeout: getDurationEnv("STARTUP_NOTIFICATION_TIMEOUT", 2*time.Minute),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid boolean for %s: %q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getDurationEnv accepts Go durations ("90s", "5m"); a negative value falls
// back to the default
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		log.Printf("Invalid duration for %s: %q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getIntervalEnv is getDurationEnv for periodic jobs, which also need a
// non-zero value
func getIntervalEnv(key string, defaultValue time.Duration) time.Duration {
	interval := getDurationEnv(key, defaultValue)
	if interval == 0 {
		log.Printf("Invalid interval for %s: must be positive, using %v", key, defaultValue)
		return defaultValue
	}
	return interval
}
