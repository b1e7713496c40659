package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration. The vendor database carries
// companies, branches and users; the client database carries everything a
// branch posts against.
type Config struct {
	VendorDatabaseURL string
	ClientDatabaseURL string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	RateLimit         string
	AMQPURL           string
	NotifyExchange    string
	MigrationsDir     string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("VENDOR_PGSQL_URL", "")
	viper.SetDefault("CLIENT_PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "kobo-core")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("NOTIFY_EXCHANGE", "kobo.notifications")
	viper.SetDefault("MIGRATIONS_DIR", "file://migrations")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.VendorDatabaseURL = viper.GetString("VENDOR_PGSQL_URL")
	if cfg.VendorDatabaseURL == "" {
		log.Println("Warning: VENDOR_PGSQL_URL environment variable not set.")
	}
	cfg.ClientDatabaseURL = viper.GetString("CLIENT_PGSQL_URL")
	if cfg.ClientDatabaseURL == "" {
		log.Println("Warning: CLIENT_PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.AMQPURL = viper.GetString("AMQP_URL")
	if cfg.AMQPURL == "" {
		log.Println("Warning: AMQP_URL not set. Notifications will be logged only.")
	}
	cfg.NotifyExchange = viper.GetString("NOTIFY_EXCHANGE")
	cfg.MigrationsDir = viper.GetString("MIGRATIONS_DIR")

	return cfg, nil
}
