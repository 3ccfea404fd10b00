package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/platform/database"
)

type App struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// DB
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"livestock_booking"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Payment gateway
	PaystackSecretKey string        `envconfig:"PAYSTACK_SECRET_KEY" required:"true"`
	PaystackBaseURL   string        `envconfig:"PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	FrontendURL       string        `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	GatewayTimeout    time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"15s"`

	// Booking rules
	OverlapMode       string        `envconfig:"BOOKING_OVERLAP_MODE" default:"half_open"`
	BookingLockTTL    time.Duration `envconfig:"BOOKING_LOCK_TTL" default:"10s"`
	PendingBookingTTL time.Duration `envconfig:"PENDING_BOOKING_TTL" default:"48h"`
	SweepInterval     time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

func Load() (App, error) {
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	if _, err := domain.ParseOverlapMode(c.OverlapMode); err != nil {
		return c, fmt.Errorf("BOOKING_OVERLAP_MODE: %w", err)
	}
	return c, nil
}

func (c App) Overlap() domain.OverlapMode {
	mode, _ := domain.ParseOverlapMode(c.OverlapMode)
	return mode
}

func (c App) Database() database.Config {
	return database.Config{
		URL:      c.DatabaseURL,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

// LoadDotEnv copies KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}

	return scanner.Err()
}
