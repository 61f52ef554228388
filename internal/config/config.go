package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Settings is everything the server reads from the environment.
type Settings struct {
	Env            string
	Port           string
	UnitPrice      decimal.Decimal // currency units per kg
	Location       *time.Location  // billing month boundaries
	JWTSecret      string
	TokenTTL       time.Duration
	MaxUploadBytes int64
	CORSOrigins    []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Database DatabaseSettings
	Storage  StorageSettings
	Log      LogSettings
}

type DatabaseSettings struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// DSN builds the key/value connection string understood by lib/pq.
func (d DatabaseSettings) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

type StorageSettings struct {
	Driver       string // local or s3
	LocalDir     string
	PublicURL    string
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	S3PublicURL  string // CDN or bucket URL photos are served from
}

type LogSettings struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// App holds the settings loaded at startup.
var App = Defaults()

// Defaults are the settings used when no environment is present.
func Defaults() Settings {
	return Settings{
		Env:            "development",
		Port:           "8080",
		UnitPrice:      decimal.NewFromInt(50),
		Location:       time.Local,
		JWTSecret:      "supersecret",
		TokenTTL:       72 * time.Hour,
		MaxUploadBytes: 10 << 20,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		Database: DatabaseSettings{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "password",
			Name:     "waste_tracker",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Storage: StorageSettings{
			Driver:    "local",
			LocalDir:  "./media",
			PublicURL: "/media",
			Region:    "us-east-1",
		},
		Log: LogSettings{
			Level:      "info",
			Format:     "text",
			File:       "./logs/app.log",
			MaxSizeMB:  10,
			MaxBackups: 7,
			MaxAgeDays: 7,
		},
	}
}

// Load reads .env (if present) and the environment, stores the result in App
// and returns it.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on env vars")
	}

	s := Defaults()
	s.Env = getEnv("APP_ENV", s.Env)
	s.Port = getEnv("PORT", s.Port)
	s.JWTSecret = getEnv("JWT_SECRET", s.JWTSecret)
	s.TokenTTL = time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour
	s.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20
	s.CORSOrigins = splitList(getEnv("CORS_ORIGINS", ""))
	s.ReadTimeout = time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)) * time.Second
	s.WriteTimeout = time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)) * time.Second
	s.IdleTimeout = time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)) * time.Second

	price, err := decimal.NewFromString(getEnv("WASTE_UNIT_PRICE", s.UnitPrice.String()))
	if err != nil {
		return s, fmt.Errorf("WASTE_UNIT_PRICE: %w", err)
	}
	if !price.IsPositive() {
		return s, fmt.Errorf("WASTE_UNIT_PRICE must be positive, got %s", price)
	}
	s.UnitPrice = price

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Local"))
	if err != nil {
		return s, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	s.Location = loc

	s.Database = DatabaseSettings{
		Host:     getEnv("DB_HOST", s.Database.Host),
		Port:     getEnv("DB_PORT", s.Database.Port),
		User:     getEnv("DB_USER", s.Database.User),
		Password: getEnv("DB_PASSWORD", s.Database.Password),
		Name:     getEnv("DB_NAME", s.Database.Name),
		SSLMode:  getEnv("DB_SSLMODE", s.Database.SSLMode),
		TimeZone: getEnv("DB_TIMEZONE", s.Database.TimeZone),
	}

	s.Storage = StorageSettings{
		Driver:       strings.ToLower(getEnv("STORAGE_DRIVER", s.Storage.Driver)),
		LocalDir:     getEnv("STORAGE_LOCAL_DIR", s.Storage.LocalDir),
		PublicURL:    getEnv("STORAGE_PUBLIC_URL", s.Storage.PublicURL),
		Bucket:       getEnv("S3_BUCKET", ""),
		Region:       getEnv("S3_REGION", s.Storage.Region),
		Endpoint:     getEnv("S3_ENDPOINT", ""),
		AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		SecretKey:    getEnv("S3_SECRET_KEY", ""),
		UsePathStyle: getEnvBool("S3_USE_PATH_STYLE", true),
		S3PublicURL:  getEnv("S3_PUBLIC_URL", ""),
	}
	if s.Storage.Driver != "local" && s.Storage.Driver != "s3" {
		return s, fmt.Errorf("STORAGE_DRIVER must be local or s3, got %q", s.Storage.Driver)
	}

	s.Log = LogSettings{
		Level:      getEnv("LOG_LEVEL", s.Log.Level),
		Format:     getEnv("LOG_FORMAT", s.Log.Format),
		File:       getEnv("LOG_FILE", s.Log.File),
		MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", s.Log.MaxSizeMB),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", s.Log.MaxBackups),
		MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", s.Log.MaxAgeDays),
	}

	if s.Env == "production" && s.JWTSecret == Defaults().JWTSecret {
		return s, fmt.Errorf("JWT_SECRET must be set in production")
	}

	App = s
	return s, nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
