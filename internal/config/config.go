// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Pricing  PricingConfig
	Import   ImportConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver         string
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConcurrency int64
}

type AppConfig struct {
	LogLevel string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	CatalogTTLSeconds int
}

// StorageConfig points at the S3-compatible bucket used to archive uploaded cost lists.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

// PricingConfig holds the percentages applied when a product has no stored value.
type PricingConfig struct {
	DefaultMargin     float64
	DefaultInterest6  float64
	DefaultInterest12 float64
	DefaultInterest15 float64
	DefaultInterest18 float64
}

type ImportConfig struct {
	BatchSize int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		instance = build()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 120)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "donnegro")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONCURRENCY", 10)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_CATALOG_TTL_SECONDS", 300)
	viper.SetDefault("STORAGE_ENABLED", false)
	viper.SetDefault("STORAGE_BUCKET", "cost-lists")
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	viper.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
	viper.SetDefault("PRICING_DEFAULT_MARGIN", 18)
	viper.SetDefault("PRICING_DEFAULT_INTEREST_6", 45)
	viper.SetDefault("PRICING_DEFAULT_INTEREST_12", 65)
	viper.SetDefault("PRICING_DEFAULT_INTEREST_15", 75)
	viper.SetDefault("PRICING_DEFAULT_INTEREST_18", 85)
	viper.SetDefault("IMPORT_BATCH_SIZE", 50)
}

func build() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:         viper.GetString("DB_DRIVER"),
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASSWORD"),
			DBName:         viper.GetString("DB_NAME"),
			SSLMode:        viper.GetString("DB_SSLMODE"),
			MaxConcurrency: viper.GetInt64("DB_MAX_CONCURRENCY"),
		},
		App: AppConfig{
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		Cache: CacheConfig{
			Enabled:           viper.GetBool("CACHE_ENABLED"),
			RedisURL:          viper.GetString("REDIS_URL"),
			RedisHost:         viper.GetString("REDIS_HOST"),
			RedisPort:         viper.GetString("REDIS_PORT"),
			RedisPassword:     viper.GetString("REDIS_PASSWORD"),
			RedisDB:           viper.GetInt("REDIS_DB"),
			CatalogTTLSeconds: viper.GetInt("CACHE_CATALOG_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   viper.GetBool("STORAGE_ENABLED"),
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        viper.GetString("GOOGLE_DRIVE_FOLDER_ID"),
		},
		Pricing: PricingConfig{
			DefaultMargin:     viper.GetFloat64("PRICING_DEFAULT_MARGIN"),
			DefaultInterest6:  viper.GetFloat64("PRICING_DEFAULT_INTEREST_6"),
			DefaultInterest12: viper.GetFloat64("PRICING_DEFAULT_INTEREST_12"),
			DefaultInterest15: viper.GetFloat64("PRICING_DEFAULT_INTEREST_15"),
			DefaultInterest18: viper.GetFloat64("PRICING_DEFAULT_INTEREST_18"),
		},
		Import: ImportConfig{
			BatchSize: viper.GetInt("IMPORT_BATCH_SIZE"),
		},
	}
}

