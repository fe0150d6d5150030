package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/utils"
)

// Storage backends
const (
	BackendMongoDB  = "mongodb"
	BackendPlatform = "platform"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	MongoDB  MongoDBConfig
	Platform PlatformConfig
	Admin    AdminConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Mirror   MirrorConfig
	Spin     SpinConfig
	Catalog  CatalogConfig
	Log      LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	AllowedHosts   []string
	RequestTimeout time.Duration
}

// StorageConfig selects where participants and prizes live
type StorageConfig struct {
	Backend string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// PlatformConfig holds commerce platform API configuration
type PlatformConfig struct {
	BaseURL     string
	AccessToken string
	PrizeType   string // Metaobject type holding the prizes
	Timeout     time.Duration
}

// AdminConfig holds the admin credential. KeyHash is a bcrypt hash and wins over Key.
type AdminConfig struct {
	Key     string
	KeyHash string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // Seconds
}

// RedisConfig enables the shared identity lock when Addr is set
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MirrorConfig holds the statistics mirror bucket configuration
type MirrorConfig struct {
	Enabled         bool
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	AuditInterval   time.Duration // Zero disables the drift audit
}

// SpinConfig tunes the allocation loop
type SpinConfig struct {
	MaxAttempts int
	LockTTL     time.Duration
}

// CatalogConfig declares the prizes for the memory backend
type CatalogConfig struct {
	Prizes []CatalogPrize
}

// CatalogPrize is one configured prize. Percentage is on a 0-100 scale.
type CatalogPrize struct {
	ID         string
	Label      string
	Percentage float64
	Cap        *int
	Fallback   bool
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string
	File  string
}

// Load loads configuration from an optional .env file, config files and environment variables
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read configuration
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Unmarshal configuration
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults sets default values for configuration. Every key is registered so that
// AutomaticEnv can override it.
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("Server.RequestTimeout", 10*time.Second)
	viper.SetDefault("Storage.Backend", BackendMongoDB)
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "wheelspin")
	viper.SetDefault("Platform.BaseURL", "")
	viper.SetDefault("Platform.AccessToken", "")
	viper.SetDefault("Platform.PrizeType", "wheel_prize")
	viper.SetDefault("Platform.Timeout", 5*time.Second)
	viper.SetDefault("Admin.Key", "")
	viper.SetDefault("Admin.KeyHash", "")
	viper.SetDefault("JWT.Secret", "")
	viper.SetDefault("JWT.ExpiresIn", 60*60) // 1 hour
	viper.SetDefault("Redis.Addr", "")
	viper.SetDefault("Redis.Password", "")
	viper.SetDefault("Redis.DB", 0)
	viper.SetDefault("Mirror.Enabled", false)
	viper.SetDefault("Mirror.Bucket", "")
	viper.SetDefault("Mirror.Key", "wheel/stats.json")
	viper.SetDefault("Mirror.Region", "auto")
	viper.SetDefault("Mirror.Endpoint", "")
	viper.SetDefault("Mirror.AccessKeyID", "")
	viper.SetDefault("Mirror.SecretAccessKey", "")
	viper.SetDefault("Mirror.AuditInterval", 5*time.Minute)
	viper.SetDefault("Spin.MaxAttempts", 3)
	viper.SetDefault("Spin.LockTTL", 10*time.Second)
	viper.SetDefault("Log.Level", "info")
	viper.SetDefault("Log.File", "")
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if c.Admin.Key == "" && c.Admin.KeyHash == "" {
		return errors.New("config: Admin.Key or Admin.KeyHash must be set")
	}
	if c.Spin.MaxAttempts < 1 {
		return fmt.Errorf("config: Spin.MaxAttempts must be at least 1, got %d", c.Spin.MaxAttempts)
	}

	switch c.Storage.Backend {
	case BackendMongoDB:
		if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
			return errors.New("config: MongoDB.URI and MongoDB.Database are required")
		}
	case BackendPlatform:
		if c.Platform.BaseURL == "" || c.Platform.AccessToken == "" || c.Platform.PrizeType == "" {
			return errors.New("config: Platform.BaseURL, Platform.AccessToken and Platform.PrizeType are required")
		}
	case BackendMemory:
		if len(c.Catalog.Prizes) == 0 {
			return errors.New("config: Catalog.Prizes is required for the memory backend")
		}
	default:
		return fmt.Errorf("config: unknown Storage.Backend %q", c.Storage.Backend)
	}

	if c.Mirror.Enabled && c.Mirror.Bucket == "" {
		return errors.New("config: Mirror.Bucket is required when the mirror is enabled")
	}
	return nil
}

// ToPrizes converts the configured catalog into prizes with full inventory
func (c CatalogConfig) ToPrizes() []*models.Prize {
	prizes := make([]*models.Prize, 0, len(c.Prizes))
	for i, cp := range c.Prizes {
		p := &models.Prize{
			ID:       cp.ID,
			Label:    cp.Label,
			Weight:   utils.NormalizeWeight(cp.Percentage),
			Position: i,
			Fallback: cp.Fallback,
		}
		if cp.Cap != nil {
			p.Cap = models.IntPtr(*cp.Cap)
			p.Remaining = models.IntPtr(*cp.Cap)
		}
		prizes = append(prizes, p)
	}
	return prizes
}
